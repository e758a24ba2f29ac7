// Package mail sends transactional email such as welcome messages and
// administrator sign-in alerts.
//
// Two transports exist: SMTP for real delivery and Log, which only writes the
// envelope to the structured log and is the default for local runs.
package mail
