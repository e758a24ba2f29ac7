// Package messaging carries auth domain events (user registered, admin signed
// in) to the modules that react to them.
//
// The broker is picked by configuration through NewFromDriver. Every driver
// delivers a message once to each consumer group, and the headers travel with
// the body, so the correlation id set at the HTTP edge reaches consumers.
// Handler panics are recovered and reported as ErrHandlerPanic.
package messaging
