// Package validator checks request and usecase input structs through their
// validate tags. On top of the go-playground/validator built-ins it registers
// the phone and otpcode rules, and reports failures as a map from snake_case
// field name to an English message.
package validator
