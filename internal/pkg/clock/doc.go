// Package clock is the single source of "now" for OTP expiry, session
// lifetimes and delivery timestamps. Tests use Manual to move time forward
// without sleeping.
package clock
