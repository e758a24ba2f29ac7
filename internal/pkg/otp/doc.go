// Package otp generates numeric one-time codes delivered out of band (SMS).
//
// Two generators are available: Random draws each digit uniformly from
// crypto/rand, and HOTP derives the code from a fresh random secret using the
// RFC 4226 algorithm. Both keep leading zeros.
package otp
