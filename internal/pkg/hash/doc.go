// Package hash hashes secrets that must never be stored in the clear.
//
// OTP codes are stored as keyed HMAC-SHA256 digests so a leaked state store
// reveals nothing without the secret. Administrator password allow-list
// entries go through Auto, which accepts argon2id, bcrypt or plaintext
// entries and always compares in constant time.
package hash
