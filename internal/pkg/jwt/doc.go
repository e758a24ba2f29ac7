// Package jwt issues the HS512 access tokens handed out after OTP or
// administrator sign-in, and carries verified claims through request
// contexts so usecases can read the caller's user id and role.
package jwt
