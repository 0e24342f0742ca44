// Package common contains shared constants and sentinel errors used across
// the CapacitaNet server components.
package common

// AuthorizationHeaderName is the HTTP header carrying the bearer token.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix precedes the access token inside the Authorization header.
const BearerPrefix = "Bearer "

// MaskedPassword replaces the password hash whenever a user is returned to a caller.
const MaskedPassword = "********"
