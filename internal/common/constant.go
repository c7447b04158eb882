// Package common contains constants, the client error taxonomy and small
// helpers shared by the ExpertConnect client packages.
package common

const (
	// AuthorizationHeaderName carries the bearer token on REST and websocket
	// handshakes.
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "

	// RequestIDHeaderName is attached to every outbound REST call.
	RequestIDHeaderName = "X-Request-ID"

	// Persisted credential keys.
	AccessTokenKey  = "token"
	RefreshTokenKey = "refresh_token"
)
