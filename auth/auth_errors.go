package auth

import "errors"

var (
	ErrMissingToken    = errors.New("missing oauth token")
	ErrMissingVerifier = errors.New("missing oauth verifier")
	ErrTokenMismatch   = errors.New("oauth token does not match the pending handshake")
	ErrSessionExpired  = errors.New("login session expired")
)
