package auth

import "errors"

// Closed verification error taxonomy. Every failure in the credential pipeline
// resolves to exactly one of these before it reaches the HTTP layer.
var (
	// ErrMissingToken indicates no Authorization header was supplied.
	ErrMissingToken = errors.New("missing authentication token")
	// ErrMalformedToken indicates the credential is not a structurally valid
	// three-segment token, or the Bearer prefix is wrong.
	ErrMalformedToken = errors.New("malformed token")
	// ErrInvalidSignature indicates the HMAC did not verify under the shared secret.
	ErrInvalidSignature = errors.New("invalid token signature")
	// ErrUnsupportedAlgorithm indicates the token header declared anything
	// other than HS256.
	ErrUnsupportedAlgorithm = errors.New("unsupported signing algorithm")
	// ErrTokenExpired indicates the expiry claim is not in the future.
	ErrTokenExpired = errors.New("token expired")
	// ErrMissingClaim indicates a required claim is absent.
	ErrMissingClaim = errors.New("missing required claim")
	// ErrInvalidClaimType indicates the identity claim is not a positive integer.
	ErrInvalidClaimType = errors.New("invalid claim type")
	// ErrForbidden indicates the caller does not own the addressed resource.
	ErrForbidden = errors.New("forbidden")
)
