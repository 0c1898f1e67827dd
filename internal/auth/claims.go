package auth

import (
	"encoding/json"
	"math"

	jwt "github.com/golang-jwt/jwt/v5"
)

// userIDClaim is the single claim trusted for identity. The standard "sub"
// claim is deliberately not accepted as a substitute: allowing either name
// would open a claim-confusion hole between issuer and verifier.
const userIDClaim = "user_id"

// ExtractUserID pulls the identity claim out of verified claims. The claim
// must be present and representable as a positive integer.
func ExtractUserID(claims jwt.MapClaims) (int64, error) {
	val, ok := claims[userIDClaim]
	if !ok {
		return 0, ErrMissingClaim
	}

	switch v := val.(type) {
	case float64:
		if v <= 0 || v != math.Trunc(v) {
			return 0, ErrInvalidClaimType
		}
		return int64(v), nil
	case json.Number:
		id, err := v.Int64()
		if err != nil || id <= 0 {
			return 0, ErrInvalidClaimType
		}
		return id, nil
	case int64:
		if v <= 0 {
			return 0, ErrInvalidClaimType
		}
		return v, nil
	default:
		return 0, ErrInvalidClaimType
	}
}
