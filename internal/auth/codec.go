package auth

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"
)

// RawToken holds the structurally decoded but entirely untrusted parts of a
// bearer credential. Nothing in here may be used for identity or authorization
// decisions before signature verification.
type RawToken struct {
	Header    map[string]any
	Claims    map[string]any
	Signature []byte
}

// DecodeToken performs the purely structural stage of token handling: exactly
// three dot-separated base64url segments, each decodable, with JSON objects in
// the first two. It does not verify the signature or expiry.
func DecodeToken(raw string) (*RawToken, error) {
	segments := strings.Split(raw, ".")
	if len(segments) != 3 {
		return nil, ErrMalformedToken
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return nil, ErrMalformedToken
	}
	claimsBytes, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return nil, ErrMalformedToken
	}
	signature, err := base64.RawURLEncoding.DecodeString(segments[2])
	if err != nil {
		return nil, ErrMalformedToken
	}

	token := &RawToken{Signature: signature}
	if err := decodeJSONObject(headerBytes, &token.Header); err != nil {
		return nil, ErrMalformedToken
	}
	if err := decodeJSONObject(claimsBytes, &token.Claims); err != nil {
		return nil, ErrMalformedToken
	}
	return token, nil
}

// decodeJSONObject unmarshals with json.Number so integer claims such as
// user_id survive without float conversion.
func decodeJSONObject(data []byte, out *map[string]any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}
