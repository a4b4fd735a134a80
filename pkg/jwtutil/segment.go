package jwtutil

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ErrMalformedSegment is returned when a token segment is not base64 in any
// of the encodings Wix is known to emit
var ErrMalformedSegment = errors.New("malformed token segment")

var segmentEncodings = []*base64.Encoding{
	base64.RawURLEncoding,
	base64.URLEncoding,
	base64.RawStdEncoding,
	base64.StdEncoding,
}

// DecodeSegment decodes a single dot-separated token segment.
// Wix mixes url-safe and standard alphabets, with and without padding.
func DecodeSegment(seg string) ([]byte, error) {
	seg = strings.TrimSpace(seg)
	if seg == "" {
		return nil, ErrMalformedSegment
	}
	for _, enc := range segmentEncodings {
		if b, err := enc.DecodeString(seg); err == nil {
			return b, nil
		}
	}
	return nil, ErrMalformedSegment
}

// DecodeSegmentJSON decodes a segment and unmarshals it into v
func DecodeSegmentJSON(seg string, v any) error {
	b, err := DecodeSegment(seg)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// UnverifiedClaims reads the claims of a header.payload.signature JWS without
// checking its signature. Identity is only derived from it, never trusted for
// authorization.
func UnverifiedClaims(token string) (jwt.MapClaims, error) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	if _, _, err := parser.ParseUnverified(token, claims); err == nil {
		return claims, nil
	}

	// the jwt parser only speaks the url-safe alphabet
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, ErrMalformedSegment
	}
	claims = jwt.MapClaims{}
	if err := DecodeSegmentJSON(parts[1], &claims); err != nil {
		return nil, err
	}
	return claims, nil
}
