// Package identity derives the Wix instanceId of the calling tenant from the
// untrusted parameters an embedded iframe receives.
package identity

import (
	"encoding/json"
	"errors"
	"strings"

	"shippingbar-service/pkg/jwtutil"
)

// ErrUnresolved is returned when no source yields an instanceId
var ErrUnresolved = errors.New("instance id could not be resolved")

// Source tags which input produced the instanceId
type Source string

const (
	SourceParam             Source = "param"
	SourceInstanceToken     Source = "instance_token"
	SourceAuthorizationCode Source = "authorization_code"
	SourceDefault           Source = "default"
)

// Query parameter names read by the resolver
const (
	ParamInstanceID        = "instanceId"
	ParamInstance          = "instance"
	ParamAuthorizationCode = "authorizationCode"
)

// Resolution is a successfully resolved tenant identity
type Resolution struct {
	InstanceID string `json:"instanceId"`
	Source     Source `json:"source"`
}

// IsFallback reports whether the development default tenant was used
func (r Resolution) IsFallback() bool {
	return r.Source == SourceDefault
}

// Strategy decodes the instanceId from one source or skips
type Strategy interface {
	Source() Source
	Decode(params map[string]string) (string, bool)
}

// Resolver tries its strategies in order; the first hit wins
type Resolver struct {
	strategies      []Strategy
	defaultInstance string
	allowDefault    bool
}

// Option configures a Resolver
type Option func(*Resolver)

// WithDefaultInstance enables the development fallback tenant
func WithDefaultInstance(instanceID string) Option {
	return func(r *Resolver) {
		if instanceID != "" {
			r.defaultInstance = instanceID
			r.allowDefault = true
		}
	}
}

// NewResolver builds a resolver with the fixed priority order:
// explicit param, instance token, authorization code.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		strategies: []Strategy{
			ParamStrategy{},
			InstanceTokenStrategy{},
			AuthorizationCodeStrategy{},
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve is a pure function of params
func (r *Resolver) Resolve(params map[string]string) (Resolution, error) {
	for _, s := range r.strategies {
		if id, ok := s.Decode(params); ok {
			return Resolution{InstanceID: id, Source: s.Source()}, nil
		}
	}
	if r.allowDefault {
		return Resolution{InstanceID: r.defaultInstance, Source: SourceDefault}, nil
	}
	return Resolution{}, ErrUnresolved
}

// ParamStrategy reads an explicit instanceId parameter
type ParamStrategy struct{}

func (ParamStrategy) Source() Source { return SourceParam }

func (ParamStrategy) Decode(params map[string]string) (string, bool) {
	id := strings.TrimSpace(params[ParamInstanceID])
	return id, id != ""
}

// InstanceTokenStrategy decodes the Wix "instance" parameter,
// signature.payload with a base64 JSON payload.
type InstanceTokenStrategy struct{}

func (InstanceTokenStrategy) Source() Source { return SourceInstanceToken }

func (InstanceTokenStrategy) Decode(params map[string]string) (string, bool) {
	token := strings.TrimSpace(params[ParamInstance])
	if !strings.Contains(token, ".") {
		return "", false
	}
	parts := strings.Split(token, ".")

	var payload struct {
		InstanceID string `json:"instanceId"`
		Data       struct {
			InstanceID string `json:"instanceId"`
		} `json:"data"`
	}
	if err := jwtutil.DecodeSegmentJSON(parts[1], &payload); err != nil {
		return "", false
	}
	if payload.InstanceID != "" {
		return payload.InstanceID, true
	}
	if payload.Data.InstanceID != "" {
		return payload.Data.InstanceID, true
	}
	return "", false
}

// AuthorizationCodeStrategy decodes a "JWS.header.payload.signature" code whose
// payload carries a data object, possibly JSON-encoded a second time, with
// decodedToken.instanceId or decodedToken.siteId.
type AuthorizationCodeStrategy struct{}

func (AuthorizationCodeStrategy) Source() Source { return SourceAuthorizationCode }

func (AuthorizationCodeStrategy) Decode(params map[string]string) (string, bool) {
	code := strings.TrimSpace(params[ParamAuthorizationCode])
	parts := strings.Split(code, ".")
	if len(parts) != 4 {
		return "", false
	}

	claims, err := jwtutil.UnverifiedClaims(strings.Join(parts[1:], "."))
	if err != nil {
		return "", false
	}

	data, ok := unwrapData(claims["data"])
	if !ok {
		return "", false
	}
	decoded, ok := data["decodedToken"].(map[string]any)
	if !ok {
		return "", false
	}
	for _, key := range []string{"instanceId", "siteId"} {
		if id, ok := decoded[key].(string); ok && id != "" {
			return id, true
		}
	}
	return "", false
}

// unwrapData accepts the data claim as an object or as a JSON string of one
func unwrapData(v any) (map[string]any, bool) {
	switch d := v.(type) {
	case map[string]any:
		return d, true
	case string:
		var out map[string]any
		if err := json.Unmarshal([]byte(d), &out); err != nil {
			return nil, false
		}
		return out, true
	default:
		return nil, false
	}
}
