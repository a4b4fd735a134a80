// Package settings applies the get-or-default-then-merge policy every settings
// read and write goes through.
package settings

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"shippingbar-service/internal/model"
	"shippingbar-service/internal/store"
	"shippingbar-service/internal/validation"
	"shippingbar-service/pkg/wix"
	"shippingbar-service/prometheus"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var (
	// ErrValidation marks a rejected update; no state was touched
	ErrValidation = errors.New("invalid settings update")
	// ErrConsistency means a record vanished between resolve and update
	ErrConsistency = errors.New("settings consistency violation")
)

// ValidationError carries per-field messages keyed by JSON path
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid settings update: " + strings.Join(parts, ", ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Gateway is the part of the Wix client the service needs
type Gateway interface {
	Enabled() bool
	RefreshAccessToken(ctx context.Context, refreshToken string) (*wix.Tokens, error)
	SyncSettings(ctx context.Context, creds wix.Credentials, rec *model.SettingsRecord) error
}

// Service reconciles partial updates against stored settings
type Service struct {
	store    store.Store
	gateway  Gateway
	validate *validator.Validate
	log      *zap.Logger
}

// NewService wires a settings service. gateway may be nil for local-only mode.
func NewService(st store.Store, gateway Gateway, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:    st,
		gateway:  gateway,
		validate: validation.New(),
		log:      log,
	}
}

func (s *Service) gatewayEnabled() bool {
	return s.gateway != nil && s.gateway.Enabled()
}

// ResolveSettings returns the instance's record, creating the default on first read
func (s *Service) ResolveSettings(ctx context.Context, instanceID string) (*model.SettingsRecord, error) {
	if instanceID == "" {
		return nil, &ValidationError{Fields: map[string]string{"instanceId": "is required"}}
	}

	rec, err := s.store.Get(ctx, instanceID)
	if err == nil {
		prometheus.RecordSettingsOperation("resolve")
		return rec, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	rec, err = s.store.Create(ctx, instanceID, nil)
	if errors.Is(err, store.ErrAlreadyExists) {
		// lost a create race; the winner's record is just as good
		return s.store.Get(ctx, instanceID)
	}
	if err != nil {
		return nil, err
	}

	prometheus.RecordSettingsOperation("create")
	s.log.Info("Created default settings", zap.String("instance_id", instanceID))
	return rec, nil
}

// SettingsOrDefault returns the stored record, or the default one for an
// unseen instance. Unlike ResolveSettings it never writes.
func (s *Service) SettingsOrDefault(ctx context.Context, instanceID string) (*model.SettingsRecord, error) {
	if instanceID == "" {
		return nil, &ValidationError{Fields: map[string]string{"instanceId": "is required"}}
	}

	rec, err := s.store.Get(ctx, instanceID)
	if errors.Is(err, store.ErrNotFound) {
		return model.DefaultSettings(instanceID), nil
	}
	return rec, err
}

// Validate checks a patch against the resolved tenant without touching the store
func (s *Service) Validate(instanceID string, patch *model.SettingsPatch) error {
	if patch == nil {
		return &ValidationError{Fields: map[string]string{"instanceId": "is required"}}
	}

	fields := map[string]string{}
	if err := s.validate.Struct(patch); err != nil {
		fe := validation.FieldErrors(err)
		if fe == nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		fields = fe
	}
	if patch.InstanceID != "" && patch.InstanceID != instanceID {
		fields["instanceId"] = "does not match the resolved instance"
	}

	if len(fields) > 0 {
		prometheus.RecordSettingsOperation("validation_error")
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ApplySettingsUpdate validates patch, merges it onto the stored record and
// returns the result. A failed push to Wix never fails the save.
func (s *Service) ApplySettingsUpdate(ctx context.Context, instanceID string, patch *model.SettingsPatch) (*model.SettingsRecord, error) {
	if err := s.Validate(instanceID, patch); err != nil {
		return nil, err
	}

	// credentials only arrive through the OAuth flow
	clean := *patch
	clean.AccessToken, clean.RefreshToken = nil, nil

	if _, err := s.ResolveSettings(ctx, instanceID); err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, instanceID, &clean)
	if errors.Is(err, store.ErrNotFound) {
		s.log.Error("Settings disappeared during update", zap.String("instance_id", instanceID))
		return nil, fmt.Errorf("%w: instance %s", ErrConsistency, instanceID)
	}
	if err != nil {
		return nil, err
	}
	prometheus.RecordSettingsOperation("update")

	s.pushSync(ctx, rec)
	return rec, nil
}

// StoreCredentials persists tokens from the OAuth flow, creating the record
// if the instance has never been seen.
func (s *Service) StoreCredentials(ctx context.Context, instanceID string, tokens *wix.Tokens) (*model.SettingsRecord, error) {
	if instanceID == "" || tokens == nil || tokens.AccessToken == "" {
		return nil, wix.ErrMissingCredentials
	}
	if _, err := s.ResolveSettings(ctx, instanceID); err != nil {
		return nil, err
	}

	rec, err := s.store.Update(ctx, instanceID, model.CredentialsPatch(instanceID, tokens.AccessToken, tokens.RefreshToken))
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: instance %s", ErrConsistency, instanceID)
	}
	return rec, err
}

func (s *Service) pushSync(ctx context.Context, rec *model.SettingsRecord) {
	if !s.gatewayEnabled() || !rec.HasCredentials() {
		return
	}

	err := s.WithCredentials(ctx, rec, func(creds wix.Credentials) error {
		return s.gateway.SyncSettings(ctx, creds, rec)
	})
	if err != nil {
		prometheus.RecordBestEffortFailure("sync_settings")
		s.log.Warn("Settings push to Wix failed",
			zap.String("instance_id", rec.InstanceID),
			zap.String("operation", "sync_settings"),
			zap.Error(err))
	}
}
