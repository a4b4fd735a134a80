package settings

import (
	"context"
	"errors"
	"fmt"

	"shippingbar-service/internal/model"
	"shippingbar-service/internal/store"
	"shippingbar-service/pkg/wix"
	"shippingbar-service/prometheus"

	"go.uber.org/zap"
)

// ErrRefreshFailed is returned when the call still fails after one refresh
var ErrRefreshFailed = errors.New("wix call failed after token refresh")

// WithCredentials runs call with the record's tokens. On a 401/403 it refreshes
// once, persists the new tokens and retries once. It never loops.
func (s *Service) WithCredentials(ctx context.Context, rec *model.SettingsRecord, call func(wix.Credentials) error) error {
	if !s.gatewayEnabled() {
		return wix.ErrNotConfigured
	}
	creds := wix.Credentials{
		InstanceID:   rec.InstanceID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
	}
	if creds.AccessToken == "" {
		return wix.ErrMissingCredentials
	}

	err := call(creds)
	if err == nil || !wix.IsAuthError(err) {
		return err
	}

	s.log.Info("Wix rejected access token, refreshing",
		zap.String("instance_id", rec.InstanceID), zap.Error(err))

	tokens, refreshErr := s.gateway.RefreshAccessToken(ctx, creds.RefreshToken)
	if refreshErr != nil {
		return fmt.Errorf("%w: refresh: %v (first attempt: %v)", ErrRefreshFailed, refreshErr, err)
	}
	prometheus.RecordTokenRefreshed()

	if _, perr := s.store.Update(ctx, rec.InstanceID, model.CredentialsPatch(rec.InstanceID, tokens.AccessToken, tokens.RefreshToken)); perr != nil {
		if errors.Is(perr, store.ErrNotFound) {
			return fmt.Errorf("%w: instance %s", ErrConsistency, rec.InstanceID)
		}
		return perr
	}
	rec.AccessToken = tokens.AccessToken
	if tokens.RefreshToken != "" {
		rec.RefreshToken = tokens.RefreshToken
	}

	creds.AccessToken = rec.AccessToken
	creds.RefreshToken = rec.RefreshToken
	if err := call(creds); err != nil {
		return fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return nil
}
