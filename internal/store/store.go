// Package store persists one SettingsRecord per Wix instance.
package store

import (
	"context"
	"errors"
	"time"

	"shippingbar-service/internal/model"
)

var (
	// ErrNotFound is returned when no record exists for an instance
	ErrNotFound = errors.New("settings not found")
	// ErrAlreadyExists is returned by Create when the instance already has a record
	ErrAlreadyExists = errors.New("settings already exist")
)

// Store is the settings key-value contract. Every returned record is a copy
// owned by the caller.
type Store interface {
	// Get has no side effects
	Get(ctx context.Context, instanceID string) (*model.SettingsRecord, error)
	// Create merges initial over the default record and stores it.
	// It is not idempotent.
	Create(ctx context.Context, instanceID string, initial *model.SettingsPatch) (*model.SettingsRecord, error)
	// Update merges patch onto the stored record atomically and refreshes UpdatedAt
	Update(ctx context.Context, instanceID string, patch *model.SettingsPatch) (*model.SettingsRecord, error)
}

// Clock returns the current time
type Clock func() time.Time
