package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"shippingbar-service/internal/model"
	"shippingbar-service/prometheus"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingsRow is the database row for one instance. Credentials live in their
// own columns because the JSON document never carries them.
type SettingsRow struct {
	InstanceID   string               `gorm:"primaryKey;type:varchar(256)"`
	AccessToken  string               `gorm:"type:text"`
	RefreshToken string               `gorm:"type:text"`
	Document     model.SettingsRecord `gorm:"type:jsonb;serializer:json;not null"`
	CreatedAt    time.Time            `gorm:"autoCreateTime:false"`
	UpdatedAt    time.Time            `gorm:"autoUpdateTime:false"`
}

// TableName overrides the table name used by SettingsRow
func (SettingsRow) TableName() string {
	return "shipping_bar_settings"
}

func rowFromRecord(rec *model.SettingsRecord) *SettingsRow {
	return &SettingsRow{
		InstanceID:   rec.InstanceID,
		AccessToken:  rec.AccessToken,
		RefreshToken: rec.RefreshToken,
		Document:     *rec.Clone(),
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}

func (r *SettingsRow) record() *model.SettingsRecord {
	rec := r.Document.Clone()
	rec.InstanceID = r.InstanceID
	rec.AccessToken = r.AccessToken
	rec.RefreshToken = r.RefreshToken
	rec.CreatedAt = r.CreatedAt
	rec.UpdatedAt = r.UpdatedAt
	return rec
}

// PostgresStore keeps records in Postgres through gorm. Update locks the row
// for the duration of the merge.
type PostgresStore struct {
	db  *gorm.DB
	now Clock
}

// NewPostgresStore wraps an open gorm connection
func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db, now: time.Now}
}

// Get loads the instance's row, or returns ErrNotFound
func (s *PostgresStore) Get(ctx context.Context, instanceID string) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("get")(time.Now())

	var row SettingsRow
	if err := s.db.WithContext(ctx).First(&row, "instance_id = ?", instanceID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return row.record(), nil
}

// Create inserts the default record with initial applied on top.
// A conflicting insert is reported as ErrAlreadyExists.
func (s *PostgresStore) Create(ctx context.Context, instanceID string, initial *model.SettingsPatch) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("create")(time.Now())

	rec := model.DefaultSettings(instanceID)
	initial.ApplyTo(rec)
	now := s.now().UTC()
	rec.CreatedAt, rec.UpdatedAt = now, now

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rowFromRecord(rec))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to create settings: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrAlreadyExists
	}
	return rec, nil
}

// Update merges patch onto the row inside a transaction holding a row lock
func (s *PostgresStore) Update(ctx context.Context, instanceID string, patch *model.SettingsPatch) (*model.SettingsRecord, error) {
	defer prometheus.TrackStoreOperation("update")(time.Now())

	var out *model.SettingsRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row SettingsRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&row, "instance_id = ?", instanceID).Error; err != nil {
			return err
		}

		rec := row.record()
		patch.ApplyTo(rec)
		rec.UpdatedAt = s.now().UTC()

		if err := tx.Save(rowFromRecord(rec)).Error; err != nil {
			return err
		}
		out = rec
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to update settings: %w", err)
	}
	return out, nil
}
