package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
	"repairshop-service/pkg/cache"
)

// ErrInvalidReference is returned when a create or update names a parent
// resource that does not resolve to a live row in the same organization.
// Callers map this to a client error, distinct from plain not-found.
var ErrInvalidReference = errors.New("referenced resource not found in organization")

// Store is the tenant-scoped lifecycle manager. Every method takes the acting
// organization id explicitly; rows belonging to other organizations are
// indistinguishable from missing rows.
type Store struct {
	db    *gorm.DB
	cache *cache.Client
}

// New creates a Store on top of an initialized gorm DB. The cache client is
// optional; pass nil to disable organization lookup caching.
func New(db *gorm.DB, c *cache.Client) *Store {
	return &Store{db: db, cache: c}
}

// DB exposes the underlying gorm handle for migrations and health checks
func (s *Store) DB() *gorm.DB {
	return s.db
}

// scoped restricts a query to live rows of one organization. Every accessor
// goes through this (or spells the same predicate); omitting it anywhere
// reintroduces a tenant-isolation bug.
func scoped(db *gorm.DB, orgID uint) *gorm.DB {
	return db.Where("organization_id = ? AND deleted = ?", orgID, false)
}

// trashValues is the column set applied by every soft delete
func trashValues(now time.Time) map[string]interface{} {
	return map[string]interface{}{"deleted": true, "deleted_at": now}
}

// restoreValues is the column set applied by every restore
func restoreValues() map[string]interface{} {
	return map[string]interface{}{"deleted": false, "deleted_at": nil}
}

// nextNumber allocates the next human-readable number for one organization
// and kind, formatted as PREFIX-NNNN. Sequences start at 1001 and are unique
// per organization, not globally. Must run inside the caller's transaction so
// the allocation rolls back with a failed create. A lost race with a
// concurrent allocation is retried a few times before giving up.
func nextNumber(tx *gorm.DB, orgID uint, kind, prefix string) (string, error) {
	const maxAttempts = 3

	for attempt := 0; attempt < maxAttempts; attempt++ {
		var seq model.NumberSequence
		err := tx.Where("organization_id = ? AND kind = ?", orgID, kind).First(&seq).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			seq = model.NumberSequence{OrganizationID: orgID, Kind: kind, NextValue: 1001}
			if err := tx.Create(&seq).Error; err != nil {
				return "", fmt.Errorf("create %s sequence: %w", kind, err)
			}
		} else if err != nil {
			return "", fmt.Errorf("load %s sequence: %w", kind, err)
		}

		value := seq.NextValue
		result := tx.Model(&model.NumberSequence{}).
			Where("id = ? AND next_value = ?", seq.ID, value).
			Update("next_value", value+1)
		if result.Error != nil {
			return "", fmt.Errorf("advance %s sequence: %w", kind, result.Error)
		}
		if result.RowsAffected == 0 {
			// Lost a race with a concurrent allocation; reload and try again
			continue
		}
		return fmt.Sprintf("%s-%d", prefix, value), nil
	}

	return "", fmt.Errorf("%s sequence contention for organization %d", kind, orgID)
}

// Migrate creates or updates the schema for all managed models
func (s *Store) Migrate() error {
	return s.db.AutoMigrate(
		&model.Organization{},
		&model.Customer{},
		&model.Device{},
		&model.Technician{},
		&model.InventoryItem{},
		&model.Repair{},
		&model.RepairItem{},
		&model.Quote{},
		&model.Invoice{},
		&model.NumberSequence{},
	)
}

// Ping verifies database connectivity for health checks
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
