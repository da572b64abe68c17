package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// DeleteAllOrganizationData hard-deletes every row belonging to one
// organization, trashed rows included. This is the only irreversible
// operation in the store. Tables go in dependency order so foreign keys
// never dangle, and the whole wipe runs in a single transaction: any
// failure rolls everything back. The organization row itself is kept.
func (s *Store) DeleteAllOrganizationData(ctx context.Context, orgID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		tables := []interface{}{
			&model.RepairItem{},
			&model.Quote{},
			&model.Invoice{},
			&model.Repair{},
			&model.Device{},
			&model.Customer{},
			&model.Technician{},
			&model.InventoryItem{},
			&model.NumberSequence{},
		}
		for _, table := range tables {
			if err := tx.Where("organization_id = ?", orgID).Delete(table).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("wipe organization %d: %w", orgID, err)
	}
	return nil
}
