package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListInventoryItems returns all live inventory items of one organization
func (s *Store) ListInventoryItems(ctx context.Context, orgID uint) ([]model.InventoryItem, error) {
	var items []model.InventoryItem
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&items).Error
	return items, err
}

// GetInventoryItem returns one live inventory item, or nil when not found or
// not owned
func (s *Store) GetInventoryItem(ctx context.Context, orgID, id uint) (*model.InventoryItem, error) {
	var item model.InventoryItem
	err := scoped(s.db.WithContext(ctx), orgID).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CountInventoryBySKU reports how many live items of the organization carry
// the given SKU, excluding one id (0 to exclude none). SKUs are unique per
// organization, not globally.
func (s *Store) CountInventoryBySKU(ctx context.Context, orgID uint, sku string, excludeID uint) (int64, error) {
	var count int64
	query := scoped(s.db.WithContext(ctx).Model(&model.InventoryItem{}), orgID).
		Where("sku = ?", sku)
	if excludeID != 0 {
		query = query.Where("id != ?", excludeID)
	}
	err := query.Count(&count).Error
	return count, err
}

// CreateInventoryItem inserts an inventory item under the acting organization
func (s *Store) CreateInventoryItem(ctx context.Context, orgID uint, item *model.InventoryItem) error {
	item.ID = 0
	item.OrganizationID = orgID
	item.Deleted = false
	item.DeletedAt = nil
	return s.db.WithContext(ctx).Create(item).Error
}

// UpdateInventoryItem applies a partial update to a live inventory item
func (s *Store) UpdateInventoryItem(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.InventoryItem, error) {
	item, err := s.GetInventoryItem(ctx, orgID, id)
	if err != nil || item == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update inventory item %d: %w", id, err)
	}
	return s.GetInventoryItem(ctx, orgID, id)
}

// DeleteInventoryItem detaches the item from all live repair items and then
// soft-deletes it. Repair items keep their description and price; they only
// lose the stock reference.
func (s *Store) DeleteInventoryItem(ctx context.Context, orgID, id uint) (bool, error) {
	item, err := s.GetInventoryItem(ctx, orgID, id)
	if err != nil || item == nil {
		return false, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx.Model(&model.RepairItem{}), orgID).
			Where("inventory_item_id = ?", id).
			Update("inventory_item_id", nil).Error; err != nil {
			return err
		}

		return tx.Model(item).Updates(trashValues(now)).Error
	})
	if err != nil {
		return false, fmt.Errorf("delete inventory item %d: %w", id, err)
	}
	return true, nil
}

// RestoreInventoryItem flips a trashed inventory item back to live. Repair
// items detached on delete stay detached.
func (s *Store) RestoreInventoryItem(ctx context.Context, orgID, id uint) (*model.InventoryItem, error) {
	return restoreRow[model.InventoryItem](ctx, s.db, orgID, id)
}
