package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// GetRepairItemsByRepair returns the live line items of one repair
func (s *Store) GetRepairItemsByRepair(ctx context.Context, orgID, repairID uint) ([]model.RepairItem, error) {
	var items []model.RepairItem
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("repair_id = ?", repairID).
		Order("id").
		Find(&items).Error
	return items, err
}

// GetRepairItem returns one live repair item, or nil when not found or not owned
func (s *Store) GetRepairItem(ctx context.Context, orgID, id uint) (*model.RepairItem, error) {
	var item model.RepairItem
	err := scoped(s.db.WithContext(ctx), orgID).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// CreateRepairItem adds a part or labor line to a repair. The repair must be
// a live row of the same organization; a stock reference, when present, must
// resolve to a live inventory item of the organization.
func (s *Store) CreateRepairItem(ctx context.Context, orgID uint, item *model.RepairItem) error {
	repair, err := s.GetRepair(ctx, orgID, item.RepairID)
	if err != nil {
		return err
	}
	if repair == nil {
		return fmt.Errorf("repair %d: %w", item.RepairID, ErrInvalidReference)
	}

	if item.InventoryItemID != nil {
		stock, err := s.GetInventoryItem(ctx, orgID, *item.InventoryItemID)
		if err != nil {
			return err
		}
		if stock == nil {
			return fmt.Errorf("inventory item %d: %w", *item.InventoryItemID, ErrInvalidReference)
		}
	}

	item.ID = 0
	item.OrganizationID = orgID
	item.Deleted = false
	item.DeletedAt = nil
	if item.ItemType == "" {
		item.ItemType = model.RepairItemTypePart
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	return s.db.WithContext(ctx).Create(item).Error
}

// UpdateRepairItem applies a partial update to a live repair item. The parent
// repair is fixed; an inventory reference change is re-validated.
func (s *Store) UpdateRepairItem(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.RepairItem, error) {
	item, err := s.GetRepairItem(ctx, orgID, id)
	if err != nil || item == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	delete(updates, "repair_id")

	if raw, ok := updates["inventory_item_id"]; ok && raw != nil {
		inventoryItemID, ok := toUint(raw)
		if !ok {
			return nil, fmt.Errorf("inventory_item_id: %w", ErrInvalidReference)
		}
		stock, err := s.GetInventoryItem(ctx, orgID, inventoryItemID)
		if err != nil {
			return nil, err
		}
		if stock == nil {
			return nil, fmt.Errorf("inventory item %d: %w", inventoryItemID, ErrInvalidReference)
		}
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.WithContext(ctx).Model(item).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update repair item %d: %w", id, err)
	}
	return s.GetRepairItem(ctx, orgID, id)
}

// DeleteRepairItem soft-deletes a single line item. Nothing depends on a
// repair item, so there is no cascade.
func (s *Store) DeleteRepairItem(ctx context.Context, orgID, id uint) (bool, error) {
	item, err := s.GetRepairItem(ctx, orgID, id)
	if err != nil || item == nil {
		return false, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(item).Updates(trashValues(now)).Error; err != nil {
		return false, fmt.Errorf("delete repair item %d: %w", id, err)
	}
	return true, nil
}

// RestoreRepairItem flips a trashed repair item back to live
func (s *Store) RestoreRepairItem(ctx context.Context, orgID, id uint) (*model.RepairItem, error) {
	return restoreRow[model.RepairItem](ctx, s.db, orgID, id)
}
