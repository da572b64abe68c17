package store

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// sanitizeUpdates strips columns a partial update may never touch: identity,
// tenant ownership and the soft-delete pair (lifecycle changes go through
// Delete/Restore, not Update).
func sanitizeUpdates(updates map[string]interface{}) {
	delete(updates, "id")
	delete(updates, "organization_id")
	delete(updates, "deleted")
	delete(updates, "deleted_at")
	delete(updates, "created_at")
}

// cascadeRepairSubtree soft-deletes the live dependents of the given repairs
// (items, quotes, invoices) and then the repairs themselves. Children go
// first so an interruption leaves no live row under a trashed repair.
func cascadeRepairSubtree(tx *gorm.DB, orgID uint, repairIDs []uint, now time.Time) error {
	if len(repairIDs) == 0 {
		return nil
	}

	if err := scoped(tx.Model(&model.RepairItem{}), orgID).
		Where("repair_id IN ?", repairIDs).
		Updates(trashValues(now)).Error; err != nil {
		return err
	}
	if err := scoped(tx.Model(&model.Quote{}), orgID).
		Where("repair_id IN ?", repairIDs).
		Updates(trashValues(now)).Error; err != nil {
		return err
	}
	if err := scoped(tx.Model(&model.Invoice{}), orgID).
		Where("repair_id IN ?", repairIDs).
		Updates(trashValues(now)).Error; err != nil {
		return err
	}

	return scoped(tx.Model(&model.Repair{}), orgID).
		Where("id IN ?", repairIDs).
		Updates(trashValues(now)).Error
}

// toUint normalizes the numeric types a partial-update map may carry for a
// foreign key (JSON decodes numbers to float64, handlers pass uint directly).
func toUint(v interface{}) (uint, bool) {
	switch n := v.(type) {
	case uint:
		return n, true
	case int:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	case float64:
		if n < 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}

// restoreRow flips exactly one trashed row back to live. Returns nil when the
// row doesn't exist, isn't owned by the organization, or isn't trashed.
// Dependents and parents are never touched.
func restoreRow[T any](ctx context.Context, db *gorm.DB, orgID, id uint) (*T, error) {
	var row T
	err := db.WithContext(ctx).
		Where("organization_id = ? AND id = ? AND deleted = ?", orgID, id, true).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := db.WithContext(ctx).Model(&row).Updates(restoreValues()).Error; err != nil {
		return nil, err
	}

	// Map updates don't write back into the struct
	err = db.WithContext(ctx).
		Where("organization_id = ? AND id = ?", orgID, id).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
