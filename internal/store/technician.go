package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListTechnicians returns all live technicians of one organization
func (s *Store) ListTechnicians(ctx context.Context, orgID uint) ([]model.Technician, error) {
	var technicians []model.Technician
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&technicians).Error
	return technicians, err
}

// GetTechnician returns one live technician, or nil when not found or not owned
func (s *Store) GetTechnician(ctx context.Context, orgID, id uint) (*model.Technician, error) {
	var technician model.Technician
	err := scoped(s.db.WithContext(ctx), orgID).First(&technician, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &technician, nil
}

// CreateTechnician inserts a technician under the acting organization
func (s *Store) CreateTechnician(ctx context.Context, orgID uint, technician *model.Technician) error {
	technician.ID = 0
	technician.OrganizationID = orgID
	technician.Deleted = false
	technician.DeletedAt = nil
	return s.db.WithContext(ctx).Create(technician).Error
}

// UpdateTechnician applies a partial update to a live technician
func (s *Store) UpdateTechnician(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Technician, error) {
	technician, err := s.GetTechnician(ctx, orgID, id)
	if err != nil || technician == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	if len(updates) == 0 {
		return technician, nil
	}

	if err := s.db.WithContext(ctx).Model(technician).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update technician %d: %w", id, err)
	}
	return s.GetTechnician(ctx, orgID, id)
}

// DeleteTechnician unassigns the technician from all live repairs and then
// soft-deletes the technician. Repairs are never deleted by this path; they
// only lose the assignment.
func (s *Store) DeleteTechnician(ctx context.Context, orgID, id uint) (bool, error) {
	technician, err := s.GetTechnician(ctx, orgID, id)
	if err != nil || technician == nil {
		return false, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := scoped(tx.Model(&model.Repair{}), orgID).
			Where("technician_id = ?", id).
			Update("technician_id", nil).Error; err != nil {
			return err
		}

		return tx.Model(technician).Updates(trashValues(now)).Error
	})
	if err != nil {
		return false, fmt.Errorf("delete technician %d: %w", id, err)
	}
	return true, nil
}

// RestoreTechnician flips a trashed technician back to live. Repairs that
// were unassigned on delete stay unassigned.
func (s *Store) RestoreTechnician(ctx context.Context, orgID, id uint) (*model.Technician, error) {
	return restoreRow[model.Technician](ctx, s.db, orgID, id)
}
