package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListRepairs returns all live repairs of one organization
func (s *Store) ListRepairs(ctx context.Context, orgID uint) ([]model.Repair, error) {
	var repairs []model.Repair
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&repairs).Error
	return repairs, err
}

// ListRepairsByStatus returns the organization's live repairs in one status
func (s *Store) ListRepairsByStatus(ctx context.Context, orgID uint, status string) ([]model.Repair, error) {
	var repairs []model.Repair
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("status = ?", status).
		Order("id").
		Find(&repairs).Error
	return repairs, err
}

// GetRepairsByCustomer returns the live repairs filed by one customer
func (s *Store) GetRepairsByCustomer(ctx context.Context, orgID, customerID uint) ([]model.Repair, error) {
	var repairs []model.Repair
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&repairs).Error
	return repairs, err
}

// GetRepairsByTechnician returns the live repairs assigned to one technician
func (s *Store) GetRepairsByTechnician(ctx context.Context, orgID, technicianID uint) ([]model.Repair, error) {
	var repairs []model.Repair
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("technician_id = ?", technicianID).
		Order("id").
		Find(&repairs).Error
	return repairs, err
}

// CountRepairsByStatus returns live repair counts grouped by status across
// all organizations. Feeds the open-repairs gauge.
func (s *Store) CountRepairsByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		N      int64
	}
	var rows []statusCount
	err := s.db.WithContext(ctx).Model(&model.Repair{}).
		Select("status, count(*) as n").
		Where("deleted = ?", false).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}

// GetRepair returns one live repair, or nil when not found or not owned
func (s *Store) GetRepair(ctx context.Context, orgID, id uint) (*model.Repair, error) {
	var repair model.Repair
	err := scoped(s.db.WithContext(ctx), orgID).First(&repair, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &repair, nil
}

// CreateRepair opens a repair ticket. Customer and device must be live rows
// of the same organization and the device must belong to that customer; a
// technician assignment, when present, is validated the same way. The ticket
// number is allocated inside the insert transaction so failed creates don't
// burn numbers.
func (s *Store) CreateRepair(ctx context.Context, orgID uint, repair *model.Repair) error {
	customer, err := s.GetCustomer(ctx, orgID, repair.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("customer %d: %w", repair.CustomerID, ErrInvalidReference)
	}

	device, err := s.GetDevice(ctx, orgID, repair.DeviceID)
	if err != nil {
		return err
	}
	if device == nil || device.CustomerID != repair.CustomerID {
		return fmt.Errorf("device %d: %w", repair.DeviceID, ErrInvalidReference)
	}

	if repair.TechnicianID != nil {
		technician, err := s.GetTechnician(ctx, orgID, *repair.TechnicianID)
		if err != nil {
			return err
		}
		if technician == nil {
			return fmt.Errorf("technician %d: %w", *repair.TechnicianID, ErrInvalidReference)
		}
	}

	repair.ID = 0
	repair.OrganizationID = orgID
	repair.Deleted = false
	repair.DeletedAt = nil
	if repair.Status == "" {
		repair.Status = model.RepairStatusIntake
	}
	if repair.PriorityLevel == 0 {
		repair.PriorityLevel = 3
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, orgID, model.SequenceKindTicket, "RT")
		if err != nil {
			return err
		}
		repair.TicketNumber = number
		return tx.Create(repair).Error
	})
}

// UpdateRepair applies a partial update to a live repair. Technician
// reassignments are validated within the organization; a null technician_id
// unassigns. The ticket number is not updatable.
func (s *Store) UpdateRepair(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Repair, error) {
	repair, err := s.GetRepair(ctx, orgID, id)
	if err != nil || repair == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	delete(updates, "ticket_number")

	if raw, ok := updates["technician_id"]; ok && raw != nil {
		technicianID, ok := toUint(raw)
		if !ok {
			return nil, fmt.Errorf("technician_id: %w", ErrInvalidReference)
		}
		technician, err := s.GetTechnician(ctx, orgID, technicianID)
		if err != nil {
			return nil, err
		}
		if technician == nil {
			return nil, fmt.Errorf("technician %d: %w", technicianID, ErrInvalidReference)
		}
	}
	if len(updates) == 0 {
		return repair, nil
	}

	if err := s.db.WithContext(ctx).Model(repair).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update repair %d: %w", id, err)
	}

	// Re-read so nil assignments and zero values are reflected
	return s.GetRepair(ctx, orgID, id)
}

// DeleteRepair soft-deletes a repair and its items, quotes and invoices,
// children first. Returns false when the repair is not found or not owned.
func (s *Store) DeleteRepair(ctx context.Context, orgID, id uint) (bool, error) {
	repair, err := s.GetRepair(ctx, orgID, id)
	if err != nil || repair == nil {
		return false, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return cascadeRepairSubtree(tx, orgID, []uint{id}, now)
	})
	if err != nil {
		return false, fmt.Errorf("delete repair %d: %w", id, err)
	}
	return true, nil
}

// RestoreRepair flips a trashed repair back to live. Its items, quotes and
// invoices stay trashed, as do its device and customer.
func (s *Store) RestoreRepair(ctx context.Context, orgID, id uint) (*model.Repair, error) {
	return restoreRow[model.Repair](ctx, s.db, orgID, id)
}
