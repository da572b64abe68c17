package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListDevices returns all live devices of one organization
func (s *Store) ListDevices(ctx context.Context, orgID uint) ([]model.Device, error) {
	var devices []model.Device
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&devices).Error
	return devices, err
}

// GetDevicesByCustomer returns the live devices registered to one customer
func (s *Store) GetDevicesByCustomer(ctx context.Context, orgID, customerID uint) ([]model.Device, error) {
	var devices []model.Device
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&devices).Error
	return devices, err
}

// GetDevice returns one live device, or nil when not found or not owned
func (s *Store) GetDevice(ctx context.Context, orgID, id uint) (*model.Device, error) {
	var device model.Device
	err := scoped(s.db.WithContext(ctx), orgID).First(&device, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// CreateDevice registers a device under a customer of the same organization.
// Returns ErrInvalidReference when the customer doesn't resolve to a live
// row in this organization, which blocks cross-tenant linkage.
func (s *Store) CreateDevice(ctx context.Context, orgID uint, device *model.Device) error {
	customer, err := s.GetCustomer(ctx, orgID, device.CustomerID)
	if err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("customer %d: %w", device.CustomerID, ErrInvalidReference)
	}

	device.ID = 0
	device.OrganizationID = orgID
	device.Deleted = false
	device.DeletedAt = nil
	return s.db.WithContext(ctx).Create(device).Error
}

// UpdateDevice applies a partial update to a live device. A customer_id
// change is re-validated against the organization.
func (s *Store) UpdateDevice(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Device, error) {
	device, err := s.GetDevice(ctx, orgID, id)
	if err != nil || device == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	if raw, ok := updates["customer_id"]; ok {
		customerID, ok := toUint(raw)
		if !ok {
			return nil, fmt.Errorf("customer_id: %w", ErrInvalidReference)
		}
		customer, err := s.GetCustomer(ctx, orgID, customerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, fmt.Errorf("customer %d: %w", customerID, ErrInvalidReference)
		}
	}
	if len(updates) == 0 {
		return device, nil
	}

	if err := s.db.WithContext(ctx).Model(device).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update device %d: %w", id, err)
	}
	return s.GetDevice(ctx, orgID, id)
}

// DeleteDevice soft-deletes a device and cascades through its repairs and
// their items, quotes and invoices, children first.
func (s *Store) DeleteDevice(ctx context.Context, orgID, id uint) (bool, error) {
	device, err := s.GetDevice(ctx, orgID, id)
	if err != nil || device == nil {
		return false, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var repairIDs []uint
		if err := scoped(tx.Model(&model.Repair{}), orgID).
			Where("device_id = ?", id).
			Pluck("id", &repairIDs).Error; err != nil {
			return err
		}
		if err := cascadeRepairSubtree(tx, orgID, repairIDs, now); err != nil {
			return err
		}

		return tx.Model(device).Updates(trashValues(now)).Error
	})
	if err != nil {
		return false, fmt.Errorf("delete device %d: %w", id, err)
	}
	return true, nil
}

// RestoreDevice flips a trashed device back to live without touching its
// repairs or its customer.
func (s *Store) RestoreDevice(ctx context.Context, orgID, id uint) (*model.Device, error) {
	return restoreRow[model.Device](ctx, s.db, orgID, id)
}
