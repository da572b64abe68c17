package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListCustomers returns all live customers of one organization
func (s *Store) ListCustomers(ctx context.Context, orgID uint) ([]model.Customer, error) {
	var customers []model.Customer
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&customers).Error
	return customers, err
}

// GetCustomer returns one live customer, or nil when the row doesn't exist,
// is trashed, or belongs to another organization.
func (s *Store) GetCustomer(ctx context.Context, orgID, id uint) (*model.Customer, error) {
	var customer model.Customer
	err := scoped(s.db.WithContext(ctx), orgID).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// CreateCustomer inserts a customer under the acting organization. The
// organization id is always injected here, never taken from the payload.
func (s *Store) CreateCustomer(ctx context.Context, orgID uint, customer *model.Customer) error {
	customer.ID = 0
	customer.OrganizationID = orgID
	customer.Deleted = false
	customer.DeletedAt = nil
	return s.db.WithContext(ctx).Create(customer).Error
}

// UpdateCustomer applies a partial update to a live customer. Returns nil
// when the customer is not found or not owned by the organization.
func (s *Store) UpdateCustomer(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Customer, error) {
	customer, err := s.GetCustomer(ctx, orgID, id)
	if err != nil || customer == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	if len(updates) == 0 {
		return customer, nil
	}

	if err := s.db.WithContext(ctx).Model(customer).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update customer %d: %w", id, err)
	}
	return s.GetCustomer(ctx, orgID, id)
}

// DeleteCustomer soft-deletes a customer and its whole dependent subtree:
// for every repair its items, quotes and invoices go first, then the
// repairs, then the devices, then the customer itself. The depth-first
// order means an interrupted cascade never leaves a live child under a
// trashed parent. Returns false when the customer is not found or not owned.
func (s *Store) DeleteCustomer(ctx context.Context, orgID, id uint) (bool, error) {
	customer, err := s.GetCustomer(ctx, orgID, id)
	if err != nil || customer == nil {
		return false, err
	}

	now := time.Now()
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var deviceIDs []uint
		if err := scoped(tx.Model(&model.Device{}), orgID).
			Where("customer_id = ?", id).
			Pluck("id", &deviceIDs).Error; err != nil {
			return err
		}

		// A device transferred in from another customer can still carry
		// repairs filed under the previous owner, so repairs are collected
		// by either column.
		repairQuery := scoped(tx.Model(&model.Repair{}), orgID).
			Where("customer_id = ?", id)
		if len(deviceIDs) > 0 {
			repairQuery = scoped(tx.Model(&model.Repair{}), orgID).
				Where("customer_id = ? OR device_id IN ?", id, deviceIDs)
		}
		var repairIDs []uint
		if err := repairQuery.Pluck("id", &repairIDs).Error; err != nil {
			return err
		}
		if err := cascadeRepairSubtree(tx, orgID, repairIDs, now); err != nil {
			return err
		}

		if err := scoped(tx.Model(&model.Device{}), orgID).
			Where("customer_id = ?", id).
			Updates(trashValues(now)).Error; err != nil {
			return err
		}

		return tx.Model(customer).Updates(trashValues(now)).Error
	})
	if err != nil {
		return false, fmt.Errorf("delete customer %d: %w", id, err)
	}
	return true, nil
}

// RestoreCustomer flips a trashed customer back to live. Dependents stay
// trashed; restoring the subtree is an explicit per-entity action.
func (s *Store) RestoreCustomer(ctx context.Context, orgID, id uint) (*model.Customer, error) {
	return restoreRow[model.Customer](ctx, s.db, orgID, id)
}
