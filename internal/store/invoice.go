package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListInvoices returns all live invoices of one organization
func (s *Store) ListInvoices(ctx context.Context, orgID uint) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&invoices).Error
	return invoices, err
}

// GetInvoicesByRepair returns the live invoices issued against one repair
func (s *Store) GetInvoicesByRepair(ctx context.Context, orgID, repairID uint) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("repair_id = ?", repairID).
		Order("id").
		Find(&invoices).Error
	return invoices, err
}

// GetInvoice returns one live invoice, or nil when not found or not owned
func (s *Store) GetInvoice(ctx context.Context, orgID, id uint) (*model.Invoice, error) {
	var invoice model.Invoice
	err := scoped(s.db.WithContext(ctx), orgID).First(&invoice, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

// CreateInvoice issues an invoice against a live repair of the same
// organization. The invoice number is allocated inside the insert transaction.
func (s *Store) CreateInvoice(ctx context.Context, orgID uint, invoice *model.Invoice) error {
	repair, err := s.GetRepair(ctx, orgID, invoice.RepairID)
	if err != nil {
		return err
	}
	if repair == nil {
		return fmt.Errorf("repair %d: %w", invoice.RepairID, ErrInvalidReference)
	}

	invoice.ID = 0
	invoice.OrganizationID = orgID
	invoice.Deleted = false
	invoice.DeletedAt = nil
	if invoice.Status == "" {
		invoice.Status = model.InvoiceStatusUnpaid
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, orgID, model.SequenceKindInvoice, "INV")
		if err != nil {
			return err
		}
		invoice.InvoiceNumber = number
		return tx.Create(invoice).Error
	})
}

// UpdateInvoice applies a partial update to a live invoice. The parent repair
// and the invoice number are fixed. Marking an invoice paid stamps paid_at.
func (s *Store) UpdateInvoice(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Invoice, error) {
	invoice, err := s.GetInvoice(ctx, orgID, id)
	if err != nil || invoice == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	delete(updates, "repair_id")
	delete(updates, "invoice_number")

	if status, ok := updates["status"].(string); ok {
		if status == model.InvoiceStatusPaid && invoice.Status != model.InvoiceStatusPaid {
			updates["paid_at"] = time.Now()
		}
	}
	if len(updates) == 0 {
		return invoice, nil
	}

	if err := s.db.WithContext(ctx).Model(invoice).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update invoice %d: %w", id, err)
	}
	return s.GetInvoice(ctx, orgID, id)
}

// DeleteInvoice soft-deletes a single invoice
func (s *Store) DeleteInvoice(ctx context.Context, orgID, id uint) (bool, error) {
	invoice, err := s.GetInvoice(ctx, orgID, id)
	if err != nil || invoice == nil {
		return false, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(invoice).Updates(trashValues(now)).Error; err != nil {
		return false, fmt.Errorf("delete invoice %d: %w", id, err)
	}
	return true, nil
}

// RestoreInvoice flips a trashed invoice back to live
func (s *Store) RestoreInvoice(ctx context.Context, orgID, id uint) (*model.Invoice, error) {
	return restoreRow[model.Invoice](ctx, s.db, orgID, id)
}
