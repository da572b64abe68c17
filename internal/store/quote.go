package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"repairshop-service/internal/model"
)

// ListQuotes returns all live quotes of one organization
func (s *Store) ListQuotes(ctx context.Context, orgID uint) ([]model.Quote, error) {
	var quotes []model.Quote
	err := scoped(s.db.WithContext(ctx), orgID).Order("id").Find(&quotes).Error
	return quotes, err
}

// GetQuotesByRepair returns the live quotes issued against one repair
func (s *Store) GetQuotesByRepair(ctx context.Context, orgID, repairID uint) ([]model.Quote, error) {
	var quotes []model.Quote
	err := scoped(s.db.WithContext(ctx), orgID).
		Where("repair_id = ?", repairID).
		Order("id").
		Find(&quotes).Error
	return quotes, err
}

// GetQuote returns one live quote, or nil when not found or not owned
func (s *Store) GetQuote(ctx context.Context, orgID, id uint) (*model.Quote, error) {
	var quote model.Quote
	err := scoped(s.db.WithContext(ctx), orgID).First(&quote, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

// CreateQuote issues a quote against a live repair of the same organization.
// The quote number is allocated inside the insert transaction.
func (s *Store) CreateQuote(ctx context.Context, orgID uint, quote *model.Quote) error {
	repair, err := s.GetRepair(ctx, orgID, quote.RepairID)
	if err != nil {
		return err
	}
	if repair == nil {
		return fmt.Errorf("repair %d: %w", quote.RepairID, ErrInvalidReference)
	}

	quote.ID = 0
	quote.OrganizationID = orgID
	quote.Deleted = false
	quote.DeletedAt = nil
	if quote.Status == "" {
		quote.Status = model.QuoteStatusPending
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := nextNumber(tx, orgID, model.SequenceKindQuote, "QT")
		if err != nil {
			return err
		}
		quote.QuoteNumber = number
		return tx.Create(quote).Error
	})
}

// UpdateQuote applies a partial update to a live quote. The parent repair and
// the quote number are fixed.
func (s *Store) UpdateQuote(ctx context.Context, orgID, id uint, updates map[string]interface{}) (*model.Quote, error) {
	quote, err := s.GetQuote(ctx, orgID, id)
	if err != nil || quote == nil {
		return nil, err
	}

	sanitizeUpdates(updates)
	delete(updates, "repair_id")
	delete(updates, "quote_number")
	if len(updates) == 0 {
		return quote, nil
	}

	if err := s.db.WithContext(ctx).Model(quote).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("update quote %d: %w", id, err)
	}
	return s.GetQuote(ctx, orgID, id)
}

// DeleteQuote soft-deletes a single quote
func (s *Store) DeleteQuote(ctx context.Context, orgID, id uint) (bool, error) {
	quote, err := s.GetQuote(ctx, orgID, id)
	if err != nil || quote == nil {
		return false, err
	}

	now := time.Now()
	if err := s.db.WithContext(ctx).Model(quote).Updates(trashValues(now)).Error; err != nil {
		return false, fmt.Errorf("delete quote %d: %w", id, err)
	}
	return true, nil
}

// RestoreQuote flips a trashed quote back to live
func (s *Store) RestoreQuote(ctx context.Context, orgID, id uint) (*model.Quote, error) {
	return restoreRow[model.Quote](ctx, s.db, orgID, id)
}
