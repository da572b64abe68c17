package model

import (
	"time"
)

// Quote status values
const (
	QuoteStatusPending  = "pending"
	QuoteStatusApproved = "approved"
	QuoteStatusRejected = "rejected"
)

// ValidQuoteStatus reports whether s is a known quote status
func ValidQuoteStatus(s string) bool {
	switch s {
	case QuoteStatusPending, QuoteStatusApproved, QuoteStatusRejected:
		return true
	}
	return false
}

// Quote represents a price quote issued against a repair ticket
type Quote struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"not null;uniqueIndex:idx_quotes_org_number"`
	RepairID       uint       `json:"repair_id" gorm:"index;not null"`
	QuoteNumber    string     `json:"quote_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_quotes_org_number"`
	Subtotal       float64    `json:"subtotal" gorm:"default:0"`
	Tax            float64    `json:"tax" gorm:"default:0"`
	Total          float64    `json:"total" gorm:"default:0"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Notes          string     `json:"notes" gorm:"type:text"`
	ValidUntil     *time.Time `json:"valid_until,omitempty"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
