package model

import (
	"time"
)

// Number sequence kinds
const (
	SequenceKindTicket  = "ticket"
	SequenceKindQuote   = "quote"
	SequenceKindInvoice = "invoice"
)

// NumberSequence backs per-organization generation of human-readable
// ticket/quote/invoice numbers. One row per (organization, kind).
type NumberSequence struct {
	ID             uint      `json:"id" gorm:"primarykey"`
	OrganizationID uint      `json:"organization_id" gorm:"not null;uniqueIndex:idx_sequences_org_kind"`
	Kind           string    `json:"kind" gorm:"type:varchar(20);not null;uniqueIndex:idx_sequences_org_kind"`
	NextValue      int       `json:"next_value" gorm:"not null;default:1001"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
