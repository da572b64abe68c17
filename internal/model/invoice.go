package model

import (
	"time"
)

// Invoice status values
const (
	InvoiceStatusUnpaid    = "unpaid"
	InvoiceStatusPaid      = "paid"
	InvoiceStatusCancelled = "cancelled"
)

// ValidInvoiceStatus reports whether s is a known invoice status
func ValidInvoiceStatus(s string) bool {
	switch s {
	case InvoiceStatusUnpaid, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// Invoice represents a bill issued against a repair ticket
type Invoice struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"not null;uniqueIndex:idx_invoices_org_number"`
	RepairID       uint       `json:"repair_id" gorm:"index;not null"`
	InvoiceNumber  string     `json:"invoice_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_invoices_org_number"`
	Subtotal       float64    `json:"subtotal" gorm:"default:0"`
	Tax            float64    `json:"tax" gorm:"default:0"`
	Total          float64    `json:"total" gorm:"default:0"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'unpaid'"`
	PaidAt         *time.Time `json:"paid_at,omitempty"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
