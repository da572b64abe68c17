package model

import (
	"time"
)

// Repair status values
const (
	RepairStatusIntake       = "intake"
	RepairStatusDiagnosed    = "diagnosed"
	RepairStatusInProgress   = "in_progress"
	RepairStatusWaitingParts = "waiting_parts"
	RepairStatusCompleted    = "completed"
	RepairStatusDelivered    = "delivered"
	RepairStatusCancelled    = "cancelled"
)

// Repair item types
const (
	RepairItemTypePart    = "part"
	RepairItemTypeService = "service"
)

// RepairStatuses lists every known repair status
var RepairStatuses = []string{
	RepairStatusIntake, RepairStatusDiagnosed, RepairStatusInProgress,
	RepairStatusWaitingParts, RepairStatusCompleted, RepairStatusDelivered,
	RepairStatusCancelled,
}

// ValidRepairStatus reports whether s is a known repair status
func ValidRepairStatus(s string) bool {
	switch s {
	case RepairStatusIntake, RepairStatusDiagnosed, RepairStatusInProgress,
		RepairStatusWaitingParts, RepairStatusCompleted, RepairStatusDelivered,
		RepairStatusCancelled:
		return true
	}
	return false
}

// Repair represents a repair ticket for a customer's device
type Repair struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"not null;uniqueIndex:idx_repairs_org_ticket"`
	TicketNumber   string     `json:"ticket_number" gorm:"type:varchar(50);not null;uniqueIndex:idx_repairs_org_ticket"`
	CustomerID     uint       `json:"customer_id" gorm:"index;not null"`
	DeviceID       uint       `json:"device_id" gorm:"index;not null"`
	TechnicianID   *uint      `json:"technician_id,omitempty" gorm:"index"`
	Status         string     `json:"status" gorm:"type:varchar(50);not null;default:'intake'"`
	PriorityLevel  int        `json:"priority_level" gorm:"default:3"`
	IssueDesc      string     `json:"issue_description" gorm:"type:text;column:issue_description"`
	DiagnosisNotes string     `json:"diagnosis_notes" gorm:"type:text"`
	EstCompletion  *time.Time `json:"estimated_completion,omitempty" gorm:"column:estimated_completion"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// RepairItem represents a part or labor line on a repair ticket
type RepairItem struct {
	ID              uint       `json:"id" gorm:"primarykey"`
	OrganizationID  uint       `json:"organization_id" gorm:"index;not null"`
	RepairID        uint       `json:"repair_id" gorm:"index;not null"`
	InventoryItemID *uint      `json:"inventory_item_id,omitempty" gorm:"index"`
	Description     string     `json:"description" gorm:"type:varchar(255);not null"`
	ItemType        string     `json:"item_type" gorm:"type:varchar(20);not null;default:'part'"`
	Quantity        int        `json:"quantity" gorm:"default:1"`
	UnitPrice       float64    `json:"unit_price" gorm:"default:0"`
	Deleted         bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
