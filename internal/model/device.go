package model

import (
	"time"
)

// Device represents a customer-owned device that repairs are filed against
type Device struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"index;not null"`
	CustomerID     uint       `json:"customer_id" gorm:"index;not null"`
	DeviceType     string     `json:"device_type" gorm:"type:varchar(100);not null"`
	Brand          string     `json:"brand" gorm:"type:varchar(100)"`
	Model          string     `json:"model" gorm:"type:varchar(100)"`
	SerialNumber   string     `json:"serial_number" gorm:"type:varchar(100)"`
	Notes          string     `json:"notes" gorm:"type:text"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
