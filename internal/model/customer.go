package model

import (
	"time"
)

// Customer represents a repair-shop customer
type Customer struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"index;not null;comment:'Tenant this customer belongs to'"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	Email          string     `json:"email" gorm:"type:varchar(255)"`
	Phone          string     `json:"phone" gorm:"type:varchar(50)"`
	Address        string     `json:"address" gorm:"type:text"`
	Notes          string     `json:"notes" gorm:"type:text"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
