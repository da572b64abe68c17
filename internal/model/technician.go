package model

import (
	"time"
)

// Technician represents a staff member repairs can be assigned to.
// Deleting a technician unlinks their repairs instead of cascading.
type Technician struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"index;not null"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	Email          string     `json:"email" gorm:"type:varchar(255)"`
	Phone          string     `json:"phone" gorm:"type:varchar(50)"`
	Role           string     `json:"role" gorm:"type:varchar(100)"`
	IsActive       bool       `json:"is_active" gorm:"default:true"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
