package model

import (
	"time"
)

// Organization represents a tenant account. Every other table carries an
// OrganizationID pointing here; organizations themselves are not tenant-scoped.
type Organization struct {
	ID        uint      `json:"id" gorm:"primarykey"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Slug      string    `json:"slug" gorm:"type:varchar(100);unique;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
