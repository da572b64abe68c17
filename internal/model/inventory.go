package model

import (
	"time"
)

// InventoryItem represents a stocked part consumed by repairs.
// Deleting an item unlinks referencing repair items instead of cascading.
type InventoryItem struct {
	ID             uint       `json:"id" gorm:"primarykey"`
	OrganizationID uint       `json:"organization_id" gorm:"index;not null"`
	Name           string     `json:"name" gorm:"type:varchar(255);not null"`
	SKU            string     `json:"sku" gorm:"type:varchar(100);not null;index:idx_inventory_org_sku"`
	Description    string     `json:"description" gorm:"type:text"`
	Quantity       int        `json:"quantity" gorm:"default:0"`
	UnitCost       float64    `json:"unit_cost" gorm:"default:0"`
	UnitPrice      float64    `json:"unit_price" gorm:"default:0"`
	ReorderLevel   int        `json:"reorder_level" gorm:"default:0"`
	Deleted        bool       `json:"deleted" gorm:"index;default:false"`
	DeletedAt      *time.Time `json:"deleted_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
