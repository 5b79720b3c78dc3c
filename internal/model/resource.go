package model

import (
	"time"

	"gorm.io/gorm"
)

// Resource is an inventory item such as fertilizer, seed, fuel or water
type Resource struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Ownership         `gorm:"embedded"`
	Name              string         `json:"name" gorm:"type:varchar(100);not null"`
	Category          string         `json:"category" gorm:"type:varchar(50);not null;index"`
	Quantity          float64        `json:"quantity" gorm:"type:decimal(10,2);default:0"`
	Unit              string         `json:"unit" gorm:"type:varchar(20)"`
	LowStockThreshold float64        `json:"low_stock_threshold" gorm:"type:decimal(10,2);default:0"`
	Supplier          string         `json:"supplier,omitempty" gorm:"type:varchar(100)"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeSave enforces single ownership
func (r *Resource) BeforeSave(tx *gorm.DB) error {
	return r.Ownership.Validate()
}

// IsLowStock reports whether the quantity has reached the alert threshold
func (r Resource) IsLowStock() bool {
	return r.Quantity <= r.LowStockThreshold
}

// ResourceUsage records consumption of a resource, optionally on a plant
type ResourceUsage struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	ResourceID   uint      `json:"resource_id" gorm:"index;not null"`
	QuantityUsed float64   `json:"quantity_used" gorm:"type:decimal(10,2)"`
	UsageDate    time.Time `json:"usage_date"`
	PlantID      *uint     `json:"plant_id,omitempty" gorm:"index"`
	FieldName    string    `json:"field_name,omitempty" gorm:"type:varchar(100)"`
	Notes        string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt    time.Time `json:"created_at"`
}
