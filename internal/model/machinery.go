package model

import (
	"time"

	"gorm.io/gorm"
)

// Machinery is a piece of farm equipment with its service schedule
type Machinery struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Ownership       `gorm:"embedded"`
	Name            string         `json:"name" gorm:"type:varchar(100);not null"`
	Type            string         `json:"type" gorm:"type:varchar(50);not null"`
	PurchaseDate    *time.Time     `json:"purchase_date,omitempty" gorm:"type:date"`
	Status          string         `json:"status" gorm:"type:varchar(20)"`
	PurchasePrice   *float64       `json:"purchase_price,omitempty" gorm:"type:decimal(10,2)"`
	LastServiceDate *time.Time     `json:"last_service_date,omitempty" gorm:"type:date"`
	NextServiceDate *time.Time     `json:"next_service_date,omitempty" gorm:"type:date;index"`
	EngineHours     *float64       `json:"engine_hours,omitempty" gorm:"type:decimal(10,1)"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// TableName keeps the singular, uncountable table name
func (Machinery) TableName() string {
	return "machinery"
}

// BeforeSave enforces single ownership
func (m *Machinery) BeforeSave(tx *gorm.DB) error {
	return m.Ownership.Validate()
}

// MaintenanceHistory is one service event of a machine
type MaintenanceHistory struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	MachineryID uint      `json:"machinery_id" gorm:"index;not null"`
	ServiceDate time.Time `json:"service_date" gorm:"type:date"`
	ServiceType string    `json:"service_type" gorm:"type:varchar(100);not null"`
	Cost        *float64  `json:"cost,omitempty" gorm:"type:decimal(10,2)"`
	Notes       string    `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName keeps the singular, uncountable table name
func (MaintenanceHistory) TableName() string {
	return "maintenance_history"
}
