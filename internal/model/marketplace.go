package model

import (
	"time"

	"gorm.io/gorm"
)

// Listing statuses
const (
	ListingActive      = "Active"
	ListingSold        = "Sold"
	ListingExpired     = "Expired"
	ListingDeactivated = "Deactivated"
)

// Listing types
const (
	ListingTypeSale       = "Sale"
	ListingTypeRent       = "Rent"
	ListingTypeSaleOrRent = "Sale or Rent"
)

// MarketplaceListing offers equipment or produce for sale or rent
type MarketplaceListing struct {
	ID                uint           `json:"id" gorm:"primaryKey"`
	Ownership         `gorm:"embedded"`
	ItemName          string         `json:"item_name" gorm:"type:varchar(100);not null"`
	Category          string         `json:"category" gorm:"type:varchar(50);not null;index"`
	ConditionStatus   string         `json:"condition_status" gorm:"type:varchar(20);not null"`
	Description       string         `json:"description,omitempty" gorm:"type:text"`
	SalePrice         *float64       `json:"sale_price,omitempty" gorm:"type:decimal(10,2)"`
	RentalPricePerDay *float64       `json:"rental_price_per_day,omitempty" gorm:"type:decimal(10,2)"`
	SellerName        string         `json:"seller_name" gorm:"type:varchar(100);not null"`
	SellerPhone       string         `json:"seller_phone" gorm:"type:varchar(20);not null"`
	ImageURL          string         `json:"image_url,omitempty" gorm:"type:varchar(255)"`
	ListingType       string         `json:"listing_type" gorm:"type:varchar(20);not null"`
	ListingStatus     string         `json:"listing_status" gorm:"type:varchar(20);default:'Active';index"`
	EngineHours       *float64       `json:"engine_hours,omitempty" gorm:"type:decimal(10,1)"`
	MachineryID       *uint          `json:"machinery_id,omitempty" gorm:"index"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	DeletedAt         gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Machinery *Machinery `json:"machinery,omitempty" gorm:"foreignKey:MachineryID"`
}

// BeforeSave enforces single ownership
func (l *MarketplaceListing) BeforeSave(tx *gorm.DB) error {
	return l.Ownership.Validate()
}
