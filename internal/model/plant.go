package model

import (
	"time"

	"gorm.io/gorm"
)

// Plant statuses
const (
	PlantActive    = "Active"
	PlantHarvested = "Harvested"
	PlantFailed    = "Failed"
)

// Plant is a tracked crop with its agronomic details
type Plant struct {
	ID                    uint           `json:"id" gorm:"primaryKey"`
	Ownership             `gorm:"embedded"`
	Name                  string         `json:"name" gorm:"type:varchar(100);not null"`
	PlantType             string         `json:"plant_type" gorm:"type:varchar(50);not null"`
	PlantedDate           time.Time      `json:"planted_date" gorm:"type:date"`
	ExpectedHarvestDate   *time.Time     `json:"expected_harvest_date,omitempty" gorm:"type:date"`
	GrowthStagePercent    int            `json:"growth_stage_percent"`
	NextTask              string         `json:"next_task,omitempty" gorm:"type:varchar(200)"`
	Notes                 string         `json:"notes,omitempty" gorm:"type:text"`
	Location              string         `json:"location,omitempty" gorm:"type:varchar(100)"`
	Status                string         `json:"status" gorm:"type:varchar(20);default:'Active';index"`
	SoilType              string         `json:"soil_type,omitempty" gorm:"type:varchar(50)"`
	SunlightExposure      string         `json:"sunlight_exposure,omitempty" gorm:"type:varchar(50)"`
	IsIndoor              bool           `json:"is_indoor"`
	AvgTemperatureCelsius *float64       `json:"avg_temperature_celsius,omitempty"`
	WateringFrequencyDays *int           `json:"watering_frequency_days,omitempty"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	DeletedAt             gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeSave enforces single ownership
func (p *Plant) BeforeSave(tx *gorm.DB) error {
	return p.Ownership.Validate()
}
