package model

import (
	"time"

	"gorm.io/gorm"
)

// Sensor is a field device reporting humidity and temperature
type Sensor struct {
	ID               uint           `json:"id" gorm:"primaryKey"`
	Ownership        `gorm:"embedded"`
	Name             string         `json:"name" gorm:"type:varchar(100);not null"`
	SensorType       string         `json:"sensor_type" gorm:"type:varchar(20);not null"`
	Location         string         `json:"location,omitempty" gorm:"type:varchar(100)"`
	InstallationDate time.Time      `json:"installation_date" gorm:"type:date"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeSave enforces single ownership
func (s *Sensor) BeforeSave(tx *gorm.DB) error {
	return s.Ownership.Validate()
}

// SensorReading is one sample reported by a sensor
type SensorReading struct {
	ID              uint64    `json:"id" gorm:"primaryKey"`
	SensorID        uint      `json:"sensor_id" gorm:"index;not null"`
	Timestamp       time.Time `json:"timestamp" gorm:"index"`
	HumidityPercent *float64  `json:"humidity_percent,omitempty" gorm:"type:decimal(5,2)"`
	TemperatureC    *float64  `json:"temperature_c,omitempty" gorm:"type:decimal(5,2)"`
}
