package model

import (
	"time"

	"gorm.io/gorm"
)

// Company is the tenant boundary: staff and company-owned records hang off it
type Company struct {
	ID              uint           `json:"id" gorm:"primaryKey"`
	Name            string         `json:"name" gorm:"type:varchar(100);not null"`
	LogoPath        string         `json:"logo_path,omitempty" gorm:"type:varchar(255)"`
	CreatedByUserID uint           `json:"created_by_user_id" gorm:"index;not null"` // the Boss who created it
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `json:"-" gorm:"index"`
}

// CompanyInvitation is a pending offer for a user to join a company
type CompanyInvitation struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Email     string    `json:"email" gorm:"type:varchar(100);index;not null"`
	CompanyID uint      `json:"company_id" gorm:"index;not null"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null"` // Manager or Employee
	Token     string    `json:"token" gorm:"type:varchar(64);uniqueIndex;not null"`
	Salary    float64   `json:"salary" gorm:"type:decimal(18,2);default:0"`
	LeaveDays int       `json:"leave_days" gorm:"not null"`
	IsUsed    bool      `json:"is_used" gorm:"default:false;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}
