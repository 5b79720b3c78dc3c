package model

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// Role names a user's single application role
type Role = string

const (
	RoleSystemAdmin Role = "SystemAdmin"
	RoleITSupport   Role = "ITSupport"
	RoleBoss        Role = "Boss"
	RoleManager     Role = "Manager"
	RoleEmployee    Role = "Employee"
	RoleUser        Role = "User"
)

// Roles lists every role in the order they are reported
var Roles = []Role{RoleSystemAdmin, RoleITSupport, RoleBoss, RoleManager, RoleEmployee, RoleUser}

// DefaultLeaveDays is the yearly leave allowance given to new users
const DefaultLeaveDays = 20

// User represents an account together with its employment details
type User struct {
	ID             uint           `json:"id" gorm:"primaryKey"`
	Email          string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	Username       string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Password       string         `json:"-" gorm:"type:varchar(255)"`
	FirstName      string         `json:"first_name" gorm:"type:varchar(100)"`
	LastName       string         `json:"last_name" gorm:"type:varchar(100)"`
	Role           Role           `json:"role" gorm:"type:varchar(20);not null;default:'User';index"`
	CompanyID      *uint          `json:"company_id,omitempty" gorm:"index"`
	Salary         float64        `json:"salary" gorm:"type:decimal(18,2);default:0"`
	IsSalaryPaid   bool           `json:"is_salary_paid" gorm:"default:false"` // paid this month
	LeaveDaysTotal int            `json:"leave_days_total" gorm:"default:20"`
	LeaveDaysUsed  int            `json:"leave_days_used" gorm:"default:0"`
	Locked         bool           `json:"locked" gorm:"default:false"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Company *Company `json:"company,omitempty" gorm:"foreignKey:CompanyID"`
}

// NormalizeEmail is the stored and compared form of an email address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FullName joins the first and last name, falling back to the email
func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.LastName != "":
		return u.LastName
	}
	return u.Email
}

// LeaveDaysRemaining never reports a negative balance
func (u User) LeaveDaysRemaining() int {
	if u.LeaveDaysUsed >= u.LeaveDaysTotal {
		return 0
	}
	return u.LeaveDaysTotal - u.LeaveDaysUsed
}
