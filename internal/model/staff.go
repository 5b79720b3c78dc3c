package model

import "time"

// TaskAssignment is a unit of work handed to a member of staff
type TaskAssignment struct {
	ID                    uint       `json:"id" gorm:"primaryKey"`
	Description           string     `json:"description" gorm:"type:text;not null"`
	AssignedToUserID      uint       `json:"assigned_to_user_id" gorm:"index;not null"`
	CompanyID             *uint      `json:"company_id,omitempty" gorm:"index"`
	AssignedDate          time.Time  `json:"assigned_date"`
	CompletedDate         *time.Time `json:"completed_date,omitempty"`
	IsCompletedByEmployee bool       `json:"is_completed_by_employee"`
	IsApprovedByBoss      bool       `json:"is_approved_by_boss"`

	// Relations
	AssignedToUser *User `json:"assigned_to_user,omitempty" gorm:"foreignKey:AssignedToUserID"`
}

// LeaveRecord is a single day of leave taken by a user
type LeaveRecord struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"index;not null"`
	LeaveDate  time.Time `json:"leave_date" gorm:"type:date;index"`
	Reason     string    `json:"reason" gorm:"type:varchar(200)"`
	IsApproved bool      `json:"is_approved" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
}
