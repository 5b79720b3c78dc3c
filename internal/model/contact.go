package model

import "time"

// ContactForm is a message sent through the public contact form
type ContactForm struct {
	ID           uint       `json:"id" gorm:"primaryKey"`
	FullName     string     `json:"full_name" gorm:"type:varchar(100);not null"`
	Email        string     `json:"email" gorm:"type:varchar(100);index;not null"`
	Message      string     `json:"message" gorm:"type:varchar(2000);not null"`
	IsReplied    bool       `json:"is_replied" gorm:"default:false"`
	ReplyMessage string     `json:"reply_message,omitempty" gorm:"type:text"`
	RepliedDate  *time.Time `json:"replied_date,omitempty"`
	RepliedBy    string     `json:"replied_by,omitempty" gorm:"type:varchar(50)"`
	CreatedAt    time.Time  `json:"created_at"`
}
