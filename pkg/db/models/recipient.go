package models

import (
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// Recipient is a registered blood recipient, referenced by blood requests.
type Recipient struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string           `gorm:"column:name;not null"`
	Email        string           `gorm:"column:email;not null"`
	Phone        string           `gorm:"column:phone;not null"`
	BloodGroup   enums.BloodGroup `gorm:"column:blood_group;type:text;not null"`
	Reason       string           `gorm:"column:reason"`
	HospitalName string           `gorm:"column:hospital_name"`
	City         string           `gorm:"column:city"`
	State        string           `gorm:"column:state"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Recipient) TableName() string { return "recipients" }
