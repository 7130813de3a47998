package models

import (
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// Donor is a registered blood donor. LastDonationDate stays nil until the
// first recorded donation and is refreshed by the donation recorder.
type Donor struct {
	ID               uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name             string           `gorm:"column:name;not null"`
	Email            string           `gorm:"column:email;not null"`
	Phone            string           `gorm:"column:phone;not null"`
	BloodGroup       enums.BloodGroup `gorm:"column:blood_group;type:text;not null"`
	LastDonationDate *time.Time       `gorm:"column:last_donation_date;type:date"`
	Address          string           `gorm:"column:address"`
	City             string           `gorm:"column:city"`
	State            string           `gorm:"column:state"`
	ZipCode          string           `gorm:"column:zip_code"`
	IsAvailable      bool             `gorm:"column:is_available;not null;default:true"`
	CreatedAt        time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Donor) TableName() string { return "donors" }
