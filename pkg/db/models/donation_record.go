package models

import (
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// DonationRecord is one donor's contribution of units on a date. Inventory
// is incremented when the record is created; later edits or deletes leave
// the ledger untouched.
type DonationRecord struct {
	ID           uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DonorID      uuid.UUID        `gorm:"column:donor_id;type:uuid;not null;index"`
	DonationDate time.Time        `gorm:"column:donation_date;type:date;not null"`
	BloodGroup   enums.BloodGroup `gorm:"column:blood_group;type:text;not null"`
	UnitsDonated int              `gorm:"column:units_donated;not null"`
	Notes        string           `gorm:"column:notes"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
}

func (DonationRecord) TableName() string { return "donation_history" }
