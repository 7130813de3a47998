package models

import (
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
)

// BloodRequest records outstanding need for a recipient. Requests never
// consume inventory themselves; fulfillment is an administrative status
// transition.
type BloodRequest struct {
	ID          uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	RecipientID uuid.UUID           `gorm:"column:recipient_id;type:uuid;not null;index"`
	BloodGroup  enums.BloodGroup    `gorm:"column:blood_group;type:text;not null"`
	UnitsNeeded int                 `gorm:"column:units_needed;not null"`
	Status      enums.RequestStatus `gorm:"column:status;type:text;not null;default:'pending'"`
	RequestDate time.Time           `gorm:"column:request_date;autoCreateTime"`
	UpdatedAt   time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

func (BloodRequest) TableName() string { return "blood_requests" }
