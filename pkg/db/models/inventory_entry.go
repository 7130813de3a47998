package models

import (
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/enums"
)

// InventoryEntry tracks the available units for one blood group. The blood
// group itself is the primary key; the migration seeds exactly one row per
// canonical value and rows are never created or deleted afterwards.
type InventoryEntry struct {
	BloodGroup     enums.BloodGroup `gorm:"column:blood_group;type:text;primaryKey"`
	AvailableUnits int              `gorm:"column:available_units;not null;default:0"`
	LastUpdated    time.Time        `gorm:"column:last_updated;autoUpdateTime"`
}

func (InventoryEntry) TableName() string { return "blood_inventory" }
