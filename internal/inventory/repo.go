package inventory

import (
	"context"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"gorm.io/gorm"
)

// Repository manages persistence for the blood inventory ledger.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context) ([]models.InventoryEntry, error)
	GetByBloodGroup(ctx context.Context, group enums.BloodGroup) (*models.InventoryEntry, error)
	AdjustUnits(ctx context.Context, group enums.BloodGroup, delta int) (int64, error)
	SetUnits(ctx context.Context, group enums.BloodGroup, units int) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an inventory repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context) ([]models.InventoryEntry, error) {
	var entries []models.InventoryEntry
	if err := r.db.WithContext(ctx).
		Order("blood_group ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) GetByBloodGroup(ctx context.Context, group enums.BloodGroup) (*models.InventoryEntry, error) {
	var entry models.InventoryEntry
	if err := r.db.WithContext(ctx).First(&entry, "blood_group = ?", group).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// AdjustUnits applies the delta in a single guarded UPDATE so concurrent
// writers can never drive the count negative or lose increments. The
// returned count is zero when the row is missing or the guard rejected
// the change.
func (r *repository) AdjustUnits(ctx context.Context, group enums.BloodGroup, delta int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("blood_group = ? AND available_units + ? >= 0", group, delta).
		Updates(map[string]any{
			"available_units": gorm.Expr("available_units + ?", delta),
			"last_updated":    time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *repository) SetUnits(ctx context.Context, group enums.BloodGroup, units int) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Where("blood_group = ?", group).
		Updates(map[string]any{
			"available_units": units,
			"last_updated":    time.Now().UTC(),
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
