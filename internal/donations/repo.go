package donations

import (
	"context"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for donation history rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, record *models.DonationRecord) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.DonationRecord, error)
	Update(ctx context.Context, record *models.DonationRecord) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.DonationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.DonationRecord, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a donation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, record *models.DonationRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.DonationRecord, error) {
	var record models.DonationRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *repository) Update(ctx context.Context, record *models.DonationRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.DonationRecord{})
	return res.RowsAffected, res.Error
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("donation_date DESC").
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.DonationRecord, error) {
	var records []models.DonationRecord
	if err := r.db.WithContext(ctx).
		Order("donation_date DESC").
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
