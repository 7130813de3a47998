package requests

import (
	"context"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListFilters narrows the blood request listing.
type ListFilters struct {
	Status      *enums.RequestStatus
	BloodGroup  *enums.BloodGroup
	RecipientID *uuid.UUID
}

// Repository manages persistence for blood request rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, request *models.BloodRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	Update(ctx context.Context, request *models.BloodRequest) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	List(ctx context.Context, filters ListFilters) ([]models.BloodRequest, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a blood request repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Create(request).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	var request models.BloodRequest
	if err := r.db.WithContext(ctx).First(&request, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *repository) Update(ctx context.Context, request *models.BloodRequest) error {
	return r.db.WithContext(ctx).Save(request).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.BloodRequest{})
	return res.RowsAffected, res.Error
}

func (r *repository) List(ctx context.Context, filters ListFilters) ([]models.BloodRequest, error) {
	qb := r.db.WithContext(ctx).Model(&models.BloodRequest{})
	if filters.Status != nil {
		qb = qb.Where("status = ?", *filters.Status)
	}
	if filters.BloodGroup != nil {
		qb = qb.Where("blood_group = ?", *filters.BloodGroup)
	}
	if filters.RecipientID != nil {
		qb = qb.Where("recipient_id = ?", *filters.RecipientID)
	}

	var rows []models.BloodRequest
	if err := qb.Order("request_date DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
