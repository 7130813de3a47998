package donors

import (
	"context"
	"strings"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/danielortega/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchFilters narrows the donor directory query. Text filters match as
// case-insensitive substrings, the rest are exact.
type SearchFilters struct {
	Query       string
	BloodGroup  *enums.BloodGroup
	City        string
	IsAvailable *bool
}

// SearchQuery bundles filters with cursor pagination inputs.
type SearchQuery struct {
	Filters    SearchFilters
	Pagination pagination.Params
}

// SearchResult is one page of donors plus the cursor for the next page.
type SearchResult struct {
	Donors     []models.Donor
	NextCursor string
}

// Repository manages persistence for donor rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donor *models.Donor) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donor, error)
	FindByEmail(ctx context.Context, email string) (*models.Donor, error)
	Update(ctx context.Context, donor *models.Donor) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	HasDonations(ctx context.Context, id uuid.UUID) (bool, error)
	UpdateLastDonationDate(ctx context.Context, id uuid.UUID, date time.Time) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a donor repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Create(donor).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).First(&donor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Donor, error) {
	var donor models.Donor
	if err := r.db.WithContext(ctx).First(&donor, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, err
	}
	return &donor, nil
}

func (r *repository) Update(ctx context.Context, donor *models.Donor) error {
	return r.db.WithContext(ctx).Save(donor).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Donor{})
	return res.RowsAffected, res.Error
}

func (r *repository) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Donor{})

	filter := query.Filters
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", pattern, pattern, "%"+search+"%")
	}
	if filter.BloodGroup != nil {
		qb = qb.Where("blood_group = ?", *filter.BloodGroup)
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		qb = qb.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}
	if filter.IsAvailable != nil {
		qb = qb.Where("is_available = ?", *filter.IsAvailable)
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Donor
	if err := qb.
		Order("created_at DESC").
		Order("id DESC").
		Limit(limitWithBuffer).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		last := rows[len(rows)-1]
		nextCursor = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &SearchResult{Donors: rows, NextCursor: nextCursor}, nil
}

func (r *repository) HasDonations(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DonationRecord{}).
		Where("donor_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repository) UpdateLastDonationDate(ctx context.Context, id uuid.UUID, date time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Donor{}).
		Where("id = ?", id).
		Update("last_donation_date", date).Error
}
