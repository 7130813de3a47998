package recipients

import (
	"context"
	"strings"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/danielortega/bloodbank-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SearchFilters narrows the recipient directory query.
type SearchFilters struct {
	Query      string
	BloodGroup *enums.BloodGroup
	Hospital   string
	City       string
}

// SearchQuery bundles filters with cursor pagination inputs.
type SearchQuery struct {
	Filters    SearchFilters
	Pagination pagination.Params
}

// SearchResult is one page of recipients plus the cursor for the next page.
type SearchResult struct {
	Recipients []models.Recipient
	NextCursor string
}

// Repository manages persistence for recipient rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, recipient *models.Recipient) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error)
	FindByEmail(ctx context.Context, email string) (*models.Recipient, error)
	Update(ctx context.Context, recipient *models.Recipient) error
	Delete(ctx context.Context, id uuid.UUID) (int64, error)
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
	HasRequests(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a recipient repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, recipient *models.Recipient) error {
	return r.db.WithContext(ctx).Create(recipient).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error) {
	var recipient models.Recipient
	if err := r.db.WithContext(ctx).First(&recipient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.Recipient, error) {
	var recipient models.Recipient
	if err := r.db.WithContext(ctx).First(&recipient, "LOWER(email) = LOWER(?)", email).Error; err != nil {
		return nil, err
	}
	return &recipient, nil
}

func (r *repository) Update(ctx context.Context, recipient *models.Recipient) error {
	return r.db.WithContext(ctx).Save(recipient).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Recipient{})
	return res.RowsAffected, res.Error
}

func (r *repository) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	pageSize := pagination.NormalizeLimit(query.Pagination.Limit)
	limitWithBuffer := pagination.LimitWithBuffer(query.Pagination.Limit)

	cursor, err := pagination.ParseCursor(query.Pagination.Cursor)
	if err != nil {
		return nil, err
	}

	qb := r.db.WithContext(ctx).Model(&models.Recipient{})

	filter := query.Filters
	if search := strings.TrimSpace(filter.Query); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ?)", pattern, pattern, "%"+search+"%")
	}
	if filter.BloodGroup != nil {
		qb = qb.Where("blood_group = ?", *filter.BloodGroup)
	}
	if hospital := strings.TrimSpace(filter.Hospital); hospital != "" {
		qb = qb.Where("LOWER(hospital_name) LIKE ?", "%"+strings.ToLower(hospital)+"%")
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		qb = qb.Where("LOWER(city) LIKE ?", "%"+strings.ToLower(city)+"%")
	}

	if cursor != nil {
		qb = qb.Where("(created_at < ?) OR (created_at = ? AND id < ?)", cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Recipient
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

	return &SearchResult{Recipients: rows, NextCursor: nextCursor}, nil
}

func (r *repository) HasRequests(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("recipient_id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
