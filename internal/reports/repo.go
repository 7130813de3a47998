package reports

import (
	"context"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UrgentNeed is one blood group's aggregate open demand.
type UrgentNeed struct {
	BloodGroup enums.BloodGroup `json:"blood_group"`
	TotalUnits int              `json:"total_units"`
	Requests   int              `json:"requests"`
}

// DonationActivity is a donation row joined with its donor for display.
type DonationActivity struct {
	ID           uuid.UUID        `json:"id"`
	DonorID      uuid.UUID        `json:"donor_id"`
	DonorName    string           `json:"donor_name"`
	BloodGroup   enums.BloodGroup `json:"blood_group"`
	DonationDate time.Time        `json:"donation_date"`
	UnitsDonated int              `json:"units_donated"`
}

// Summary carries the dashboard headline counts.
type Summary struct {
	TotalDonors     int64 `json:"total_donors"`
	TotalRecipients int64 `json:"total_recipients"`
	OpenRequests    int64 `json:"open_requests"`
	TotalUnits      int64 `json:"total_units"`
}

// Repository runs the aggregate reporting queries.
type Repository interface {
	TopUrgentNeeds(ctx context.Context, limit int) ([]UrgentNeed, error)
	RecentDonors(ctx context.Context, limit int) ([]models.Donor, error)
	RecentDonations(ctx context.Context, limit int) ([]DonationActivity, error)
	Summary(ctx context.Context) (*Summary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a reporting repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// TopUrgentNeeds sums open demand per blood group. Cancelled requests are
// excluded; ties on total units break alphabetically by blood group.
func (r *repository) TopUrgentNeeds(ctx context.Context, limit int) ([]UrgentNeed, error) {
	var rows []UrgentNeed
	err := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Select("blood_group, SUM(units_needed) AS total_units, COUNT(*) AS requests").
		Where("status <> ?", enums.RequestStatusCancelled).
		Group("blood_group").
		Order("total_units DESC").
		Order("blood_group ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// RecentDonors lists donors who have donated, most recent first.
func (r *repository) RecentDonors(ctx context.Context, limit int) ([]models.Donor, error) {
	var rows []models.Donor
	err := r.db.WithContext(ctx).
		Where("last_donation_date IS NOT NULL").
		Order("last_donation_date DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) RecentDonations(ctx context.Context, limit int) ([]DonationActivity, error) {
	var rows []DonationActivity
	err := r.db.WithContext(ctx).
		Table("donation_history dh").
		Select("dh.id, dh.donor_id, d.name AS donor_name, dh.blood_group, dh.donation_date, dh.units_donated").
		Joins("JOIN donors d ON d.id = dh.donor_id").
		Order("dh.donation_date DESC").
		Order("dh.created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary

	if err := r.db.WithContext(ctx).Model(&models.Donor{}).Count(&summary.TotalDonors).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Model(&models.Recipient{}).Count(&summary.TotalRecipients).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).
		Model(&models.BloodRequest{}).
		Where("status IN ?", []enums.RequestStatus{enums.RequestStatusPending, enums.RequestStatusUrgent}).
		Count(&summary.OpenRequests).Error; err != nil {
		return nil, err
	}

	var total *int64
	if err := r.db.WithContext(ctx).
		Model(&models.InventoryEntry{}).
		Select("SUM(available_units)").
		Scan(&total).Error; err != nil {
		return nil, err
	}
	if total != nil {
		summary.TotalUnits = *total
	}

	return &summary, nil
}
