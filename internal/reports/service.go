package reports

import (
	"context"
	"fmt"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
)

const (
	defaultReportLimit = 5
	maxReportLimit     = 50
)

// Service exposes the dashboard and reporting reads.
type Service interface {
	TopUrgentNeeds(ctx context.Context, limit int) ([]UrgentNeed, error)
	RecentDonors(ctx context.Context, limit int) ([]models.Donor, error)
	RecentDonations(ctx context.Context, limit int) ([]DonationActivity, error)
	Summary(ctx context.Context) (*Summary, error)
}

type service struct {
	repo Repository
}

// NewService wires a reporting service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("reports repository required")
	}
	return &service{repo: repo}, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultReportLimit
	}
	if limit > maxReportLimit {
		return maxReportLimit
	}
	return limit
}

func (s *service) TopUrgentNeeds(ctx context.Context, limit int) ([]UrgentNeed, error) {
	rows, err := s.repo.TopUrgentNeeds(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregating urgent needs")
	}
	return rows, nil
}

func (s *service) RecentDonors(ctx context.Context, limit int) ([]models.Donor, error) {
	rows, err := s.repo.RecentDonors(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing recent donors")
	}
	return rows, nil
}

func (s *service) RecentDonations(ctx context.Context, limit int) ([]DonationActivity, error) {
	rows, err := s.repo.RecentDonations(ctx, clampLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing recent donations")
	}
	return rows, nil
}

func (s *service) Summary(ctx context.Context) (*Summary, error) {
	summary, err := s.repo.Summary(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "building summary")
	}
	return summary, nil
}
