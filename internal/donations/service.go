package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/danielortega/bloodbank-backend/internal/donors"
	"github.com/danielortega/bloodbank-backend/internal/inventory"
	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/logger"
	"github.com/danielortega/bloodbank-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

const maxRecentDonations = 100

// TxRunner abstracts the transactional boundary so the record path can be
// exercised with fakes.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service records and maintains donation history. Recording a donation also
// increments the matching inventory row and refreshes the donor's last
// donation date, all inside one transaction. Edits and deletes of existing
// records deliberately leave inventory untouched: corrections to the ledger
// go through the inventory endpoints.
type Service interface {
	RecordDonation(ctx context.Context, input RecordDonationInput) (*models.DonationRecord, error)
	GetDonation(ctx context.Context, id uuid.UUID) (*models.DonationRecord, error)
	UpdateDonation(ctx context.Context, id uuid.UUID, input UpdateDonationInput) (*models.DonationRecord, error)
	DeleteDonation(ctx context.Context, id uuid.UUID) error
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.DonationRecord, error)
	ListRecent(ctx context.Context, limit int) ([]models.DonationRecord, error)
}

// RecordDonationInput captures a new donation event. BloodGroup defaults to
// the donor's own group when omitted.
type RecordDonationInput struct {
	DonorID      uuid.UUID        `json:"donor_id"`
	DonationDate time.Time        `json:"donation_date"`
	BloodGroup   enums.BloodGroup `json:"blood_group"`
	UnitsDonated int              `json:"units_donated"`
	Notes        string           `json:"notes"`
}

// UpdateDonationInput carries the editable fields of an existing record.
// Nil pointers leave the stored value unchanged.
type UpdateDonationInput struct {
	DonationDate *time.Time `json:"donation_date"`
	UnitsDonated *int       `json:"units_donated"`
	Notes        *string    `json:"notes"`
}

type service struct {
	tx        TxRunner
	repo      Repository
	donorRepo donors.Repository
	invRepo   inventory.Repository
	metrics   *metrics.BloodBankMetrics
	logg      *logger.Logger
}

// NewService wires a donation service with its persistence collaborators.
func NewService(tx TxRunner, repo Repository, donorRepo donors.Repository, invRepo inventory.Repository, m *metrics.BloodBankMetrics, logg *logger.Logger) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if repo == nil {
		return nil, fmt.Errorf("donation repository required")
	}
	if donorRepo == nil {
		return nil, fmt.Errorf("donor repository required")
	}
	if invRepo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{
		tx:        tx,
		repo:      repo,
		donorRepo: donorRepo,
		invRepo:   invRepo,
		metrics:   m,
		logg:      logg,
	}, nil
}

func (s *service) RecordDonation(ctx context.Context, input RecordDonationInput) (*models.DonationRecord, error) {
	if err := validateRecordInput(input); err != nil {
		return nil, err
	}

	donor, err := s.donorRepo.FindByID(ctx, input.DonorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donor %s not found", input.DonorID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching donor")
	}

	group := input.BloodGroup
	if group == "" {
		group = donor.BloodGroup
	}

	record := &models.DonationRecord{
		DonorID:      donor.ID,
		DonationDate: input.DonationDate,
		BloodGroup:   group,
		UnitsDonated: input.UnitsDonated,
		Notes:        input.Notes,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, record); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "inserting donation record")
		}

		affected, err := s.invRepo.WithTx(tx).AdjustUnits(ctx, group, input.UnitsDonated)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "incrementing inventory")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeInternal,
				fmt.Sprintf("no inventory row for blood group %s", group))
		}

		if donor.LastDonationDate == nil || input.DonationDate.After(*donor.LastDonationDate) {
			if err := s.donorRepo.WithTx(tx).UpdateLastDonationDate(ctx, donor.ID, input.DonationDate); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "refreshing donor last donation date")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordDonation(group.String(), input.UnitsDonated)
	if s.logg != nil {
		ctx = s.logg.WithBloodGroup(ctx, group.String())
		s.logg.Info(ctx, "donation recorded")
	}
	return record, nil
}

func validateRecordInput(input RecordDonationInput) error {
	var verr error
	if input.DonorID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("donor_id is required"))
	}
	if input.UnitsDonated <= 0 {
		verr = multierr.Append(verr, fmt.Errorf("units_donated must be positive"))
	}
	if input.BloodGroup != "" && !input.BloodGroup.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("blood_group must be one of the canonical types"))
	}
	if input.DonationDate.IsZero() {
		verr = multierr.Append(verr, fmt.Errorf("donation_date is required"))
	} else if input.DonationDate.After(time.Now().Add(24 * time.Hour)) {
		verr = multierr.Append(verr, fmt.Errorf("donation_date cannot be in the future"))
	}
	if verr != nil {
		fields := make([]string, 0, len(multierr.Errors(verr)))
		for _, e := range multierr.Errors(verr) {
			fields = append(fields, e.Error())
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid donation").WithDetails(fields)
	}
	return nil
}

func (s *service) GetDonation(ctx context.Context, id uuid.UUID) (*models.DonationRecord, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id is required")
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donation %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching donation")
	}
	return record, nil
}

func (s *service) UpdateDonation(ctx context.Context, id uuid.UUID, input UpdateDonationInput) (*models.DonationRecord, error) {
	record, err := s.GetDonation(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.UnitsDonated != nil && *input.UnitsDonated <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "units_donated must be positive")
	}
	if input.DonationDate != nil && input.DonationDate.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation_date must not be zero")
	}

	if input.DonationDate != nil {
		record.DonationDate = *input.DonationDate
	}
	if input.UnitsDonated != nil {
		record.UnitsDonated = *input.UnitsDonated
	}
	if input.Notes != nil {
		record.Notes = *input.Notes
	}

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating donation")
	}
	return record, nil
}

func (s *service) DeleteDonation(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "donation id is required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting donation")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donation %s not found", id))
	}
	return nil
}

func (s *service) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.DonationRecord, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id is required")
	}
	if _, err := s.donorRepo.FindByID(ctx, donorID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donor %s not found", donorID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching donor")
	}
	records, err := s.repo.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing donations")
	}
	return records, nil
}

func (s *service) ListRecent(ctx context.Context, limit int) ([]models.DonationRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > maxRecentDonations {
		limit = maxRecentDonations
	}
	records, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing recent donations")
	}
	return records, nil
}
