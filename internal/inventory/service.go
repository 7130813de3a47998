package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/metrics"
	"gorm.io/gorm"
)

// Service exposes read and adjustment operations over the inventory ledger.
type Service interface {
	ListStock(ctx context.Context) ([]models.InventoryEntry, error)
	GetStock(ctx context.Context, group enums.BloodGroup) (*models.InventoryEntry, error)
	AdjustStock(ctx context.Context, group enums.BloodGroup, delta int) (*models.InventoryEntry, error)
	SetStock(ctx context.Context, group enums.BloodGroup, units int) (*models.InventoryEntry, error)
}

type service struct {
	repo    Repository
	metrics *metrics.BloodBankMetrics
}

// NewService wires an inventory service with the provided repository.
func NewService(repo Repository, m *metrics.BloodBankMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo, metrics: m}, nil
}

func (s *service) ListStock(ctx context.Context) ([]models.InventoryEntry, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing inventory")
	}
	for _, entry := range entries {
		s.metrics.SetInventoryUnits(entry.BloodGroup.String(), entry.AvailableUnits)
	}
	return entries, nil
}

func (s *service) GetStock(ctx context.Context, group enums.BloodGroup) (*models.InventoryEntry, error) {
	if !group.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", group))
	}
	entry, err := s.repo.GetByBloodGroup(ctx, group)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no inventory row for blood group %s", group))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching inventory")
	}
	return entry, nil
}

// AdjustStock applies a relative delta. A delta that would take the count
// below zero is rejected with a conflict rather than clamped.
func (s *service) AdjustStock(ctx context.Context, group enums.BloodGroup, delta int) (*models.InventoryEntry, error) {
	if !group.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", group))
	}
	if delta == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delta must be non-zero")
	}

	affected, err := s.repo.AdjustUnits(ctx, group, delta)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjusting inventory")
	}
	if affected == 0 {
		// Disambiguate: a seeded row should always exist, so zero rows
		// normally means the guard rejected a negative balance.
		if _, getErr := s.repo.GetByBloodGroup(ctx, group); getErr != nil {
			if errors.Is(getErr, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no inventory row for blood group %s", group))
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, getErr, "fetching inventory")
		}
		return nil, pkgerrors.New(pkgerrors.CodeConflict,
			fmt.Sprintf("insufficient stock for blood group %s (delta %d)", group, delta))
	}

	entry, err := s.repo.GetByBloodGroup(ctx, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching inventory after adjust")
	}
	s.metrics.SetInventoryUnits(entry.BloodGroup.String(), entry.AvailableUnits)
	return entry, nil
}

// SetStock overwrites the absolute count for a blood group.
func (s *service) SetStock(ctx context.Context, group enums.BloodGroup, units int) (*models.InventoryEntry, error) {
	if !group.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", group))
	}
	if units < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "units must not be negative")
	}

	affected, err := s.repo.SetUnits(ctx, group, units)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "setting inventory")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no inventory row for blood group %s", group))
	}

	entry, err := s.repo.GetByBloodGroup(ctx, group)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching inventory after set")
	}
	s.metrics.SetInventoryUnits(entry.BloodGroup.String(), entry.AvailableUnits)
	return entry, nil
}
