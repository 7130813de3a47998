package donors

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service manages the donor registry.
type Service interface {
	Register(ctx context.Context, input RegisterDonorInput) (*models.Donor, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Donor, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateDonorInput) (*models.Donor, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

// RegisterDonorInput captures a new donor registration.
type RegisterDonorInput struct {
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Phone       string           `json:"phone"`
	BloodGroup  enums.BloodGroup `json:"blood_group"`
	Address     string           `json:"address"`
	City        string           `json:"city"`
	State       string           `json:"state"`
	ZipCode     string           `json:"zip_code"`
	IsAvailable *bool            `json:"is_available"`
}

// UpdateDonorInput carries partial updates. Nil pointers leave the stored
// value unchanged.
type UpdateDonorInput struct {
	Name        *string           `json:"name"`
	Email       *string           `json:"email"`
	Phone       *string           `json:"phone"`
	BloodGroup  *enums.BloodGroup `json:"blood_group"`
	Address     *string           `json:"address"`
	City        *string           `json:"city"`
	State       *string           `json:"state"`
	ZipCode     *string           `json:"zip_code"`
	IsAvailable *bool             `json:"is_available"`
}

type service struct {
	repo Repository
}

// NewService wires a donor service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donor repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterDonorInput) (*models.Donor, error) {
	var verr error
	if strings.TrimSpace(input.Name) == "" {
		verr = multierr.Append(verr, fmt.Errorf("name is required"))
	}
	if !looksLikeEmail(input.Email) {
		verr = multierr.Append(verr, fmt.Errorf("email is invalid"))
	}
	if strings.TrimSpace(input.Phone) == "" {
		verr = multierr.Append(verr, fmt.Errorf("phone is required"))
	}
	if !input.BloodGroup.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("blood_group is invalid"))
	}
	if verr != nil {
		return nil, validationError(verr)
	}

	if _, err := s.repo.FindByEmail(ctx, input.Email); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("donor with email %s already exists", input.Email))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking donor email")
	}

	available := true
	if input.IsAvailable != nil {
		available = *input.IsAvailable
	}

	donor := &models.Donor{
		Name:        strings.TrimSpace(input.Name),
		Email:       strings.TrimSpace(input.Email),
		Phone:       strings.TrimSpace(input.Phone),
		BloodGroup:  input.BloodGroup,
		Address:     input.Address,
		City:        input.City,
		State:       input.State,
		ZipCode:     input.ZipCode,
		IsAvailable: available,
	}
	if err := s.repo.Create(ctx, donor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating donor")
	}
	return donor, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Donor, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donor id is required")
	}
	donor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donor %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching donor")
	}
	return donor, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateDonorInput) (*models.Donor, error) {
	donor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	var verr error
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		verr = multierr.Append(verr, fmt.Errorf("name must not be empty"))
	}
	if input.Email != nil && !looksLikeEmail(*input.Email) {
		verr = multierr.Append(verr, fmt.Errorf("email is invalid"))
	}
	if input.BloodGroup != nil && !input.BloodGroup.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("blood_group is invalid"))
	}
	if verr != nil {
		return nil, validationError(verr)
	}

	if input.Email != nil && !strings.EqualFold(*input.Email, donor.Email) {
		if existing, err := s.repo.FindByEmail(ctx, *input.Email); err == nil && existing.ID != donor.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("donor with email %s already exists", *input.Email))
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking donor email")
		}
		donor.Email = strings.TrimSpace(*input.Email)
	}

	if input.Name != nil {
		donor.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		donor.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BloodGroup != nil {
		donor.BloodGroup = *input.BloodGroup
	}
	if input.Address != nil {
		donor.Address = *input.Address
	}
	if input.City != nil {
		donor.City = *input.City
	}
	if input.State != nil {
		donor.State = *input.State
	}
	if input.ZipCode != nil {
		donor.ZipCode = *input.ZipCode
	}
	if input.IsAvailable != nil {
		donor.IsAvailable = *input.IsAvailable
	}

	if err := s.repo.Update(ctx, donor); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating donor")
	}
	return donor, nil
}

// Delete refuses to remove donors that still have donation history; the
// history table is the audit trail for the inventory ledger.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	referenced, err := s.repo.HasDonations(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking donation history")
	}
	if referenced {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("donor %s has donation history", id))
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting donor")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("donor %s not found", id))
	}
	return nil
}

func (s *service) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	if query.Filters.BloodGroup != nil && !query.Filters.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", *query.Filters.BloodGroup))
	}
	result, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching donors")
	}
	return result, nil
}

func looksLikeEmail(value string) bool {
	value = strings.TrimSpace(value)
	at := strings.Index(value, "@")
	return at > 0 && strings.Contains(value[at:], ".") && !strings.ContainsAny(value, " \t")
}

func validationError(verr error) error {
	fields := make([]string, 0, len(multierr.Errors(verr)))
	for _, e := range multierr.Errors(verr) {
		fields = append(fields, e.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid donor").WithDetails(fields)
}
