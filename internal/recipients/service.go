package recipients

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

// Service manages the recipient registry.
type Service interface {
	Register(ctx context.Context, input RegisterRecipientInput) (*models.Recipient, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Recipient, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRecipientInput) (*models.Recipient, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Search(ctx context.Context, query SearchQuery) (*SearchResult, error)
}

// RegisterRecipientInput captures a new recipient registration.
type RegisterRecipientInput struct {
	Name         string           `json:"name"`
	Email        string           `json:"email"`
	Phone        string           `json:"phone"`
	BloodGroup   enums.BloodGroup `json:"blood_group"`
	Reason       string           `json:"reason"`
	HospitalName string           `json:"hospital_name"`
	City         string           `json:"city"`
	State        string           `json:"state"`
}

// UpdateRecipientInput carries partial updates. Nil pointers leave the
// stored value unchanged.
type UpdateRecipientInput struct {
	Name         *string           `json:"name"`
	Email        *string           `json:"email"`
	Phone        *string           `json:"phone"`
	BloodGroup   *enums.BloodGroup `json:"blood_group"`
	Reason       *string           `json:"reason"`
	HospitalName *string           `json:"hospital_name"`
	City         *string           `json:"city"`
	State        *string           `json:"state"`
}

type service struct {
	repo Repository
}

// NewService wires a recipient service with the provided repository.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("recipient repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Register(ctx context.Context, input RegisterRecipientInput) (*models.Recipient, error) {
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
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("recipient with email %s already exists", input.Email))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking recipient email")
	}

	recipient := &models.Recipient{
		Name:         strings.TrimSpace(input.Name),
		Email:        strings.TrimSpace(input.Email),
		Phone:        strings.TrimSpace(input.Phone),
		BloodGroup:   input.BloodGroup,
		Reason:       input.Reason,
		HospitalName: input.HospitalName,
		City:         input.City,
		State:        input.State,
	}
	if err := s.repo.Create(ctx, recipient); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating recipient")
	}
	return recipient, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Recipient, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "recipient id is required")
	}
	recipient, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("recipient %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching recipient")
	}
	return recipient, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRecipientInput) (*models.Recipient, error) {
	recipient, err := s.Get(ctx, id)
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

	if input.Email != nil && !strings.EqualFold(*input.Email, recipient.Email) {
		if existing, err := s.repo.FindByEmail(ctx, *input.Email); err == nil && existing.ID != recipient.ID {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("recipient with email %s already exists", *input.Email))
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking recipient email")
		}
		recipient.Email = strings.TrimSpace(*input.Email)
	}

	if input.Name != nil {
		recipient.Name = strings.TrimSpace(*input.Name)
	}
	if input.Phone != nil {
		recipient.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BloodGroup != nil {
		recipient.BloodGroup = *input.BloodGroup
	}
	if input.Reason != nil {
		recipient.Reason = *input.Reason
	}
	if input.HospitalName != nil {
		recipient.HospitalName = *input.HospitalName
	}
	if input.City != nil {
		recipient.City = *input.City
	}
	if input.State != nil {
		recipient.State = *input.State
	}

	if err := s.repo.Update(ctx, recipient); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating recipient")
	}
	return recipient, nil
}

// Delete refuses to remove recipients that still have blood requests.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	referenced, err := s.repo.HasRequests(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking blood requests")
	}
	if referenced {
		return pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("recipient %s has blood requests", id))
	}

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting recipient")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("recipient %s not found", id))
	}
	return nil
}

func (s *service) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	if query.Filters.BloodGroup != nil && !query.Filters.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", *query.Filters.BloodGroup))
	}
	result, err := s.repo.Search(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "searching recipients")
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
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid recipient").WithDetails(fields)
}
