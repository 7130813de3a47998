package requests

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielortega/bloodbank-backend/internal/recipients"
	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/metrics"
	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

// Service manages the blood request lifecycle. Requests never consume
// inventory; fulfillment is a status transition recorded by staff.
type Service interface {
	Create(ctx context.Context, input CreateRequestInput) (*models.BloodRequest, error)
	Get(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateRequestInput) (*models.BloodRequest, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RequestStatus) (*models.BloodRequest, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filters ListFilters) ([]models.BloodRequest, error)
}

// CreateRequestInput captures a new blood request. BloodGroup defaults to
// the recipient's own group when omitted.
type CreateRequestInput struct {
	RecipientID uuid.UUID            `json:"recipient_id"`
	BloodGroup  enums.BloodGroup     `json:"blood_group"`
	UnitsNeeded int                  `json:"units_needed"`
	Status      *enums.RequestStatus `json:"status"`
}

// UpdateRequestInput carries the editable fields of an open request.
type UpdateRequestInput struct {
	BloodGroup  *enums.BloodGroup `json:"blood_group"`
	UnitsNeeded *int              `json:"units_needed"`
}

type service struct {
	repo          Repository
	recipientRepo recipients.Repository
	metrics       *metrics.BloodBankMetrics
}

// NewService wires a blood request service with its persistence collaborators.
func NewService(repo Repository, recipientRepo recipients.Repository, m *metrics.BloodBankMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("request repository required")
	}
	if recipientRepo == nil {
		return nil, fmt.Errorf("recipient repository required")
	}
	return &service{repo: repo, recipientRepo: recipientRepo, metrics: m}, nil
}

func (s *service) Create(ctx context.Context, input CreateRequestInput) (*models.BloodRequest, error) {
	var verr error
	if input.RecipientID == uuid.Nil {
		verr = multierr.Append(verr, fmt.Errorf("recipient_id is required"))
	}
	if input.UnitsNeeded <= 0 {
		verr = multierr.Append(verr, fmt.Errorf("units_needed must be positive"))
	}
	if input.BloodGroup != "" && !input.BloodGroup.IsValid() {
		verr = multierr.Append(verr, fmt.Errorf("blood_group is invalid"))
	}
	status := enums.RequestStatusPending
	if input.Status != nil {
		status = *input.Status
		if !status.IsValid() {
			verr = multierr.Append(verr, fmt.Errorf("status is invalid"))
		} else if status.IsTerminal() {
			verr = multierr.Append(verr, fmt.Errorf("cannot create a request in a terminal status"))
		}
	}
	if verr != nil {
		fields := make([]string, 0, len(multierr.Errors(verr)))
		for _, e := range multierr.Errors(verr) {
			fields = append(fields, e.Error())
		}
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid blood request").WithDetails(fields)
	}

	recipient, err := s.recipientRepo.FindByID(ctx, input.RecipientID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("recipient %s not found", input.RecipientID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching recipient")
	}

	group := input.BloodGroup
	if group == "" {
		group = recipient.BloodGroup
	}

	request := &models.BloodRequest{
		RecipientID: recipient.ID,
		BloodGroup:  group,
		UnitsNeeded: input.UnitsNeeded,
		Status:      status,
	}
	if err := s.repo.Create(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating blood request")
	}

	s.metrics.RecordRequest(status.String())
	return request, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.BloodRequest, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	request, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("blood request %s not found", id))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetching blood request")
	}
	return request, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateRequestInput) (*models.BloodRequest, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("blood request %s is %s and cannot change", id, request.Status))
	}

	if input.BloodGroup != nil {
		if !input.BloodGroup.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", *input.BloodGroup))
		}
		request.BloodGroup = *input.BloodGroup
	}
	if input.UnitsNeeded != nil {
		if *input.UnitsNeeded <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "units_needed must be positive")
		}
		request.UnitsNeeded = *input.UnitsNeeded
	}

	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating blood request")
	}
	return request, nil
}

// UpdateStatus moves a request through its lifecycle. Cancelled is terminal;
// any transition out of it is rejected.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.RequestStatus) (*models.BloodRequest, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", status))
	}

	request, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if request.Status == status {
		return request, nil
	}
	if request.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("blood request %s is %s and cannot transition to %s", id, request.Status, status))
	}

	request.Status = status
	if err := s.repo.Update(ctx, request); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating request status")
	}
	return request, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "request id is required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting blood request")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("blood request %s not found", id))
	}
	return nil
}

func (s *service) List(ctx context.Context, filters ListFilters) ([]models.BloodRequest, error) {
	if filters.Status != nil && !filters.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", *filters.Status))
	}
	if filters.BloodGroup != nil && !filters.BloodGroup.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid blood group %q", *filters.BloodGroup))
	}
	rows, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing blood requests")
	}
	return rows, nil
}
