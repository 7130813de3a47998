package recipients

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeRepo struct {
	recipients   map[uuid.UUID]*models.Recipient
	withRequests map[uuid.UUID]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		recipients:   make(map[uuid.UUID]*models.Recipient),
		withRequests: make(map[uuid.UUID]bool),
	}
}

func (f *fakeRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, recipient *models.Recipient) error {
	recipient.ID = uuid.New()
	recipient.CreatedAt = time.Now()
	copied := *recipient
	f.recipients[recipient.ID] = &copied
	return nil
}

func (f *fakeRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Recipient, error) {
	recipient, ok := f.recipients[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *recipient
	return &copied, nil
}

func (f *fakeRepo) FindByEmail(ctx context.Context, email string) (*models.Recipient, error) {
	for _, recipient := range f.recipients {
		if strings.EqualFold(recipient.Email, email) {
			copied := *recipient
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) Update(ctx context.Context, recipient *models.Recipient) error {
	copied := *recipient
	f.recipients[recipient.ID] = &copied
	return nil
}

func (f *fakeRepo) Delete(ctx context.Context, id uuid.UUID) (int64, error) {
	if _, ok := f.recipients[id]; !ok {
		return 0, nil
	}
	delete(f.recipients, id)
	return 1, nil
}

func (f *fakeRepo) Search(ctx context.Context, query SearchQuery) (*SearchResult, error) {
	result := &SearchResult{}
	for _, recipient := range f.recipients {
		if query.Filters.BloodGroup != nil && recipient.BloodGroup != *query.Filters.BloodGroup {
			continue
		}
		if query.Filters.Hospital != "" &&
			!strings.Contains(strings.ToLower(recipient.HospitalName), strings.ToLower(query.Filters.Hospital)) {
			continue
		}
		result.Recipients = append(result.Recipients, *recipient)
	}
	return result, nil
}

func (f *fakeRepo) HasRequests(ctx context.Context, id uuid.UUID) (bool, error) {
	return f.withRequests[id], nil
}

func validInput() RegisterRecipientInput {
	return RegisterRecipientInput{
		Name:         "Carlos Reyes",
		Email:        "carlos@example.com",
		Phone:        "555-0142",
		BloodGroup:   enums.BloodGroupBPositive,
		Reason:       "surgery",
		HospitalName: "General Hospital",
	}
}

func newTestService(t *testing.T, repo Repository) Service {
	t.Helper()
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestRegisterAndGetRoundTrip(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	fetched, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.HospitalName != "General Hospital" || fetched.BloodGroup != enums.BloodGroupBPositive {
		t.Fatalf("round trip mismatch: %+v", fetched)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	_, err := svc.Register(context.Background(), RegisterRecipientInput{Email: "bad"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	if _, err := svc.Register(context.Background(), validInput()); err != nil {
		t.Fatalf("register: %v", err)
	}
	_, err := svc.Register(context.Background(), validInput())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdatePartialFields(t *testing.T) {
	svc := newTestService(t, newFakeRepo())

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	hospital := "St. Mary Medical Center"
	updated, err := svc.Update(context.Background(), created.ID, UpdateRecipientInput{
		HospitalName: &hospital,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.HospitalName != hospital {
		t.Fatalf("expected hospital %q, got %q", hospital, updated.HospitalName)
	}
	if updated.Name != created.Name {
		t.Fatal("untouched fields must survive partial update")
	}
}

func TestDeleteRecipientWithRequestsConflicts(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(t, repo)

	created, err := svc.Register(context.Background(), validInput())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	repo.withRequests[created.ID] = true

	err = svc.Delete(context.Background(), created.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	repo.withRequests[created.ID] = false
	if err := svc.Delete(context.Background(), created.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}
