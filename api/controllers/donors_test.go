package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielortega/bloodbank-backend/internal/donors"
	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type stubDonorService struct {
	donor  *models.Donor
	result *donors.SearchResult
	err    error
}

func (s stubDonorService) Register(ctx context.Context, input donors.RegisterDonorInput) (*models.Donor, error) {
	return s.donor, s.err
}

func (s stubDonorService) Get(ctx context.Context, id uuid.UUID) (*models.Donor, error) {
	return s.donor, s.err
}

func (s stubDonorService) Update(ctx context.Context, id uuid.UUID, input donors.UpdateDonorInput) (*models.Donor, error) {
	return s.donor, s.err
}

func (s stubDonorService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.err
}

func (s stubDonorService) Search(ctx context.Context, query donors.SearchQuery) (*donors.SearchResult, error) {
	return s.result, s.err
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestDonorGetSuccess(t *testing.T) {
	donorID := uuid.New()
	donor := &models.Donor{
		ID:         donorID,
		Name:       "Jamie Rivera",
		Email:      "jamie@example.com",
		BloodGroup: enums.BloodGroupOPositive,
	}
	handler := DonorGet(stubDonorService{donor: donor}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/"+donorID.String(), nil)
	req = withURLParam(req, "donorId", donorID.String())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data models.Donor `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.ID != donorID {
		t.Fatalf("expected id %s got %s", donorID, envelope.Data.ID)
	}
}

func TestDonorGetNotFound(t *testing.T) {
	handler := DonorGet(stubDonorService{err: pkgerrors.New(pkgerrors.CodeNotFound, "donor not found")}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/"+uuid.NewString(), nil)
	req = withURLParam(req, "donorId", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestDonorGetInvalidID(t *testing.T) {
	handler := DonorGet(stubDonorService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors/not-a-uuid", nil)
	req = withURLParam(req, "donorId", "not-a-uuid")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestDonorCreateReturns201(t *testing.T) {
	donor := &models.Donor{
		ID:         uuid.New(),
		Name:       "Sam Okafor",
		Email:      "sam@example.com",
		BloodGroup: enums.BloodGroupABNegative,
	}
	handler := DonorCreate(stubDonorService{donor: donor}, nil)

	payload := []byte(`{
		"name": "Sam Okafor",
		"email": "sam@example.com",
		"phone": "555-0102",
		"blood_group": "AB-"
	}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/donors", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
}

func TestDonorSearchRejectsBadBloodGroup(t *testing.T) {
	handler := DonorSearch(stubDonorService{result: &donors.SearchResult{}}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/donors?blood_group=Z%2B", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}
