package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielortega/bloodbank-backend/pkg/db/models"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
)

type stubInventoryService struct {
	entries []models.InventoryEntry
	entry   *models.InventoryEntry
	err     error

	lastDelta int
	lastUnits int
}

func (s *stubInventoryService) ListStock(ctx context.Context) ([]models.InventoryEntry, error) {
	return s.entries, s.err
}

func (s *stubInventoryService) GetStock(ctx context.Context, group enums.BloodGroup) (*models.InventoryEntry, error) {
	return s.entry, s.err
}

func (s *stubInventoryService) AdjustStock(ctx context.Context, group enums.BloodGroup, delta int) (*models.InventoryEntry, error) {
	s.lastDelta = delta
	return s.entry, s.err
}

func (s *stubInventoryService) SetStock(ctx context.Context, group enums.BloodGroup, units int) (*models.InventoryEntry, error) {
	s.lastUnits = units
	return s.entry, s.err
}

func TestInventoryGetParsesEscapedGroup(t *testing.T) {
	entry := &models.InventoryEntry{BloodGroup: enums.BloodGroupAPositive, AvailableUnits: 12}
	handler := InventoryGet(&stubInventoryService{entry: entry}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/A%2B", nil)
	req = withURLParam(req, "bloodGroup", "A%2B")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}

	var envelope struct {
		Data models.InventoryEntry `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.BloodGroup != enums.BloodGroupAPositive {
		t.Fatalf("expected A+ got %s", envelope.Data.BloodGroup)
	}
}

func TestInventoryGetRejectsUnknownGroup(t *testing.T) {
	handler := InventoryGet(&stubInventoryService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/inventory/XYZ", nil)
	req = withURLParam(req, "bloodGroup", "XYZ")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestInventoryAdjustPassesDelta(t *testing.T) {
	svc := &stubInventoryService{entry: &models.InventoryEntry{BloodGroup: enums.BloodGroupONegative, AvailableUnits: 3}}
	handler := InventoryAdjust(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/O-/adjust", bytes.NewReader([]byte(`{"delta": -2}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "bloodGroup", "O-")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.lastDelta != -2 {
		t.Fatalf("expected delta -2 got %d", svc.lastDelta)
	}
}

func TestInventoryAdjustSurfacesConflict(t *testing.T) {
	svc := &stubInventoryService{err: pkgerrors.New(pkgerrors.CodeConflict, "insufficient stock")}
	handler := InventoryAdjust(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/inventory/O-/adjust", bytes.NewReader([]byte(`{"delta": -50}`)))
	req.Header.Set("Content-Type", "application/json")
	req = withURLParam(req, "bloodGroup", "O-")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", rec.Code)
	}
}
