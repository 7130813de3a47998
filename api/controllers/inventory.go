package controllers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/danielortega/bloodbank-backend/api/responses"
	"github.com/danielortega/bloodbank-backend/api/validators"
	"github.com/danielortega/bloodbank-backend/internal/inventory"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/logger"
)

// parseBloodGroupParam reads the {bloodGroup} URL segment. Clients send
// either the literal group ("A+") or its escaped form ("A%2B").
func parseBloodGroupParam(r *http.Request) (enums.BloodGroup, error) {
	raw := strings.TrimSpace(chi.URLParam(r, "bloodGroup"))
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "blood group is required")
	}
	if unescaped, err := url.PathUnescape(raw); err == nil {
		raw = unescaped
	}
	group, err := enums.ParseBloodGroup(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group")
	}
	return group, nil
}

// InventoryList returns the stock ledger for all eight blood groups.
func InventoryList(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		rows, err := svc.ListStock(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// InventoryGet returns the stock row for one blood group.
func InventoryGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		group, err := parseBloodGroupParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.GetStock(r.Context(), group)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

type inventoryAdjustBody struct {
	Delta int `json:"delta"`
}

// InventoryAdjust applies a signed delta to a blood group's stock. The
// update is refused when it would drive the count negative.
func InventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		group, err := parseBloodGroupParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventoryAdjustBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.AdjustStock(r.Context(), group, body.Delta)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}

type inventorySetBody struct {
	Units int `json:"units"`
}

// InventorySet overwrites a blood group's stock with an absolute count.
// Admin-only; used for physical recounts.
func InventorySet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		group, err := parseBloodGroupParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inventorySetBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.SetStock(r.Context(), group, body.Units)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, entry)
	}
}
