package controllers

import (
	"net/http"
	"strings"

	"github.com/danielortega/bloodbank-backend/api/responses"
	"github.com/danielortega/bloodbank-backend/api/validators"
	"github.com/danielortega/bloodbank-backend/internal/recipients"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	pkgerrors "github.com/danielortega/bloodbank-backend/pkg/errors"
	"github.com/danielortega/bloodbank-backend/pkg/logger"
	"github.com/danielortega/bloodbank-backend/pkg/pagination"
)

// RecipientCreate registers a new recipient.
func RecipientCreate(svc recipients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipient service unavailable"))
			return
		}

		var body recipients.RegisterRecipientInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipient, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, recipient)
	}
}

// RecipientGet fetches a single recipient by ID.
func RecipientGet(svc recipients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipient service unavailable"))
			return
		}

		id, err := parseIDParam(r, "recipientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipient, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recipient)
	}
}

// RecipientUpdate applies a partial update to a recipient profile.
func RecipientUpdate(svc recipients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipient service unavailable"))
			return
		}

		id, err := parseIDParam(r, "recipientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body recipients.UpdateRecipientInput
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		recipient, err := svc.Update(r.Context(), id, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, recipient)
	}
}

// RecipientDelete removes a recipient. Recipients with blood requests are
// refused.
func RecipientDelete(svc recipients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipient service unavailable"))
			return
		}

		id, err := parseIDParam(r, "recipientId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// RecipientSearch lists recipients matching the query string filters.
func RecipientSearch(svc recipients.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "recipient service unavailable"))
			return
		}

		query := recipients.SearchQuery{
			Filters: recipients.SearchFilters{
				Query:    strings.TrimSpace(r.URL.Query().Get("q")),
				Hospital: strings.TrimSpace(r.URL.Query().Get("hospital")),
				City:     strings.TrimSpace(r.URL.Query().Get("city")),
			},
			Pagination: pagination.Params{
				Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
			},
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("blood_group")); raw != "" {
			group, err := enums.ParseBloodGroup(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid blood group"))
				return
			}
			query.Filters.BloodGroup = &group
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		query.Pagination.Limit = limit

		result, err := svc.Search(r.Context(), query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
