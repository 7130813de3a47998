package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielortega/bloodbank-backend/api/controllers"
	"github.com/danielortega/bloodbank-backend/api/middleware"
	"github.com/danielortega/bloodbank-backend/internal/auth"
	"github.com/danielortega/bloodbank-backend/internal/donations"
	"github.com/danielortega/bloodbank-backend/internal/donors"
	"github.com/danielortega/bloodbank-backend/internal/inventory"
	"github.com/danielortega/bloodbank-backend/internal/recipients"
	"github.com/danielortega/bloodbank-backend/internal/reports"
	"github.com/danielortega/bloodbank-backend/internal/requests"
	"github.com/danielortega/bloodbank-backend/pkg/auth/session"
	"github.com/danielortega/bloodbank-backend/pkg/config"
	"github.com/danielortega/bloodbank-backend/pkg/db"
	"github.com/danielortega/bloodbank-backend/pkg/enums"
	"github.com/danielortega/bloodbank-backend/pkg/logger"
	"github.com/danielortega/bloodbank-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	sessionManager session.AccessSessionChecker,
	authService auth.Service,
	donorService donors.Service,
	recipientService recipients.Service,
	requestService requests.Service,
	donationService donations.Service,
	inventoryService inventory.Service,
	reportService reports.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, sessionManager, logg))

		r.Route("/donors", func(r chi.Router) {
			r.Get("/", controllers.DonorSearch(donorService, logg))
			r.Post("/", controllers.DonorCreate(donorService, logg))
			r.Route("/{donorId}", func(r chi.Router) {
				r.Get("/", controllers.DonorGet(donorService, logg))
				r.Put("/", controllers.DonorUpdate(donorService, logg))
				r.Delete("/", controllers.DonorDelete(donorService, logg))
				r.Get("/donations", controllers.DonorDonationHistory(donationService, logg))
			})
		})

		r.Route("/recipients", func(r chi.Router) {
			r.Get("/", controllers.RecipientSearch(recipientService, logg))
			r.Post("/", controllers.RecipientCreate(recipientService, logg))
			r.Route("/{recipientId}", func(r chi.Router) {
				r.Get("/", controllers.RecipientGet(recipientService, logg))
				r.Put("/", controllers.RecipientUpdate(recipientService, logg))
				r.Delete("/", controllers.RecipientDelete(recipientService, logg))
			})
		})

		r.Route("/requests", func(r chi.Router) {
			r.Get("/", controllers.RequestList(requestService, logg))
			r.Post("/", controllers.RequestCreate(requestService, logg))
			r.Route("/{requestId}", func(r chi.Router) {
				r.Get("/", controllers.RequestGet(requestService, logg))
				r.Put("/", controllers.RequestUpdate(requestService, logg))
				r.Delete("/", controllers.RequestDelete(requestService, logg))
				r.Post("/status", controllers.RequestUpdateStatus(requestService, logg))
			})
		})

		r.Route("/donations", func(r chi.Router) {
			r.Post("/", controllers.DonationRecord(donationService, logg))
			r.Get("/recent", controllers.DonationListRecent(donationService, logg))
			r.Route("/{donationId}", func(r chi.Router) {
				r.Get("/", controllers.DonationGet(donationService, logg))
				r.Put("/", controllers.DonationUpdate(donationService, logg))
				r.Delete("/", controllers.DonationDelete(donationService, logg))
			})
		})

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(inventoryService, logg))
			r.Get("/{bloodGroup}", controllers.InventoryGet(inventoryService, logg))
			r.Post("/{bloodGroup}/adjust", controllers.InventoryAdjust(inventoryService, logg))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(enums.UserRoleAdmin.String(), logg))
				r.Put("/{bloodGroup}", controllers.InventorySet(inventoryService, logg))
			})
		})

		r.Route("/reports", func(r chi.Router) {
			r.Get("/urgent-needs", controllers.ReportUrgentNeeds(reportService, logg))
			r.Get("/recent-donors", controllers.ReportRecentDonors(reportService, logg))
			r.Get("/recent-donations", controllers.ReportRecentDonations(reportService, logg))
			r.Get("/summary", controllers.ReportSummary(reportService, logg))
		})
	})

	return r
}
