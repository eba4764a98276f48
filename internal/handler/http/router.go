package http

import (
	"log/slog"
	"os"

	"github.com/fieldops-hr/geofence-engine-go/internal/handler/http/middleware"
	"github.com/fieldops-hr/geofence-engine-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	appEnv string,
	jwtService jwt.Service,
	locationHandler LocationHandler,
	geofenceHandler GeofenceHandler,
	statsHandler StatsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "geofence-engine"),
		slog.String("version", "v1.0.0"),
		slog.String("env", appEnv),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Location-Key"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	// Tracker-facing ingest endpoint. Authenticated by the shared key
	// header, not by JWT; its wire shape is fixed.
	r.Post("/locations", locationHandler.Ingest)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(jwtService.JWTAuth()))
			r.Use(middleware.AuthRequired(jwtService.JWTAuth()))

			r.Route("/geofences", func(r chi.Router) {
				r.Get("/", geofenceHandler.List)
				r.Post("/", geofenceHandler.Create)
				r.Post("/extract-coords", geofenceHandler.ExtractCoords)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", geofenceHandler.Get)
					r.Put("/", geofenceHandler.Update)
					r.Delete("/", geofenceHandler.Delete)

					r.Post("/assignments", geofenceHandler.AssignEmployees)
					r.Delete("/assignments/{employeeID}", geofenceHandler.UnassignEmployee)
					r.Post("/bulk-check-in", geofenceHandler.BulkCheckIn)

					r.Get("/who-is-inside", statsHandler.WhoIsInside)
					r.Get("/active-sessions", statsHandler.ActiveSessions)
					r.Get("/events", statsHandler.ListEvents)
					r.Get("/sessions", statsHandler.ListSessions)

					r.Route("/stats", func(r chi.Router) {
						r.Get("/total-time", statsHandler.TotalTime)
						r.Get("/visit-count", statsHandler.VisitCount)
						r.Get("/hourly", statsHandler.HourlyEvents)
						r.Get("/daily", statsHandler.DailyEvents)
					})
				})
			})

			r.Route("/employees", func(r chi.Router) {
				r.Get("/{id}/last-location", locationHandler.LastLocation)
			})
		})
	})

	return r
}
