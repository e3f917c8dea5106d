package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/middleware"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/jwt"
)

// RouterOptions carries the deployment settings the router needs.
type RouterOptions struct {
	FrontendURL string
	DeviceKey   string
	Env         string
	LogLevel    slog.Level
	// Metrics is mounted at /metrics when set.
	Metrics http.Handler
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	kioskHandler KioskHandler,
	leaveHandler LeaveHandler,
	configHandler ConfigHandler,
	residentHandler ResidentHandler,
	messHandler MessHandler,
	eventsHandler EventsHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hms-backend"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.DeviceKeyHeader},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// Fingerprint kiosks
		r.Route("/kiosk", func(r chi.Router) {
			r.Use(middleware.DeviceKey(opts.DeviceKey))
			r.Use(chiMiddleware.AllowContentType("application/json"))
			r.Post("/attendance", kioskHandler.MarkAttendance)
			r.Post("/outpass", kioskHandler.TriggerOutpass)
		})

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))

			// Authenticates itself: EventSource sends a stream token as ?token=.
			r.Get("/events/stream", eventsHandler.Stream)

			// Requires authentication
			r.Group(func(r chi.Router) {
				r.Use(middleware.AuthRequired)

				r.Post("/events/token", eventsHandler.StreamToken)

				r.Route("/config", func(r chi.Router) {
					r.Get("/", configHandler.Get)
					r.With(middleware.RequireRoles(auth.RoleWarden, auth.RoleAdmin)).Put("/", configHandler.Update)
				})

				r.Route("/leaves", func(r chi.Router) {
					r.With(middleware.RequireRoles(auth.RoleStudent)).Post("/", leaveHandler.Apply)
					r.Get("/resident/{residentID}", leaveHandler.ListByResident)
					r.With(middleware.RequireWarden).Get("/search/{query}", leaveHandler.Search)

					r.Route("/{id}", func(r chi.Router) {
						r.With(middleware.RequireWarden).Post("/warden-review", leaveHandler.WardenReview)
						r.With(middleware.RequireRoles(auth.RoleParent, auth.RoleWarden, auth.RoleAdmin)).Post("/parent-review", leaveHandler.ParentReview)
						r.With(middleware.RequireRoles(auth.RoleStudent)).Post("/outpass", leaveHandler.GenerateOutpass)
						r.With(middleware.RequireRoles(append([]auth.Role{auth.RoleStudent}, auth.Wardens...)...)).Delete("/", leaveHandler.Withdraw)
					})
				})

				r.Route("/mess", func(r chi.Router) {
					messStaff := middleware.RequireRoles(auth.RoleWarden, auth.RoleMessWarden, auth.RoleAdmin)

					r.With(messStaff).Put("/special-food", messHandler.ScheduleSpecialFood)
					r.With(middleware.RequireRoles(auth.RoleStudent)).Post("/tokens", messHandler.GenerateToken)
					r.With(messStaff).Get("/tokens/active", messHandler.ListActive)
					r.Get("/tokens/resident/{residentID}", messHandler.ListByResident)
					r.With(messStaff).Post("/tokens/{id}/close", messHandler.CloseToken)
				})

				r.Route("/residents", func(r chi.Router) {
					r.Use(middleware.RequireWarden)
					r.Get("/", residentHandler.List)
					r.Post("/", residentHandler.Register)
					r.Get("/blocked", residentHandler.ListBlocked)
					r.Post("/block-absentees", residentHandler.BlockAbsentees)
					r.Post("/unblock-all", residentHandler.UnblockAll)
					r.Get("/{id}", residentHandler.Get)
					r.Put("/{id}/block", residentHandler.SetBlocked)
				})
			})
		})
	})
	return r
}
