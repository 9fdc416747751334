package http

import (
	"log/slog"

	"github.com/cmlabs-hris/hris-timekeeping-go/internal/domain/user"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-timekeeping-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string
	// Gatherer backs /metrics. The route is omitted when nil.
	Gatherer prometheus.Gatherer
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, punchHandler PunchHandler, scheduleHandler ScheduleHandler, incidentHandler IncidentHandler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	if opts.Logger != nil {
		r.Use(httplog.RequestLogger(opts.Logger, &httplog.Options{
			Level:  opts.LogLevel,
			Schema: httplog.SchemaECS,
		}))
	}

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/health"))

	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

			r.Route("/punches", func(r chi.Router) {
				r.Get("/", punchHandler.List)
				r.Post("/", punchHandler.Add)
				r.Get("/recent", punchHandler.Recent)
				r.Post("/finalize", punchHandler.Finalize)
			})

			r.Route("/schedules", func(r chi.Router) {
				r.Get("/", scheduleHandler.ListSets)
				r.Get("/window", scheduleHandler.PreviewWindow)

				// Admin only
				r.With(middleware.RequirePermission(user.PermissionScheduleManage)).Post("/", scheduleHandler.CreateSet)
			})

			r.Route("/incidents", func(r chi.Router) {
				r.Get("/", incidentHandler.List)
				r.Post("/", incidentHandler.Create)
				r.Get("/{id}/history", incidentHandler.History)
				r.Post("/{id}/resubmit", incidentHandler.Resubmit)

				// Supervisor only
				r.With(middleware.RequireSupervisor).Post("/process", incidentHandler.Process)
			})
		})
	})
	return r
}
