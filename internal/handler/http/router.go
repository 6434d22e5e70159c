package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/attendance-analytics/internal/handler/http/middleware"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the environment-dependent router settings
type RouterOptions struct {
	Env            string
	LogLevel       slog.Level
	AllowedOrigins []string
	// ExportDir, when set, is served read-only under /exports
	ExportDir string
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	attendanceHandler AttendanceHandler,
	reportHandler ReportHandler,
	simulatorHandler SimulatorHandler,
	streamHandler StreamHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       opts.LogLevel,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "attendance-analytics"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Content-Disposition", "X-Archive-Path"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	if opts.ExportDir != "" {
		fs := http.StripPrefix("/exports/", http.FileServer(http.Dir(opts.ExportDir)))
		r.Get("/exports/*", fs.ServeHTTP)
	}

	r.Route("/api/v1", func(r chi.Router) {

		// SSE clients cannot set headers, so the stream also accepts ?jwt=
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verify(JWTService.JWTAuth(), jwtauth.TokenFromHeader, jwtauth.TokenFromQuery))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.WorkspaceRequired)
			r.Get("/attendance/stream", streamHandler.Stream)
		})

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.WorkspaceRequired)
			r.Use(chiMiddleware.AllowContentType("application/json"))

			r.Route("/attendance", func(r chi.Router) {
				r.Get("/", attendanceHandler.ListByDate)
				r.Post("/", attendanceHandler.Mark)
				r.Get("/records", attendanceHandler.List)
				r.Post("/quick-mark", attendanceHandler.QuickMark)
				r.Get("/export", attendanceHandler.Export)
				r.Patch("/{id}", attendanceHandler.Update)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/team", reportHandler.GetTeamReport)
				r.Get("/team/export.csv", reportHandler.ExportTeamReportCSV)
				r.Get("/team/export.xlsx", reportHandler.ExportTeamReportXLSX)
			})

			r.Route("/simulator", func(r chi.Router) {
				r.Get("/", simulatorHandler.Status)
				r.Put("/", simulatorHandler.Toggle)
			})
		})
	})
	return r
}
