package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/config"
	appHTTP "github.com/cmlabs-hris/attendance-analytics/internal/handler/http"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/cron"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/sse"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
	"github.com/cmlabs-hris/attendance-analytics/internal/repository/blob"
	"github.com/cmlabs-hris/attendance-analytics/internal/repository/postgresql"
	attendanceService "github.com/cmlabs-hris/attendance-analytics/internal/service/attendance"
	exportService "github.com/cmlabs-hris/attendance-analytics/internal/service/export"
	"github.com/cmlabs-hris/attendance-analytics/internal/service/file"
	reportService "github.com/cmlabs-hris/attendance-analytics/internal/service/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	ctx := context.Background()

	var blobStore storage.BlobStore
	switch cfg.Storage.Type {
	case config.StorageMemory:
		slog.Warn("Using in-memory blob store; data is lost on restart")
		blobStore = storage.NewMemoryBlobStore()
	case config.StorageLocal:
		blobStore, err = storage.NewFileBlobStore(cfg.Storage.BlobPath)
		if err != nil {
			log.Fatal("Failed to initialize local blob store:", err)
		}
	case config.StoragePostgres:
		db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL())
		if err != nil {
			log.Fatal("Error connecting to database:", err)
		}
		defer db.Close()

		pgStore := postgresql.NewBlobStore(db)
		if err := pgStore.EnsureSchema(ctx); err != nil {
			log.Fatal("Failed to prepare blob table:", err)
		}
		blobStore = pgStore
	default:
		log.Fatal("Unsupported storage types: ", cfg.Storage.Type)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.Storage.ExportBasePath, cfg.Storage.ExportBaseURL)
	if err != nil {
		log.Fatal("Failed to initialize local storage:", err)
	}

	attendanceRepo := blob.NewAttendanceRepository(blobStore)
	rosterRepo := blob.NewRosterRepository(blobStore)
	feedRepo := blob.NewFeedRepository(blobStore)

	JWTService, err := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	if err != nil {
		log.Fatal("Failed to initialize JWT service:", err)
	}
	hub := sse.NewHub()

	fileService := file.NewFileService(fileStorage)
	attendanceSvc := attendanceService.NewAttendanceService(attendanceRepo, rosterRepo, hub)
	reportSvc := reportService.NewReportService(attendanceRepo, rosterRepo, feedRepo)
	exportSvc := exportService.NewExportService(attendanceRepo, reportSvc, fileService)

	// Background jobs
	scheduler := cron.NewScheduler()
	attendanceJobs := cron.NewAttendanceJobs(
		attendanceRepo,
		rosterRepo,
		hub,
		cfg.Simulator.WorkspaceIDs,
		cfg.Simulator.Interval,
		cfg.Simulator.Enabled,
	)
	attendanceJobs.RegisterJobs(scheduler)
	scheduler.Start()

	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc, exportSvc)
	reportHandler := appHTTP.NewReportHandler(reportSvc, exportSvc)
	simulatorHandler := appHTTP.NewSimulatorHandler(attendanceJobs)
	streamHandler := appHTTP.NewStreamHandler(hub)

	router := appHTTP.NewRouter(
		appHTTP.RouterOptions{
			Env:            cfg.App.Env,
			LogLevel:       cfg.SlogLevel(),
			AllowedOrigins: cfg.App.AllowedOrigins,
			ExportDir:      cfg.Storage.ExportBasePath,
		},
		JWTService,
		attendanceHandler,
		reportHandler,
		simulatorHandler,
		streamHandler,
	)

	if cfg.App.Env == "development" && len(cfg.Simulator.WorkspaceIDs) > 0 {
		token, _, err := JWTService.GenerateAccessToken("dev-manager", cfg.Simulator.WorkspaceIDs[0])
		if err == nil {
			slog.Info("Development access token", "workspace_id", cfg.Simulator.WorkspaceIDs[0], "token", token)
		}
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exited")
}
