package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"fitjournal/internal/db"
	"fitjournal/internal/handlers"
	mw "fitjournal/internal/middleware"
	"fitjournal/internal/store"
)

func mustGetenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func main() {
	_ = godotenv.Load()

	var logger *zap.Logger
	var err error
	if mustGetenv("FITJOURNAL_ENV", "development") == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbPath := mustGetenv("FITJOURNAL_DB", filepath.Join("data", "fitjournal.db"))
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Fatal("could not create data directory", zap.Error(err))
		}
	}
	dbConn, err := db.Open(dbPath)
	if err != nil {
		logger.Fatal("could not open store", zap.Error(err))
	}
	defer dbConn.Close()

	port := mustGetenv("PORT", "8080")

	kv := db.NewKV(dbConn)
	entryStore := store.NewEntryStore(kv, logger)
	settingsStore := store.NewSettingsStore(kv, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(mw.StructuredLogger(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	entryHandler := handlers.NewEntryHandler(entryStore)
	settingsHandler := handlers.NewSettingsHandler(settingsStore)
	dashboardHandler := handlers.NewDashboardHandler(entryStore, settingsStore)
	transferHandler := handlers.NewTransferHandler(entryStore, settingsStore)

	r.Route("/api", func(api chi.Router) {
		api.Post("/logs", entryHandler.Upsert)
		api.Get("/logs", entryHandler.List)
		api.Delete("/logs", entryHandler.Delete)
		api.Post("/logs/clear", entryHandler.Clear)

		api.Get("/settings", settingsHandler.Get)
		api.Put("/settings", settingsHandler.Save)
		api.Get("/reminder", settingsHandler.ReminderLink)

		api.Get("/dashboard", dashboardHandler.Get)

		api.Get("/export/backup", transferHandler.ExportBackup)
		api.Get("/export/csv", transferHandler.ExportCSV)
		api.Post("/import", transferHandler.Import)
	})

	srv := &http.Server{Addr: ":" + port, Handler: r}
	go func() {
		logger.Info("server starting", zap.String("addr", ":"+port), zap.String("db", dbPath))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutdown initiated")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info("server stopped")
}
