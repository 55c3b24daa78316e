package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/kukufarm/kukutrack/internal/config"
	"github.com/kukufarm/kukutrack/internal/domain/models"
	"github.com/kukufarm/kukutrack/internal/repository/mongodb"
	"github.com/kukufarm/kukutrack/internal/repository/sheets"
	"github.com/kukufarm/kukutrack/internal/scheduler"
	"github.com/kukufarm/kukutrack/internal/server/handlers"
	"github.com/kukufarm/kukutrack/internal/server/router"
	inventorysvc "github.com/kukufarm/kukutrack/internal/service/inventory"
	ledgersvc "github.com/kukufarm/kukutrack/internal/service/ledger"
	reportingsvc "github.com/kukufarm/kukutrack/internal/service/reporting"
	"github.com/kukufarm/kukutrack/internal/service/session"
	summarysvc "github.com/kukufarm/kukutrack/internal/service/summary"
	"github.com/kukufarm/kukutrack/pkg/clients/backend"
	"github.com/kukufarm/kukutrack/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	// The guard is both the only token writer and the client's token
	// source; the indirection lets the client exist first.
	var guard *session.Guard
	apiClient := backend.NewClient(cfg.Backend, backend.TokenSourceFunc(func() (string, error) {
		return guard.Token()
	}))

	sessionStore := session.NewFileStore(cfg.Session.FilePath)
	guard = session.NewGuard(apiClient, sessionStore, baseLogger.Named("svc.session"))
	guard.OnExpired(func(sess models.Session) {
		baseLogger.Warn("session expired, login required", zap.String("email", sess.Email))
	})

	inventorySvc := inventorysvc.NewService(apiClient, baseLogger.Named("svc.inventory"))
	ledgerSvc := ledgersvc.NewService(apiClient, inventorySvc, baseLogger.Named("svc.ledger"))
	summarySvc := summarysvc.NewService(apiClient, ledgerSvc, baseLogger.Named("svc.summary"))

	var reportArchive mongodb.Repository
	if cfg.MongoEnabled() {
		mongoRepo, err := mongodb.NewMongoDBRepository(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
		if err != nil {
			baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
		}
		defer func() {
			if err := mongoRepo.Close(context.Background()); err != nil {
				baseLogger.Error("failed to close mongodb connection", zap.Error(err))
			}
		}()
		reportArchive = mongoRepo
	} else {
		baseLogger.Warn("MONGODB_URI missing, report archiving disabled")
	}

	var reportSheet sheets.Repository
	if cfg.SheetsEnabled() {
		sheetRepo, err := sheets.NewGoogleSheetRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
		}
		reportSheet = sheetRepo
	} else {
		baseLogger.Warn("sheets credentials missing, spreadsheet export disabled")
	}

	reportingSvc := reportingsvc.NewService(summarySvc, inventorySvc, reportArchive, reportSheet, baseLogger.Named("svc.reporting"))

	authHandler := handlers.NewAuthHandler(guard, baseLogger.Named("handlers.auth"))
	ledgerHandler := handlers.NewLedgerHandler(ledgerSvc, baseLogger.Named("handlers.ledger"))
	inventoryHandler := handlers.NewInventoryHandler(inventorySvc, baseLogger.Named("handlers.inventory"))
	summaryHandler := handlers.NewSummaryHandler(summarySvc, reportingSvc, baseLogger.Named("handlers.summary"))

	engine := router.New(router.Handlers{
		Auth:      authHandler,
		Ledger:    ledgerHandler,
		Inventory: inventoryHandler,
		Summary:   summaryHandler,
	}, guard, baseLogger.Named("router"))

	// Initialize Scheduler
	sched := scheduler.NewScheduler(*cfg, guard, reportingSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
