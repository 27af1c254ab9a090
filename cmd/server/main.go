package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/config"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/interfaces/http"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/report"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/repository"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/service"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/storage"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/worker"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/migrations"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/pkg/database"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/pkg/utils"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML configuration")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting invoice reimbursement service",
		zap.Int("port", cfg.Server.Port),
		zap.String("company_keyword", cfg.Invoice.CompanyKeyword))

	// Database
	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if cfg.Database.MigrationsDir != "" {
		err = migrator.RunMigrationsDir(ctx, cfg.Database.MigrationsDir)
	} else {
		err = migrator.RunMigrations(ctx, migrations.FS)
	}
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	// Upload tree
	files := storage.NewLocalFileStorage(cfg.Storage.UploadDir, logger)
	folders := storage.NewFolderManager(cfg.Storage.UploadDir, files, logger)
	folders.SetMaxUploadSize(cfg.Storage.MaxUploadSize)
	if err := folders.EnsureLayout(); err != nil {
		return err
	}

	// Repositories
	details := repository.NewInvoiceDetailRepository(db.DB, logger)
	apps := repository.NewApplicationRepository(db.DB, details, logger)
	users := repository.NewUserRepository(db.DB, logger)

	// Report pipeline
	font := report.ResolveFont(cfg.Report.Fonts, logger)
	var rasterizer report.Rasterizer
	if cfg.Report.RenderPDFPages {
		rasterizer = report.NewFitzRasterizer(cfg.Report.RenderDPI)
	}
	generator := report.NewGenerator(
		report.NewSummaryBuilder(font, logger),
		report.NewCompositor(font, folders, rasterizer, folders.ReportsDir(), logger),
		report.NewMerger(logger),
		folders.ReportsDir(),
		logger,
	)

	// Services
	applicationService := service.NewApplicationService(apps, users, folders, logger)
	invoiceService := service.NewInvoiceService(
		apps,
		details,
		folders,
		invoice.NewExtractor(logger),
		cfg.Invoice.CompanyKeyword,
		logger,
	)
	reportService := service.NewReportService(
		apps,
		generator,
		report.NewWorkbookExporter(logger),
		folders.ReportsDir(),
		logger,
	)

	// Background workers
	workers := worker.NewManager(logger)
	if cfg.Report.SweepSchedule != "" {
		workers.Register(worker.NewReportSweeper(
			folders.ReportsDir(),
			cfg.Report.SweepSchedule,
			cfg.Report.Retention,
			files,
			logger,
		))
	}
	if err := workers.StartAll(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}
	defer workers.StopAll()

	server := http.NewServer(http.ServerConfig{
		Host:          cfg.Server.Host,
		Port:          cfg.Server.Port,
		ReadTimeout:   cfg.Server.ReadTimeout,
		WriteTimeout:  cfg.Server.WriteTimeout,
		UploadDir:     cfg.Storage.UploadDir,
		MaxUploadSize: cfg.Storage.MaxUploadSize,
	}, applicationService, invoiceService, reportService, logger)

	err = server.Start(ctx)
	logger.Info("Shutdown complete")
	return err
}
