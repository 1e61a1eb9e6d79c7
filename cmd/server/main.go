package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/gatewise/gatepass/internal/application/dispatcher"
	"github.com/gatewise/gatepass/internal/application/port"
	"github.com/gatewise/gatepass/internal/application/service"
	"github.com/gatewise/gatepass/internal/config"
	"github.com/gatewise/gatepass/internal/infrastructure/external/console"
	larkext "github.com/gatewise/gatepass/internal/infrastructure/external/lark"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/repository"
	"github.com/gatewise/gatepass/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/gatewise/gatepass/internal/interfaces/http"
	"github.com/gatewise/gatepass/pkg/database"
	"github.com/gatewise/gatepass/pkg/utils"
)

func main() {
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
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

	logger.Info("Starting gate pass service",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	sqlDB, err := database.Open(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer sqlDB.Close()

	migrator := database.NewMigrator(sqlDB, logger)
	if err := migrator.Run(cfg.Database.MigrationsDir); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	txManager := sqlite.NewDB(sqlDB, logger)

	configRepo := repository.NewConfigRepository(sqlDB, txManager, logger)
	instanceRepo := repository.NewInstanceRepository(sqlDB, logger)
	appointmentRepo := repository.NewAppointmentRepository(sqlDB, logger)
	masterData := repository.NewMasterDataRepository(sqlDB, logger)

	sugar := sugarAdapter{logger.Sugar()}

	events := dispatcher.New(dispatcher.WithLogger(sugar))
	defer events.Close()

	var notifier port.Notifier
	if cfg.Lark.Enabled {
		sdk := larkext.NewSDKClient(larkext.Config{
			AppID:     cfg.Lark.AppID,
			AppSecret: cfg.Lark.AppSecret,
		}, logger)
		notifier = larkext.NewNotifier(sdk, logger)
	} else {
		notifier = console.NewNotifier(logger)
	}

	configService := service.NewConfigService(configRepo, masterData, sugar)
	workflowService := service.NewWorkflowService(configRepo, instanceRepo, appointmentRepo, masterData, txManager, events, sugar)
	appointmentService := service.NewAppointmentService(appointmentRepo, events, sugar)
	passService := service.NewPassService(configRepo, appointmentRepo, events, sugar)
	notificationService := service.NewNotificationService(notifier, sugar)

	passService.Register(events)
	notificationService.Register(events)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, configService, workflowService, appointmentService, sugar)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited")
}

// sugarAdapter exposes zap's sugared logger through the narrow Logger
// interfaces of the application packages.
type sugarAdapter struct {
	s *zap.SugaredLogger
}

func (a sugarAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.s.Infow(msg, keysAndValues...)
}

func (a sugarAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.s.Errorw(msg, keysAndValues...)
}
