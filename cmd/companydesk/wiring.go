package main

import (
	"context"
	"fmt"

	"github.com/gartstein/companydesk/internal/company/config"
	"github.com/gartstein/companydesk/internal/company/controller"
	"github.com/gartstein/companydesk/internal/company/db"
	"github.com/gartstein/companydesk/internal/company/db/docstore"
	"github.com/gartstein/companydesk/internal/company/events"
	"github.com/gartstein/companydesk/internal/company/models"
	"github.com/gartstein/companydesk/internal/company/repository"
	"github.com/gartstein/companydesk/internal/company/storage"
	"go.uber.org/zap"
)

// environment holds everything a command needs and how to release it.
type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *controller.RecordService
	catalog *models.Catalog
	closers []func()
}

func (e *environment) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	syncLogger(e.logger)
}

func setup(ctx context.Context, opts *options, toFile bool) (*environment, error) {
	cfg, logger, err := loadConfigAndLogger(opts, toFile)
	if err != nil {
		return nil, err
	}
	env := &environment{
		cfg:     cfg,
		logger:  logger,
		catalog: models.NewCatalog(cfg.SkillCatalog),
	}

	slot, err := openSlot(ctx, cfg, logger, env)
	if err != nil {
		env.Close()
		return nil, err
	}
	adapter, err := storage.NewAdapter(slot, cfg.SlotKey, logger)
	if err != nil {
		env.Close()
		return nil, err
	}

	var producer controller.EventProducer = events.NopProducer{}
	if len(cfg.KafkaBrokers) > 0 {
		p, err := events.NewProducer(cfg.KafkaBrokers, logger, cfg.Topic)
		if err != nil {
			env.Close()
			return nil, fmt.Errorf("failed to initialize Kafka producer: %w", err)
		}
		env.closers = append(env.closers, p.Close)
		producer = p
	}

	env.service = controller.NewRecordService(repository.New(adapter), producer, logger,
		controller.WithCatalog(env.catalog),
	)
	return env, nil
}

func loadConfigAndLogger(opts *options, toFile bool) (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	logFile := ""
	if toFile {
		logFile = cfg.LogFile
	}
	logger, err := initLogger(opts.debug, logFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// openSlot connects the configured slot backend and registers its cleanup on env.
func openSlot(ctx context.Context, cfg *config.Config, logger *zap.Logger, env *environment) (storage.Slot, error) {
	switch cfg.StorageDriver {
	case config.StorageMemory:
		logger.Warn("using in-memory storage, records are lost on exit")
		return storage.NewMemorySlot(), nil
	case config.StorageMongo:
		store, err := docstore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() {
			if err := store.Close(context.Background()); err != nil {
				logger.Error("failed to close mongo client", zap.Error(err))
			}
		})
		return store, nil
	default:
		store, err := db.NewSlotStore(ctx, cfg.DBConfig(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		env.closers = append(env.closers, func() {
			if err := store.Close(); err != nil {
				logger.Error("failed to close database", zap.Error(err))
			}
		})
		return store, nil
	}
}

// initLogger builds a production logger, or a development one with debug.
// A non-empty logFile redirects output away from the terminal.
func initLogger(debug bool, logFile string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if debug {
		zc = zap.NewDevelopmentConfig()
	}
	if logFile != "" {
		zc.OutputPaths = []string{logFile}
		zc.ErrorOutputPaths = []string{logFile}
	}
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func syncLogger(logger *zap.Logger) {
	// Sync errors on terminal outputs are expected and ignored.
	_ = logger.Sync()
}
