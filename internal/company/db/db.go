// Package db provides the relational slot store used by the storage adapter,
// backed by GORM with SQLite or PostgreSQL.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gartstein/companydesk/internal/company/db/models"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// SlotStore keeps keyed blobs in the slots table.
type SlotStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

type Config struct {
	Driver     string
	SQLitePath string
	Host       string
	Port       int
	User       string
	Password   string
	DBName     string
	SSLMode    string
	// MaxElapsed bounds connection retries. Zero means one attempt.
	MaxElapsed time.Duration
}

func (c *Config) dialector() (gorm.Dialector, error) {
	switch c.Driver {
	case DriverSQLite, "":
		path := c.SQLitePath
		if path == "" {
			path = "companydesk.sqlite"
		}
		return sqlite.Open(path), nil
	case DriverPostgres:
		dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", c.Driver)
	}
}

// NewSlotStore connects, retrying with exponential backoff, and migrates the slots table.
func NewSlotStore(ctx context.Context, cfg *Config, logger *zap.Logger) (*SlotStore, error) {
	dialector, err := cfg.dialector()
	if err != nil {
		return nil, err
	}
	logger = logger.Named("slot_store")

	var db *gorm.DB
	connect := func() error {
		db, err = gorm.Open(dialector, &gorm.Config{})
		if err != nil {
			logger.Warn("database connection attempt failed", zap.Error(err))
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = cfg.MaxElapsed
	var b backoff.BackOff = policy
	if cfg.MaxElapsed == 0 {
		b = &backoff.StopBackOff{}
	}
	if err := backoff.Retry(connect, backoff.WithContext(b, ctx)); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return newSlotStore(db, logger)
}

func newSlotStore(db *gorm.DB, logger *zap.Logger) (*SlotStore, error) {
	if err := db.AutoMigrate(&models.Slot{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return &SlotStore{db: db, logger: logger}, nil
}

// Get returns the blob under key, or nil if the key was never written.
func (s *SlotStore) Get(ctx context.Context, key string) ([]byte, error) {
	var slot models.Slot
	result := s.db.WithContext(ctx).Where(&models.Slot{Key: key}).First(&slot)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, result.Error
	}
	return []byte(slot.Value), nil
}

// Put replaces the blob under key, inserting the row on first write.
func (s *SlotStore) Put(ctx context.Context, key string, value []byte) error {
	slot := &models.Slot{Key: key, Value: datatypes.JSON(value)}
	result := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(slot)
	if result.Error != nil {
		return result.Error
	}
	s.logger.Debug("slot written", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (s *SlotStore) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	return db.Close()
}
