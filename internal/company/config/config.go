// Package config loads companydesk settings from a YAML file and lets
// environment variables of the same name override every key.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gartstein/companydesk/internal/company/db"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given. It may be absent.
const DefaultPath = "internal/company/config/config.yaml"

const (
	StorageMemory   = "memory"
	StorageSQLite   = db.DriverSQLite
	StoragePostgres = db.DriverPostgres
	StorageMongo    = "mongo"
)

// Config is the YAML configuration.
type Config struct {
	HTTPPort       int           `yaml:"HTTP_PORT"`
	StorageDriver  string        `yaml:"STORAGE_DRIVER"`
	SQLitePath     string        `yaml:"SQLITE_PATH"`
	DBHost         string        `yaml:"DB_HOST"`
	DBPort         int           `yaml:"DB_PORT"`
	DBUser         string        `yaml:"DB_USER"`
	DBPassword     string        `yaml:"DB_PASSWORD"`
	DBName         string        `yaml:"DB_NAME"`
	DBSSLMode      string        `yaml:"DB_SSLMODE"`
	DBRetryTimeout time.Duration `yaml:"DB_RETRY_TIMEOUT"`
	MongoURI       string        `yaml:"MONGO_URI"`
	MongoDatabase  string        `yaml:"MONGO_DATABASE"`
	SlotKey        string        `yaml:"SLOT_KEY"`
	KafkaBrokers   []string      `yaml:"KAFKA_BROKERS"`
	Topic          string        `yaml:"TOPIC"`
	GroupID        string        `yaml:"GROUP_ID"`
	JWTSecret      string        `yaml:"JWT_SECRET"`
	SkillCatalog   []string      `yaml:"SKILL_CATALOG"`
	FlashDuration  time.Duration `yaml:"FLASH_DURATION"`
	NavigateDelay  time.Duration `yaml:"NAVIGATE_DELAY"`
	LogFile        string        `yaml:"LOG_FILE"`
}

// Default returns the settings used for keys no source sets.
func Default() *Config {
	return &Config{
		HTTPPort:       8080,
		StorageDriver:  StorageSQLite,
		SQLitePath:     "companydesk.sqlite",
		DBPort:         5432,
		DBSSLMode:      "disable",
		DBRetryTimeout: 30 * time.Second,
		MongoDatabase:  "companydesk",
		SlotKey:        "companies",
		Topic:          "company.records",
		GroupID:        "companydesk",
		FlashDuration:  2 * time.Second,
		NavigateDelay:  800 * time.Millisecond,
		LogFile:        "companydesk.log",
	}
}

// Load reads path over the defaults and then applies environment overrides.
// An empty path reads DefaultPath and tolerates its absence.
func Load(path string) (*Config, error) {
	cfg := Default()

	optional := path == ""
	if optional {
		path = DefaultPath
	}
	file, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	case optional && errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	list := func(key string, dst *[]string) {
		if v, ok := lookup(key); ok {
			*dst = splitList(v)
		}
	}
	num := func(key string, dst *int) error {
		if v, ok := lookup(key); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = n
		}
		return nil
	}
	dur := func(key string, dst *time.Duration) error {
		if v, ok := lookup(key); ok {
			d, err := time.ParseDuration(strings.TrimSpace(v))
			if err != nil {
				return fmt.Errorf("invalid %s: %w", key, err)
			}
			*dst = d
		}
		return nil
	}

	str("STORAGE_DRIVER", &c.StorageDriver)
	str("SQLITE_PATH", &c.SQLitePath)
	str("DB_HOST", &c.DBHost)
	str("DB_USER", &c.DBUser)
	str("DB_PASSWORD", &c.DBPassword)
	str("DB_NAME", &c.DBName)
	str("DB_SSLMODE", &c.DBSSLMode)
	str("MONGO_URI", &c.MongoURI)
	str("MONGO_DATABASE", &c.MongoDatabase)
	str("SLOT_KEY", &c.SlotKey)
	str("TOPIC", &c.Topic)
	str("GROUP_ID", &c.GroupID)
	str("JWT_SECRET", &c.JWTSecret)
	str("LOG_FILE", &c.LogFile)
	list("KAFKA_BROKERS", &c.KafkaBrokers)
	list("SKILL_CATALOG", &c.SkillCatalog)

	return errors.Join(
		num("HTTP_PORT", &c.HTTPPort),
		num("DB_PORT", &c.DBPort),
		dur("DB_RETRY_TIMEOUT", &c.DBRetryTimeout),
		dur("FLASH_DURATION", &c.FlashDuration),
		dur("NAVIGATE_DELAY", &c.NavigateDelay),
	)
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate rejects settings no component can run with.
func (c *Config) Validate() error {
	var errs []error
	switch c.StorageDriver {
	case StorageMemory, StorageSQLite, StoragePostgres:
	case StorageMongo:
		if c.MongoURI == "" {
			errs = append(errs, errors.New("MONGO_URI is required for the mongo storage driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver))
	}
	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		errs = append(errs, fmt.Errorf("HTTP_PORT %d out of range", c.HTTPPort))
	}
	if strings.TrimSpace(c.SlotKey) == "" {
		errs = append(errs, errors.New("SLOT_KEY must not be empty"))
	}
	return errors.Join(errs...)
}

// DBConfig maps the relational settings onto the slot store config.
func (c *Config) DBConfig() *db.Config {
	return &db.Config{
		Driver:     c.StorageDriver,
		SQLitePath: c.SQLitePath,
		Host:       c.DBHost,
		Port:       c.DBPort,
		User:       c.DBUser,
		Password:   c.DBPassword,
		DBName:     c.DBName,
		SSLMode:    c.DBSSLMode,
		MaxElapsed: c.DBRetryTimeout,
	}
}
