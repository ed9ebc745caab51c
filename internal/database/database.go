package database

import (
	"context"
	"fmt"
	"time"

	"github.com/straye-as/cbam-api/internal/config"
	"github.com/straye-as/cbam-api/internal/domain"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens the configured database. PostgreSQL is the production
// driver; SQLite serves local development and tests.
func NewDatabase(cfg *config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if cfg.IsSQLite() {
		dialector = sqlite.Open(cfg.SQLitePath)
	} else {
		dialector = postgres.Open(cfg.ConnectionString())
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.IsSQLite() {
		// SQLite serializes writers; one connection avoids "database is locked"
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetimeDuration())
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("Database connected",
		zap.String("driver", cfg.Driver),
		zap.String("database", databaseName(cfg)),
	)

	if cfg.AutoMigrate {
		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		log.Info("Database schema auto-migrated")
	}

	return db, nil
}

func databaseName(cfg *config.DatabaseConfig) string {
	if cfg.IsSQLite() {
		return cfg.SQLitePath
	}
	return cfg.Name
}

// AutoMigrate creates or updates the schema from the models. Production
// deployments use the goose migrations instead.
func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.Entry{},
		&domain.EntryPrecursor{},
		&domain.EntryLock{},
		&domain.Submission{},
	); err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}
	return nil
}

// HealthCheck pings the database
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database instance: %w", err)
	}
	return sqlDB.PingContext(ctx)
}

// Stats is the connection pool snapshot reported by /health/db
type Stats struct {
	Status          string `json:"status"`
	OpenConnections int    `json:"openConnections"`
	InUse           int    `json:"inUse"`
	Idle            int    `json:"idle"`
	MaxOpen         int    `json:"maxOpenConnections"`
	WaitCount       int64  `json:"waitCount"`
	WaitDuration    string `json:"waitDuration"`
	Error           string `json:"error,omitempty"`
}

// HealthCheckWithStats pings the database and returns pool statistics
func HealthCheckWithStats(ctx context.Context, db *gorm.DB) Stats {
	sqlDB, err := db.DB()
	if err != nil {
		return Stats{Status: "unhealthy", Error: err.Error()}
	}
	s := sqlDB.Stats()
	stats := Stats{
		Status:          "healthy",
		OpenConnections: s.OpenConnections,
		InUse:           s.InUse,
		Idle:            s.Idle,
		MaxOpen:         s.MaxOpenConnections,
		WaitCount:       s.WaitCount,
		WaitDuration:    s.WaitDuration.String(),
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		stats.Status = "unhealthy"
		stats.Error = err.Error()
	}
	return stats
}
