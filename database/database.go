package database

import (
	"fmt"
	"time"

	"github.com/Sean-Brix/RiderMind-sub003/config"
	"github.com/Sean-Brix/RiderMind-sub003/logger"
	"github.com/Sean-Brix/RiderMind-sub003/models/content"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// DbInstance struct holds the database connection instance
type DbInstance struct {
	Db *gorm.DB
}

// Database is the global database instance
var Database DbInstance

// ConnectDb opens the configured database, runs migrations and stores the
// handle globally.
func ConnectDb(cfg *config.Config, log *logger.Logger) (*gorm.DB, error) {
	var (
		db  *gorm.DB
		err error
	)

	switch cfg.DBDriver {
	case "sqlite":
		db, err = OpenSQLite(cfg.SQLitePath, log)
	default:
		db, err = OpenPostgres(cfg.PostgresDSN(), log)
	}
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(db, log); err != nil {
		return nil, err
	}

	Database = DbInstance{Db: db}
	return db, nil
}

// OpenPostgres establishes a connection to PostgreSQL
func OpenPostgres(dsn string, log *logger.Logger) (*gorm.DB, error) {
	log.Info("Connecting to Postgres...")
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:                                   NewGormLogger(log),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Set up connection pooling
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// OpenSQLite opens a SQLite database. Writers are serialized through a single
// connection, which also keeps shared in-memory databases alive.
func OpenSQLite(dsn string, log *logger.Logger) (*gorm.DB, error) {
	log.Info("Opening SQLite...", "dsn", dsn)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:                                   NewGormLogger(log),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	return db, nil
}

// RunMigrations performs database migrations
func RunMigrations(db *gorm.DB, log *logger.Logger) error {
	log.Info("Running migrations...")
	if err := db.AutoMigrate(content.All()...); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	log.Info("Migrations completed successfully")
	return nil
}
