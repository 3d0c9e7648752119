package database

import (
	"fmt"
	"log"
	"log/slog" // use slog for structured logging
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"bookex/internal/config"
	"bookex/internal/http-api/models"
)

// DefaultMenu is the navigation seeded on first migrate.
var DefaultMenu = []models.MenuItem{
	{Item: "Home", Link: "/"},
	{Item: "Display Books", Link: "/displaybooks"},
	{Item: "Post Book", Link: "/postbook"},
	{Item: "My Books", Link: "/mybooks"},
	{Item: "Favorites", Link: "/favorites"},
	{Item: "About Us", Link: "/aboutus"},
}

// Connect opens the configured database, applies the schema and seeds the menu.
func Connect(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		Close(db)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	logger.Info("Database migrations applied successfully", "driver", cfg.DatabaseDriver)

	if err := SeedMenu(db); err != nil {
		Close(db)
		return nil, fmt.Errorf("failed to seed menu: %w", err)
	}

	logger.Info("Connected to the database successfully")
	return db, nil
}

// Open returns a gorm handle for driver ("postgres" or "sqlite") without migrating.
func Open(driver, dsn string) (*gorm.DB, error) {
	gormLog := gormlogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	gormCfg := &gorm.Config{Logger: gormLog, TranslateError: true}

	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		if err := ensureSQLiteDir(dsn); err != nil {
			return nil, err
		}
		dialector = sqlite.Open(sqliteDSN(dsn))
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql handle: %w", err)
	}
	if driver == "sqlite" {
		// one connection keeps in-memory databases shared and serializes writers
		sqlDB.SetMaxOpenConns(1)
	}

	// Verify the connection
	if err := sqlDB.Ping(); err != nil {
		// close the db handle if ping fails to avoid resource leak
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table. Order matters for the foreign keys.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Book{},
		&models.Comment{},
		&models.Rating{},
	)
}

// SeedMenu inserts the default navigation, leaving existing rows alone.
func SeedMenu(db *gorm.DB) error {
	items := make([]models.MenuItem, len(DefaultMenu))
	copy(items, DefaultMenu)
	return db.Clauses(clause.OnConflict{DoNothing: true}).Create(&items).Error
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}

// sqliteDSN turns on foreign key enforcement so ON DELETE CASCADE applies.
func sqliteDSN(dsn string) string {
	if strings.Contains(dsn, "foreign_keys") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)"
}

func ensureSQLiteDir(dsn string) error {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return nil
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create database dir: %w", err)
	}
	return nil
}
