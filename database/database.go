package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sharath018/workshop-checkin-backend/config"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the configured database or exits the process.
func Connect(cfg *config.Config) *gorm.DB {
	db, err := Open(cfg)
	if err != nil {
		log.Fatalf("❌ Database connection failed: %v", err)
	}
	log.Printf("✅ Connected to %s database", cfg.DBDriver)
	return db
}

func Open(cfg *config.Config) (*gorm.DB, error) {
	const op = "database.Open"

	gormCfg := &gorm.Config{
		Logger:  logger.Default.LogMode(gormLogLevel(cfg.Env)),
		NowFunc: func() time.Time { return time.Now().UTC() },
	}

	var (
		db  *gorm.DB
		err error
	)
	switch cfg.DBDriver {
	case config.DriverSQLite:
		db, err = openSQLite(cfg.SQLitePath, gormCfg)
	case config.DriverPostgres, "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
		)
		db, err = gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("%s: unsupported DB_DRIVER %q", op, cfg.DBDriver)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if cfg.DBMaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.DBMaxOpenConns / 2)
	}
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return db, nil
}

// OpenSQLite opens a file-backed SQLite database. Write transactions begin
// IMMEDIATE so concurrent check-ins queue on the database write lock.
func OpenSQLite(path string) (*gorm.DB, error) {
	return openSQLite(path, &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
}

func openSQLite(path string, gormCfg *gorm.Config) (*gorm.DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_busy_timeout=10000&_foreign_keys=1", path)
	return gorm.Open(sqlite.Open(dsn), gormCfg)
}

// Migrate creates or updates tables for the given models. Production
// Postgres deployments use cmd/migrator instead.
func Migrate(db *gorm.DB, models ...any) error {
	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("database.Migrate: %w", err)
	}
	return nil
}

func gormLogLevel(env string) logger.LogLevel {
	if env == config.EnvLocal {
		return logger.Info
	}
	return logger.Warn
}
