package archive

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/perf-fold/pkg/compression"
	"github.com/perf-fold/pkg/config"
	"github.com/perf-fold/pkg/errors"
	"github.com/perf-fold/pkg/telemetry"
)

// DBType represents the archive database type.
type DBType string

const (
	DBTypeSQLite   DBType = "sqlite"
	DBTypeMySQL    DBType = "mysql"
	DBTypePostgres DBType = "postgres"
)

// Open connects to the configured archive database, migrates the schema
// and returns a ready Archive.
func Open(cfg *config.ArchiveConfig) (Archive, error) {
	db, err := openGormDB(cfg)
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Run{}, &Profile{}); err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to migrate archive schema", err)
	}

	codec, err := compression.FromName(cfg.Compression)
	if err != nil {
		return nil, err
	}

	return NewGormArchive(db, codec), nil
}

func openGormDB(cfg *config.ArchiveConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch DBType(cfg.Type) {
	case DBTypeSQLite, DBType(""):
		path := cfg.Path
		if path == "" {
			path = "perf-fold.db"
		}
		dialector = sqlite.Open(path)
	case DBTypeMySQL:
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%d)/%s?parseTime=true&loc=Local",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		)
		dialector = mysql.Open(dsn)
	case DBTypePostgres, DBType("postgresql"):
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, errors.New(errors.CodeConfigError, "unsupported archive database type: "+cfg.Type)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to open archive database", err)
	}

	if telemetry.Enabled() {
		if err := db.Use(tracing.NewPlugin()); err != nil {
			return nil, errors.Wrap(errors.CodeDatabaseError, "failed to enable database tracing", err)
		}
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to get underlying sql.DB", err)
	}

	maxConns := cfg.MaxConns
	if maxConns <= 0 {
		maxConns = 10
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns / 2)
	sqlDB.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, errors.Wrap(errors.CodeDatabaseError, "failed to ping archive database", err)
	}

	return db, nil
}
