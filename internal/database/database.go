package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/mambasports/team-service/internal/configs"
	"github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

const (
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite3"
)

type Database struct {
	DB     *sqlx.DB
	driver string
}

func Connect(ctx context.Context, cfg *configs.Config, log *zap.Logger) (*Database, error) {
	db, err := Open(ctx, cfg.DB.Driver, cfg.SQLDSN())
	if err != nil {
		return nil, err
	}

	if db.driver == DriverMySQL {
		db.DB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
		db.DB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
		db.DB.SetConnMaxLifetime(cfg.DB.ConnLifetime)
	}

	if cfg.DB.Migrate {
		if err := db.Migrate(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("database migration failed: %w", err)
		}
		log.Info("database schema migrated", zap.String("driver", db.driver))
	}
	return db, nil
}

// Open connects and pings. SQLite connections are pinned to a single
// connection so in-memory databases stay shared.
func Open(ctx context.Context, driver, dsn string) (*Database, error) {
	if driver == DriverMySQL {
		parsed, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, fmt.Errorf("invalid mysql dsn: %w", err)
		}
		parsed.ParseTime = true
		parsed.Loc = time.UTC
		dsn = parsed.FormatDSN()
	}

	sqlDB, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if driver == DriverSQLite {
		sqlDB.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return &Database{DB: sqlDB, driver: driver}, nil
}

func (d *Database) Close() error {
	if d.DB == nil {
		return nil
	}
	if err := d.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

func (d *Database) HealthCheck(ctx context.Context) error {
	if d.DB == nil {
		return fmt.Errorf("sql.DB is not initialized")
	}
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}
	return d.DB.PingContext(ctx)
}

// IsDuplicateKey reports a unique-constraint violation from either driver.
func IsDuplicateKey(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == 1062
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
