package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/nutrical/backend/internal/domain"
)

// Config selects and tunes the SQL backend
type Config struct {
	Driver       string // "sqlite" or "postgres"
	DSN          string
	MaxOpenConns int
	// Debug logs every SQL statement at DEBUG level
	Debug  bool
	Logger *slog.Logger
}

// sqliteBusyTimeoutMS is how long a writer waits for the database lock
// before sqlite reports it busy.
const sqliteBusyTimeoutMS = "5000"

// Open connects to the configured database with driver error translation enabled,
// so unique violations surface as gorm.ErrDuplicatedKey.
func Open(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(sqliteDSN(cfg.DSN))
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         NewSlogAdapter(cfg.Logger, slowQueryThreshold, cfg.Debug),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get database handle: %w", err)
	}
	switch {
	case cfg.Driver == "sqlite" && cfg.DSN == ":memory:":
		// every connection to :memory: opens a separate empty database
		sqlDB.SetMaxOpenConns(1)
	case cfg.MaxOpenConns > 0:
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	slog.Info("database connected", "component", "database", "driver", cfg.Driver)
	return db, nil
}

// sqliteDSN makes file databases take the write lock when a transaction
// begins and wait for it, so concurrent writers queue instead of failing
// half way through. Options already present in dsn are kept.
func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		return dsn
	}
	base, rawQuery, _ := strings.Cut(dsn, "?")
	query, err := url.ParseQuery(rawQuery)
	if err != nil {
		return dsn
	}
	if query.Get("_txlock") == "" {
		query.Set("_txlock", "immediate")
	}
	if query.Get("_busy_timeout") == "" && query.Get("_timeout") == "" {
		query.Set("_busy_timeout", sqliteBusyTimeoutMS)
	}
	return base + "?" + query.Encode()
}

// Migrate creates or updates every table used by the repositories
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&nutrientRow{},
		&ingredientRow{},
		&productRow{},
		&componentRow{},
		&referenceTableRow{},
		&labelTypeRow{},
		&labelNutrientRow{},
		&allergenRow{},
		&productAllergenRow{},
		&labelRow{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Pinger returns a health check for the connection pool
func Pinger(db *gorm.DB) func(context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// translate maps gorm errors onto the domain taxonomy
func translate(err error, entity, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict),
		errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrConfiguration):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return domain.NotFound(entity, id)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return &domain.Error{Kind: domain.ErrConflict, Entity: entity, ID: id, Msg: "already exists", Err: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return &domain.Error{Kind: domain.ErrConflict, Entity: entity, ID: id, Msg: "still referenced", Err: err}
	case isContention(err):
		return &domain.Error{Kind: domain.ErrConflict, Entity: entity, ID: id, Msg: "concurrent write, retry", Err: err}
	}
	return fmt.Errorf("%s %q: %w", entity, id, err)
}

// isContention reports lock and serialization failures that a retry can resolve:
// sqlite busy or locked, postgres serialization_failure and deadlock_detected.
func isContention(err error) bool {
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.Code == sqlite3.ErrBusy || liteErr.Code == sqlite3.ErrLocked
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
