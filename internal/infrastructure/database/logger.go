package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const slowQueryThreshold = 200 * time.Millisecond

// SlogAdapter sends gorm's output through slog so SQL lines share the
// service's log stream and format. Statements are logged at DEBUG only when
// traceSQL is set; failed and slow statements are always logged at WARN.
type SlogAdapter struct {
	logger        *slog.Logger
	slowThreshold time.Duration
	traceSQL      bool
}

// NewSlogAdapter creates a gorm logger writing to logger
func NewSlogAdapter(logger *slog.Logger, slowThreshold time.Duration, traceSQL bool) *SlogAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogAdapter{
		logger:        logger.With("component", "database"),
		slowThreshold: slowThreshold,
		traceSQL:      traceSQL,
	}
}

// LogMode returns the adapter unchanged; levels come from the slog handler
func (a *SlogAdapter) LogMode(gormlogger.LogLevel) gormlogger.Interface {
	return a
}

func (a *SlogAdapter) Info(ctx context.Context, msg string, data ...any) {
	a.logger.DebugContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *SlogAdapter) Warn(ctx context.Context, msg string, data ...any) {
	a.logger.WarnContext(ctx, fmt.Sprintf(msg, data...))
}

func (a *SlogAdapter) Error(ctx context.Context, msg string, data ...any) {
	a.logger.ErrorContext(ctx, fmt.Sprintf(msg, data...))
}

// Trace logs one executed statement. Missing rows are expected lookups and
// are not reported as errors.
func (a *SlogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		a.logger.WarnContext(ctx, "query error",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"error", err)
	case a.slowThreshold > 0 && elapsed > a.slowThreshold:
		sql, rows := fc()
		a.logger.WarnContext(ctx, "slow query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds(),
			"threshold", a.slowThreshold)
	case a.traceSQL:
		sql, rows := fc()
		a.logger.DebugContext(ctx, "sql query",
			"sql", sql,
			"rows_affected", rows,
			"duration_ms", elapsed.Milliseconds())
	}
}
