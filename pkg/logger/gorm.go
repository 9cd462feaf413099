package logger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm/logger"
)

// GormLogger routes GORM's query log through the shared slog logger.
// Record-not-found results are never logged as errors: the ledger reads an
// entity's current assignment with First and treats a miss as normal control
// flow (never assigned, or currently released), so logging those would bury
// real failures.
type GormLogger struct {
	LogLevel      logger.LogLevel
	SlowThreshold time.Duration
}

// NewGormLogger creates a query logger. Queries slower than slowThreshold
// are logged at warn level; zero disables the slow-query check.
func NewGormLogger(logLevel logger.LogLevel, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		LogLevel:      logLevel,
		SlowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.LogLevel = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Info {
		Log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Warn {
		Log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.LogLevel >= logger.Error {
		Log.Error(fmt.Sprintf(msg, data...))
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.LogLevel <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()

	fields := []any{
		slog.String("sql", sql),
		slog.Int64("rows", rows),
		slog.Duration("elapsed", elapsed),
	}

	switch {
	case err != nil && !errors.Is(err, logger.ErrRecordNotFound):
		if l.LogLevel >= logger.Error {
			fields = append(fields, slog.String("error", err.Error()))
			Log.Error("query failed", fields...)
		}
	case l.SlowThreshold > 0 && elapsed >= l.SlowThreshold:
		if l.LogLevel >= logger.Warn {
			fields = append(fields, slog.Duration("threshold", l.SlowThreshold))
			Log.Warn("slow query", fields...)
		}
	default:
		if l.LogLevel >= logger.Info {
			Log.Debug("query", fields...)
		}
	}
}
