package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"skyatlas/airports/internal/logging"
)

// SlowQueryThreshold is the duration above which a statement is logged at warn.
const SlowQueryThreshold = 500 * time.Millisecond

// zapGormLogger routes GORM's log output into the global zap logger. Failed
// statements are logged at error, slow ones at warn, everything else at debug.
type zapGormLogger struct {
	level         logger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger returns a GORM logger backed by the application logger.
func NewGormLogger(level logger.LogLevel) logger.Interface {
	return &zapGormLogger{level: level, slowThreshold: SlowQueryThreshold}
}

func (l *zapGormLogger) LogMode(level logger.LogLevel) logger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *zapGormLogger) Info(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Info {
		logging.Info("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *zapGormLogger) Warn(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Warn {
		logging.Warn("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *zapGormLogger) Error(_ context.Context, msg string, args ...interface{}) {
	if l.level >= logger.Error {
		logging.Error("gorm: " + fmt.Sprintf(msg, args...))
	}
}

func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= logger.Silent {
		return
	}

	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.level >= logger.Error:
		sql, rows := fc()
		logging.Error("Query failed", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds(), "error", err.Error())
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= logger.Warn:
		sql, rows := fc()
		logging.Warn("Slow query", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	case l.level >= logger.Info:
		sql, rows := fc()
		logging.Debug("Query", "sql", sql, "rows", rows, "elapsed_ms", elapsed.Milliseconds())
	}
}
