package database

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// GormLogger routes gorm's statement logging through zerolog.
type GormLogger struct {
	log           zerolog.Logger
	level         zerolog.Level
	slowThreshold time.Duration
}

func NewGormLogger(log zerolog.Logger, level zerolog.Level, slowThreshold time.Duration) *GormLogger {
	return &GormLogger{
		log:           log.With().Str("component", "gorm").Logger(),
		level:         level,
		slowThreshold: slowThreshold,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	switch level {
	case gormlogger.Silent:
		clone.level = zerolog.Disabled
	case gormlogger.Error:
		clone.level = zerolog.ErrorLevel
	case gormlogger.Warn:
		clone.level = zerolog.WarnLevel
	case gormlogger.Info:
		clone.level = zerolog.DebugLevel
	}
	return &clone
}

func (l *GormLogger) enabled(level zerolog.Level) bool {
	return l.level != zerolog.Disabled && level >= l.level
}

func (l *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(zerolog.InfoLevel) {
		l.log.Info().Msgf(msg, args...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(zerolog.WarnLevel) {
		l.log.Warn().Msgf(msg, args...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.enabled(zerolog.ErrorLevel) {
		l.log.Error().Msgf(msg, args...)
	}
}

func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level == zerolog.Disabled {
		return
	}
	elapsed := time.Since(begin)

	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && l.enabled(zerolog.ErrorLevel):
		sql, rows := fc()
		l.log.Error().Err(err).Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query failed")
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.enabled(zerolog.WarnLevel):
		sql, rows := fc()
		l.log.Warn().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("slow query")
	case l.enabled(zerolog.DebugLevel):
		sql, rows := fc()
		l.log.Debug().Dur("elapsed", elapsed).Int64("rows", rows).Str("sql", sql).Msg("query")
	}
}
