package models

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"
)

// logger adapts zerolog to the gorm logger interface.
type logger struct {
	Logger zerolog.Logger
}

func (l *logger) LogMode(gorm_logger.LogLevel) gorm_logger.Interface {
	return l
}

func (l *logger) Info(_ context.Context, s string, args ...interface{}) {
	l.Logger.Info().Msgf(s, args...)
}

func (l *logger) Warn(_ context.Context, s string, args ...interface{}) {
	l.Logger.Warn().Msgf(s, args...)
}

func (l *logger) Error(_ context.Context, s string, args ...interface{}) {
	l.Logger.Error().Msgf(s, args...)
}

func (l *logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	sql, rows := fc()

	event := l.Logger.Debug()

	// Trace runs before the callbacks translate the error, so the raw
	// not-found error is the benign case here.
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && !errors.Is(err, ErrResourceNotFound) {
		event = l.Logger.Error().Err(err)
	}

	event.Str("sql", sql).Int64("rows", rows).Dur("duration", time.Since(begin)).Msg("query")
}
