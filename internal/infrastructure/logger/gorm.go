package logger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	gormlogger "gorm.io/gorm/logger"
)

// SQLLogConfig tunes SQLLogger
type SQLLogConfig struct {
	Level         gormlogger.LogLevel
	SlowThreshold time.Duration
}

// SQLLogger sends GORM statement logs to zap, tagged with the request and
// tenant found on the statement's context.
type SQLLogger struct {
	log *zap.Logger
	cfg SQLLogConfig
}

// NewSQLLogger returns a GORM logger writing to the "gorm" child of log
func NewSQLLogger(log *zap.Logger, cfg SQLLogConfig) *SQLLogger {
	return &SQLLogger{log: log.Named("gorm"), cfg: cfg}
}

func (l *SQLLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cfg := l.cfg
	cfg.Level = level
	return &SQLLogger{log: l.log, cfg: cfg}
}

func (l *SQLLogger) Info(_ context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Info {
		l.log.Info(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Warn(_ context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Warn {
		l.log.Warn(fmt.Sprintf(msg, data...))
	}
}

func (l *SQLLogger) Error(_ context.Context, msg string, data ...any) {
	if l.cfg.Level >= gormlogger.Error {
		l.log.Error(fmt.Sprintf(msg, data...))
	}
}

// Trace logs one statement. Missing rows are not logged. Statements that
// lost a lock wait (deadline, cancellation, lock_not_available, deadlock)
// are warnings: the caller reports those as timeouts or retries them.
func (l *SQLLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.cfg.Level <= gormlogger.Silent {
		return
	}
	if err != nil && errors.Is(err, gormlogger.ErrRecordNotFound) {
		return
	}

	elapsed := time.Since(begin)
	slow := l.cfg.SlowThreshold > 0 && elapsed > l.cfg.SlowThreshold

	level := zap.DebugLevel
	msg := "SQL query"
	switch {
	case err != nil && lockContention(err):
		level, msg = zap.WarnLevel, "SQL interrupted"
	case err != nil:
		level, msg = zap.ErrorLevel, "SQL error"
	case slow:
		level, msg = zap.WarnLevel, "Slow SQL"
	}
	if !l.enabled(level) {
		return
	}

	sql, rows := fc()
	fields := []zap.Field{
		zap.Duration("elapsed", elapsed),
		zap.Int64("rows", rows),
		zap.String("sql", sql),
	}
	if id := GetRequestID(ctx); id != "" {
		fields = append(fields, zap.String("request_id", id))
	}
	if id := GetTenantID(ctx); id != "" {
		fields = append(fields, zap.String("tenant_id", id))
	}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	if slow {
		fields = append(fields, zap.Duration("threshold", l.cfg.SlowThreshold))
	}
	l.log.Log(level, msg, fields...)
}

func (l *SQLLogger) enabled(level zapcore.Level) bool {
	switch level {
	case zap.ErrorLevel:
		return l.cfg.Level >= gormlogger.Error
	case zap.WarnLevel:
		return l.cfg.Level >= gormlogger.Warn
	default:
		return l.cfg.Level >= gormlogger.Info
	}
}

func lockContention(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// lock_not_available, deadlock_detected, query_canceled
		return pgErr.Code == "55P03" || pgErr.Code == "40P01" || pgErr.Code == "57014"
	}
	return false
}

// ParseSQLLogLevel maps a config string to a GORM log level; debug and
// info both log every statement. Unknown values fall back to warn.
func ParseSQLLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
