// Package log tags log lines with the connection and request they belong
// to. Lines go to a zap logger; until Init is called nothing is written.
package log

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type ctxKey string

const (
	ConnIDKey    ctxKey = "conn"
	RequestIDKey ctxKey = "req"
)

var logger = zap.NewNop()

// Init replaces the process logger. level is a zap level name such as
// "debug" or "info"; console selects human-readable output over JSON.
func Init(level string, console bool) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}
	config := zap.NewProductionConfig()
	if console {
		config = zap.NewDevelopmentConfig()
	}
	config.Level = zap.NewAtomicLevelAt(lvl)
	built, err := config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger = built
	return nil
}

// Use replaces the process logger with l.
func Use(l *zap.Logger) {
	logger = l
}

// L is the process logger, for callers with no Loggable at hand.
func L() *zap.Logger {
	return logger
}

func Sync() {
	_ = logger.Sync()
}

type Loggable interface {
	Ctx() context.Context
}

func ctxFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if connID := ctx.Value(ConnIDKey); connID != nil {
		fields = append(fields, zap.Any(string(ConnIDKey), connID))
	}
	if reqID := ctx.Value(RequestIDKey); reqID != nil {
		fields = append(fields, zap.Any(string(RequestIDKey), reqID))
	}
	return fields
}

func Println(l Loggable, args ...interface{}) {
	msg := strings.TrimSuffix(fmt.Sprintln(args...), "\n")
	logger.Info(msg, ctxFields(l.Ctx())...)
}

func Printf(l Loggable, format string, args ...interface{}) {
	logger.Info(fmt.Sprintf(format, args...), ctxFields(l.Ctx())...)
}

func Debugf(l Loggable, format string, args ...interface{}) {
	logger.Debug(fmt.Sprintf(format, args...), ctxFields(l.Ctx())...)
}

// Error logs err with the caller's tags.
func Error(l Loggable, msg string, err error) {
	fields := append(ctxFields(l.Ctx()), zap.Error(err))
	logger.Error(msg, fields...)
}
