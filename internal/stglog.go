package internal

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	ErrParseStrToLevel = errors.New("string can't be parsed to level, use: `error`, `info`, `debug`")
)

type Level int

const (
	ERR Level = iota
	INF
	DBG
)

func (l Level) String() string { return [3]string{"Error", "Info", "Debug"}[l] }

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case ERR:
		return zapcore.ErrorLevel
	case DBG:
		return zapcore.DebugLevel
	}
	return zapcore.InfoLevel
}

func NewStdLog(opts ...Option) *StdLog {
	l := &StdLog{lvl: INF}
	for _, opt := range opts {
		opt(l)
	}
	if l.base == nil {
		l.base = newZap(l.lvl, l.production)
	}
	l.sugar = l.base.Sugar()
	return l
}

func newZap(lvl Level, production bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.DisableStacktrace = true
	cfg.DisableCaller = true
	if production {
		cfg = zap.NewProductionConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl.zapLevel())
	return zap.Must(cfg.Build())
}

type StdLog struct {
	base       *zap.Logger
	sugar      *zap.SugaredLogger
	lvl        Level
	production bool
}

func (l *StdLog) Debug(format string, v ...interface{}) {
	if l.lvl < DBG {
		return
	}
	l.sugar.Debugf(format, v...)
}

func (l *StdLog) Info(format string, v ...interface{}) {
	if l.lvl < INF {
		return
	}
	l.sugar.Infof(format, v...)
}

func (l *StdLog) Error(format string, v ...interface{}) {
	if l.lvl < ERR {
		return
	}
	l.sugar.Errorf(format, v...)
}

func (l *StdLog) Fatal(format string, v ...interface{}) {
	l.sugar.Fatalf(format, v...)
}

// With returns a child logger that attaches key/value pairs to every entry.
func (l *StdLog) With(args ...interface{}) *StdLog {
	child := *l
	child.sugar = l.sugar.With(args...)
	return &child
}

func (l *StdLog) Sync() {
	_ = l.base.Sync()
}

type Option func(l *StdLog)

func WithLevel(level Level) Option { return func(l *StdLog) { l.lvl = level } }

// WithProduction switches the output to zap's JSON production encoding.
func WithProduction() Option { return func(l *StdLog) { l.production = true } }

// WithZap replaces the underlying zap logger.
func WithZap(z *zap.Logger) Option { return func(l *StdLog) { l.base = z } }

func ParseLevel(lvl string) (Level, error) {
	levels := map[string]Level{
		strings.ToLower(ERR.String()): ERR,
		strings.ToLower(INF.String()): INF,
		strings.ToLower(DBG.String()): DBG,
	}
	level, ok := levels[strings.ToLower(lvl)]
	if !ok {
		return INF, fmt.Errorf("%s %w", lvl, ErrParseStrToLevel)
	}
	return level, nil
}
