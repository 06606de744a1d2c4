// Package logger is the process-wide structured logger. Output goes to
// stderr so stdout only carries benchmark results.
package logger

import (
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger   *zap.Logger
	log      *zap.SugaredLogger
	initLock sync.Mutex
)

func init() {
	Initialise(zapcore.InfoLevel, "console")
}

type Config struct {
	Format string `help:"Format to write log lines in" enum:"console,json" default:"console"`
	Level  string `help:"Lowest log level that will be emitted" enum:"debug,info,warn,error" default:"info"`
}

func (cfg *Config) Configure() error {
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(cfg.Level))); err != nil {
		return errors.WithStack(err)
	}
	format := strings.ToLower(strings.TrimSpace(cfg.Format))
	if format != "console" && format != "json" {
		return errors.Errorf("log-format must be one of 'console' or 'json', got %q", cfg.Format)
	}
	Initialise(level, format)
	return nil
}

// DebugEnabled is fixed at initialisation so hot paths can skip formatting.
var DebugEnabled = false

func Initialise(level zapcore.Level, encoding string) {
	initLock.Lock()
	defer initLock.Unlock()
	logger = CreateLogger(level, encoding)
	log = logger.Sugar()
	DebugEnabled = logger.Core().Enabled(zap.DebugLevel)
}

func CreateLogger(level zapcore.Level, encoding string) *zap.Logger {
	encoderConf := zapcore.EncoderConfig{
		TimeKey:        "T",
		LevelKey:       "L",
		NameKey:        "N",
		MessageKey:     "M",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     timeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	conf := zap.Config{
		Level:             zap.NewAtomicLevelAt(level),
		Encoding:          encoding,
		EncoderConfig:     encoderConf,
		OutputPaths:       []string{"stderr"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     true,
		DisableStacktrace: true,
	}
	l, err := conf.Build()
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func timeEncoder(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(t.Format("2006-01-02 15:04:05.999999"))
}

// Sync flushes buffered log entries.
func Sync() {
	_ = logger.Sync()
}

func Debugf(format string, args ...interface{}) {
	if !DebugEnabled {
		return
	}
	log.Debugf(format, args...)
}

func Infof(format string, args ...interface{}) {
	log.Infof(format, args...)
}

func Warnf(format string, args ...interface{}) {
	log.Warnf(format, args...)
}

func Errorf(format string, args ...interface{}) {
	log.Errorf(format, args...)
}

// Fatalf logs at fatal level and exits the process with status 1.
func Fatalf(format string, args ...interface{}) {
	log.Fatalf(format, args...)
}
