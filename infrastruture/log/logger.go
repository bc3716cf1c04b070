// Package logger writes levelled, colour-tagged log lines of the form
// "[PREFIX] [LEVEL] message" through a zap core.
package logger

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/config"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ i.Logger = &Logger{}

var ErrNilWriter = errors.New("logger writer is nil")

const timeLayout = "2006/01/02 15:04:05"

// Logger is a levelled logger safe for concurrent use.
type Logger struct {
	z     *zap.Logger
	level zap.AtomicLevel
}

// New creates a logger tagging every line with prefix in color.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, ErrNilWriter
	}

	tag := ""
	if prefix != "" {
		tag = fmt.Sprintf("%s[%s]%s", color, prefix, config.LogColorReset)
	}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "T",
		LevelKey:         "L",
		MessageKey:       "M",
		ConsoleSeparator: " ",
		EncodeTime: func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(t.Format(timeLayout))
			if tag != "" {
				enc.AppendString(tag)
			}
		},
		EncodeLevel: encodeLevel,
	})

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	core := zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(w)), level)
	return &Logger{z: zap.New(core), level: level}, nil
}

// Discard returns a logger that drops everything.
func Discard() *Logger {
	l, _ := New("", "", io.Discard)
	return l
}

// SetDebug enables or disables Debug output.
func (l *Logger) SetDebug(enabled bool) {
	if enabled {
		l.level.SetLevel(zapcore.DebugLevel)
		return
	}
	l.level.SetLevel(zapcore.InfoLevel)
}

// Info implements i.Logger.
func (l *Logger) Info(msg string) {
	l.z.Info(msg)
}

// Warning implements i.Logger.
func (l *Logger) Warning(msg string) {
	l.z.Warn(msg)
}

// Error implements i.Logger.
func (l *Logger) Error(msg string) {
	l.z.Error(msg)
}

// Debug implements i.Logger. Lines are dropped unless debug is enabled.
func (l *Logger) Debug(msg string) {
	l.z.Debug(msg)
}

// Writer exposes a standard library logger writing INFO lines with the same
// prefix, for components that take a *log.Logger.
func (l *Logger) Writer() *log.Logger {
	return zap.NewStdLog(l.z)
}

func encodeLevel(lvl zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	color, name := config.LogInfoColor, "INFO"
	switch lvl {
	case zapcore.DebugLevel:
		color, name = config.LogDebugColor, "DEBUG"
	case zapcore.WarnLevel:
		color, name = config.LogWarningColor, "WARNING"
	case zapcore.ErrorLevel, zapcore.DPanicLevel, zapcore.PanicLevel, zapcore.FatalLevel:
		color, name = config.LogErrorColor, "ERROR"
	}
	enc.AppendString(color + "[" + name + "]" + config.LogColorReset)
}
