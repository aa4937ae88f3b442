// Package logging builds named zap loggers backed by a runtime level
// registry, so diagnostics can be turned up per component without rebuilding.
package logging

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var registry = struct {
	mu     sync.Mutex
	levels map[string]zap.AtomicLevel
}{
	levels: make(map[string]zap.AtomicLevel),
}

func levelFor(name string) zap.AtomicLevel {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	if l, ok := registry.levels[name]; ok {
		return l
	}
	l := zap.NewAtomicLevelAt(zap.InfoLevel)
	registry.levels[name] = l
	return l
}

// SetLevel changes the level of one named logger.
func SetLevel(name string, level zapcore.Level) {
	levelFor(name).SetLevel(level)
}

// SetAll applies level to every logger registered so far. Package loggers are
// created at init time, so by the time main parses LOG_LEVEL they are all
// registered.
func SetAll(level zapcore.Level) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for _, l := range registry.levels {
		l.SetLevel(level)
	}
}

// New builds a named console logger. Loggers sharing a name share a level.
func New(name string) *zap.SugaredLogger {
	cfg := zap.Config{
		Level:    levelFor(name),
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stdout"},
	}
	return zap.Must(cfg.Build(zap.AddStacktrace(zapcore.PanicLevel))).Named(name).Sugar()
}
