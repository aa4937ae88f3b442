package lights

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// LogLights is a headless light service that only logs transitions. Useful
// when no display or bulbs are available.
type LogLights struct {
	mu    sync.Mutex
	count int
}

var _ LightService = (*LogLights)(nil)

func NewLog() *LogLights {
	return &LogLights{}
}

func (l *LogLights) Start(ctx context.Context) {}

func (l *LogLights) Stop() {}

func (l *LogLights) LightCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

func (l *LogLights) SetActiveLight(ctx context.Context, lamps []Color, active int, transition time.Duration) {
	l.mu.Lock()
	l.count = len(lamps)
	l.mu.Unlock()

	if active < 0 || active >= len(lamps) {
		logger.With(zap.Int("active", active), zap.Int("lamps", len(lamps))).
			Warn("Active lamp out of range")
		return
	}
	logger.With(zap.Int("active", active), zap.Any("color", lamps[active])).
		Info("Light changed")
}
