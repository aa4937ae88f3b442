package lifx

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/pdf/golifx"
	"github.com/pdf/golifx/common"
	"github.com/pdf/golifx/protocol"
	"github.com/scheerer/stoplight/internal/lights"
	"github.com/scheerer/stoplight/internal/logging"
	"github.com/scheerer/stoplight/internal/util"
	"go.uber.org/zap"
)

var logger = logging.New("lifx")

// LifxLights drives a LIFX group: every lamp in the group shows the color of
// the active stoplight lamp, fading over the transition duration.
type LifxLights struct {
	config Config
	client *golifx.Client

	groupMu sync.RWMutex
	group   common.Group
}

var _ lights.LightService = (*LifxLights)(nil)

type Config struct {
	GroupName     string
	MaxBrightness float64
	MinBrightness float64
}

func New(ctx context.Context, config Config) (*LifxLights, error) {
	client, err := golifx.NewClient(&protocol.V2{})
	if err != nil {
		return nil, err
	}

	l := &LifxLights{
		config: config,
		client: client,
	}
	go l.Start(ctx)
	return l, nil
}

// Start runs group discovery until the context is cancelled.
func (l *LifxLights) Start(ctx context.Context) {
	discoveryInterval := 15 * time.Second
	ticker := time.NewTicker(discoveryInterval)
	defer ticker.Stop()

	l.client.SetDiscoveryInterval(discoveryInterval)

	timeout := 5 * time.Second
	ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
	l.discover(ctxWithTimeout)
	cancel()

	for {
		select {
		case <-ticker.C:
			ctxWithTimeout, cancel := context.WithTimeout(ctx, timeout)
			l.discover(ctxWithTimeout)
			cancel()
		case <-ctx.Done():
			return
		}
	}
}

func (l *LifxLights) Stop() {
	if err := l.client.Close(); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to close LIFX client")
	}
}

func (l *LifxLights) discover(ctx context.Context) {
	logger.With(zap.String("group", l.config.GroupName)).Info("LIFX discovery starting...")

	completed := make(chan error, 1)

	var g common.Group
	go func() {
		var err error
		g, err = l.client.GetGroupByLabel(l.config.GroupName)
		if err != nil {
			logger.With(zap.Error(err)).Warn("Failed to get LIFX group by label")
		}
		completed <- err
	}()

	select {
	case <-ctx.Done():
		logger.With(zap.Error(ctx.Err())).Warn("LIFX discovery timed out.")
	case <-completed:
		if g != nil {
			logger.With(zap.String("group", g.GetLabel())).Info("LIFX group found")
			l.groupMu.Lock()
			l.group = g
			l.groupMu.Unlock()
		} else {
			logger.Warn("Couldn't discover group.")
		}
	}

	logger.Info("LIFX discovery complete")
}

func (l *LifxLights) LightCount() int {
	l.groupMu.RLock()
	defer l.groupMu.RUnlock()

	if l.group == nil {
		return 0
	}
	count := 0
	for range l.group.Lights() {
		count++
	}
	return count
}

func (l *LifxLights) SetActiveLight(ctx context.Context, lamps []lights.Color, active int, transition time.Duration) {
	if active < 0 || active >= len(lamps) {
		logger.With(zap.Int("active", active), zap.Int("lamps", len(lamps))).
			Warn("Active lamp out of range")
		return
	}

	l.groupMu.RLock()
	group := l.group
	l.groupMu.RUnlock()
	if group == nil {
		logger.Warn("No LIFX group discovered yet; skipping update")
		return
	}

	lifxColor := adjustColor(newLifxColor(lamps[active]), l.config)

	logger.With(zap.Int("active", active),
		zap.Any("color", lamps[active]),
		zap.Any("lifxColor", lifxColor)).
		Info("Setting LIFX device color")

	if err := group.SetColor(lifxColor, transition); err != nil {
		logger.With(zap.Error(err)).Warn("Failed to set color for LIFX group")
	}
}

func newLifxColor(color lights.Color) common.Color {
	hue, saturation, brightness := util.RgbToHsb(color.Red, color.Green, color.Blue)

	return common.Color{
		Hue:        hue,
		Saturation: saturation,
		Brightness: brightness,
		Kelvin:     3500,
	}
}

func adjustColor(color common.Color, config Config) common.Color {
	blackThreshold := 0.015 * 0xFFFF
	if color.Brightness <= uint16(blackThreshold) && color.Saturation <= uint16(blackThreshold) {
		// blackish color - turn off the light
		return common.Color{
			Hue:        0,
			Saturation: 0,
			Brightness: 0,
			Kelvin:     3500,
		}
	}

	color.Brightness = uint16(math.Min(config.MaxBrightness*0xFFFF, math.Max(config.MinBrightness*0xFFFF, float64(color.Brightness))))

	return color
}
