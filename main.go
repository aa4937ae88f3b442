package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/caarlos0/env"
	"github.com/scheerer/stoplight/internal/lights"
	"github.com/scheerer/stoplight/internal/lights/lifx"
	"github.com/scheerer/stoplight/internal/lights/term"
	"github.com/scheerer/stoplight/internal/logging"
	"github.com/scheerer/stoplight/internal/util"
	"github.com/scheerer/stoplight/stoplight"
)

var (
	logger = logging.New("main")
	config = StoplightConfig{}
)

type StoplightConfig struct {
	LightType      string        `env:"LIGHT_TYPE" envDefault:"TERM"`
	LightGroupName string        `env:"LIGHT_GROUP_NAME" envDefault:"STOPLIGHT"`
	MaxBrightness  float64       `env:"MAX_BRIGHTNESS" envDefault:"0.65"`
	MinBrightness  float64       `env:"MIN_BRIGHTNESS" envDefault:"0"`
	MinTiming      int           `env:"MIN_TIMING" envDefault:"10"`
	MaxTiming      int           `env:"MAX_TIMING" envDefault:"2147483647"`
	Transition     time.Duration `env:"TRANSITION" envDefault:"250ms"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
}

func main() {
	defer logger.Sync()

	err := env.Parse(&config)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to parse environment variables")
	}

	if lvl, lerr := zapcore.ParseLevel(config.LogLevel); lerr != nil {
		logger.With(zap.String("level", config.LogLevel)).Warn("Unknown LOG_LEVEL; keeping info")
	} else {
		logging.SetAll(lvl)
	}

	// The list-valued settings go through the normalizer, so unparseable
	// tokens become NaN here instead of failing the whole parse.
	colors := util.Getenv("COLORS", []string(nil))
	timings := util.ParseNumberList(util.Getenv("TIMINGS", ""))
	sequence := util.ParseNumberList(util.Getenv("SEQUENCE", ""))
	initial := util.ParseNumber(util.Getenv("INITIAL_LIGHT", ""))

	logger.With(zap.Any("config", config)).Info("Starting stoplight")

	logger.Info("Adjust COLORS to change the lamp palette. Comma separated CSS tokens, e.g. #ff0000,#ffff00,#00aa00.")
	logger.Info("Adjust TIMINGS to change per-lamp dwell times in milliseconds, aligned by index to COLORS.")
	logger.Info("Adjust SEQUENCE to change the traversal order. Light indices, duplicates allowed.")
	logger.Info("Adjust INITIAL_LIGHT to pick the starting light index.")
	logger.Info("LIGHT_TYPE supports TERM, LIFX and LOG.")
	logger.Info("Adjust LIGHT_GROUP_NAME to change the group of LIFX lights to control.")
	logger.Info("Press Ctrl+C to stop")

	ctx, cancel := context.WithCancel(context.Background())

	var lightService lights.LightService
	switch config.LightType {
	case "LIFX":
		lightService, err = lifx.New(ctx, lifx.Config{
			GroupName:     config.LightGroupName,
			MinBrightness: config.MinBrightness,
			MaxBrightness: config.MaxBrightness,
		})
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to create LIFX light service")
		}
	case "TERM":
		lightService = term.New(os.Stdout)
	case "LOG":
		lightService = lights.NewLog()
	default:
		logger.Fatalf("unknown light type: %v", config.LightType)
	}

	sl := stoplight.New(
		stoplight.WithColors(colors...),
		stoplight.WithTimings(timings...),
		stoplight.WithSequence(sequence...),
		stoplight.WithInitialLight(initial),
		stoplight.WithTimingBounds(config.MinTiming, config.MaxTiming),
	)

	lamps := lights.ParseAll(sl.Colors())
	sl.SetOnChange(func(light int) {
		lightService.SetActiveLight(ctx, lamps, light, config.Transition)
	})

	lightService.SetActiveLight(ctx, lamps, sl.ActiveLight(), 0)
	sl.Start()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	<-shutdown
	logger.Info("Shutting down")
	sl.Stop()
	lightService.Stop()
	cancel()
}
