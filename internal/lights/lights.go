package lights

import (
	"context"
	"time"

	"github.com/scheerer/stoplight/internal/logging"
)

var logger = logging.New("lights")

type Color struct {
	Red   uint8
	Green uint8
	Blue  uint8
}

// LightService renders the lamp row with one active lamp. Implementations
// must tolerate repeated calls with the same active index.
type LightService interface {
	Start(ctx context.Context)
	Stop()
	LightCount() int
	SetActiveLight(ctx context.Context, lamps []Color, active int, transition time.Duration)
}
