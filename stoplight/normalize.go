package stoplight

import (
	"math"
	"strings"

	"go.uber.org/zap"
)

const (
	// DefaultTiming is the dwell time in milliseconds for lamps without an
	// explicit timing entry.
	DefaultTiming = 1000
	// DefaultMinTiming and DefaultMaxTiming are the inclusive clamp bounds
	// applied to dwell times unless overridden with WithTimingBounds.
	DefaultMinTiming = 10
	DefaultMaxTiming = math.MaxInt32
)

// DefaultPalette returns the built-in three lamp palette. Index 0 is red,
// index 2 is green; the default traversal runs green, yellow, red.
func DefaultPalette() []string {
	return []string{"red", "yellow", "green"}
}

// NormalizeTiming coerces a raw dwell time into [min, max] milliseconds.
// NaN and infinite values yield the (clamped) default; everything else is
// floored then clamped. When min exceeds max, min wins.
func NormalizeTiming(value float64, def, min, max int) int {
	if max < min {
		max = min
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return clampInt(def, min, max)
	}
	v := math.Floor(value)
	if v < float64(min) {
		return min
	}
	if v > float64(max) {
		return max
	}
	return int(v)
}

func clampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// NormalizeTimingTable produces one dwell time per lamp. defaults supplies
// the per-lamp fallback and fixes the output length; raw entries beyond it
// are discarded.
func NormalizeTimingTable(raw []float64, defaults []int, min, max int) []int {
	if min > max {
		logger.With(zap.Int("minTiming", min), zap.Int("maxTiming", max)).
			Warn("minTiming exceeds maxTiming; minTiming wins")
	}
	out := make([]int, len(defaults))
	for i, def := range defaults {
		v := math.NaN()
		if i < len(raw) {
			v = raw[i]
			if math.IsNaN(v) || math.IsInf(v, 0) {
				logger.With(zap.Int("index", i)).Warn("Invalid timing entry; using default")
			}
		}
		out[i] = NormalizeTiming(v, def, min, max)
	}
	if len(raw) > len(defaults) {
		logger.With(zap.Int("lightCount", len(defaults)), zap.Int("timingCount", len(raw))).
			Warn("More timings than lights; discarding extras")
	}
	return out
}

// NormalizeColors validates the lamp palette. A missing or empty list yields
// the default palette; blank tokens are dropped. Color tokens are otherwise
// opaque here.
func NormalizeColors(raw []string) []string {
	if len(raw) == 0 {
		return DefaultPalette()
	}
	out := make([]string, 0, len(raw))
	for _, c := range raw {
		if strings.TrimSpace(c) == "" {
			logger.Warn("Ignoring blank color entry")
			continue
		}
		out = append(out, c)
	}
	if len(out) == 0 {
		logger.Warn("No usable colors; using default palette")
		return DefaultPalette()
	}
	return out
}

// NormalizeSequence validates the traversal order against the lamp count.
// A missing or empty sequence traverses the full range in descending order.
// Entries must be integers in [0, maxIndex]; if none survive, the sequence
// collapses to the last light.
func NormalizeSequence(raw []float64, maxIndex int) []int {
	if len(raw) == 0 {
		out := make([]int, maxIndex+1)
		for i := range out {
			out[i] = maxIndex - i
		}
		return out
	}
	out := make([]int, 0, len(raw))
	for _, v := range raw {
		if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) || v < 0 || v > float64(maxIndex) {
			logger.With(zap.Float64("entry", v), zap.Int("maxIndex", maxIndex)).
				Warn("Dropping sequence entry outside the light range")
			continue
		}
		out = append(out, int(v))
	}
	if len(out) == 0 {
		logger.With(zap.Int("maxIndex", maxIndex)).
			Warn("No usable sequence entries; falling back to the last light")
		return []int{maxIndex}
	}
	return out
}

// ValidateLightIndex floors a raw light index into [0, maxIndex], falling
// back to def for NaN, infinite, or out-of-range values.
func ValidateLightIndex(raw float64, maxIndex, def int) int {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return def
	}
	v := math.Floor(raw)
	if v < 0 || v > float64(maxIndex) {
		logger.With(zap.Float64("index", raw), zap.Int("maxIndex", maxIndex), zap.Int("default", def)).
			Warn("Light index out of range; using default")
		return def
	}
	return int(v)
}
