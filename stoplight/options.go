package stoplight

import (
	"math"
	"slices"
)

// settings holds the raw, un-normalized configuration. Option funcs write
// into it; normalization reads it and never mutates it.
type settings struct {
	colors         []string
	timings        []float64
	sequence       []float64
	initial        float64
	minTiming      int
	maxTiming      int
	timingDefaults []int
	onChange       func(light int)
}

func defaultSettings() settings {
	return settings{
		initial:   math.NaN(),
		minTiming: DefaultMinTiming,
		maxTiming: DefaultMaxTiming,
	}
}

// Option configures a Stoplight at construction or via Reconfigure.
type Option func(*settings)

// WithColors sets the lamp palette. CSS-style tokens; opaque at this layer.
func WithColors(colors ...string) Option {
	return func(s *settings) {
		s.colors = slices.Clone(colors)
	}
}

// WithTimings sets the per-lamp dwell times in milliseconds, aligned by index
// to the colors. Missing entries fall back to defaults, extras are dropped.
func WithTimings(ms ...float64) Option {
	return func(s *settings) {
		s.timings = slices.Clone(ms)
	}
}

// WithSequence sets the traversal order as light indices. Duplicates are
// allowed; out-of-range entries are dropped during normalization.
func WithSequence(indices ...float64) Option {
	return func(s *settings) {
		s.sequence = slices.Clone(indices)
	}
}

// WithInitialLight sets the light index the stoplight starts on. Invalid or
// out-of-range values fall back to the first sequence entry.
func WithInitialLight(index float64) Option {
	return func(s *settings) {
		s.initial = index
	}
}

// WithTimingBounds sets the inclusive clamp range for dwell times.
func WithTimingBounds(min, max int) Option {
	return func(s *settings) {
		s.minTiming = min
		s.maxTiming = max
	}
}

// WithOnChange registers the change callback. The pending delay reads the
// callback slot at fire time, so swapping the callback never reschedules.
func WithOnChange(fn func(light int)) Option {
	return func(s *settings) {
		s.onChange = fn
	}
}

// withTimingDefaults overrides the per-lamp default dwell times used when a
// timing entry is missing or invalid. Used by the traffic variant.
func withTimingDefaults(ms []int) Option {
	return func(s *settings) {
		s.timingDefaults = slices.Clone(ms)
	}
}
