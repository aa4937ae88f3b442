package stoplight

import "slices"

// State names one of the fixed traffic lights.
type State string

const (
	Red    State = "red"
	Yellow State = "yellow"
	Green  State = "green"
)

var trafficStates = []State{Red, Yellow, Green}

// legacy per-lamp dwell times, aligned to the default palette
var trafficTimingDefaults = []int{2000, 1000, 5000}

// StateAt maps a palette index to its named state. Out-of-range indices
// yield the empty state.
func StateAt(index int) State {
	if index < 0 || index >= len(trafficStates) {
		return ""
	}
	return trafficStates[index]
}

// Index returns the palette index of the state, or -1 for unknown names.
func (st State) Index() int {
	return slices.Index(trafficStates, st)
}

// WithInitialState sets the starting light by name. Unknown names fall back
// to the sequence head, same as any other invalid initial light.
func WithInitialState(st State) Option {
	return WithInitialLight(float64(st.Index()))
}

// WithOnStateChange registers a change callback receiving named states.
func WithOnStateChange(fn func(State)) Option {
	if fn == nil {
		return WithOnChange(nil)
	}
	return WithOnChange(func(light int) {
		fn(StateAt(light))
	})
}

// Traffic is the fixed three-light red/yellow/green variant. The palette is
// pinned and missing timings fall back to the legacy 2000/1000/5000 dwell
// times, so a default Traffic holds green for five seconds, yellow for one,
// and red for two.
type Traffic struct {
	*Stoplight
}

// NewTraffic builds a stopped traffic light. Options apply as for New except
// that the palette is fixed.
func NewTraffic(opts ...Option) *Traffic {
	opts = append(slices.Clone(opts),
		WithColors(DefaultPalette()...),
		withTimingDefaults(trafficTimingDefaults))
	return &Traffic{Stoplight: New(opts...)}
}

// State returns the currently active named state.
func (t *Traffic) State() State {
	return StateAt(t.ActiveLight())
}

// OnStateChange swaps the change callback without disturbing the pending
// delay, delivering named states instead of indices.
func (t *Traffic) OnStateChange(fn func(State)) {
	if fn == nil {
		t.SetOnChange(nil)
		return
	}
	t.SetOnChange(func(light int) {
		fn(StateAt(light))
	})
}
