// Package stoplight cycles through a configurable sequence of colored lights
// on independent per-light timers. Configuration is normalized into an
// always-valid form, so a Stoplight has no fatal error conditions: bad input
// falls back to documented defaults with an advisory log.
package stoplight

import (
	"runtime"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/scheerer/stoplight/internal/logging"
	"github.com/scheerer/stoplight/internal/util"
	"go.uber.org/zap"
)

var logger = logging.New("stoplight")

// Stoplight steps through its light sequence, holding exactly one pending
// delay at a time. The cursor tracks the position within the sequence rather
// than the light index itself, so sequences with repeated indices stay
// unambiguous.
type Stoplight struct {
	mu  sync.Mutex
	set settings

	// normalized snapshots, replaced wholesale on reconfiguration
	colors   []string
	timings  []int
	sequence []int

	cursor        int
	initialCursor int

	running bool
	gen     uint64
	timer   *time.Timer

	// cbMu serializes change notifications; Stop flushes it so no callback
	// is running or about to run once Stop returns. cbGoid identifies the
	// goroutine currently inside the callback, letting a Stop issued from
	// the callback itself skip the flush instead of self-deadlocking.
	cbMu   sync.Mutex
	cbGoid atomic.Uint64

	id  string
	log *zap.SugaredLogger
}

// New builds a stopped Stoplight. Missing configuration falls back to the
// default palette, a descending traversal, and DefaultTiming per lamp.
// Call Start to begin cycling.
func New(opts ...Option) *Stoplight {
	s := &Stoplight{
		set: defaultSettings(),
		id:  util.RandomString(8),
	}
	s.log = logger.With(zap.String("instance", s.id))
	for _, opt := range opts {
		opt(&s.set)
	}
	s.normalizeLocked()
	s.cursor = s.initialCursor
	return s
}

// normalizeLocked recomputes the immutable snapshots from the raw settings
// and resolves the initial cursor. Must hold mu (or be pre-publication).
func (s *Stoplight) normalizeLocked() {
	s.colors = NormalizeColors(s.set.colors)
	maxIndex := len(s.colors) - 1
	s.sequence = NormalizeSequence(s.set.sequence, maxIndex)

	defaults := make([]int, len(s.colors))
	for i := range defaults {
		if i < len(s.set.timingDefaults) {
			defaults[i] = s.set.timingDefaults[i]
		} else {
			defaults[i] = DefaultTiming
		}
	}
	s.timings = NormalizeTimingTable(s.set.timings, defaults, s.set.minTiming, s.set.maxTiming)

	s.initialCursor = s.resolveInitialCursorLocked()
}

// resolveInitialCursorLocked maps the configured initial light to its first
// occurrence in the sequence. A light that never occurs in the traversal
// falls back to the sequence head.
func (s *Stoplight) resolveInitialCursorLocked() int {
	def := s.sequence[0]
	candidate := ValidateLightIndex(s.set.initial, len(s.colors)-1, def)
	pos := slices.Index(s.sequence, candidate)
	if pos < 0 {
		s.log.With(zap.Int("light", candidate)).
			Warn("Initial light does not occur in sequence; starting at sequence head")
		return 0
	}
	return pos
}

// Start begins cycling from the resolved initial light. Starting a running
// Stoplight is a no-op.
func (s *Stoplight) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.log.With(
		zap.Strings("colors", s.colors),
		zap.Ints("timings", s.timings),
		zap.Ints("sequence", s.sequence),
		zap.Int("light", s.sequence[s.cursor])).
		Info("Starting stoplight")
	s.scheduleLocked()
}

// Stop cancels the pending delay. The change callback is never invoked after
// Stop returns: an expiry that already passed its liveness check is waited
// out before Stop completes.
func (s *Stoplight) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.stopLocked()
	s.mu.Unlock()

	if s.cbGoid.Load() != goid() {
		// barrier: any in-flight notification holds cbMu, so acquiring it
		// means no callback is running or can still start for the old run
		s.cbMu.Lock()
		s.cbMu.Unlock()
	}
	s.log.Info("Stopped stoplight")
}

func (s *Stoplight) stopLocked() {
	s.running = false
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *Stoplight) scheduleLocked() {
	g := s.gen
	delay := time.Duration(s.timings[s.sequence[s.cursor]]) * time.Millisecond
	s.timer = time.AfterFunc(delay, func() {
		s.advance(g)
	})
}

// advance is the timer expiry handler. The generation check discards firings
// that lost a race with Stop or Reconfigure; it is re-checked under cbMu so
// a teardown that completed while the expiry was in flight suppresses the
// notification entirely.
func (s *Stoplight) advance(g uint64) {
	s.mu.Lock()
	if !s.running || g != s.gen {
		s.mu.Unlock()
		return
	}
	s.cursor = (s.cursor + 1) % len(s.sequence)
	light := s.sequence[s.cursor]
	cb := s.set.onChange
	s.scheduleLocked()
	s.mu.Unlock()

	s.cbMu.Lock()
	defer s.cbMu.Unlock()

	s.mu.Lock()
	stale := !s.running || g != s.gen
	s.mu.Unlock()
	if stale {
		return
	}

	s.cbGoid.Store(goid())
	defer s.cbGoid.Store(0)
	s.notify(cb, light)
}

// goid returns the current goroutine's id, parsed from the stack header.
func goid() uint64 {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	fields := strings.Fields(string(buf[:n]))
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// notify invokes the change callback outside the lock so the consumer may
// call back into the Stoplight. A panicking consumer never stalls the cycle.
func (s *Stoplight) notify(cb func(int), light int) {
	if cb == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.With(zap.Any("panic", r), zap.Int("light", light)).
				Error("Light change callback panicked")
		}
	}()
	cb(light)
}

// Reconfigure applies new options. An observationally identical configuration
// leaves the pending delay untouched. A change to only the timing table keeps
// the cursor and restarts the current delay with the new duration. Any other
// change is a full restart: the cursor is re-resolved from the initial light.
func (s *Stoplight) Reconfigure(opts ...Option) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prevColors := s.colors
	prevTimings := s.timings
	prevSequence := s.sequence
	prevInitial := s.initialCursor

	for _, opt := range opts {
		opt(&s.set)
	}
	s.normalizeLocked()

	sameColors := slices.Equal(prevColors, s.colors)
	sameSequence := slices.Equal(prevSequence, s.sequence)
	sameTimings := slices.Equal(prevTimings, s.timings)
	sameInitial := s.initialCursor == prevInitial

	switch {
	case sameColors && sameSequence && sameTimings && sameInitial:
		// identical run; the callback slot is already updated
	case sameColors && sameSequence && sameInitial:
		s.log.With(zap.Ints("timings", s.timings)).Info("Timings changed; restarting current delay")
		s.rescheduleLocked()
	default:
		s.cursor = s.initialCursor
		s.log.With(
			zap.Strings("colors", s.colors),
			zap.Ints("timings", s.timings),
			zap.Ints("sequence", s.sequence),
			zap.Int("light", s.sequence[s.cursor])).
			Info("Reconfigured stoplight")
		s.rescheduleLocked()
	}
}

func (s *Stoplight) rescheduleLocked() {
	if !s.running {
		return
	}
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
	}
	s.scheduleLocked()
}

// SetOnChange swaps the change callback without disturbing the pending delay.
func (s *Stoplight) SetOnChange(fn func(light int)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.set.onChange = fn
}

// ActiveLight returns the index of the currently active light.
func (s *Stoplight) ActiveLight() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence[s.cursor]
}

// ActiveColor returns the color token of the currently active light.
func (s *Stoplight) ActiveColor() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.colors[s.sequence[s.cursor]]
}

// Colors returns a copy of the normalized palette.
func (s *Stoplight) Colors() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.colors)
}

// Timings returns a copy of the normalized dwell times in milliseconds.
func (s *Stoplight) Timings() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.timings)
}

// Sequence returns a copy of the normalized traversal order.
func (s *Stoplight) Sequence() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.sequence)
}

// ID returns the instance identifier used in logs.
func (s *Stoplight) ID() string {
	return s.id
}
