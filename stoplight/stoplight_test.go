package stoplight

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu     sync.Mutex
	lights []int
}

func (r *recorder) record(light int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lights = append(r.lights, light)
}

func (r *recorder) snapshot() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]int, len(r.lights))
	copy(out, r.lights)
	return out
}

func TestDefaults(t *testing.T) {
	s := New()

	assert.Equal(t, []string{"red", "yellow", "green"}, s.Colors())
	assert.Equal(t, []int{2, 1, 0}, s.Sequence())
	assert.Equal(t, []int{1000, 1000, 1000}, s.Timings())
	assert.Equal(t, 2, s.ActiveLight())
	assert.Equal(t, "green", s.ActiveColor())
}

func TestStepOrder(t *testing.T) {
	rec := &recorder{}
	s := New(
		WithTimings(100, 100, 100),
		WithSequence(0, 1, 2, 0),
		WithInitialLight(0),
		WithOnChange(rec.record),
	)
	require.Equal(t, 0, s.ActiveLight())

	s.Start()
	defer s.Stop()

	time.Sleep(350 * time.Millisecond)
	assert.Equal(t, []int{1, 2, 0}, rec.snapshot())
}

func TestSequenceWrapsWithDuplicates(t *testing.T) {
	rec := &recorder{}
	s := New(
		WithTimings(50, 50, 50),
		WithSequence(2, 1, 0, 1),
		WithInitialLight(2),
		WithOnChange(rec.record),
	)

	s.Start()
	defer s.Stop()

	time.Sleep(230 * time.Millisecond)
	assert.Equal(t, []int{1, 0, 1, 2}, rec.snapshot())
}

func TestSingleElementSequence(t *testing.T) {
	rec := &recorder{}
	s := New(
		WithColors("red"),
		WithTimings(50),
		WithSequence(0),
		WithOnChange(rec.record),
	)

	s.Start()
	defer s.Stop()

	time.Sleep(180 * time.Millisecond)
	assert.Equal(t, []int{0, 0, 0}, rec.snapshot())
	assert.Equal(t, 0, s.ActiveLight())
}

func TestStopPreventsCallbacks(t *testing.T) {
	rec := &recorder{}
	s := New(WithTimings(80, 80, 80), WithOnChange(rec.record))

	s.Start()
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	time.Sleep(250 * time.Millisecond)

	assert.Empty(t, rec.snapshot())
}

func TestStopRacingExpiry(t *testing.T) {
	// Stop must synchronize with an expiry that is firing at the same
	// moment: once Stop returns, the callback must not run anymore.
	for i := 0; i < 2000; i++ {
		var stopped atomic.Bool
		s := New(
			WithTimings(1, 1, 1),
			WithTimingBounds(1, 1000),
			WithOnChange(func(light int) {
				if stopped.Load() {
					t.Errorf("callback ran after Stop returned (iteration %d)", i)
				}
			}),
		)
		s.Start()
		time.Sleep(time.Millisecond)
		s.Stop()
		stopped.Store(true)
	}
}

func TestStopFromCallback(t *testing.T) {
	rec := &recorder{}
	var s *Stoplight
	s = New(WithTimings(50, 50, 50), WithOnChange(func(light int) {
		rec.record(light)
		s.Stop()
	}))

	s.Start()
	time.Sleep(300 * time.Millisecond)

	assert.Len(t, rec.snapshot(), 1)
}

func TestCallbackPanicDoesNotStallCycle(t *testing.T) {
	rec := &recorder{}
	s := New(WithTimings(50, 50, 50), WithOnChange(func(light int) {
		rec.record(light)
		if len(rec.snapshot()) == 1 {
			panic("consumer bug")
		}
	}))

	s.Start()
	defer s.Stop()

	time.Sleep(180 * time.Millisecond)
	assert.Equal(t, []int{1, 0, 2}, rec.snapshot())
}

func TestReconfigureIdenticalIsNoop(t *testing.T) {
	fired := make(chan time.Duration, 1)
	start := time.Now()
	s := New(WithTimings(200, 200, 200), WithOnChange(func(int) {
		select {
		case fired <- time.Since(start):
		default:
		}
	}))

	s.Start()
	defer s.Stop()

	time.Sleep(120 * time.Millisecond)
	s.Reconfigure(WithTimings(200, 200, 200))

	select {
	case elapsed := <-fired:
		// the pending delay must not have been restarted at the 120ms mark
		assert.Less(t, elapsed, 300*time.Millisecond)
		assert.GreaterOrEqual(t, elapsed, 180*time.Millisecond)
	case <-time.After(500 * time.Millisecond):
		t.Fatal("no transition observed")
	}
}

func TestReconfigureTimingOnlyRestartsCurrentDelay(t *testing.T) {
	rec := &recorder{}
	fired := make(chan time.Duration, 1)
	start := time.Now()
	s := New(WithTimings(500, 500, 500), WithOnChange(func(light int) {
		rec.record(light)
		select {
		case fired <- time.Since(start):
		default:
		}
	}))

	s.Start()
	defer s.Stop()

	time.Sleep(100 * time.Millisecond)
	s.Reconfigure(WithTimings(100, 100, 100))

	select {
	case elapsed := <-fired:
		// delay restarted at ~100ms with the new 100ms duration
		assert.GreaterOrEqual(t, elapsed, 180*time.Millisecond)
		assert.Less(t, elapsed, 400*time.Millisecond)
	case <-time.After(700 * time.Millisecond):
		t.Fatal("no transition observed")
	}

	// cursor kept: green is still current, so yellow comes next
	assert.Equal(t, []int{1}, rec.snapshot()[:1])
}

func TestReconfigureRestartResetsCursor(t *testing.T) {
	rec := &recorder{}
	s := New(
		WithTimings(300, 300, 300),
		WithSequence(0, 1, 2),
		WithInitialLight(0),
		WithOnChange(rec.record),
	)
	require.Equal(t, 0, s.ActiveLight())

	s.Start()
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	s.Reconfigure(WithSequence(2, 1, 0))

	// first occurrence of light 0 in the new sequence is the tail
	assert.Equal(t, 0, s.ActiveLight())

	time.Sleep(350 * time.Millisecond)
	got := rec.snapshot()
	require.NotEmpty(t, got)
	assert.Equal(t, 2, got[0])
}

func TestSetOnChangeSwapsWithoutReschedule(t *testing.T) {
	oldRec := &recorder{}
	newRec := &recorder{}
	s := New(WithTimings(150, 150, 150), WithOnChange(oldRec.record))

	s.Start()
	defer s.Stop()

	time.Sleep(50 * time.Millisecond)
	s.SetOnChange(newRec.record)
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, oldRec.snapshot())
	assert.Equal(t, []int{1}, newRec.snapshot())
}

func TestReconfigureWhileStopped(t *testing.T) {
	s := New()
	s.Reconfigure(WithColors("#111", "#222"), WithInitialLight(0))

	assert.Equal(t, []string{"#111", "#222"}, s.Colors())
	assert.Equal(t, []int{1, 0}, s.Sequence())
	assert.Equal(t, 0, s.ActiveLight())
}
