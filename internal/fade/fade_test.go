package fade

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// recordingSink records every applied value and can fail at a given
// call index.
type recordingSink struct {
	applied []int
	failAt  int // 1-based call index to fail at, 0 means never
}

func (r *recordingSink) Apply(v int) error {
	r.applied = append(r.applied, v)
	if r.failAt != 0 && len(r.applied) == r.failAt {
		return errors.New("method call failed")
	}
	return nil
}

// cancellingSink raises cancellation after a number of commits.
type cancellingSink struct {
	*recordingSink
	ctrl  *fakeCanceller
	after int
}

func (c *cancellingSink) Apply(v int) error {
	if err := c.recordingSink.Apply(v); err != nil {
		return err
	}
	if len(c.applied) == c.after {
		c.ctrl.cancel()
	}
	return nil
}

type fakeCanceller struct {
	cancelled atomic.Bool
	done      chan struct{}
}

func newFakeCanceller() *fakeCanceller {
	return &fakeCanceller{done: make(chan struct{})}
}

func (f *fakeCanceller) cancel() {
	if f.cancelled.CompareAndSwap(false, true) {
		close(f.done)
	}
}

func (f *fakeCanceller) IsCancelled() bool { return f.cancelled.Load() }

func (f *fakeCanceller) Done() <-chan struct{} { return f.done }

func (f *fakeCanceller) BlockAround(fn func() error) error { return fn() }

// fakeClock advances a fixed step on every sample, which makes the
// schedule deterministic no matter how long the real sleeps take.
type fakeClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestScheduler(sink Sink, ctrl Canceller, step time.Duration) *Scheduler {
	s := NewScheduler(sink, ctrl)
	s.Interval = time.Millisecond
	if step > 0 {
		s.now = (&fakeClock{step: step}).now
	}
	return s
}

func TestFadeDecreasesMonotonically(t *testing.T) {
	sink := &recordingSink{}
	s := newTestScheduler(sink, newFakeCanceller(), 50*time.Millisecond)

	state, err := s.Run(Schedule{Origin: 100, Target: 0, Duration: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Completed {
		t.Fatalf("state = %v, want completed", state)
	}
	if len(sink.applied) != 10 {
		t.Fatalf("applied %d values, want 10: %v", len(sink.applied), sink.applied)
	}
	prev := 100
	for _, v := range sink.applied {
		if v >= prev {
			t.Fatalf("applied values not strictly decreasing: %v", sink.applied)
		}
		if v < 0 || v > 100 {
			t.Fatalf("applied value %d out of range: %v", v, sink.applied)
		}
		prev = v
	}
	if last := sink.applied[len(sink.applied)-1]; last != 0 {
		t.Errorf("final applied value = %d, want exactly 0", last)
	}
}

func TestFadeIncreasesMonotonically(t *testing.T) {
	sink := &recordingSink{}
	s := newTestScheduler(sink, newFakeCanceller(), 70*time.Millisecond)

	state, err := s.Run(Schedule{Origin: 10, Target: 250, Duration: 600 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Completed {
		t.Fatalf("state = %v, want completed", state)
	}
	if len(sink.applied) == 0 {
		t.Fatal("no values applied")
	}
	prev := 10
	for _, v := range sink.applied {
		if v <= prev {
			t.Fatalf("applied values not strictly increasing: %v", sink.applied)
		}
		prev = v
	}
	if last := sink.applied[len(sink.applied)-1]; last != 250 {
		t.Errorf("final applied value = %d, want exactly 250", last)
	}
}

func TestZeroDurationAppliesTargetOnce(t *testing.T) {
	sink := &recordingSink{}
	s := newTestScheduler(sink, newFakeCanceller(), 0)

	state, err := s.Run(Schedule{Origin: 100, Target: 30, Duration: 0})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Completed {
		t.Fatalf("state = %v, want completed", state)
	}
	if len(sink.applied) != 1 || sink.applied[0] != 30 {
		t.Errorf("applied = %v, want exactly [30]", sink.applied)
	}
}

func TestEqualOriginAndTargetCommitsNothing(t *testing.T) {
	sink := &recordingSink{}
	s := newTestScheduler(sink, newFakeCanceller(), 0)

	state, err := s.Run(Schedule{Origin: 50, Target: 50, Duration: 10 * time.Second})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Completed {
		t.Fatalf("state = %v, want completed", state)
	}
	if len(sink.applied) != 0 {
		t.Errorf("applied = %v, want no commits", sink.applied)
	}
}

func TestDurationShorterThanIntervalStillReachesTarget(t *testing.T) {
	sink := &recordingSink{}
	s := newTestScheduler(sink, newFakeCanceller(), 80*time.Millisecond)

	state, err := s.Run(Schedule{Origin: 20, Target: 60, Duration: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Completed {
		t.Fatalf("state = %v, want completed", state)
	}
	if len(sink.applied) != 1 || sink.applied[0] != 60 {
		t.Errorf("applied = %v, want exactly [60]", sink.applied)
	}
}

func TestCancelBeforeFirstCommit(t *testing.T) {
	sink := &recordingSink{}
	ctrl := newFakeCanceller()
	ctrl.cancel()
	s := newTestScheduler(sink, ctrl, 0)

	state, err := s.Run(Schedule{Origin: 100, Target: 0, Duration: 10 * time.Second})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Cancelled {
		t.Fatalf("state = %v, want cancelled", state)
	}
	if len(sink.applied) != 0 {
		t.Errorf("applied = %v, want no commits (already at origin)", sink.applied)
	}
}

func TestCancelMidFadeRestoresOrigin(t *testing.T) {
	ctrl := newFakeCanceller()
	rec := &recordingSink{}
	sink := &cancellingSink{recordingSink: rec, ctrl: ctrl, after: 3}
	s := newTestScheduler(sink, ctrl, 50*time.Millisecond)

	state, err := s.Run(Schedule{Origin: 100, Target: 0, Duration: 500 * time.Millisecond})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Cancelled {
		t.Fatalf("state = %v, want cancelled", state)
	}
	if len(rec.applied) != 4 {
		t.Fatalf("applied = %v, want 3 intermediate commits plus the restore", rec.applied)
	}
	if last := rec.applied[len(rec.applied)-1]; last != 100 {
		t.Errorf("final applied value = %d, want origin 100", last)
	}
}

func TestSinkFailureAbortsWithoutRestore(t *testing.T) {
	sink := &recordingSink{failAt: 2}
	s := newTestScheduler(sink, newFakeCanceller(), 50*time.Millisecond)

	state, err := s.Run(Schedule{Origin: 100, Target: 0, Duration: 500 * time.Millisecond})
	if err == nil {
		t.Fatal("Run succeeded, want sink error")
	}
	if state != Aborted {
		t.Fatalf("state = %v, want aborted", state)
	}
	// The failed commit is the last one: no restoration is attempted.
	if len(sink.applied) != 2 {
		t.Errorf("applied = %v, want exactly the 2 attempted commits", sink.applied)
	}
}

func TestLongFadeDoesNotOverflow(t *testing.T) {
	sink := &recordingSink{}
	ctrl := newFakeCanceller()
	// Hours of fake elapsed time per iteration on a wide-range device
	// would overflow 32-bit intermediate arithmetic.
	s := newTestScheduler(sink, ctrl, time.Hour)

	go func() {
		time.Sleep(20 * time.Millisecond)
		ctrl.cancel()
	}()
	state, err := s.Run(Schedule{Origin: 1 << 30, Target: 0, Duration: 72 * time.Hour})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if state != Cancelled {
		t.Fatalf("state = %v, want cancelled", state)
	}
	for _, v := range sink.applied {
		if v < 0 || v > 1<<30 {
			t.Fatalf("interpolated value %d out of range, overflow suspected", v)
		}
	}
}
