// Package fade drives timed brightness transitions. The scheduler
// interpolates against elapsed wall-clock time rather than counting
// iterations, so variable sleep latency cannot distort the schedule.
package fade

import "time"

// Sink commits a single brightness value to the device.
type Sink interface {
	Apply(brightness int) error
}

// State is the terminal state of a fade.
type State int

const (
	// Completed means the target value was reached.
	Completed State = iota
	// Cancelled means a signal interrupted the fade and the original
	// value was restored.
	Cancelled
	// Aborted means a sink commit failed mid-fade.
	Aborted
)

func (s State) String() string {
	switch s {
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	case Aborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Schedule describes one transition. A zero Duration applies Target
// immediately with no intermediate steps.
type Schedule struct {
	Origin   int
	Target   int
	Duration time.Duration
}

// DefaultInterval is how often the scheduler wakes to re-sample the
// clock and apply the next value.
const DefaultInterval = 100 * time.Millisecond

// Scheduler applies a Schedule to a Sink, consulting a Canceller
// before and after every sleep.
type Scheduler struct {
	sink     Sink
	ctrl     Canceller
	Interval time.Duration

	now func() time.Time // test hook
}

func NewScheduler(sink Sink, ctrl Canceller) *Scheduler {
	return &Scheduler{
		sink:     sink,
		ctrl:     ctrl,
		Interval: DefaultInterval,
		now:      time.Now,
	}
}

// Run drives the schedule to a terminal state. On cancellation the
// origin value is restored (if anything was committed) and the fade
// counts as Cancelled, not failed. A commit error aborts immediately
// without restoration.
func (s *Scheduler) Run(sch Schedule) (State, error) {
	if sch.Origin == sch.Target {
		return Completed, nil
	}
	durMs := sch.Duration.Milliseconds()
	if durMs <= 0 {
		if err := s.commit(sch.Target); err != nil {
			return Aborted, err
		}
		return Completed, nil
	}

	last := sch.Origin
	span := int64(sch.Origin - sch.Target)
	start := s.now()
	for {
		if s.ctrl.IsCancelled() {
			return s.restore(sch.Origin, last)
		}
		select {
		case <-time.After(s.Interval):
		case <-s.ctrl.Done():
		}
		if s.ctrl.IsCancelled() {
			return s.restore(sch.Origin, last)
		}
		elapsed := s.now().Sub(start).Milliseconds()
		if elapsed >= durMs {
			break
		}
		// int64 keeps the product from overflowing even for very long
		// fades on devices with large brightness ranges.
		next := sch.Origin - int(elapsed*span/durMs)
		if next != last {
			if err := s.commit(next); err != nil {
				return Aborted, err
			}
			last = next
		}
	}
	// Close any residual truncation gap with one exact commit.
	if last != sch.Target {
		if err := s.commit(sch.Target); err != nil {
			return Aborted, err
		}
	}
	return Completed, nil
}

func (s *Scheduler) restore(origin, last int) (State, error) {
	if last != origin {
		if err := s.commit(origin); err != nil {
			return Aborted, err
		}
	}
	return Cancelled, nil
}

func (s *Scheduler) commit(v int) error {
	return s.ctrl.BlockAround(func() error {
		return s.sink.Apply(v)
	})
}
