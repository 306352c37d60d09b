package fade

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

// Canceller is what the scheduler consults to decide whether a fade
// should keep going.
type Canceller interface {
	IsCancelled() bool
	Done() <-chan struct{}
	BlockAround(fn func() error) error
}

// Controller turns termination signals into a write-once cancellation
// flag. Signal delivery only records the fact; the scheduler observes
// the flag at its own checkpoints.
type Controller struct {
	mu   sync.Mutex
	flag atomic.Bool
	sigs chan os.Signal
	done chan struct{}
}

func NewController() *Controller {
	return &Controller{
		sigs: make(chan os.Signal, 1),
		done: make(chan struct{}),
	}
}

// Arm installs the handlers. The first SIGHUP, SIGINT or SIGTERM sets
// the flag and closes Done.
func (c *Controller) Arm() {
	signal.Notify(c.sigs, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-c.sigs
		// A signal arriving inside BlockAround takes effect only once
		// the critical section has returned.
		c.mu.Lock()
		c.flag.Store(true)
		close(c.done)
		c.mu.Unlock()
	}()
}

// Disarm stops routing signals to the controller.
func (c *Controller) Disarm() {
	signal.Stop(c.sigs)
}

func (c *Controller) IsCancelled() bool {
	return c.flag.Load()
}

// Done is closed once a signal has taken effect, so sleeps can wake
// early instead of running their full interval.
func (c *Controller) Done() <-chan struct{} {
	return c.done
}

// BlockAround runs fn with cancellation deferred, so a commit in
// flight is never cut short by a signal.
func (c *Controller) BlockAround(fn func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fn()
}
