// Package poll runs repeating background refresh tasks that pause while
// the console is not visible (terminal blurred or suspended). Ticks are
// skipped rather than queued, so regaining visibility never causes a
// catch-up burst.
package poll

import (
	"context"
	"sync"
	"time"
)

// Gate tracks console visibility. Pollers consult it on every tick; the
// SSE subscription deliberately does not, the stream stays open while
// hidden.
type Gate struct {
	mu     sync.RWMutex
	hidden bool
}

// Hide marks the console as not visible.
func (g *Gate) Hide() {
	g.mu.Lock()
	g.hidden = true
	g.mu.Unlock()
}

// Show marks the console as visible again. The next interval boundary
// resumes polling; missed ticks are not replayed.
func (g *Gate) Show() {
	g.mu.Lock()
	g.hidden = false
	g.mu.Unlock()
}

// Visible reports whether ticks should fire.
func (g *Gate) Visible() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return !g.hidden
}

// Poller invokes a task on a repeating schedule.
type Poller struct {
	stopOnce sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start schedules task every interval. Contracts:
//   - ticks that fire while the gate reports hidden are skipped;
//   - a tick that fires while the previous task is still running is
//     skipped (no overlap);
//   - Stop cancels the schedule and the context passed to an in-flight
//     task, so its result can be discarded before mutating state.
//
// A nil gate means always visible.
func Start(interval time.Duration, gate *Gate, task func(ctx context.Context)) *Poller {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poller{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		running := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if gate != nil && !gate.Visible() {
					continue
				}
				select {
				case running <- struct{}{}:
				default:
					// Previous invocation still in flight.
					continue
				}
				go func() {
					defer func() { <-running }()
					task(ctx)
				}()
			}
		}
	}()

	return p
}

// Stop cancels the schedule. Safe to call more than once; it does not
// wait for an in-flight task, whose context is already cancelled.
func (p *Poller) Stop() {
	p.stopOnce.Do(p.cancel)
}

// Done is closed when the scheduling loop has exited.
func (p *Poller) Done() <-chan struct{} { return p.done }
