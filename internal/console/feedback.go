// Package console holds the view controllers of the infrastructure
// observability client. Controllers are value-style state holders: they
// acquire snapshots from the backend, never persist, and treat the SSE
// stream, background pollers, and the UI loop as concurrent producers
// over the same state. Every async action ends in a state update or a
// feedback message, never a panic or a returned error to the UI loop.
package console

import (
	"sync"
	"time"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
)

// Feedback is a transient message strip next to the action that caused
// it. Kind drives the color; background refresh failures never produce
// feedback (the next tick retries silently).
type Feedback struct {
	Text string
	Kind client.Kind
}

// feedbackCell owns one feedback slot with timed auto-clear. A newer
// message supersedes the pending clear of an older one.
type feedbackCell struct {
	mu  sync.Mutex
	cur Feedback
	seq int
}

func (f *feedbackCell) set(text string, kind client.Kind, ttl time.Duration) {
	f.mu.Lock()
	f.cur = Feedback{Text: text, Kind: kind}
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	if ttl > 0 {
		time.AfterFunc(ttl, func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			if f.seq == seq {
				f.cur = Feedback{}
			}
		})
	}
}

func (f *feedbackCell) clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	f.cur = Feedback{}
}

func (f *feedbackCell) get() Feedback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}
