// Package stream maintains the long-lived server-push subscription to
// the backend's smart-home event stream. The channel is one-directional
// (server to console); on transport loss it reconnects forever with
// exponential backoff until explicitly closed.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// EventStateChanged is the only event type the console inspects.
const EventStateChanged = "state_changed"

// Event is one decoded message from the stream. For unrecognized types
// only Type and Raw are meaningful; the payload passes through
// unchanged.
type Event struct {
	Type       string            `json:"type"`
	EntityID   string            `json:"entity_id,omitempty"`
	State      string            `json:"state,omitempty"`
	Attributes models.Attributes `json:"attributes,omitempty"`

	// Raw is the full wire payload, kept for consumers of unknown types.
	Raw json.RawMessage `json:"-"`
}

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Options tunes a subscription. The zero value is production-ready.
type Options struct {
	// Headers are added to the stream request (Accept, Authorization).
	Headers http.Header

	// HTTPClient replaces the default client, used by tests.
	HTTPClient *http.Client

	// Logger receives reconnect diagnostics at debug/warn level.
	Logger *slog.Logger
}

// Subscription is a handle on a running stream. Close terminates the
// channel and cancels any pending reconnect attempt.
type Subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Close terminates the subscription. Safe to call more than once.
func (s *Subscription) Close() {
	s.cancel()
	<-s.done
}

// Done is closed once the reader goroutine has fully stopped.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Subscribe opens the stream and delivers every decoded event, in
// arrival order, on a single goroutine. Consumers must tolerate
// duplicates and out-of-order events. onError is informational; errors
// never stop the subscription.
func Subscribe(ctx context.Context, url string, onEvent func(Event), onError func(error), opts Options) *Subscription {
	ctx, cancel := context.WithCancel(ctx)
	sub := &Subscription{cancel: cancel, done: make(chan struct{})}

	hc := opts.HTTPClient
	if hc == nil {
		// No overall timeout: the response body stays open for the life
		// of the stream.
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	go func() {
		defer close(sub.done)
		backoff := initialBackoff
		for {
			ok := connectOnce(ctx, hc, url, opts.Headers, onEvent, onError, logger)
			if ctx.Err() != nil {
				return
			}
			if ok {
				// The connection delivered at least one event before
				// dropping; start the backoff ladder over.
				backoff = initialBackoff
			}
			logger.Debug("stream disconnected, reconnecting", "backoff", backoff)
			select {
			case <-ctx.Done():
				return
			case <-time.After(backoff):
			}
			backoff *= 2
			if backoff > maxBackoff {
				backoff = maxBackoff
			}
		}
	}()

	return sub
}

// connectOnce runs a single connection attempt and reads it to
// exhaustion. It reports whether any event arrived.
func connectOnce(ctx context.Context, hc *http.Client, url string, headers http.Header, onEvent func(Event), onError func(error), logger *slog.Logger) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		reportError(onError, err)
		return false
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}

	resp, err := hc.Do(req)
	if err != nil {
		reportError(onError, err)
		return false
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		reportError(onError, fmt.Errorf("stream: unexpected status %d", resp.StatusCode))
		return false
	}

	delivered := false
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data strings.Builder
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			// Blank line terminates one SSE message.
			if data.Len() > 0 {
				if dispatch(data.String(), onEvent, onError) {
					delivered = true
				}
				data.Reset()
			}
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		default:
			// Comments (":") and fields the console ignores (id, event,
			// retry) fall through.
		}
	}
	// A message not followed by a blank line before EOF still counts.
	if data.Len() > 0 {
		if dispatch(data.String(), onEvent, onError) {
			delivered = true
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logger.Debug("stream read error", "error", err)
		reportError(onError, err)
	}
	return delivered
}

func dispatch(payload string, onEvent func(Event), onError func(error)) bool {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		reportError(onError, fmt.Errorf("stream: decode event: %w", err))
		return false
	}
	ev.Raw = json.RawMessage(payload)
	onEvent(ev)
	return true
}

func reportError(onError func(error), err error) {
	if onError != nil {
		onError(err)
	}
}
