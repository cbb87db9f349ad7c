package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector gathers delivered events concurrency-safely.
type collector struct {
	mu     sync.Mutex
	events []Event
	errs   []error
}

func (c *collector) onEvent(ev Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) onError(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *collector) snapshot() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Event(nil), c.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func sseServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, msg := range messages {
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
		// Keep the connection open until the client goes away so the
		// subscription does not enter a reconnect loop mid-test.
		<-r.Context().Done()
	}))
}

func TestSubscribeDeliversEventsInOrder(t *testing.T) {
	srv := sseServer(t, []string{
		`{"type":"state_changed","entity_id":"sensor.foo","state":"22.1"}`,
		`{"type":"state_changed","entity_id":"sensor.foo","state":"22.4","attributes":{"unit_of_measurement":"°C"}}`,
		`{"type":"integration_sync","detail":"unknown to the console"}`,
	})
	defer srv.Close()

	col := &collector{}
	sub := Subscribe(context.Background(), srv.URL, col.onEvent, col.onError, Options{})
	defer sub.Close()

	waitFor(t, func() bool { return len(col.snapshot()) == 3 })

	events := col.snapshot()
	assert.Equal(t, "22.1", events[0].State)
	assert.Equal(t, "22.4", events[1].State)
	assert.Equal(t, "°C", events[1].Attributes.String("unit_of_measurement"))

	// Unknown types pass through unchanged, payload intact.
	assert.Equal(t, "integration_sync", events[2].Type)
	assert.JSONEq(t, `{"type":"integration_sync","detail":"unknown to the console"}`, string(events[2].Raw))
}

func TestSubscribeReconnects(t *testing.T) {
	var mu sync.Mutex
	connections := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		connections++
		n := connections
		mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: {\"type\":\"state_changed\",\"entity_id\":\"light.n%d\",\"state\":\"on\"}\n\n", n)
		w.(http.Flusher).Flush()
		// First connection drops immediately; the adapter must come back.
		if n == 1 {
			return
		}
		<-r.Context().Done()
	}))
	defer srv.Close()

	col := &collector{}
	sub := Subscribe(context.Background(), srv.URL, col.onEvent, col.onError, Options{})
	defer sub.Close()

	waitFor(t, func() bool { return len(col.snapshot()) >= 2 })

	events := col.snapshot()
	assert.Equal(t, "light.n1", events[0].EntityID)
	assert.Equal(t, "light.n2", events[1].EntityID)
}

func TestCloseCancelsPendingReconnect(t *testing.T) {
	// A server that always refuses puts the subscription into backoff;
	// Close must return promptly anyway.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	col := &collector{}
	sub := Subscribe(context.Background(), srv.URL, col.onEvent, col.onError, Options{})

	waitFor(t, func() bool {
		col.mu.Lock()
		defer col.mu.Unlock()
		return len(col.errs) > 0
	})

	done := make(chan struct{})
	go func() {
		sub.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not cancel the pending reconnect")
	}
}

func TestMultiLineDataMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		// One SSE message split across two data lines.
		fmt.Fprint(w, "data: {\"type\":\"state_changed\",\ndata: \"entity_id\":\"lock.door\",\"state\":\"locked\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	col := &collector{}
	sub := Subscribe(context.Background(), srv.URL, col.onEvent, col.onError, Options{})
	defer sub.Close()

	waitFor(t, func() bool { return len(col.snapshot()) == 1 })
	require.Equal(t, "lock.door", col.snapshot()[0].EntityID)
}
