package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.json")
	s, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, path
}

func waitEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for prefs event")
		return Event{}
	}
}

func TestOpenCreatesDefaults(t *testing.T) {
	s, path := openTestStore(t)

	p := s.Get()
	assert.Equal(t, VehicleAll, p.DashboardVehicleID)
	assert.Equal(t, "catppuccin", p.Theme)
	assert.NotEmpty(t, p.InstallID)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var onDisk Prefs
	require.NoError(t, json.Unmarshal(data, &onDisk))
	assert.Equal(t, p, onDisk)
}

func TestInstallIDSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	s1, err := Open(path, nil)
	require.NoError(t, err)
	id := s1.Get().InstallID
	require.NoError(t, s1.Close())

	s2, err := Open(path, nil)
	require.NoError(t, err)
	defer s2.Close()
	assert.Equal(t, id, s2.Get().InstallID)
}

func TestSetNotifiesSubscribers(t *testing.T) {
	s, _ := openTestStore(t)
	events := make(chan Event, 4)
	s.Subscribe(func(ev Event) { events <- ev })

	require.NoError(t, s.SetVehicle("7"))
	ev := waitEvent(t, events)
	assert.Equal(t, EventVehicleChanged, ev.Name)
	assert.Equal(t, "7", ev.Value)

	require.NoError(t, s.SetTheme("lcars"))
	ev = waitEvent(t, events)
	assert.Equal(t, EventThemeChanged, ev.Name)
	assert.Equal(t, "lcars", ev.Value)

	assert.Equal(t, "7", s.Get().DashboardVehicleID)
	assert.Equal(t, "lcars", s.Get().Theme)
}

func TestSetSameValueEmitsNothing(t *testing.T) {
	s, _ := openTestStore(t)
	events := make(chan Event, 4)
	s.Subscribe(func(ev Event) { events <- ev })

	require.NoError(t, s.SetVehicle(VehicleAll))

	select {
	case ev := <-events:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestExternalWriteTriggersEvent(t *testing.T) {
	s, path := openTestStore(t)
	events := make(chan Event, 4)
	s.Subscribe(func(ev Event) { events <- ev })

	next := s.Get()
	next.Theme = "lcars"
	require.NoError(t, writeFile(path, next))

	ev := waitEvent(t, events)
	assert.Equal(t, EventThemeChanged, ev.Name)
	assert.Equal(t, "lcars", ev.Value)
	assert.Equal(t, "lcars", s.Get().Theme)
}
