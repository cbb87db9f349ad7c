// Package prefs persists the small set of client-owned UI preferences
// and broadcasts change events so views react without a reload. The
// store watches its own file, so an edit by another process (or
// another running console) is picked up the same way as a local Set.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
)

// Change event names, one per preference key.
const (
	EventVehicleChanged = "vehicle-selection-changed"
	EventThemeChanged   = "theme-changed"
)

// VehicleAll selects the all-vehicles dashboard aggregate.
const VehicleAll = "all"

// Prefs is the durable client state. Everything else the console shows
// is a server snapshot.
type Prefs struct {
	DashboardVehicleID string `json:"dashboard_vehicle_id"`
	Theme              string `json:"theme"`
	InstallID          string `json:"install_id"`
}

func defaults() Prefs {
	return Prefs{
		DashboardVehicleID: VehicleAll,
		Theme:              "catppuccin",
		InstallID:          uuid.NewString(),
	}
}

// Event notifies a subscriber of one changed preference.
type Event struct {
	Name  string
	Value string
}

// Store owns the preference file and its watcher.
type Store struct {
	path   string
	logger *slog.Logger

	mu   sync.Mutex
	cur  Prefs
	subs []func(Event)

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// DefaultPath returns ~/.lifehub/prefs.json.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, ".lifehub", "prefs.json"), nil
}

// Open loads the preference file, creating it with defaults when
// missing, and starts the file watcher.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating prefs directory: %w", err)
	}

	s := &Store{path: path, logger: logger, done: make(chan struct{})}

	p, err := readFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		p = defaults()
		if err := writeFile(path, p); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if p.InstallID == "" {
			p.InstallID = uuid.NewString()
			if err := writeFile(path, p); err != nil {
				return nil, err
			}
		}
	}
	s.cur = p

	// Watch the directory, not the file: atomic rename replaces the
	// inode on every write.
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("starting prefs watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("watching prefs directory: %w", err)
	}
	s.watcher = w
	go s.watch()

	return s, nil
}

// Close stops the watcher.
func (s *Store) Close() error {
	err := s.watcher.Close()
	<-s.done
	return err
}

// Get returns the current preferences.
func (s *Store) Get() Prefs {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cur
}

// Subscribe registers a change listener. Listeners run synchronously
// on the goroutine that caused the change; keep them short.
func (s *Store) Subscribe(fn func(Event)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// SetVehicle persists the dashboard vehicle selection ("all" or an id)
// and notifies subscribers.
func (s *Store) SetVehicle(id string) error {
	return s.update(func(p *Prefs) { p.DashboardVehicleID = id })
}

// SetTheme persists the active theme name and notifies subscribers.
func (s *Store) SetTheme(name string) error {
	return s.update(func(p *Prefs) { p.Theme = name })
}

func (s *Store) update(mutate func(*Prefs)) error {
	s.mu.Lock()
	old := s.cur
	next := s.cur
	mutate(&next)
	if next == old {
		s.mu.Unlock()
		return nil
	}
	if err := writeFile(s.path, next); err != nil {
		s.mu.Unlock()
		return err
	}
	s.cur = next
	events := diff(old, next)
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	notify(subs, events)
	return nil
}

// watch reloads the file on external writes and emits events for keys
// that actually changed. Writes made through Set come back around here
// too; they are no-ops because the cache already matches.
func (s *Store) watch() {
	defer close(s.done)
	for {
		select {
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			s.reload()
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.logger.Debug("prefs watcher error", "error", err)
		}
	}
}

func (s *Store) reload() {
	p, err := readFile(s.path)
	if err != nil {
		s.logger.Debug("prefs reload failed", "error", err)
		return
	}

	s.mu.Lock()
	old := s.cur
	if p == old {
		s.mu.Unlock()
		return
	}
	s.cur = p
	events := diff(old, p)
	subs := append([]func(Event){}, s.subs...)
	s.mu.Unlock()

	notify(subs, events)
}

func diff(old, next Prefs) []Event {
	var events []Event
	if old.DashboardVehicleID != next.DashboardVehicleID {
		events = append(events, Event{Name: EventVehicleChanged, Value: next.DashboardVehicleID})
	}
	if old.Theme != next.Theme {
		events = append(events, Event{Name: EventThemeChanged, Value: next.Theme})
	}
	return events
}

func notify(subs []func(Event), events []Event) {
	for _, ev := range events {
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func readFile(path string) (Prefs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parsing %s: %w", path, err)
	}
	return p, nil
}

// writeFile is atomic: a reader never observes a partial file.
func writeFile(path string, p Prefs) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
