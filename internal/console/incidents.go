package console

import (
	"context"
	"sync"
	"time"

	"github.com/DragonRuins/life-hub-sub001/internal/client"
	"github.com/DragonRuins/life-hub-sub001/internal/validation"
	"github.com/DragonRuins/life-hub-sub001/models"
)

// FilterAll shows every incident regardless of status.
const FilterAll models.IncidentStatus = ""

const incidentFeedbackTTL = 5 * time.Second

// IncidentsAPI is the backend slice the incident log consumes.
type IncidentsAPI interface {
	Incidents(ctx context.Context, status models.IncidentStatus) ([]models.Incident, error)
	CreateIncident(ctx context.Context, inc models.Incident) (*models.Incident, error)
	UpdateIncident(ctx context.Context, id int64, patch map[string]any) (*models.Incident, error)
	DeleteIncident(ctx context.Context, id int64) error
}

// IncidentsState is the status-filtered timeline snapshot.
type IncidentsState struct {
	Filter  models.IncidentStatus
	Items   []models.Incident
	Loading bool
	Err     string

	// FieldErrors carries creation-form validation failures, keyed by
	// field, surfaced inline rather than as a strip.
	FieldErrors map[string]string

	Feedback Feedback
}

// Incidents drives the incident timeline: filtering, creation, and the
// one-click resolve transition.
type Incidents struct {
	api       IncidentsAPI
	validator *validation.Validator

	mu    sync.Mutex
	gen   uint64
	state IncidentsState

	feedback feedbackCell
}

// NewIncidents creates the controller showing all incidents.
func NewIncidents(api IncidentsAPI) *Incidents {
	return &Incidents{
		api:       api,
		validator: validation.New(),
		state:     IncidentsState{Filter: FilterAll, Loading: true},
	}
}

// Snapshot returns a copy of the current state.
func (c *Incidents) Snapshot() IncidentsState {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.state
	s.Feedback = c.feedback.get()
	return s
}

// Load fetches the timeline under the active filter. A newer reload
// supersedes an older one.
func (c *Incidents) Load(ctx context.Context) {
	c.mu.Lock()
	c.gen++
	gen := c.gen
	filter := c.state.Filter
	c.mu.Unlock()

	items, err := c.api.Incidents(ctx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.state.Loading = false
	if err != nil {
		c.state.Err = err.Error()
		return
	}
	c.state.Err = ""
	c.state.Items = items
}

// SetFilter switches the status filter and reloads.
func (c *Incidents) SetFilter(ctx context.Context, f models.IncidentStatus) {
	c.mu.Lock()
	c.state.Filter = f
	c.mu.Unlock()
	c.Load(ctx)
}

// Create validates and submits a new incident. Title, severity, status,
// and started_at are required; resolved_at is accepted only when the
// submitted status is resolved. Validation failures land in FieldErrors
// inline; they never reach the backend.
func (c *Incidents) Create(ctx context.Context, inc models.Incident) {
	fieldErrs := c.validator.Struct(inc)
	if inc.ResolvedAt != nil && inc.Status != models.IncidentResolved {
		if fieldErrs == nil {
			fieldErrs = map[string]string{}
		}
		fieldErrs["resolved_at"] = "only allowed when status is resolved"
	}
	c.mu.Lock()
	c.state.FieldErrors = fieldErrs
	c.mu.Unlock()
	if len(fieldErrs) > 0 {
		return
	}

	if _, err := c.api.CreateIncident(ctx, inc); err != nil {
		c.feedback.set(err.Error(), client.ErrorKind(err), incidentFeedbackTTL)
		return
	}
	c.feedback.set("Incident logged", "", incidentFeedbackTTL)
	c.Load(ctx)
}

// Resolve transitions an incident to resolved with a one-click PATCH
// carrying only the status; the server stamps resolved_at. Resolving an
// already-resolved incident is a no-op server-side.
func (c *Incidents) Resolve(ctx context.Context, id int64) {
	if _, err := c.api.UpdateIncident(ctx, id, map[string]any{"status": models.IncidentResolved}); err != nil {
		c.feedback.set(err.Error(), client.ErrorKind(err), incidentFeedbackTTL)
		return
	}
	c.Load(ctx)
}

// Delete removes an incident after the TUI has confirmed.
func (c *Incidents) Delete(ctx context.Context, id int64) {
	if err := c.api.DeleteIncident(ctx, id); err != nil {
		c.feedback.set(err.Error(), client.ErrorKind(err), incidentFeedbackTTL)
		return
	}
	c.Load(ctx)
}
