// Package metrics turns (source, metric, range) selections into scoped
// backend queries and prepares the results for chart rendering.
package metrics

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// Range is a chart time window.
type Range string

const (
	Range1h  Range = "1h"
	Range6h  Range = "6h"
	Range24h Range = "24h"
	Range7d  Range = "7d"
	Range30d Range = "30d"
)

// Ranges lists the selectable windows in display order.
var Ranges = []Range{Range1h, Range6h, Range24h, Range7d, Range30d}

var rangeHours = map[Range]int{
	Range1h:  1,
	Range6h:  6,
	Range24h: 24,
	Range7d:  168,
	Range30d: 720,
}

// Hours returns the window length, defaulting to 24h for unknown
// ranges.
func (r Range) Hours() int {
	if h, ok := rangeHours[r]; ok {
		return h
	}
	return 24
}

// Window computes the query interval ending at now.
func (r Range) Window(now time.Time) (from, to time.Time) {
	return now.Add(-time.Duration(r.Hours()) * time.Hour), now
}

// Long reports whether the range spans days rather than hours, which
// switches axis labels from clock time to dates.
func (r Range) Long() bool {
	return r == Range7d || r == Range30d
}

// API is the slice of the backend client the engine needs.
type API interface {
	MetricsLatest(ctx context.Context, sourceType models.SourceType, sourceID int64) ([]models.MetricLatest, error)
	MetricsQuery(ctx context.Context, sourceType models.SourceType, sourceID int64, metric string, from, to time.Time, resolution string) ([]models.MetricPoint, error)
}

// Query identifies one chart fetch.
type Query struct {
	SourceType models.SourceType
	SourceID   int64
	MetricName string
	Range      Range
	Resolution string
}

// Result is the prepared chart input: the newest sample per metric name
// and the selected metric's series ordered oldest-first.
type Result struct {
	LatestByName map[string]models.MetricLatest
	Series       []models.MetricPoint
}

// Empty reports whether the result carries no data at all.
func (r Result) Empty() bool {
	return len(r.LatestByName) == 0 && len(r.Series) == 0
}

// Engine executes metric queries against the backend.
type Engine struct {
	api API
	now func() time.Time
}

// New creates an engine over the given backend slice.
func New(api API) *Engine {
	return &Engine{api: api, now: time.Now}
}

// Fetch issues the latest-gauges and time-series requests concurrently
// and normalizes the series to oldest-first. Either request failing
// yields empty data and the error; the engine never retries, the
// surrounding controller decides whether to reload.
func (e *Engine) Fetch(ctx context.Context, q Query) (Result, error) {
	if q.Resolution == "" {
		q.Resolution = "auto"
	}
	from, to := q.Range.Window(e.now())

	var (
		latest []models.MetricLatest
		series []models.MetricPoint
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		latest, err = e.api.MetricsLatest(gctx, q.SourceType, q.SourceID)
		return err
	})
	g.Go(func() error {
		var err error
		series, err = e.api.MetricsQuery(gctx, q.SourceType, q.SourceID, q.MetricName, from, to, q.Resolution)
		return err
	})
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	byName := make(map[string]models.MetricLatest, len(latest))
	for _, m := range latest {
		byName[m.MetricName] = m
	}

	// The wire delivers points newest-first; charts want oldest-first.
	reversed := make([]models.MetricPoint, len(series))
	for i, p := range series {
		reversed[len(series)-1-i] = p
	}

	return Result{LatestByName: byName, Series: reversed}, nil
}

// GaugeValue returns the clamped 0-100 value for a gauge metric, or
// ok=false when the metric has no sample ("--" in the UI).
func GaugeValue(r Result, metric string) (float64, bool) {
	m, ok := r.LatestByName[metric]
	if !ok {
		return 0, false
	}
	v := m.Value
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, true
}
