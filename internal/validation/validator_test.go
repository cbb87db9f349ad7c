package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DragonRuins/life-hub-sub001/models"
)

func TestStructValid(t *testing.T) {
	v := New()
	inc := models.Incident{
		Title:     "router down",
		Severity:  models.SeverityHigh,
		Status:    models.IncidentActive,
		StartedAt: time.Now(),
	}
	assert.Nil(t, v.Struct(inc))
}

func TestStructErrorsUseJSONNames(t *testing.T) {
	v := New()
	errs := v.Struct(models.Incident{Severity: "urgent"})
	require.NotNil(t, errs)

	assert.Equal(t, "is required", errs["title"])
	assert.Equal(t, "must be one of: critical, high, medium, low", errs["severity"])
	assert.Contains(t, errs, "status")
	assert.Contains(t, errs, "started_at")
}

func TestStructServiceURL(t *testing.T) {
	v := New()
	errs := v.Struct(models.Service{Name: "grafana", URL: "not a url"})
	require.NotNil(t, errs)
	assert.Equal(t, "must be a valid URL", errs["url"])
}

func TestVar(t *testing.T) {
	v := New()
	assert.NoError(t, v.Var("https://grafana.lan:3000", "url"))
	assert.Error(t, v.Var("10.0.0.999", "ip"))
}
