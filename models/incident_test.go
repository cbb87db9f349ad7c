package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIncidentCheckConsistency(t *testing.T) {
	started := time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC)
	resolved := started.Add(2 * time.Hour)
	early := started.Add(-time.Minute)

	tests := []struct {
		name     string
		incident Incident
		wantErr  bool
	}{
		{
			name:     "active without resolved_at",
			incident: Incident{ID: 1, Status: IncidentActive, StartedAt: started},
		},
		{
			name:     "resolved with resolved_at",
			incident: Incident{ID: 2, Status: IncidentResolved, StartedAt: started, ResolvedAt: &resolved},
		},
		{
			name:     "resolved without resolved_at",
			incident: Incident{ID: 3, Status: IncidentResolved, StartedAt: started},
			wantErr:  true,
		},
		{
			name:     "investigating with resolved_at",
			incident: Incident{ID: 4, Status: IncidentInvestigating, StartedAt: started, ResolvedAt: &resolved},
			wantErr:  true,
		},
		{
			name:     "resolved before started",
			incident: Incident{ID: 5, Status: IncidentResolved, StartedAt: started, ResolvedAt: &early},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.incident.CheckConsistency()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToneTables(t *testing.T) {
	assert.Equal(t, ToneGreen, ToneForStatus("online"))
	assert.Equal(t, ToneGreen, ToneForStatus("resolved"))
	assert.Equal(t, ToneYellow, ToneForStatus("degraded"))
	assert.Equal(t, ToneYellow, ToneForStatus("investigating"))
	assert.Equal(t, ToneRed, ToneForStatus("offline"))
	assert.Equal(t, ToneRed, ToneForStatus("active"))
	assert.Equal(t, ToneGray, ToneForStatus("unknown"))
	assert.Equal(t, ToneGray, ToneForStatus("whatever"))

	assert.Equal(t, ToneBright, ToneForSeverity(SeverityCritical))
	assert.Equal(t, ToneOrange, ToneForSeverity(SeverityHigh))
	assert.Equal(t, ToneYellow, ToneForSeverity(SeverityMedium))
	assert.Equal(t, ToneBlue, ToneForSeverity(SeverityLow))
}
