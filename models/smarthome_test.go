package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryForDomain(t *testing.T) {
	tests := []struct {
		domain string
		want   DeviceCategory
	}{
		{"sensor", CategorySensor},
		{"binary_sensor", CategorySecurity},
		{"light", CategoryLighting},
		{"switch", CategoryGeneral},
		{"climate", CategoryClimate},
		{"lock", CategorySecurity},
		{"cover", CategoryGeneral},
		{"fan", CategoryClimate},
		{"media_player", CategoryMedia},
		{"vacuum", CategoryGeneral},
		{"", CategoryGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.domain, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryForDomain(tt.domain))
		})
	}
}

func TestDeviceControlAction(t *testing.T) {
	lock := Device{Domain: "lock", LastState: "locked"}
	assert.Equal(t, "unlock", lock.ControlAction())

	lock.LastState = "unlocked"
	assert.Equal(t, "toggle", lock.ControlAction())

	light := Device{Domain: "light", LastState: "on"}
	assert.Equal(t, "toggle", light.ControlAction())
}

func TestDeviceToggleable(t *testing.T) {
	for _, domain := range []string{"light", "switch", "fan", "lock", "cover"} {
		assert.True(t, Device{Domain: domain}.Toggleable(), domain)
	}
	for _, domain := range []string{"sensor", "binary_sensor", "climate", "media_player", ""} {
		assert.False(t, Device{Domain: domain}.Toggleable(), domain)
	}
}

func TestDeviceDisplayState(t *testing.T) {
	d := Device{LastState: "22.4"}
	assert.Equal(t, "22.4", d.DisplayState())

	d.LastAttributes = Attributes{"unit_of_measurement": json.RawMessage(`"°C"`)}
	assert.Equal(t, "22.4 °C", d.DisplayState())

	assert.Equal(t, "--", Device{}.DisplayState())
}

func TestAttributesRoundTrip(t *testing.T) {
	raw := []byte(`{"unit_of_measurement":"°C","friendly_name":"Office Temp","battery":87,"precision":"0.1"}`)
	var attrs Attributes
	require.NoError(t, json.Unmarshal(raw, &attrs))

	assert.Equal(t, "°C", attrs.String("unit_of_measurement"))
	assert.Equal(t, "", attrs.String("battery"))

	battery, ok := attrs.Float("battery")
	require.True(t, ok)
	assert.Equal(t, 87.0, battery)

	// Numeric attribute encoded as a string still resolves.
	precision, ok := attrs.Float("precision")
	require.True(t, ok)
	assert.Equal(t, 0.1, precision)

	// Marshalling back preserves unknown keys verbatim.
	out, err := json.Marshal(attrs)
	require.NoError(t, err)
	var before, after map[string]any
	require.NoError(t, json.Unmarshal(raw, &before))
	require.NoError(t, json.Unmarshal(out, &after))
	assert.Equal(t, before, after)
}
