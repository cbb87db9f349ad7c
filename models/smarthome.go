package models

import "encoding/json"

// DeviceCategory groups smart-home devices for bulk operations and the
// room grid.
type DeviceCategory string

const (
	CategoryClimate  DeviceCategory = "climate"
	CategoryLighting DeviceCategory = "lighting"
	CategorySecurity DeviceCategory = "security"
	CategorySensor   DeviceCategory = "sensor"
	CategoryMedia    DeviceCategory = "media"
	CategoryPrinter  DeviceCategory = "printer"
	CategoryGeneral  DeviceCategory = "general"
)

// DeviceCategories lists the fixed category enumeration in display order.
var DeviceCategories = []DeviceCategory{
	CategoryClimate,
	CategoryLighting,
	CategorySecurity,
	CategorySensor,
	CategoryMedia,
	CategoryPrinter,
	CategoryGeneral,
}

// domainCategories maps home-automation domains to auto-assigned
// categories during import. An explicit category always wins.
var domainCategories = map[string]DeviceCategory{
	"sensor":        CategorySensor,
	"binary_sensor": CategorySecurity,
	"light":         CategoryLighting,
	"switch":        CategoryGeneral,
	"climate":       CategoryClimate,
	"lock":          CategorySecurity,
	"cover":         CategoryGeneral,
	"fan":           CategoryClimate,
	"media_player":  CategoryMedia,
}

// CategoryForDomain returns the auto-assigned category for a device
// domain, falling back to general for domains without a mapping.
func CategoryForDomain(domain string) DeviceCategory {
	if c, ok := domainCategories[domain]; ok {
		return c
	}
	return CategoryGeneral
}

// Room groups smart-home devices spatially.
type Room struct {
	ID   int64  `json:"id"`
	Name string `json:"name" validate:"required"`
	Icon string `json:"icon,omitempty"`
}

// Device is a registered smart-home entity. EntityID is the opaque key
// the external home-automation backend knows the device by; it is
// globally unique among registered devices and re-imports of the same
// EntityID are skipped server-side, not duplicated.
type Device struct {
	ID                  int64          `json:"id"`
	RoomID              *int64         `json:"room_id,omitempty"`
	IntegrationConfigID int64          `json:"integration_config_id"`
	EntityID            string         `json:"entity_id"`
	FriendlyName        string         `json:"friendly_name"`
	Domain              string         `json:"domain"`
	DeviceClass         string         `json:"device_class,omitempty"`
	Category            DeviceCategory `json:"category"`
	LastState           string         `json:"last_state,omitempty"`
	LastAttributes      Attributes     `json:"last_attributes,omitempty"`
	IsVisible           bool           `json:"is_visible"`
	IsFavorited         bool           `json:"is_favorited"`
}

// DisplayState renders the effective state with its unit when the
// attribute map carries one ("22.4 °C").
func (d Device) DisplayState() string {
	if d.LastState == "" {
		return "--"
	}
	if unit := d.LastAttributes.String("unit_of_measurement"); unit != "" {
		return d.LastState + " " + unit
	}
	return d.LastState
}

// Toggleable reports whether tapping the device outside edit mode sends
// a control action.
func (d Device) Toggleable() bool {
	switch d.Domain {
	case "light", "switch", "fan", "lock", "cover":
		return true
	}
	return false
}

// ControlAction picks the action a tap maps to: a locked lock unlocks,
// everything else toggles.
func (d Device) ControlAction() string {
	if d.Domain == "lock" && d.LastState == "locked" {
		return "unlock"
	}
	return "toggle"
}

// RoomGroup is a room together with its devices as delivered by the
// smart-home dashboard endpoint.
type RoomGroup struct {
	ID      int64    `json:"id"`
	Name    string   `json:"name"`
	Icon    string   `json:"icon,omitempty"`
	Devices []Device `json:"devices"`
}

// SmartHomeDashboard is the full room->device snapshot.
type SmartHomeDashboard struct {
	Rooms        []RoomGroup `json:"rooms"`
	Unassigned   []Device    `json:"unassigned"`
	TotalDevices int         `json:"total_devices"`
}

// DiscoveredEntity is an entity reported by the integration discovery
// endpoint, flagged when it is already registered.
type DiscoveredEntity struct {
	EntityID     string     `json:"entity_id"`
	FriendlyName string     `json:"friendly_name"`
	Domain       string     `json:"domain"`
	State        string     `json:"state,omitempty"`
	Attributes   Attributes `json:"attributes,omitempty"`
	IsRegistered bool       `json:"is_registered"`
}

// BulkImportRequest registers a set of discovered entities at once.
// Category, when empty, is auto-assigned per domain server-side.
type BulkImportRequest struct {
	EntityIDs []string       `json:"entity_ids" validate:"required,min=1"`
	RoomID    *int64         `json:"room_id,omitempty"`
	Category  DeviceCategory `json:"category,omitempty"`
}

// BulkImportResult reports how many entities were newly registered;
// duplicates are skipped, not counted.
type BulkImportResult struct {
	RegisteredCount int `json:"registered_count"`
	SkippedCount    int `json:"skipped_count"`
}

// DeviceUpdates is the diff applied by a bulk update. Pointer fields
// distinguish "leave alone" from "set to zero value". MoveRoom forces
// room_id onto the wire even when RoomID is nil, which is how a move to
// Unassigned is expressed.
type DeviceUpdates struct {
	Category  *DeviceCategory
	RoomID    *int64
	MoveRoom  bool
	IsVisible *bool
}

// MarshalJSON emits only the fields the diff actually sets; room_id is
// serialized as an explicit null for moves to Unassigned.
func (u DeviceUpdates) MarshalJSON() ([]byte, error) {
	m := map[string]any{}
	if u.Category != nil {
		m["category"] = *u.Category
	}
	if u.MoveRoom || u.RoomID != nil {
		m["room_id"] = u.RoomID
	}
	if u.IsVisible != nil {
		m["is_visible"] = *u.IsVisible
	}
	return json.Marshal(m)
}

// UnmarshalJSON restores the diff, tracking room_id key presence.
func (u *DeviceUpdates) UnmarshalJSON(b []byte) error {
	var fields struct {
		Category  *DeviceCategory `json:"category"`
		RoomID    *int64          `json:"room_id"`
		IsVisible *bool           `json:"is_visible"`
	}
	if err := json.Unmarshal(b, &fields); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(b, &keys); err != nil {
		return err
	}
	u.Category = fields.Category
	u.RoomID = fields.RoomID
	u.IsVisible = fields.IsVisible
	_, u.MoveRoom = keys["room_id"]
	return nil
}

// BulkUpdateRequest applies one diff to many devices.
type BulkUpdateRequest struct {
	IDs     []int64       `json:"ids" validate:"required,min=1"`
	Updates DeviceUpdates `json:"updates"`
}

// BulkResult reports per-device outcome counts for a bulk mutation.
// A failed count above zero means the operation partially committed.
type BulkResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}
