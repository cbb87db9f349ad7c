package models

// NetworkDeviceType classifies network equipment.
type NetworkDeviceType string

const (
	NetworkRouter   NetworkDeviceType = "router"
	NetworkSwitch   NetworkDeviceType = "switch"
	NetworkAP       NetworkDeviceType = "ap"
	NetworkFirewall NetworkDeviceType = "firewall"
	NetworkModem    NetworkDeviceType = "modem"
	NetworkOther    NetworkDeviceType = "other"
)

// NetworkStatus is the reported state of a network device.
type NetworkStatus string

const (
	NetworkOnline  NetworkStatus = "online"
	NetworkOffline NetworkStatus = "offline"
	NetworkUnknown NetworkStatus = "unknown"
)

// NetworkDevice is a piece of network equipment in the inventory.
type NetworkDevice struct {
	ID              int64             `json:"id"`
	Name            string            `json:"name" validate:"required"`
	DeviceType      NetworkDeviceType `json:"device_type" validate:"required,oneof=router switch ap firewall modem other"`
	IP              string            `json:"ip,omitempty" validate:"omitempty,ip"`
	MAC             string            `json:"mac,omitempty" validate:"omitempty,mac"`
	Manufacturer    string            `json:"manufacturer,omitempty"`
	Model           string            `json:"model,omitempty"`
	FirmwareVersion string            `json:"firmware_version,omitempty"`
	Location        string            `json:"location,omitempty"`
	Status          NetworkStatus     `json:"status"`
}
