// Package models defines the wire types shared between the lifehub
// backend and the console. All entities are value types: controllers
// hold snapshots of them and the server owns identity.
package models

import "time"

// HostType classifies the kind of machine a host record describes.
type HostType string

const (
	HostTypeServer      HostType = "server"
	HostTypeVM          HostType = "vm"
	HostTypeVPS         HostType = "vps"
	HostTypeRaspberryPi HostType = "raspberry_pi"
	HostTypeNAS         HostType = "nas"
	HostTypeWorkstation HostType = "workstation"
	HostTypeOther       HostType = "other"
)

// HostStatus is the reported operational status of a host.
type HostStatus string

const (
	HostOnline   HostStatus = "online"
	HostOffline  HostStatus = "offline"
	HostDegraded HostStatus = "degraded"
	HostUnknown  HostStatus = "unknown"
)

// Hardware describes the physical specification of a host as detected
// by the backend scan or entered by hand.
type Hardware struct {
	CPU        string  `json:"cpu,omitempty"`
	CPUCores   int     `json:"cpu_cores,omitempty"`
	CPUThreads int     `json:"cpu_threads,omitempty"`
	RAMGB      float64 `json:"ram_gb,omitempty"`
	DiskGB     float64 `json:"disk_gb,omitempty"`
	GPU        string  `json:"gpu,omitempty"`
}

// Host represents a monitored machine in the infrastructure inventory.
//
// The Host model includes:
//   - Identification (ID, Name, HostType)
//   - Network configuration (IP, MAC, Hostname)
//   - OS and hardware details (OSName, OSVersion, Hardware)
//   - Operational state (Status, LastSeenAt)
//
// Containers and Services are populated only when the host is fetched
// in detail form. A host without HasDockerIntegration never carries
// containers; the Docker setup flow is the only way to enable them.
type Host struct {
	// ID is the unique numeric host identifier assigned by the server.
	ID int64 `json:"id"`

	// Name is the human-readable host name (required).
	Name string `json:"name" validate:"required"`

	// HostType classifies the machine (server, vm, vps, ...).
	HostType HostType `json:"host_type" validate:"required,oneof=server vm vps raspberry_pi nas workstation other"`

	IP        string `json:"ip,omitempty" validate:"omitempty,ip"`
	MAC       string `json:"mac,omitempty" validate:"omitempty,mac"`
	OSName    string `json:"os_name,omitempty"`
	OSVersion string `json:"os_version,omitempty"`
	Hostname  string `json:"hostname,omitempty"`
	Location  string `json:"location,omitempty"`

	// Status is the reported operational status (online, offline,
	// degraded, unknown).
	Status HostStatus `json:"status"`

	// Hardware is the optional detected or hand-entered spec record.
	Hardware *Hardware `json:"hardware,omitempty"`

	// HasDockerIntegration reports whether the backend can reach this
	// host's Docker daemon.
	HasDockerIntegration bool `json:"has_docker_integration"`

	LastSeenAt *time.Time `json:"last_seen_at,omitempty"`

	// Containers and Services are present in detail responses only.
	Containers []Container `json:"containers,omitempty"`
	Services   []Service   `json:"services,omitempty"`
}

// DockerSetupRequest configures backend access to a host's Docker
// daemon, either through a local socket or a TCP endpoint.
type DockerSetupRequest struct {
	ConnectionType string `json:"connection_type" validate:"required,oneof=socket tcp"`
	SocketPath     string `json:"socket_path,omitempty" validate:"required_if=ConnectionType socket"`
	TCPURL         string `json:"tcp_url,omitempty" validate:"required_if=ConnectionType tcp"`
	CollectStats   bool   `json:"collect_stats"`
}

// DockerSetupResult is the outcome of a Docker setup attempt. SyncResult
// is present only when the connection succeeded and an initial container
// sync ran.
type DockerSetupResult struct {
	ConnectionOK bool        `json:"connection_ok"`
	SyncResult   *SyncResult `json:"sync_result,omitempty"`
	Error        string      `json:"error,omitempty"`
}

// SyncResult reports the outcome of a container sync on a single host.
type SyncResult struct {
	ContainersFound int `json:"containers_found"`
	Added           int `json:"added"`
	Updated         int `json:"updated"`
	Removed         int `json:"removed"`
}
