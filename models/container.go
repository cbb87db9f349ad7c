package models

import "github.com/docker/go-connections/nat"

// ContainerStatus is the reported state of a Docker container.
type ContainerStatus string

const (
	ContainerRunning    ContainerStatus = "running"
	ContainerExited     ContainerStatus = "exited"
	ContainerRestarting ContainerStatus = "restarting"
	ContainerStopped    ContainerStatus = "stopped"
	ContainerUnknown    ContainerStatus = "unknown"
)

// Container is a Docker container discovered on a host by the backend
// sync. Ports carries the raw port specs as reported by the daemon
// ("8080:80/tcp"); use PortMappings to get them in structured form.
type Container struct {
	ID     int64             `json:"id"`
	HostID int64             `json:"host_id"`
	Name   string            `json:"name"`
	Image  string            `json:"image"`
	Status ContainerStatus   `json:"status"`
	Labels map[string]string `json:"labels,omitempty"`
	Ports  []string          `json:"ports,omitempty"`
}

// PortMapping is a parsed container port binding.
type PortMapping struct {
	HostIP        string `json:"host_ip,omitempty"`
	HostPort      string `json:"host_port"`
	ContainerPort string `json:"container_port"`
	Protocol      string `json:"protocol"`
}

// PortMappings parses the raw port specs into structured bindings.
// Specs the daemon reports in a shape nat cannot parse are skipped
// rather than failing the whole container.
func (c Container) PortMappings() []PortMapping {
	var out []PortMapping
	for _, spec := range c.Ports {
		mappings, err := nat.ParsePortSpec(spec)
		if err != nil {
			continue
		}
		for _, m := range mappings {
			out = append(out, PortMapping{
				HostIP:        m.Binding.HostIP,
				HostPort:      m.Binding.HostPort,
				ContainerPort: m.Port.Port(),
				Protocol:      m.Port.Proto(),
			})
		}
	}
	return out
}
