// Package lifehub is a terminal console for a self-hosted life
// dashboard backend.
//
// # Overview
//
// lifehub talks to the dashboard's REST API and event stream and
// renders an interactive infrastructure and smart-home console in the
// terminal.
//
// The client consists of three layers:
//   - Adapters: typed HTTP client, SSE subscription, metrics query
//     engine (internal/client, internal/stream, internal/metrics)
//   - Controllers: per-view state machines with background refresh and
//     feedback handling (internal/console)
//   - Console: bubbletea shell and render primitives (internal/tui,
//     internal/view)
//
// # Core Features
//
//   - Infrastructure dashboard: hosts, containers, services, incident
//     summary, optional LIVE auto-refresh that pauses while the
//     terminal is not focused
//   - Host detail: hardware detection, Docker setup and container
//     sync, service checks, metric charts over selectable ranges
//   - Smart home: room grid with live state patching from the event
//     stream, edit mode with bulk operations, discovery import
//   - Incidents: filtering, validated creation, one-key resolve
//   - Themes: catppuccin and lcars built in, YAML override files,
//     choice persisted across sessions
//
// Run `lifehub console` to open the console, or use the hosts,
// incidents, and config subcommands for scripting.
package lifehub
