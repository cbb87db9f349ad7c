package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/DragonRuins/life-hub-sub001/models"
)

// SmartHomeDashboard fetches the room->device snapshot.
func (c *Client) SmartHomeDashboard(ctx context.Context) (*models.SmartHomeDashboard, error) {
	var out models.SmartHomeDashboard
	if err := c.get(ctx, "/api/infrastructure/smarthome/dashboard", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Rooms lists smart-home rooms.
func (c *Client) Rooms(ctx context.Context) ([]models.Room, error) {
	var out []models.Room
	if err := c.get(ctx, "/api/infrastructure/smarthome/rooms", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Discover fetches all integration entities grouped by domain, flagged
// with is_registered.
func (c *Client) Discover(ctx context.Context) (map[string][]models.DiscoveredEntity, error) {
	var out map[string][]models.DiscoveredEntity
	if err := c.get(ctx, "/api/infrastructure/smarthome/discover", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// BulkImport registers a batch of discovered entities. Already
// registered entity ids are skipped by the server, not duplicated.
func (c *Client) BulkImport(ctx context.Context, req models.BulkImportRequest) (*models.BulkImportResult, error) {
	var out models.BulkImportResult
	if err := c.send(ctx, http.MethodPost, "/api/infrastructure/smarthome/devices/bulk-import", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkUpdate applies one diff to many devices and reports per-device
// outcome counts. failed > 0 means the operation partially committed.
func (c *Client) BulkUpdate(ctx context.Context, req models.BulkUpdateRequest) (*models.BulkResult, error) {
	var out models.BulkResult
	if err := c.send(ctx, http.MethodPatch, "/api/infrastructure/smarthome/devices/bulk-update", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// BulkDelete removes many devices at once.
func (c *Client) BulkDelete(ctx context.Context, ids []int64) (*models.BulkResult, error) {
	var out models.BulkResult
	body := map[string][]int64{"ids": ids}
	if err := c.send(ctx, http.MethodDelete, "/api/infrastructure/smarthome/devices/bulk-delete", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ControlDevice sends a control action (toggle, lock, unlock) to one
// device. The console never updates state optimistically; the next SSE
// event or fallback poll is the source of truth.
func (c *Client) ControlDevice(ctx context.Context, id int64, action string) error {
	body := map[string]string{"action": action}
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/smarthome/devices/%d/control", id), body, nil)
}

// FavoriteDevice flips the favorite flag. The call is idempotent on the
// server for repeated identical states.
func (c *Client) FavoriteDevice(ctx context.Context, id int64) error {
	return c.send(ctx, http.MethodPost, fmt.Sprintf("/api/infrastructure/smarthome/devices/%d/favorite", id), nil, nil)
}

// StreamURL is the SSE endpoint consumed by the stream subscriber.
func (c *Client) StreamURL() string {
	return c.baseURL + "/api/infrastructure/smarthome/stream"
}

// StreamHeaders returns the headers the SSE subscriber must send.
func (c *Client) StreamHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/event-stream")
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}
