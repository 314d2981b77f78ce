package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/kozzzzzzy/twin-sync-addon/internal/common"
)

// Camera is one discoverable camera entity.
type Camera struct {
	EntityID string `json:"entity_id"`
	Name     string `json:"name"`
}

// HACamera reads snapshots through the Home Assistant API. It implements
// SnapshotSource.
type HACamera struct {
	httpClient *http.Client
	baseURL    string
	token      string
}

// NewHACamera creates a Home Assistant camera adapter.
func NewHACamera(baseURL, token string) (*HACamera, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: home assistant base URL is required", common.ErrMissingConfig)
	}
	if token == "" {
		return nil, fmt.Errorf("%w: supervisor token is required", common.ErrMissingConfig)
	}
	return &HACamera{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// Snapshot fetches one JPEG frame from the camera proxy.
func (h *HACamera) Snapshot(ctx context.Context, entityID string) ([]byte, error) {
	url := fmt.Sprintf("%s/api/camera_proxy/%s", h.baseURL, entityID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create snapshot request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("camera snapshot: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("camera snapshot status %d for %s", resp.StatusCode, entityID)
	}

	frame, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return frame, nil
}

// ListCameras returns the camera.* entities Home Assistant knows about.
func (h *HACamera) ListCameras(ctx context.Context) ([]Camera, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.baseURL+"/api/states", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create states request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+h.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list cameras: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("home assistant states status %d", resp.StatusCode)
	}

	var states []struct {
		EntityID   string `json:"entity_id"`
		Attributes struct {
			FriendlyName string `json:"friendly_name"`
		} `json:"attributes"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&states); err != nil {
		return nil, fmt.Errorf("decode states: %w", err)
	}

	var cameras []Camera
	for _, state := range states {
		if !strings.HasPrefix(state.EntityID, "camera.") {
			continue
		}
		name := state.Attributes.FriendlyName
		if name == "" {
			name = state.EntityID
		}
		cameras = append(cameras, Camera{EntityID: state.EntityID, Name: name})
	}
	return cameras, nil
}

// TestCamera reports whether a camera currently produces frames.
func (h *HACamera) TestCamera(ctx context.Context, entityID string) bool {
	frame, err := h.Snapshot(ctx, entityID)
	return err == nil && len(frame) > 0
}
