package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/chat-duo/backend/internal/models"
)

// API is a thin client for the sync server's REST endpoints.
type API struct {
	baseURL    string
	httpClient *http.Client
}

// NewAPI creates an API client against the given base URL.
func NewAPI(baseURL string) *API {
	return &API{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchRooms pulls the full server-held room collection.
func (a *API) FetchRooms(ctx context.Context) ([]models.Room, error) {
	body, err := a.doRequest(ctx, http.MethodGet, "/api/rooms", nil)
	if err != nil {
		return nil, err
	}

	var resp models.RoomsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse rooms response: %w", err)
	}
	return resp.Rooms, nil
}

// PushRooms submits the full local room snapshot plus this device's
// heartbeat, returning the server's merged collection.
func (a *API) PushRooms(ctx context.Context, rooms []models.Room, device models.DeviceHeartbeat) ([]models.Room, error) {
	req := models.SyncRequest{Rooms: rooms, DeviceInfo: &device}
	body, err := a.doRequest(ctx, http.MethodPost, "/api/rooms", req)
	if err != nil {
		return nil, err
	}

	var resp models.RoomsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse sync response: %w", err)
	}
	return resp.Rooms, nil
}

// doRequest executes one HTTP request against the sync server and returns
// the raw response body.
func (a *API) doRequest(ctx context.Context, method, endpoint string, payload interface{}) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("sync server error (status %d): %s", resp.StatusCode, string(body))
	}
	return body, nil
}
