package core

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
)

// ErrUnavailable marks payload fetch failures: network errors, non-2xx
// responses, or undecodable bodies. Callers surface it as a status message
// rather than failing the process; search simply stays inert.
var ErrUnavailable = fmt.Errorf("search index unavailable")

// LoadPayload retrieves and decodes a search-index payload. Locations
// starting with http:// or https:// are fetched with a single GET; anything
// else is read as a local file path.
func LoadPayload(ctx context.Context, client *http.Client, location string) (*Payload, error) {
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return FetchPayload(ctx, client, location)
	}
	return ReadPayloadFile(location)
}

// FetchPayload performs the single index fetch over HTTP GET.
func FetchPayload(ctx context.Context, client *http.Client, url string) (*Payload, error) {
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: building request: %v", ErrUnavailable, err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrUnavailable, url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: fetching %s: status %d", ErrUnavailable, url, resp.StatusCode)
	}
	var payload Payload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, url, err)
	}
	payload.Normalize()
	return &payload, nil
}

// ReadPayloadFile decodes a payload from a file on disk.
func ReadPayloadFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrUnavailable, path, err)
	}
	var payload Payload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrUnavailable, path, err)
	}
	payload.Normalize()
	return &payload, nil
}
