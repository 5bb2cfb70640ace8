package urlcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultWaybackEndpoint is the Wayback Machine Availability API.
const DefaultWaybackEndpoint = "https://archive.org/wayback/available"

var (
	errWaybackRequestFail = errors.New("internet archive: API request failed")
	errWaybackRateLimit   = errors.New("internet archive: rate limited")
)

// waybackResponse represents the API response structure.
type waybackResponse struct {
	ArchivedSnapshots struct {
		Closest struct {
			Available bool   `json:"available"`
			URL       string `json:"url"`
			Timestamp string `json:"timestamp"`
			Status    string `json:"status"`
		} `json:"closest"`
	} `json:"archived_snapshots"`
}

// queryWayback asks the availability API whether a snapshot of targetURL
// exists. It returns errWaybackRateLimit on HTTP 429 so the caller can trip
// the shared deflection flag.
func (c *Checker) queryWayback(ctx context.Context, targetURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.waybackEndpoint, http.NoBody)
	if err != nil {
		return false, fmt.Errorf("build wayback request: %w", err)
	}

	q := req.URL.Query()
	q.Add("url", targetURL)
	req.URL.RawQuery = q.Encode()

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("wayback request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return false, errWaybackRateLimit
	}
	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("%w: status %d", errWaybackRequestFail, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return false, fmt.Errorf("read wayback response: %w", err)
	}

	var wr waybackResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return false, fmt.Errorf("parse wayback response: %w", err)
	}

	return wr.ArchivedSnapshots.Closest.Available, nil
}
