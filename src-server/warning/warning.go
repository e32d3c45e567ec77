// Package warning proxies the federal NINA civil-warning dashboard for
// the configured district.
package warning

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"cityboard/src-server/apperr"
)

const (
	dashboardURL = "https://nina.api.proxy.bund.dev/api31/dashboard/%s.json"
	detailURL    = "https://warnung.bund.de/meldungen/"
)

// Warning is the trimmed-down entry shown on the dashboard.
type Warning struct {
	URL      string `json:"url"`
	Type     string `json:"type"`
	Headline string `json:"headline"`
	Severity string `json:"severity"`
}

type Client struct {
	regionalKey string
	client      *http.Client
}

func NewClient(regionalKey string) *Client {
	return &Client{
		regionalKey: regionalKey,
		client:      &http.Client{Timeout: 15 * time.Second},
	}
}

// DistrictKey widens a municipal regional key to its district: NINA
// only serves dashboards at district granularity, keyed by the first
// five digits padded with seven zeros.
func DistrictKey(regionalKey string) (string, error) {
	if len(regionalKey) < 5 {
		return "", apperr.Validation("regional_key", "must have at least 5 digits")
	}
	return regionalKey[:5] + "0000000", nil
}

type apiEntry struct {
	Payload struct {
		ID   string `json:"id"`
		Data struct {
			Headline string `json:"headline"`
			MsgType  string `json:"msgType"`
			Severity string `json:"severity"`
		} `json:"data"`
	} `json:"payload"`
}

// Fetch returns the active warnings for the configured district. An
// empty slice (not nil) means no active warnings.
func (c *Client) Fetch(ctx context.Context) ([]Warning, error) {
	key, err := DistrictKey(c.regionalKey)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf(dashboardURL, key), nil)
	if err != nil {
		return nil, fmt.Errorf("Client.Fetch: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperr.Transport("nina fetch", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, apperr.Transport("nina fetch", fmt.Errorf("HTTP %d", resp.StatusCode))
	}

	var entries []apiEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		return nil, apperr.Transport("nina decode", err)
	}

	warnings := make([]Warning, 0, len(entries))
	for _, entry := range entries {
		warnings = append(warnings, Warning{
			URL:      detailURL + entry.Payload.ID,
			Type:     entry.Payload.Data.MsgType,
			Headline: entry.Payload.Data.Headline,
			Severity: entry.Payload.Data.Severity,
		})
	}
	return warnings, nil
}
