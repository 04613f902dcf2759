package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ExpoGateway sends through the Expo push service over HTTP
type ExpoGateway struct {
	url    string
	client *http.Client
}

// NewExpoGateway creates an Expo gateway posting to url with the given
// per-send timeout.
func NewExpoGateway(url string, timeout time.Duration) *ExpoGateway {
	return &ExpoGateway{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type expoResponse struct {
	Data []struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"data"`
}

func (g *ExpoGateway) Send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal push message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build push request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("push request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("push service returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read push response: %w", err)
	}
	var parsed expoResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		// Accepted but unparseable response body; delivery already happened.
		return nil
	}
	for _, ticket := range parsed.Data {
		if ticket.Status == "error" {
			return fmt.Errorf("push rejected: %s", ticket.Message)
		}
	}
	return nil
}
