package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"eventscout/internal/domain"
)

type httpSource struct {
	client *http.Client
	url    string
}

// NewHTTPSource returns an EventSource that fetches the feed document with a
// GET request. A nil client falls back to http.DefaultClient.
func NewHTTPSource(client *http.Client, url string) domain.EventSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &httpSource{client: client, url: url}
}

func (s *httpSource) Fetch(ctx context.Context) ([]domain.FeedEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status: %d", resp.StatusCode)
	}

	var batch []domain.FeedEvent
	if err := json.NewDecoder(resp.Body).Decode(&batch); err != nil {
		return nil, fmt.Errorf("failed to decode feed response: %w", err)
	}
	return batch, nil
}
