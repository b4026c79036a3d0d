// Package feed provides EventSource implementations over the JSON feed
// document produced by the upstream event scraper: a flat array of
// {title, description, category, subcategory, location, date, url} objects.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"eventscout/internal/domain"
)

type fileSource struct {
	path string
}

// NewFileSource returns an EventSource that reads the feed document from a
// file on disk. The file is re-read on every Fetch.
func NewFileSource(path string) domain.EventSource {
	return &fileSource{path: path}
}

func (s *fileSource) Fetch(ctx context.Context) ([]domain.FeedEvent, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read feed file: %w", err)
	}
	var batch []domain.FeedEvent
	if err := json.Unmarshal(raw, &batch); err != nil {
		return nil, fmt.Errorf("decode feed file %s: %w", s.path, err)
	}
	return batch, nil
}
