package grid

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/weektally/weektally/pkg/timesheet"
	"github.com/weektally/weektally/pkg/week"
)

// DefaultRemoteTimeout bounds a single remote call. The service itself sets
// no timeout policy, so an expired call is treated like any remote failure.
const DefaultRemoteTimeout = 5 * time.Second

// Remote is the timesheet service as seen from the grid client.
type Remote interface {
	// Fetch returns the week's document. The service seeds a blank document
	// for unknown weeks, so a successful fetch always yields a document.
	Fetch(ctx context.Context, key week.Key) (timesheet.Document, error)
	// Upsert stores the document for the week and returns the stored form.
	Upsert(ctx context.Context, key week.Key, doc timesheet.Document) (timesheet.Document, error)
}

// HTTPRemote talks to the timesheet service over its REST API.
type HTTPRemote struct {
	baseURL string
	client  *http.Client
}

func NewHTTPRemote(baseURL string, timeout time.Duration) *HTTPRemote {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &HTTPRemote{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

func (r *HTTPRemote) Fetch(ctx context.Context, key week.Key) (timesheet.Document, error) {
	url := fmt.Sprintf("%s/timesheets/%s", r.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch timesheet for %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching timesheet for %s", resp.StatusCode, key)
	}

	var doc timesheet.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode timesheet for %s: %w", key, err)
	}
	return doc, nil
}

func (r *HTTPRemote) Upsert(ctx context.Context, key week.Key, doc timesheet.Document) (timesheet.Document, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode timesheet for %s: %w", key, err)
	}

	url := fmt.Sprintf("%s/timesheets/%s", r.baseURL, key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to save timesheet for %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d saving timesheet for %s", resp.StatusCode, key)
	}

	var stored timesheet.Document
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		log.Warnf("could not decode upsert response for %s: %v", key, err)
		return doc, nil
	}
	return stored, nil
}
