// Package content is an HTTP client for the books service read endpoint.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/mybook/internal/errs"
	"github.com/and161185/mybook/internal/metrics"
	"github.com/and161185/mybook/internal/model"
)

const maxBodySize = 16 << 20

type readResponse struct {
	Content  *string `json:"content"`
	AudioURL *string `json:"audioUrl"`
}

// Client reads book content from the books service. Calls are never retried.
type Client struct {
	baseURL string
	client  *http.Client
	metrics *metrics.Metrics
}

// NewClient builds a client for baseURL; timeout 0 means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration, m *metrics.Metrics) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
		metrics: m,
	}
}

// Read calls GET {base}/books/read/{bookID}.
// A 404, empty body or JSON null maps to errs.ErrNotFound; any other failure to errs.ErrUpstream.
func (c *Client) Read(ctx context.Context, bookID uuid.UUID) (rc model.RemoteContent, err error) {
	start := time.Now()
	defer func() {
		outcome := metrics.OutcomeOK
		switch {
		case err == nil:
		case errors.Is(err, errs.ErrNotFound):
			outcome = metrics.OutcomeNotFound
		default:
			outcome = metrics.OutcomeError
		}
		c.metrics.ContentFetched(outcome, time.Since(start))
	}()

	url := c.baseURL + "/books/read/" + bookID.String()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.RemoteContent{}, fmt.Errorf("books read: %w: %w", errs.ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return model.RemoteContent{}, fmt.Errorf("books read: %w: %w", errs.ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return model.RemoteContent{}, fmt.Errorf("books read: body: %w: %w", errs.ErrUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return model.RemoteContent{}, fmt.Errorf("books read %s: %w", bookID, errs.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return model.RemoteContent{}, fmt.Errorf("books read: status %d: %w", resp.StatusCode, errs.ErrUpstream)
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return model.RemoteContent{}, fmt.Errorf("books read %s: empty payload: %w", bookID, errs.ErrNotFound)
	}

	var rr readResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return model.RemoteContent{}, fmt.Errorf("books read: decode: %w: %w", errs.ErrUpstream, err)
	}
	if rr.Content == nil {
		return model.RemoteContent{}, fmt.Errorf("books read: missing content: %w", errs.ErrUpstream)
	}
	rc.Content = *rr.Content
	if rr.AudioURL != nil {
		rc.AudioURL = *rr.AudioURL
	}
	return rc, nil
}
