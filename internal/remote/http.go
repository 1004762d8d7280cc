package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync/atomic"
	"time"

	"carlog/internal/logging"
	"carlog/internal/models"
)

// HTTPClient implements Client against a path-addressed JSON document store
// over HTTPS. The document lives at
//
//	{base}/{namespace}/{syncID}/{secret}.json
//
// with syncID and secret percent-encoded. An older, less secure layout
// omitted the secret segment; Fetch migrates data off that path once per
// process lifetime.
type HTTPClient struct {
	baseURL   string
	namespace string
	syncID    string
	secret    string

	http *http.Client
	log  logging.Logger

	timeout time.Duration

	// migrationTried flips when the legacy path has been probed; the
	// probe happens at most once per process.
	migrationTried atomic.Bool
}

// NewHTTPClient builds a client for the given settings. timeout bounds each
// individual request.
func NewHTTPClient(baseURL, namespace, syncID, secret string, timeout time.Duration, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:   baseURL,
		namespace: namespace,
		syncID:    syncID,
		secret:    secret,
		http:      &http.Client{},
		log:       log,
		timeout:   timeout,
	}
}

func (c *HTTPClient) primaryURL() string {
	return fmt.Sprintf("%s/%s/%s/%s.json",
		c.baseURL, c.namespace, url.PathEscape(c.syncID), url.PathEscape(c.secret))
}

func (c *HTTPClient) legacyURL() string {
	return fmt.Sprintf("%s/%s/%s.json",
		c.baseURL, c.namespace, url.PathEscape(c.syncID))
}

// Fetch reads the remote document. A missing document (404 or a literal
// null body) yields (nil, nil). When the primary path is empty and the
// legacy path has not been probed yet this process, data found there is
// copied to the primary path and returned; the legacy path is then cleared
// best-effort.
func (c *HTTPClient) Fetch(ctx context.Context) (*models.RemoteDocument, error) {
	doc, err := c.get(ctx, c.primaryURL())
	if err != nil {
		return nil, err
	}

	if doc.Empty() && c.migrationTried.CompareAndSwap(false, true) {
		if migrated := c.migrateLegacy(ctx); migrated != nil {
			return migrated, nil
		}
	}

	return doc, nil
}

// Push replaces the remote document wholesale.
func (c *HTTPClient) Push(ctx context.Context, doc *models.RemoteDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode remote document: %w", err)
	}
	return c.put(ctx, c.primaryURL(), body)
}

// migrateLegacy moves data from the pre-secret path to the primary path.
// Every failure is logged and degrades to "no migration"; the caller falls
// back to whatever the primary path held.
func (c *HTTPClient) migrateLegacy(ctx context.Context) *models.RemoteDocument {
	legacy, err := c.get(ctx, c.legacyURL())
	if err != nil {
		c.log.Warn(ctx, "failed to read legacy sync path", "error", err)
		return nil
	}
	if legacy.Empty() {
		return nil
	}

	c.log.Info(ctx, "migrating records from legacy sync path", "records", len(legacy.Records))

	body, err := json.Marshal(legacy)
	if err != nil {
		c.log.Warn(ctx, "failed to encode legacy document", "error", err)
		return nil
	}
	if err := c.put(ctx, c.primaryURL(), body); err != nil {
		// The legacy path still holds the only remote copy; it must not be
		// cleared until the primary copy exists.
		c.log.Warn(ctx, "failed to copy legacy document to primary path", "error", err)
		return legacy
	}
	// Clearing the old path is best-effort; stale data there is only a
	// hygiene concern once the primary copy exists.
	if err := c.put(ctx, c.legacyURL(), []byte("null")); err != nil {
		c.log.Warn(ctx, "failed to clear legacy sync path", "error", err)
	}

	return legacy
}

func (c *HTTPClient) get(ctx context.Context, addr string) (*models.RemoteDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("remote fetch failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, wrapTimeout(err)
	}
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, nil
	}

	var doc models.RemoteDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode remote document: %w", err)
	}
	return &doc, nil
}

func (c *HTTPClient) put(ctx context.Context, addr string, body []byte) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, addr, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTimeout(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("remote push failed: %s", resp.Status)
	}
	return nil
}

// wrapTimeout maps deadline failures onto ErrTimeout so callers can tell an
// abandoned request from any other I/O failure.
func wrapTimeout(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}
