package remote

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carlog/internal/config"
	"carlog/internal/logging"
	"carlog/internal/models"
)

func discardLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// fakeStore serves a path-addressed document store: GET returns what was PUT,
// 404 otherwise.
type fakeStore struct {
	mu   sync.Mutex
	docs map[string][]byte
	gets map[string]int
	puts map[string]int

	// failPuts rejects PUTs to the listed paths with a 500.
	failPuts map[string]bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		docs:     map[string][]byte{},
		gets:     map[string]int{},
		puts:     map[string]int{},
		failPuts: map[string]bool{},
	}
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// Key on the raw escaped path so percent-encoded segments stay observable.
	path := r.URL.EscapedPath()
	switch r.Method {
	case http.MethodGet:
		f.gets[path]++
		body, ok := f.docs[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(body)
	case http.MethodPut:
		f.puts[path]++
		if f.failPuts[path] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		body, _ := io.ReadAll(r.Body)
		f.docs[path] = body
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStore) set(path string, body []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[path] = body
}

func (f *fakeStore) get(path string) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.docs[path]
	return b, ok
}

func newTestClient(t *testing.T, store *fakeStore) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "car-records", "my-car-id", "0123456789abcdef", 2*time.Second, discardLogger())
	return c, srv
}

const (
	primaryPath = "/car-records/my-car-id/0123456789abcdef.json"
	legacyPath  = "/car-records/my-car-id.json"
)

func TestFetchMissingDocument(t *testing.T) {
	c, _ := newTestClient(t, newFakeStore())

	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFetchNullBody(t *testing.T) {
	store := newFakeStore()
	store.set(primaryPath, []byte("null"))
	c, _ := newTestClient(t, store)

	doc, err := c.Fetch(context.Background())
	require.NoError(t, err)
	assert.Nil(t, doc)
}

func TestFetchAndPushRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	c, _ := newTestClient(t, store)

	in := &models.RemoteDocument{
		Records:   []models.Record{{ID: "a", Category: models.CategoryFuel, Amount: 45.5}},
		UpdatedAt: "2026-03-01T12:00:00Z",
		Rev:       3,
	}
	require.NoError(t, c.Push(ctx, in))

	_, ok := store.get(primaryPath)
	require.True(t, ok, "push must write the secret-suffixed path")

	out, err := c.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in, out)
}

func TestFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "car-records", "my-car-id", "0123456789abcdef", 2*time.Second, discardLogger())

	_, err := c.Fetch(context.Background())
	assert.Error(t, err)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "car-records", "my-car-id", "0123456789abcdef", 50*time.Millisecond, discardLogger())

	_, err := c.Fetch(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	store := newFakeStore()
	srv := httptest.NewServer(store)
	t.Cleanup(srv.Close)
	c := NewHTTPClient(srv.URL, "car-records", "id/with slash", "secret?&=0123456789", 2*time.Second, discardLogger())

	require.NoError(t, c.Push(context.Background(), &models.RemoteDocument{Rev: 1}))

	want := "/car-records/" + url.PathEscape("id/with slash") + "/" + url.PathEscape("secret?&=0123456789") + ".json"
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Contains(t, store.puts, want)
}

func TestFetchMigratesLegacyPath(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.set(legacyPath, []byte(`{"records":[{"id":"old"}],"updatedAt":"2026-01-01T00:00:00Z","rev":2}`))
	c, _ := newTestClient(t, store)

	doc, err := c.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "old", doc.Records[0].ID)
	assert.Equal(t, int64(2), doc.Rev)

	// Data must now live on the primary path, and the legacy path must be
	// cleared.
	body, ok := store.get(primaryPath)
	require.True(t, ok)
	assert.Contains(t, string(body), `"old"`)
	cleared, ok := store.get(legacyPath)
	require.True(t, ok)
	assert.Equal(t, "null", string(cleared))
}

func TestLegacyKeptWhenCopyToPrimaryFails(t *testing.T) {
	ctx := context.Background()
	legacyBody := `{"records":[{"id":"old"}],"updatedAt":"2026-01-01T00:00:00Z","rev":2}`
	store := newFakeStore()
	store.set(legacyPath, []byte(legacyBody))
	store.failPuts[primaryPath] = true
	c, _ := newTestClient(t, store)

	doc, err := c.Fetch(ctx)
	require.NoError(t, err)
	require.NotNil(t, doc)
	require.Len(t, doc.Records, 1)
	assert.Equal(t, "old", doc.Records[0].ID)

	// The copy never landed, so the legacy path must keep the only remote
	// copy intact instead of being nulled out.
	body, ok := store.get(legacyPath)
	require.True(t, ok)
	assert.JSONEq(t, legacyBody, string(body))
	_, ok = store.get(primaryPath)
	assert.False(t, ok)
}

func TestLegacyPathProbedOncePerProcess(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	c, _ := newTestClient(t, store)

	_, err := c.Fetch(ctx)
	require.NoError(t, err)
	_, err = c.Fetch(ctx)
	require.NoError(t, err)

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Equal(t, 1, store.gets[legacyPath])
	assert.Equal(t, 2, store.gets[primaryPath])
}

func TestCheckConfig(t *testing.T) {
	valid := config.Config{
		RemoteBaseURL: "https://store.example.com",
		SyncID:        "my-car-id",
		SyncSecret:    "0123456789abcdef",
	}

	tests := []struct {
		name   string
		mutate func(*config.Config)
		wantOK bool
	}{
		{"valid", func(c *config.Config) {}, true},
		{"no base url", func(c *config.Config) { c.RemoteBaseURL = "" }, false},
		{"plain http", func(c *config.Config) { c.RemoteBaseURL = "http://store.example.com" }, false},
		{"no sync id", func(c *config.Config) { c.SyncID = "" }, false},
		{"secret too short", func(c *config.Config) { c.SyncSecret = "0123456789" }, false},
		{"short sync id warns only", func(c *config.Config) { c.SyncID = "car" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := CheckConfig(context.Background(), &cfg, discardLogger())
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrNotConfigured)
			}
		})
	}
}
