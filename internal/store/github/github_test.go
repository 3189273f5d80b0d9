package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

// fakeContentsAPI mimics the small slice of the contents API the store
// touches: GET returns the file with its SHA, PUT validates the SHA.
type fakeContentsAPI struct {
	mu      sync.Mutex
	content []byte
	sha     string
	puts    int
}

func (f *fakeContentsAPI) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			if f.content == nil {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]string{
				"content": base64.StdEncoding.EncodeToString(f.content),
				"sha":     f.sha,
			})
		case http.MethodPut:
			var req struct {
				Content string `json:"content"`
				SHA     string `json:"sha"`
			}
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if f.content != nil && req.SHA != f.sha {
				w.WriteHeader(http.StatusConflict)
				return
			}
			raw, err := base64.StdEncoding.DecodeString(req.Content)
			if err != nil {
				w.WriteHeader(http.StatusUnprocessableEntity)
				return
			}
			f.content = raw
			f.sha = "sha-" + uuid.NewString()
			f.puts++
			json.NewEncoder(w).Encode(map[string]interface{}{})
		}
	}
}

func newTestStore(t *testing.T) (*Store, *fakeContentsAPI) {
	t.Helper()
	api := &fakeContentsAPI{}
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	return New(Config{
		Owner:   "shake-819",
		Repo:    "discord-bot",
		Path:    "data/events.json",
		Token:   "test-token",
		BaseURL: srv.URL,
	}), api
}

func TestLoadMissingFileIsEmpty(t *testing.T) {
	s, _ := newTestStore(t)

	snap, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Events)
	assert.Empty(t, snap.Version)
}

func TestCommitThenLoadRoundTrip(t *testing.T) {
	s, api := newTestStore(t)
	ctx := context.Background()

	events := model.EventSet{{ID: uuid.New(), Date: "2025-06-10", Message: "Launch"}}
	require.NoError(t, s.Commit(ctx, store.Snapshot{Events: events}))
	assert.Equal(t, 1, api.puts)

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, events, snap.Events)
	assert.Equal(t, api.sha, snap.Version)
}

func TestLoadCorruptDocument(t *testing.T) {
	s, api := newTestStore(t)
	api.content = []byte("{ not json")
	api.sha = "sha-corrupt"

	_, err := s.Load(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrCorruptDocument))
}

func TestCommitRejectsStaleSHA(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Commit(ctx, store.Snapshot{Events: model.EventSet{
		{ID: uuid.New(), Date: "2025-06-10", Message: "Launch"},
	}}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	// Another writer commits behind our back.
	require.NoError(t, s.Commit(ctx, store.Snapshot{
		Events:  append(snap.Events, model.Event{ID: uuid.New(), Date: "2025-07-01", Message: "Retro"}),
		Version: snap.Version,
	}))

	err = s.Commit(ctx, store.Snapshot{Events: snap.Events, Version: snap.Version})
	assert.True(t, apperrors.Is(err, apperrors.ErrVersionConflict))
}

func TestLoadUnreachableBackend(t *testing.T) {
	s := New(Config{
		Owner:   "shake-819",
		Repo:    "discord-bot",
		Path:    "data/events.json",
		BaseURL: "http://127.0.0.1:1",
	})

	_, err := s.Load(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrStoreUnavailable))
}
