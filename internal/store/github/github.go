package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shake819/remind-api/internal/model"
	"github.com/shake819/remind-api/internal/store"
	apperrors "github.com/shake819/remind-api/pkg/errors"
)

const defaultBaseURL = "https://api.github.com"

type Config struct {
	Owner   string `mapstructure:"owner"`
	Repo    string `mapstructure:"repo"`
	Path    string `mapstructure:"path"`
	Token   string `mapstructure:"token"`
	BaseURL string `mapstructure:"base_url"`
}

// Store keeps the event set as a JSON file in a git repository through the
// contents API. The blob SHA returned on read is the version token: the PUT
// carries it back, and the API rejects the write when the file moved on.
type Store struct {
	cfg    Config
	client *http.Client
}

func New(cfg Config) *Store {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	return &Store{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type contentsResponse struct {
	Content string `json:"content"`
	SHA     string `json:"sha"`
}

type contentsRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

func (s *Store) contentsURL() string {
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.cfg.BaseURL, s.cfg.Owner, s.cfg.Repo, s.cfg.Path)
}

func (s *Store) Load(ctx context.Context) (store.Snapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.contentsURL(), nil)
	if err != nil {
		return store.Snapshot{}, apperrors.Internal(err)
	}
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := s.client.Do(req)
	if err != nil {
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("failed to fetch %s: %w", s.cfg.Path, err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// File not created yet: legitimate empty initial state.
		return store.Snapshot{}, nil
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("contents API returned %d: %s", resp.StatusCode, body))
	}

	var file contentsResponse
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return store.Snapshot{}, apperrors.StoreUnavailable(fmt.Errorf("failed to decode contents response: %w", err))
	}

	raw, err := base64.StdEncoding.DecodeString(stripNewlines(file.Content))
	if err != nil {
		return store.Snapshot{}, apperrors.CorruptDocument(fmt.Errorf("failed to decode %s: %w", s.cfg.Path, err))
	}

	var events model.EventSet
	if err := json.Unmarshal(raw, &events); err != nil {
		return store.Snapshot{}, apperrors.CorruptDocument(fmt.Errorf("failed to parse %s: %w", s.cfg.Path, err))
	}

	return store.Snapshot{Events: events, Version: file.SHA}, nil
}

func (s *Store) Commit(ctx context.Context, snap store.Snapshot) error {
	raw, err := json.MarshalIndent(snap.Events, "", "  ")
	if err != nil {
		return apperrors.Internal(fmt.Errorf("failed to marshal event set: %w", err))
	}

	payload, err := json.Marshal(contentsRequest{
		Message: "Update events",
		Content: base64.StdEncoding.EncodeToString(raw),
		SHA:     snap.Version,
	})
	if err != nil {
		return apperrors.Internal(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, s.contentsURL(), bytes.NewReader(payload))
	if err != nil {
		return apperrors.Internal(err)
	}
	req.Header.Set("Authorization", "token "+s.cfg.Token)
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return apperrors.StoreUnavailable(fmt.Errorf("failed to put %s: %w", s.cfg.Path, err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		return nil
	case http.StatusConflict, http.StatusUnprocessableEntity:
		// Stale SHA: someone committed between our load and this put.
		return apperrors.VersionConflict(fmt.Errorf("contents API rejected SHA %q", snap.Version))
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return apperrors.StoreUnavailable(fmt.Errorf("contents API returned %d: %s", resp.StatusCode, body))
	}
}

// The contents API wraps base64 at 60 columns.
func stripNewlines(s string) string {
	buf := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\n' && s[i] != '\r' {
			buf = append(buf, s[i])
		}
	}
	return string(buf)
}
