// Package platform talks to the remote game-data API the engine pulls
// survey responses from.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
)

// FetchOutcome is the explicit result kind of a remote fetch, consumed by
// the orchestrator's state machine instead of caught exceptions.
type FetchOutcome int

const (
	FetchOK FetchOutcome = iota
	// FetchAuthRequired is surfaced distinctly (401/403) so the caller can
	// re-authenticate instead of silently degrading.
	FetchAuthRequired
	// FetchUnavailable covers network errors, timeouts and non-auth HTTP
	// failures; the orchestrator falls back to the local store.
	FetchUnavailable
)

type FetchResult struct {
	Outcome FetchOutcome
	Records []models.GameDataRecord
	Err     error
}

// HealthStatus is the cached result of the cheap availability probe. An
// auth challenge means the remote is reachable, just not authorized.
type HealthStatus struct {
	Available    bool      `json:"available"`
	AuthRequired bool      `json:"authRequired"`
	CheckedAt    time.Time `json:"checkedAt"`
}

type SearchQuery struct {
	ExerciseID     string
	GameConfigID   string
	OrganizationID string
	UserID         string
}

type Config struct {
	BaseURL       string
	APIToken      string
	FetchTimeout  time.Duration // data fetch bound, default 5s
	HealthTimeout time.Duration // health probe bound, default 3s
	HealthTTL     time.Duration // health cache window, default 1m
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger

	mu         sync.Mutex
	lastHealth *HealthStatus
	now        func() time.Time
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = 5 * time.Second
	}
	if cfg.HealthTimeout <= 0 {
		cfg.HealthTimeout = 3 * time.Second
	}
	if cfg.HealthTTL <= 0 {
		cfg.HealthTTL = time.Minute
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
		now:        time.Now,
	}
}

// ListGameData fetches every game-data record: GET <base>/api/gameData.
func (c *Client) ListGameData(ctx context.Context) FetchResult {
	return c.fetch(ctx, c.cfg.BaseURL+"/api/gameData")
}

// SearchGameData fetches records matching the query:
// GET <base>/api/searchGameData?exerciseId=&gameConfigId=&organizationId=&userId=.
func (c *Client) SearchGameData(ctx context.Context, q SearchQuery) FetchResult {
	params := url.Values{}
	if q.ExerciseID != "" {
		params.Set("exerciseId", q.ExerciseID)
	}
	if q.GameConfigID != "" {
		params.Set("gameConfigId", q.GameConfigID)
	}
	if q.OrganizationID != "" {
		params.Set("organizationId", q.OrganizationID)
	}
	if q.UserID != "" {
		params.Set("userId", q.UserID)
	}
	endpoint := c.cfg.BaseURL + "/api/searchGameData"
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}
	return c.fetch(ctx, endpoint)
}

func (c *Client) fetch(ctx context.Context, endpoint string) FetchResult {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return FetchResult{Outcome: FetchUnavailable, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return FetchResult{
			Outcome: FetchAuthRequired,
			Err:     fmt.Errorf("platform returned %d for %s", resp.StatusCode, endpoint),
		}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return FetchResult{
			Outcome: FetchUnavailable,
			Err:     fmt.Errorf("platform returned %d for %s", resp.StatusCode, endpoint),
		}
	}

	var records []models.GameDataRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return FetchResult{
			Outcome: FetchUnavailable,
			Err:     fmt.Errorf("decoding platform response: %w", err),
		}
	}
	return FetchResult{Outcome: FetchOK, Records: records}
}

// CheckHealth probes remote availability. Results are cached for the
// configured TTL so the UI can poll freely; 401/403 reports available with
// AuthRequired set.
func (c *Client) CheckHealth(ctx context.Context) HealthStatus {
	c.mu.Lock()
	if c.lastHealth != nil && c.now().Sub(c.lastHealth.CheckedAt) < c.cfg.HealthTTL {
		cached := *c.lastHealth
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, c.cfg.HealthTimeout)
	defer cancel()

	status := HealthStatus{CheckedAt: c.now()}
	resp, err := c.get(ctx, c.cfg.BaseURL+"/api/gameData")
	if err != nil {
		c.logger.Debug("platform health probe failed", "error", err)
	} else {
		defer resp.Body.Close()
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			status.Available = true
			status.AuthRequired = true
		case resp.StatusCode >= 200 && resp.StatusCode < 300:
			status.Available = true
		}
	}

	c.mu.Lock()
	c.lastHealth = &status
	c.mu.Unlock()
	return status
}

func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building platform request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
	return c.httpClient.Do(req)
}
