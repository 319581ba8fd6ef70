package platform

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestListGameData_OK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/gameData", r.URL.Path)
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"g1","data":{"surveyId":"s1"},"exerciseId":"ex-1","creationTimestamp":1706788800000},
			{"id":"g2","data":"{\"surveyId\":\"s2\"}"}
		]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, APIToken: "token-1"}, testLogger())
	result := client.ListGameData(context.Background())

	require.Equal(t, FetchOK, result.Outcome)
	require.NoError(t, result.Err)
	require.Len(t, result.Records, 2)
	assert.Equal(t, "g1", result.Records[0].ID)
	assert.Equal(t, "ex-1", result.Records[0].ExerciseID)
	assert.Equal(t, int64(1706788800000), result.Records[0].CreationTimestamp)
}

func TestSearchGameData_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/searchGameData", r.URL.Path)
		assert.Equal(t, "ex-1", r.URL.Query().Get("exerciseId"))
		assert.Equal(t, "gc-2", r.URL.Query().Get("gameConfigId"))
		assert.False(t, r.URL.Query().Has("userId"))
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	result := client.SearchGameData(context.Background(), SearchQuery{ExerciseID: "ex-1", GameConfigID: "gc-2"})

	assert.Equal(t, FetchOK, result.Outcome)
	assert.Empty(t, result.Records)
}

func TestFetch_AuthRequired(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(code)
		}))

		client := NewClient(Config{BaseURL: server.URL}, testLogger())
		result := client.ListGameData(context.Background())

		assert.Equal(t, FetchAuthRequired, result.Outcome)
		assert.Error(t, result.Err)
		server.Close()
	}
}

func TestFetch_Unavailable(t *testing.T) {
	t.Run("server error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, testLogger())
		result := client.ListGameData(context.Background())
		assert.Equal(t, FetchUnavailable, result.Outcome)
	})

	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		client := NewClient(Config{BaseURL: server.URL}, testLogger())
		result := client.ListGameData(context.Background())
		assert.Equal(t, FetchUnavailable, result.Outcome)
		assert.Error(t, result.Err)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("{not an array"))
		}))
		defer server.Close()

		client := NewClient(Config{BaseURL: server.URL}, testLogger())
		result := client.ListGameData(context.Background())
		assert.Equal(t, FetchUnavailable, result.Outcome)
	})
}

func TestCheckHealth_Caching(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, HealthTTL: time.Minute}, testLogger())
	clock := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	client.now = func() time.Time { return clock }

	first := client.CheckHealth(context.Background())
	assert.True(t, first.Available)
	assert.False(t, first.AuthRequired)
	assert.Equal(t, int32(1), hits.Load())

	// Within the TTL the cached probe is reused.
	clock = clock.Add(30 * time.Second)
	second := client.CheckHealth(context.Background())
	assert.Equal(t, first.CheckedAt, second.CheckedAt)
	assert.Equal(t, int32(1), hits.Load())

	// Past the TTL the probe runs again.
	clock = clock.Add(31 * time.Second)
	third := client.CheckHealth(context.Background())
	assert.NotEqual(t, first.CheckedAt, third.CheckedAt)
	assert.Equal(t, int32(2), hits.Load())
}

func TestCheckHealth_AuthChallengeMeansAvailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	status := client.CheckHealth(context.Background())

	assert.True(t, status.Available)
	assert.True(t, status.AuthRequired)
}

func TestCheckHealth_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(Config{BaseURL: server.URL}, testLogger())
	status := client.CheckHealth(context.Background())

	assert.False(t, status.Available)
	assert.False(t, status.AuthRequired)
}
