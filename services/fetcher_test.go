package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"agriqa/config"
	"agriqa/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestFetcher(t *testing.T, upstream *httptest.Server) (*DataFetcher, *[]time.Duration) {
	f := NewDataFetcher(upstream.Client(), config.DataGovConfig{
		Endpoint: upstream.URL,
		APIKey:   "test-key",
	}, zaptest.NewLogger(t))

	var delays []time.Duration
	f.sleep = func(ctx context.Context, d time.Duration) {
		delays = append(delays, d)
	}
	return f, &delays
}

func testDataset() models.DatasetDescriptor {
	return models.DatasetDescriptor{
		ResourceID: "res-1",
		Title:      "Rainfall Statistics",
	}
}

func TestDataFetcher_Success(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/res-1", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api-key"))
		assert.Equal(t, "json", r.URL.Query().Get("format"))
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		w.Write([]byte(`{"records":[{"state":"Bihar"},{"state":"Kerala"}]}`))
	}))
	defer upstream.Close()

	f, delays := newTestFetcher(t, upstream)
	outcome := f.Fetch(context.Background(), testDataset(), 50)

	assert.True(t, outcome.Succeeded)
	assert.Len(t, outcome.Records, 2)
	assert.Equal(t, 1, requests)
	assert.Empty(t, *delays)
}

func TestDataFetcher_RetriesThenSucceeds(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"records":[{"state":"Bihar"}]}`))
	}))
	defer upstream.Close()

	f, delays := newTestFetcher(t, upstream)
	outcome := f.Fetch(context.Background(), testDataset(), 50)

	assert.True(t, outcome.Succeeded)
	assert.Len(t, outcome.Records, 1)
	assert.Equal(t, 3, requests)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second}, *delays)
}

func TestDataFetcher_ExhaustsRetries(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer upstream.Close()

	f, delays := newTestFetcher(t, upstream)
	outcome := f.Fetch(context.Background(), testDataset(), 50)

	assert.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.Records)
	assert.Equal(t, defaultMaxRetries+1, requests)
	assert.Equal(t, []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}, *delays)
}

func TestDataFetcher_MalformedPayloadIsEmptyNotRetried(t *testing.T) {
	requests := 0
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Write([]byte(`not json at all`))
	}))
	defer upstream.Close()

	f, delays := newTestFetcher(t, upstream)
	outcome := f.Fetch(context.Background(), testDataset(), 50)

	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Records)
	assert.Equal(t, 1, requests)
	assert.Empty(t, *delays)
}

func TestDataFetcher_MissingRecordsFieldIsEmpty(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok","count":0}`))
	}))
	defer upstream.Close()

	f, _ := newTestFetcher(t, upstream)
	outcome := f.Fetch(context.Background(), testDataset(), 50)

	assert.True(t, outcome.Succeeded)
	assert.Empty(t, outcome.Records)
}

func TestDataFetcher_CancelledContextStopsRetrying(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	f, _ := newTestFetcher(t, upstream)
	f.sleep = func(ctx context.Context, d time.Duration) {
		cancel()
	}

	outcome := f.Fetch(ctx, testDataset(), 50)

	require.False(t, outcome.Succeeded)
	assert.Empty(t, outcome.Records)
}
