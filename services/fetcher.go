package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"agriqa/config"
	"agriqa/metrics"
	"agriqa/models"

	"go.uber.org/zap"
)

const (
	fetchTimeout      = 30 * time.Second
	defaultMaxRetries = 3
)

// backoffSchedule is the fixed delay before each retry, indexed by retry
// number. A policy constant, not a tuning knob.
var backoffSchedule = []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}

// DataFetcher pulls records from the data.gov.in resource API. It is the only
// component in the pipeline that does network I/O, and it never returns an
// error: upstream failures are absorbed into an outcome with zero records.
type DataFetcher struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	maxRetries int
	logger     *zap.Logger

	// sleep is swapped out in tests to observe the backoff schedule.
	sleep func(ctx context.Context, d time.Duration)
}

func NewDataFetcher(client *http.Client, cfg config.DataGovConfig, log *zap.Logger) *DataFetcher {
	return &DataFetcher{
		httpClient: client,
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		maxRetries: defaultMaxRetries,
		logger:     log,
		sleep:      sleepWithContext,
	}
}

// resourcePayload is the upstream response envelope. Everything except the
// records field is ignored.
type resourcePayload struct {
	Records []models.Record `json:"records"`
}

// Fetch retrieves up to limit records for one dataset, retrying transient
// failures with the fixed backoff schedule. The caller must treat a failed
// fetch identically to a dataset with no data.
func (f *DataFetcher) Fetch(ctx context.Context, dataset models.DatasetDescriptor, limit int) models.FetchOutcome {
	outcome := models.FetchOutcome{Dataset: dataset}

	for retry := 0; ; retry++ {
		metrics.UpstreamFetchAttempts.WithLabelValues(dataset.ResourceID).Inc()

		records, err := f.fetchOnce(ctx, dataset.ResourceID, limit)
		if err == nil {
			outcome.Records = records
			outcome.Succeeded = true
			return outcome
		}
		metrics.UpstreamFetchFailures.WithLabelValues(dataset.ResourceID).Inc()

		if retry >= f.maxRetries || ctx.Err() != nil {
			f.logger.Warn("upstream fetch gave up",
				zap.String("resource", dataset.ResourceID),
				zap.Int("retries", retry),
				zap.Error(err))
			return outcome
		}

		delay := backoffSchedule[min(retry, len(backoffSchedule)-1)]
		f.logger.Warn("upstream fetch failed, retrying",
			zap.String("resource", dataset.ResourceID),
			zap.Duration("backoff", delay),
			zap.Error(err))
		f.sleep(ctx, delay)
	}
}

func (f *DataFetcher) fetchOnce(ctx context.Context, resourceID string, limit int) ([]models.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	params := url.Values{}
	params.Set("api-key", f.apiKey)
	params.Set("format", "json")
	params.Set("limit", fmt.Sprintf("%d", limit))

	endpoint := fmt.Sprintf("%s/%s?%s", f.endpoint, resourceID, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call open-data api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("open-data api returned status %d", resp.StatusCode)
	}

	// A 200 with an unparseable or record-less body counts as a successful
	// fetch of zero records, not a retryable failure.
	var payload resourcePayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		f.logger.Warn("malformed upstream payload, treating as empty",
			zap.String("resource", resourceID),
			zap.Error(err))
		return nil, nil
	}
	return payload.Records, nil
}

func sleepWithContext(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
