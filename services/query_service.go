package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"agriqa/config"
	"agriqa/metrics"
	"agriqa/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const historyReadLimit = 1000

// Fetcher is the slice of DataFetcher the router needs; it lets tests stub
// the upstream.
type Fetcher interface {
	Fetch(ctx context.Context, dataset models.DatasetDescriptor, limit int) models.FetchOutcome
}

// QueryService runs the full resolution pipeline for one question: match
// datasets, fetch records, pick a response mode, compose the answer and
// persist both chat turns.
type QueryService interface {
	SubmitQuery(ctx context.Context, req models.ChatQueryRequest) (*models.ChatQueryResponse, error)
	GetHistory(ctx context.Context, sessionID string) (*models.ChatHistoryResponse, error)
	Registry() []models.DatasetDescriptor
	Ping(ctx context.Context) error
}

// queryServiceImpl holds the dependencies it needs to do its job.
type queryServiceImpl struct {
	matcher    *DatasetMatcher
	fetcher    Fetcher
	composer   *AnswerComposer
	history    HistoryStore
	registry   *config.RegistryStore
	fetchLimit int
	logger     *zap.Logger
}

// NewQueryService creates a new query service instance.
func NewQueryService(
	matcher *DatasetMatcher,
	fetcher Fetcher,
	composer *AnswerComposer,
	history HistoryStore,
	registry *config.RegistryStore,
	fetchLimit int,
	log *zap.Logger,
) QueryService {
	return &queryServiceImpl{
		matcher:    matcher,
		fetcher:    fetcher,
		composer:   composer,
		history:    history,
		registry:   registry,
		fetchLimit: fetchLimit,
		logger:     log,
	}
}

// SubmitQuery implements QueryService. Only persistence failures surface as
// errors; absent data always degrades to a fallback answer.
func (s *queryServiceImpl) SubmitQuery(ctx context.Context, req models.ChatQueryRequest) (*models.ChatQueryResponse, error) {
	start := time.Now()

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	lang := models.Language(req.Language)
	if lang != models.LanguageHindi {
		lang = models.LanguageEnglish
	}
	query := models.Query{Text: req.Question, Language: lang}

	if err := s.history.Append(ctx, models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   req.Question,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("persist user turn: %w", err)
	}

	snapshot := s.registry.Snapshot()
	matched := s.matcher.Match(query, snapshot.Datasets)
	s.logger.Info("datasets matched",
		zap.String("session", sessionID),
		zap.Int("count", len(matched)))

	outcomes := s.fetchAll(ctx, matched)
	mode := SelectResponseMode(outcomes)
	answer := s.composer.Compose(ctx, query, mode, outcomes)

	if err := s.history.Append(ctx, models.ChatMessage{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   answer.Text,
		Sources:   answer.Sources,
		Timestamp: time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("persist assistant turn: %w", err)
	}

	metrics.QueriesTotal.WithLabelValues(string(answer.Mode), string(lang)).Inc()
	metrics.QueryDuration.Observe(time.Since(start).Seconds())
	s.logger.Info("query resolved",
		zap.String("session", sessionID),
		zap.String("mode", string(answer.Mode)),
		zap.Int("records", TotalRecords(outcomes)),
		zap.Int("sources", len(answer.Sources)),
		zap.Duration("took", time.Since(start)))

	return &models.ChatQueryResponse{
		SessionID: sessionID,
		Answer:    answer.Text,
		Sources:   answer.Sources,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}, nil
}

// fetchAll fetches the matched datasets concurrently. Outcomes land in a
// slice indexed by dataset, so the result order matches the match order and
// no cross-dataset state is shared.
func (s *queryServiceImpl) fetchAll(ctx context.Context, matched []models.DatasetDescriptor) []models.FetchOutcome {
	if len(matched) == 0 {
		return nil
	}
	outcomes := make([]models.FetchOutcome, len(matched))
	var wg sync.WaitGroup
	for i, dataset := range matched {
		wg.Add(1)
		go func(i int, dataset models.DatasetDescriptor) {
			defer wg.Done()
			outcomes[i] = s.fetcher.Fetch(ctx, dataset, s.fetchLimit)
		}(i, dataset)
	}
	wg.Wait()
	return outcomes
}

// GetHistory implements QueryService.
func (s *queryServiceImpl) GetHistory(ctx context.Context, sessionID string) (*models.ChatHistoryResponse, error) {
	messages, err := s.history.History(ctx, sessionID, historyReadLimit)
	if err != nil {
		return nil, fmt.Errorf("get chat history: %w", err)
	}
	return &models.ChatHistoryResponse{
		SessionID: sessionID,
		Messages:  messages,
	}, nil
}

// Registry implements QueryService.
func (s *queryServiceImpl) Registry() []models.DatasetDescriptor {
	datasets := s.registry.Snapshot().Datasets
	out := make([]models.DatasetDescriptor, len(datasets))
	copy(out, datasets)
	return out
}

// Ping implements QueryService.
func (s *queryServiceImpl) Ping(ctx context.Context) error {
	return s.history.Ping(ctx)
}
