package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/cache"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/events"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/normalize"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/platform"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
)

// ResponseCacheTTL is how long a fetched response collection stays fresh.
const ResponseCacheTTL = 5 * time.Minute

// ResponseService is the source orchestrator: it sequences the remote
// platform API, the cache and the local fallback store behind one fetch
// operation.
type ResponseService interface {
	// FetchResponses returns every canonical response for a survey. With
	// UseCache it serves a cache entry younger than the TTL; otherwise it
	// tries the remote source and degrades to the local store on anything
	// but an auth challenge, which is surfaced as ErrAuthenticationRequired.
	FetchResponses(ctx context.Context, surveyID string, opts FetchOptions) ([]*models.SurveyResponse, error)

	// SaveResponse appends one canonical response to the local store.
	SaveResponse(ctx context.Context, response *models.SurveyResponse) error

	// ClearResponses bulk-deletes a survey's stored responses. This is the
	// only deletion path for responses.
	ClearResponses(ctx context.Context, surveyID string) error

	// RemoteHealth reports the cached availability probe of the platform.
	RemoteHealth(ctx context.Context) platform.HealthStatus
}

type FetchOptions struct {
	ExerciseID   string
	GameConfigID string
	UseCache     bool
}

// RemoteSource is the slice of the platform client the orchestrator needs;
// *platform.Client satisfies it.
type RemoteSource interface {
	ListGameData(ctx context.Context) platform.FetchResult
	SearchGameData(ctx context.Context, q platform.SearchQuery) platform.FetchResult
	CheckHealth(ctx context.Context) platform.HealthStatus
}

type responseService struct {
	client    RemoteSource
	store     repositories.ResponseStore
	mapper    *normalize.Mapper
	respCache *cache.TTLCache
	publisher events.EventPublisher
	logger    *slog.Logger
}

func NewResponseService(
	client RemoteSource,
	store repositories.ResponseStore,
	publisher events.EventPublisher,
	logger *slog.Logger,
) ResponseService {
	return &responseService{
		client:    client,
		store:     store,
		mapper:    normalize.NewMapper(logger),
		respCache: cache.New(ResponseCacheTTL),
		publisher: publisher,
		logger:    logger,
	}
}

func (s *responseService) FetchResponses(ctx context.Context, surveyID string, opts FetchOptions) ([]*models.SurveyResponse, error) {
	cacheKey := fmt.Sprintf("%s|%s|%s", surveyID, opts.ExerciseID, opts.GameConfigID)
	if opts.UseCache {
		if cached, ok := s.respCache.Get(cacheKey); ok {
			return cached.([]*models.SurveyResponse), nil
		}
	}

	result := s.fetchRemote(ctx, opts)
	switch result.Outcome {
	case platform.FetchOK:
		responses := s.mapRecords(result.Records, surveyID)
		s.respCache.Set(cacheKey, responses)
		return responses, nil

	case platform.FetchAuthRequired:
		// Surfaced distinctly so the caller can re-authenticate and retry
		// instead of silently reading stale local data.
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationRequired, result.Err)

	default:
		s.logDegraded(surveyID, result.Err)
		return s.fetchLocal(ctx, surveyID)
	}
}

func (s *responseService) fetchRemote(ctx context.Context, opts FetchOptions) platform.FetchResult {
	if opts.ExerciseID != "" || opts.GameConfigID != "" {
		return s.client.SearchGameData(ctx, platform.SearchQuery{
			ExerciseID:   opts.ExerciseID,
			GameConfigID: opts.GameConfigID,
		})
	}
	return s.client.ListGameData(ctx)
}

func (s *responseService) mapRecords(records []models.GameDataRecord, surveyID string) []*models.SurveyResponse {
	hints := normalize.SourceHints{Source: "platform", FilterSurveyID: surveyID}
	responses := make([]*models.SurveyResponse, 0, len(records))
	for i, record := range records {
		if resp, outcome := s.mapper.MapToResponse(record.Raw(), hints, i); outcome == normalize.MapOK {
			responses = append(responses, resp)
		}
	}
	return responses
}

func (s *responseService) fetchLocal(ctx context.Context, surveyID string) ([]*models.SurveyResponse, error) {
	responses, err := s.store.GetBySurvey(ctx, surveyID)
	if err != nil {
		return nil, fmt.Errorf("local response store fallback failed: %w", err)
	}
	if responses == nil {
		responses = []*models.SurveyResponse{}
	}
	return responses, nil
}

// logDegraded keeps expected connection failures quiet and flags anything
// else, then emits the degradation event.
func (s *responseService) logDegraded(surveyID string, cause error) {
	reason := "unknown"
	if cause != nil {
		reason = cause.Error()
	}
	var netErr net.Error
	switch {
	case cause == nil:
		s.logger.Debug("remote fetch degraded to local store", "survey_id", surveyID)
	case errors.As(cause, &netErr), errors.Is(cause, context.DeadlineExceeded), errors.Is(cause, context.Canceled):
		s.logger.Debug("remote fetch degraded to local store", "survey_id", surveyID, "reason", reason)
	default:
		s.logger.Warn("remote fetch degraded to local store", "survey_id", surveyID, "reason", reason)
	}
	if err := s.publisher.PublishIngestEvent(context.Background(), events.NewRemoteFetchDegradedEvent(surveyID, reason)); err != nil {
		s.logger.Warn("failed to publish degradation event", "error", err)
	}
}

func (s *responseService) SaveResponse(ctx context.Context, response *models.SurveyResponse) error {
	if response == nil || response.SurveyID == "" {
		return NewValidationError("surveyId", "is required", nil)
	}
	if response.ID == "" {
		response.ID = fmt.Sprintf("response_%d_0", time.Now().UnixMilli())
	}
	if !response.Status.Valid() {
		response.Status = models.StatusCompleted
	}
	if response.Timestamp == "" {
		response.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}
	if response.Answers == nil {
		response.Answers = map[string]any{}
	}
	if err := s.store.Append(ctx, response.SurveyID, response); err != nil {
		return fmt.Errorf("failed to save response: %w", err)
	}
	s.respCache.Purge()
	return nil
}

func (s *responseService) ClearResponses(ctx context.Context, surveyID string) error {
	if err := s.store.Clear(ctx, surveyID); err != nil {
		return fmt.Errorf("failed to clear responses for %s: %w", surveyID, err)
	}
	s.respCache.Purge()
	if err := s.publisher.PublishIngestEvent(ctx, events.NewResponsesClearedEvent(surveyID)); err != nil {
		s.logger.Warn("failed to publish clear event", "survey_id", surveyID, "error", err)
	}
	return nil
}

func (s *responseService) RemoteHealth(ctx context.Context) platform.HealthStatus {
	return s.client.CheckHealth(ctx)
}
