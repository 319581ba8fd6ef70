// Package redis implements the local fallback response store on a Redis
// key-value blob per survey.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/CAPTRSTEAM/survey-app-sub000/internal/models"
	"github.com/CAPTRSTEAM/survey-app-sub000/internal/repositories"
	"github.com/redis/go-redis/v9"
)

const responseKeyPrefix = "survey:responses:"

type ResponseRedis struct {
	client *redis.Client

	// Append is a read-modify-write on one blob. The mutex keeps concurrent
	// handlers in this process from interleaving; multi-process imports are
	// not supported.
	mu sync.Mutex
}

func NewResponseRedis(client *redis.Client) repositories.ResponseStore {
	return &ResponseRedis{client: client}
}

func (r *ResponseRedis) GetBySurvey(ctx context.Context, surveyID string) ([]*models.SurveyResponse, error) {
	blob, err := r.client.Get(ctx, responseKeyPrefix+surveyID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read response store for %s: %w", surveyID, err)
	}
	var responses []*models.SurveyResponse
	if err := json.Unmarshal(blob, &responses); err != nil {
		return nil, fmt.Errorf("failed to decode response store for %s: %w", surveyID, err)
	}
	return responses, nil
}

func (r *ResponseRedis) Append(ctx context.Context, surveyID string, responses ...*models.SurveyResponse) error {
	if len(responses) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, err := r.GetBySurvey(ctx, surveyID)
	if err != nil {
		return err
	}
	existing = append(existing, responses...)
	blob, err := json.Marshal(existing)
	if err != nil {
		return fmt.Errorf("failed to encode response store for %s: %w", surveyID, err)
	}
	if err := r.client.Set(ctx, responseKeyPrefix+surveyID, blob, 0).Err(); err != nil {
		return fmt.Errorf("failed to write response store for %s: %w", surveyID, err)
	}
	return nil
}

func (r *ResponseRedis) Clear(ctx context.Context, surveyID string) error {
	if err := r.client.Del(ctx, responseKeyPrefix+surveyID).Err(); err != nil {
		return fmt.Errorf("failed to clear response store for %s: %w", surveyID, err)
	}
	return nil
}
