package insights

import (
	"context"
	"fmt"
	"time"

	"github.com/chittyos/chittytrust/internal/domain"
)

// ActivityService calculates recent event activity for entities.
// It backs the recent_events variable exposed to insight rules.
type ActivityService struct {
	repo  domain.Repository
	cache domain.Cache
}

// NewActivityService creates a new activity service.
func NewActivityService(repo domain.Repository, cache domain.Cache) *ActivityService {
	return &ActivityService{
		repo:  repo,
		cache: cache,
	}
}

// GetEventCount returns the number of events recorded for an entity
// within the trailing time window.
func (s *ActivityService) GetEventCount(ctx context.Context, tenantID, entityID string, windowSecs int) (int64, error) {
	if tenantID == "" || entityID == "" {
		return 0, fmt.Errorf("tenantID and entityID are required")
	}

	if s.repo == nil {
		return 0, fmt.Errorf("no data source available")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)
	return s.repo.CountEvents(ctx, tenantID, entityID, since)
}

// RecordActivity bumps the entity's activity counter in the cache.
// Counter windows are approximate; the repository count stays authoritative.
func (s *ActivityService) RecordActivity(ctx context.Context, tenantID, entityID string, window time.Duration) (int64, error) {
	if s.cache == nil {
		return 0, nil
	}
	return s.cache.IncrementCounter(ctx, tenantID, "activity:"+entityID, window)
}

// Getter returns an ActivityGetter for the insight engine.
func (s *ActivityService) Getter() ActivityGetter {
	return s.GetEventCount
}
