package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"apexrun/internal/store"
	"apexrun/internal/strava"
)

// SyncService orchestrates syncing runs from Strava
type SyncService struct {
	client *strava.Client
	store  *store.Store
	logger *slog.Logger
}

// NewSyncService creates a new sync service
func NewSyncService(client *strava.Client, store *store.Store, logger *slog.Logger) *SyncService {
	if logger == nil {
		logger = slog.Default()
	}
	return &SyncService{client: client, store: store, logger: logger}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase          string // "activities", "streams"
	Total          int
	Completed      int
	CurrentSession string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	SessionsStored    int
	StreamsFetched    int
	Remaining         int // runs left for the next sync
	Errors            []error
}

// SyncAll fetches runs started after the last synced one, downloads their
// streams and stores them as sessions. progress is closed on return when
// non-nil. At most SyncStreamBatch runs are stored per call, oldest first, so
// an interrupted or rate limited sync resumes where it stopped.
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}
	send := func(p SyncProgress) {
		if progress == nil {
			return
		}
		select {
		case progress <- p:
		case <-ctx.Done():
		}
	}

	result := &SyncResult{}

	after, err := s.store.GetSyncTime(ctx, store.SyncKeyLastActivity)
	if err != nil {
		return result, fmt.Errorf("reading sync state: %w", err)
	}

	send(SyncProgress{Phase: "activities"})
	runs, err := s.client.GetRuns(ctx, after, func(fetched int) {
		result.ActivitiesFetched = fetched
		send(SyncProgress{Phase: "activities", Total: fetched, Completed: fetched})
	})
	if err != nil {
		return result, fmt.Errorf("fetching activities: %w", err)
	}

	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartDate.Before(runs[j].StartDate)
	})
	if len(runs) > SyncStreamBatch {
		result.Remaining = len(runs) - SyncStreamBatch
		runs = runs[:SyncStreamBatch]
	}

	for i, a := range runs {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		send(SyncProgress{Phase: "streams", Total: len(runs), Completed: i, CurrentSession: a.Name})

		streams, err := s.client.GetActivityStreams(ctx, a.ID)
		var apiErr *strava.APIError
		switch {
		case err == nil:
			result.StreamsFetched++
		case errors.As(err, &apiErr) && apiErr.StatusCode == 404:
			// Manual activities have no streams; keep the summary
			streams = nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return result, err
		default:
			return result, fmt.Errorf("fetching streams for activity %d: %w", a.ID, err)
		}

		rec := strava.ToRecord(a, streams)
		if err := rec.Validate(); err != nil {
			s.logger.Warn("skipping invalid activity", "activity", a.ID, "err", err)
			result.Errors = append(result.Errors, err)
		} else if err := s.store.UpsertSession(ctx, rec); err != nil {
			return result, fmt.Errorf("storing activity %d: %w", a.ID, err)
		} else {
			result.SessionsStored++
		}

		if err := s.store.SetSyncTime(ctx, store.SyncKeyLastActivity, a.StartDate); err != nil {
			return result, fmt.Errorf("saving sync state: %w", err)
		}
	}
	send(SyncProgress{Phase: "streams", Total: len(runs), Completed: len(runs)})

	short, daily := s.client.RateLimitStatus()
	s.logger.Info("sync finished",
		"fetched", result.ActivitiesFetched,
		"stored", result.SessionsStored,
		"remaining", result.Remaining,
		"rate_short_remaining", short,
		"rate_daily_remaining", daily)
	return result, nil
}

// RateLimitStatus returns the remaining Strava requests in the 15 minute and
// daily windows
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}
