// Package screens holds what the interactive screens share.
package screens

import (
	"context"
	"log/slog"
	"time"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/session"
	"github.com/abhisek/devquest/internal/store"
)

// Service is everything the screens ask of the learning service.
type Service interface {
	session.Service

	Courses(ctx context.Context) ([]api.Course, error)
	Topics(ctx context.Context, courseID string) ([]api.Topic, error)
	UserProgress(ctx context.Context, userID string) (api.ProgressOverview, error)
	UserStats(ctx context.Context, userID string) (api.UserStats, error)
	Leaderboard(ctx context.Context, limit int) ([]api.LeaderboardEntry, error)
}

var _ Service = (*api.Client)(nil)

// Deps are the long-lived components screens are built from.
type Deps struct {
	Service  Service
	Profile  *profile.Store
	Progress *progress.Cache
	Events   store.EventRepo
	Logger   *slog.Logger
}

// Log returns the logger, or a discarding one.
func (d Deps) Log() *slog.Logger {
	if d.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return d.Logger
}

// RequestTimeout bounds one screen-initiated call, retries included.
const RequestTimeout = 45 * time.Second

// RequestContext returns a context for one screen-initiated call.
func RequestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), RequestTimeout)
}
