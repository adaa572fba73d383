package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abhisek/devquest/internal/progress"
)

// TopicProgress returns the user's snapshot for one topic. A topic the user
// has not practised yet yields ErrNotFound.
func (c *Client) TopicProgress(ctx context.Context, userID, topicID string) (progress.TopicProgress, error) {
	path := "/progress/topic/" + url.PathEscape(userID) + "/" + url.PathEscape(topicID)
	var w wireTopicProgress
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   path,
		schema: "topic_progress",
		out:    &w,
	})
	if err != nil {
		return progress.TopicProgress{}, err
	}
	if w.Progress == nil {
		return progress.TopicProgress{}, fmt.Errorf("GET %s: no progress for topic %s: %w", path, topicID, ErrNotFound)
	}
	return w.Progress.toProgress(), nil
}

// UserProgress returns progress across all topics.
func (c *Client) UserProgress(ctx context.Context, userID string) (ProgressOverview, error) {
	var w wireUserProgress
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/progress/user/" + url.PathEscape(userID),
		schema: "user_progress",
		out:    &w,
	})
	if err != nil {
		return ProgressOverview{}, err
	}

	out := ProgressOverview{TotalQuestions: w.TotalQuestions, OverallAccuracy: w.OverallAccuracy}
	for _, p := range w.TopicProgress {
		out.Topics = append(out.Topics, p.toProgress())
	}
	return out, nil
}

// UserStats returns attempt totals and the mistake breakdown.
func (c *Client) UserStats(ctx context.Context, userID string) (UserStats, error) {
	var w wireStats
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/progress/stats/" + url.PathEscape(userID),
		schema: "stats",
		out:    &w,
	})
	if err != nil {
		return UserStats{}, err
	}
	return UserStats{
		TotalAttempts:    w.TotalAttempts,
		CorrectAttempts:  w.CorrectAttempts,
		Accuracy:         w.Accuracy,
		TotalXPEarned:    w.TotalXPEarned,
		MistakeBreakdown: w.MistakeBreakdown,
	}, nil
}

// Leaderboard returns the top users by XP.
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	var w wireLeaderboard
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/progress/leaderboard",
		query:  url.Values{"limit": {strconv.Itoa(limit)}},
		schema: "leaderboard",
		out:    &w,
	})
	if err != nil {
		return nil, err
	}

	out := make([]LeaderboardEntry, 0, len(w.Leaderboard))
	for i, e := range w.Leaderboard {
		out = append(out, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      e.ID,
			DisplayName: deref(e.FullName),
			Level:       e.Level,
			XP:          e.XP,
			Streak:      e.Streak,
		})
	}
	return out, nil
}
