package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/devquest/internal/progress"
)

// ProgressRepo keeps the last known snapshot per topic so the progress view
// has something to show before the first refresh. It implements
// progress.Persister.
type ProgressRepo struct {
	db *sql.DB
}

// SaveTopicProgress upserts p.
func (r *ProgressRepo) SaveTopicProgress(ctx context.Context, p progress.TopicProgress) error {
	query, args := builder().Insert("topic_progress").
		Columns("topic_id", "difficulty", "attempted", "correct", "accuracy", "xp_earned", "mastery", "updated_at").
		Values(p.TopicID, string(p.Difficulty), p.Attempted, p.Correct, p.Accuracy, p.XPEarned, p.Mastery, time.Now().UTC()).
		OnConflict(entsql.ConflictColumns("topic_id"), entsql.ResolveWithNewValues()).
		Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save topic progress %s: %w", p.TopicID, err)
	}
	return nil
}

// LoadAll returns every stored snapshot ordered by topic.
func (r *ProgressRepo) LoadAll(ctx context.Context) ([]progress.TopicProgress, error) {
	query, args := builder().Select(
		"topic_id", "difficulty", "attempted", "correct", "accuracy", "xp_earned", "mastery",
	).From(entsql.Table("topic_progress")).
		OrderBy("topic_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query topic progress: %w", err)
	}
	defer rows.Close()

	var out []progress.TopicProgress
	for rows.Next() {
		var (
			p          progress.TopicProgress
			difficulty string
		)
		if err := rows.Scan(&p.TopicID, &difficulty, &p.Attempted, &p.Correct, &p.Accuracy, &p.XPEarned, &p.Mastery); err != nil {
			return nil, fmt.Errorf("scan topic progress: %w", err)
		}
		p.Difficulty = progress.Difficulty(difficulty)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Clear drops all cached progress, used on logout.
func (r *ProgressRepo) Clear(ctx context.Context) error {
	query, args := builder().Delete("topic_progress").Query()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("clear topic progress: %w", err)
	}
	return nil
}
