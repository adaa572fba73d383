package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendHintEvent(ctx context.Context, data HintEventData) error {
	return r.appendEvent(ctx, "hint_events",
		[]string{"session_id", "question_id", "topic_id", "hint_index", "hint_text"},
		data.SessionID, data.QuestionID, data.TopicID, data.HintIndex, data.HintText,
	)
}

func (r *eventRepo) HintsForQuestion(ctx context.Context, questionID string) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table("hint_events")).
		Where(entsql.EQ("question_id", questionID)).
		Query()

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count hint events: %w", err)
	}
	return n, nil
}
