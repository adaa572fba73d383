package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

func (r *eventRepo) AppendAnswerEvent(ctx context.Context, data AnswerEventData) error {
	return r.appendEvent(ctx, "answer_events",
		[]string{"session_id", "question_id", "topic_id", "kind", "difficulty", "correct", "score", "xp_awarded"},
		data.SessionID, data.QuestionID, data.TopicID, data.Kind, data.Difficulty,
		data.Correct, data.Score, data.XPAwarded,
	)
}

func (r *eventRepo) QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerRecord, error) {
	sel := builder().Select(
		"sequence", "timestamp", "session_id", "question_id", "topic_id",
		"kind", "difficulty", "correct", "score", "xp_awarded",
	).From(entsql.Table("answer_events"))

	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query answer events: %w", err)
	}
	defer rows.Close()

	var out []AnswerRecord
	for rows.Next() {
		var rec AnswerRecord
		if err := rows.Scan(
			&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.QuestionID, &rec.TopicID,
			&rec.Kind, &rec.Difficulty, &rec.Correct, &rec.Score, &rec.XPAwarded,
		); err != nil {
			return nil, fmt.Errorf("scan answer event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *eventRepo) TopicAccuracy(ctx context.Context) ([]TopicAccuracy, error) {
	query, args := builder().Select(
		"topic_id",
		entsql.Count("*"),
		entsql.Sum("correct"),
		entsql.Sum("xp_awarded"),
	).From(entsql.Table("answer_events")).
		GroupBy("topic_id").
		OrderBy("topic_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("aggregate answer events: %w", err)
	}
	defer rows.Close()

	var out []TopicAccuracy
	for rows.Next() {
		var ta TopicAccuracy
		if err := rows.Scan(&ta.TopicID, &ta.Attempted, &ta.Correct, &ta.XPEarned); err != nil {
			return nil, fmt.Errorf("scan topic accuracy: %w", err)
		}
		out = append(out, ta)
	}
	return out, rows.Err()
}
