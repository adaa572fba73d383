package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// Session event actions.
const (
	SessionStart = "start"
	SessionEnd   = "end"
)

func (r *eventRepo) AppendSessionEvent(ctx context.Context, data SessionEventData) error {
	return r.appendEvent(ctx, "session_events",
		[]string{"session_id", "action", "topic_id", "questions_answered", "correct_answers", "xp_earned", "duration_secs"},
		data.SessionID, data.Action, data.TopicID, data.QuestionsAnswered,
		data.CorrectAnswers, data.XPEarned, data.DurationSecs,
	)
}

func (r *eventRepo) QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error) {
	sel := builder().Select(
		"sequence", "timestamp", "session_id", "action", "topic_id",
		"questions_answered", "correct_answers", "xp_earned", "duration_secs",
	).From(entsql.Table("session_events"))
	sel.Where(entsql.EQ("action", SessionEnd))
	applyQueryOpts(sel, opts)

	query, args := sel.Query()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session events: %w", err)
	}
	defer rows.Close()

	var out []SessionRecord
	for rows.Next() {
		var rec SessionRecord
		if err := rows.Scan(
			&rec.Sequence, &rec.Timestamp, &rec.SessionID, &rec.Action, &rec.TopicID,
			&rec.QuestionsAnswered, &rec.CorrectAnswers, &rec.XPEarned, &rec.DurationSecs,
		); err != nil {
			return nil, fmt.Errorf("scan session event: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
