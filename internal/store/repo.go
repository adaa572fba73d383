package store

import (
	"context"
	"time"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit     int       // max results (0 = unlimited)
	After     int64     // sequence > After
	Before    int64     // sequence < Before
	From      time.Time // timestamp >= From
	To        time.Time // timestamp <= To
	TopicID   string    // restrict to one topic ("" = all)
	SessionID string    // restrict to one session ("" = all)
}

// SnapshotVersion is written into every new snapshot.
const SnapshotVersion = 1

// SnapshotKeep is how many snapshots survive a prune.
const SnapshotKeep = 20

// SnapshotData captures the last known profile so it can be shown offline.
type SnapshotData struct {
	Version     int    `json:"version"`
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	XP          int    `json:"xp"`
	Level       int    `json:"level"`
	Streak      int    `json:"streak"`
}

// Snapshot represents a point-in-time capture of the profile.
type Snapshot struct {
	ID        int
	Sequence  int64
	Timestamp time.Time
	Data      SnapshotData
}

// SnapshotRepo manages profile snapshots.
type SnapshotRepo interface {
	// Save stores a new snapshot.
	Save(ctx context.Context, snap *Snapshot) error

	// Latest returns the most recent snapshot, or nil if none exist.
	Latest(ctx context.Context) (*Snapshot, error)

	// Prune deletes all but the N most recent snapshots.
	Prune(ctx context.Context, keep int) error
}

// HintEventData captures one revealed hint.
type HintEventData struct {
	SessionID  string
	QuestionID string
	TopicID    string
	HintIndex  int
	HintText   string
}

// AnswerEventData captures one graded answer.
type AnswerEventData struct {
	SessionID  string
	QuestionID string
	TopicID    string
	Kind       string
	Difficulty string
	Correct    bool
	Score      int
	XPAwarded  int
}

// LevelUpEventData captures a level-up shown to the learner.
type LevelUpEventData struct {
	SessionID string
	Level     int
	Rewards   []string
}

// SessionEventData captures the start or end of a practice session.
type SessionEventData struct {
	SessionID         string
	Action            string // "start" or "end"
	TopicID           string
	QuestionsAnswered int
	CorrectAnswers    int
	XPEarned          int
	DurationSecs      int
}

// AnswerRecord is an answer event read back from the log.
type AnswerRecord struct {
	Sequence  int64
	Timestamp time.Time
	AnswerEventData
}

// SessionRecord is a finished practice session read back from the log.
type SessionRecord struct {
	Sequence  int64
	Timestamp time.Time
	SessionEventData
}

// TopicAccuracy summarizes the locally recorded answers for one topic.
type TopicAccuracy struct {
	TopicID   string
	Attempted int
	Correct   int
	XPEarned  int
}

// EventRepo provides append and query access to domain events.
type EventRepo interface {
	AppendHintEvent(ctx context.Context, data HintEventData) error
	AppendAnswerEvent(ctx context.Context, data AnswerEventData) error
	AppendLevelUpEvent(ctx context.Context, data LevelUpEventData) error
	AppendSessionEvent(ctx context.Context, data SessionEventData) error

	// QuerySessions returns finished sessions, newest first.
	QuerySessions(ctx context.Context, opts QueryOpts) ([]SessionRecord, error)

	// QueryAnswers returns answer events, newest first.
	QueryAnswers(ctx context.Context, opts QueryOpts) ([]AnswerRecord, error)

	// TopicAccuracy aggregates answer events per topic.
	TopicAccuracy(ctx context.Context) ([]TopicAccuracy, error)

	// HintsForQuestion counts hints revealed for a question across sessions.
	HintsForQuestion(ctx context.Context, questionID string) (int, error)
}
