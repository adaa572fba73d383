package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/store"
	"github.com/abhisek/devquest/internal/xp"
)

// Service is the grading and content boundary the controller drives.
type Service interface {
	GenerateAdaptiveQuestion(ctx context.Context, userID, topicID string) (*question.Question, error)
	SubmitAnswer(ctx context.Context, sub question.Submission) (*question.Outcome, error)
	GetHint(ctx context.Context, questionID string, index int) (string, error)
}

// Profile is the slice of the user session store the controller needs.
type Profile interface {
	UserID() string
	ApplyXPAward(delta int) (*xp.LevelUpEvent, error)
}

// ProgressSink receives topic snapshots that arrive with an evaluation.
type ProgressSink interface {
	Patch(topicID string, p progress.TopicProgress)
}

// EventRecorder persists what happened during a session.
type EventRecorder interface {
	AppendHintEvent(ctx context.Context, data store.HintEventData) error
	AppendAnswerEvent(ctx context.Context, data store.AnswerEventData) error
	AppendLevelUpEvent(ctx context.Context, data store.LevelUpEventData) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithProgressSink patches evaluated progress into sink.
func WithProgressSink(sink ProgressSink) Option {
	return func(c *Controller) { c.progress = sink }
}

// WithEventRecorder records hints, answers and level-ups.
func WithEventRecorder(r EventRecorder) Option {
	return func(c *Controller) { c.events = r }
}

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

// Controller drives one question at a time through
// Idle → Loading → Presenting → Submitting → Reviewing.
//
// The mutex guards state only and is never held across a service call.
// Every question change and Exit bumps the epoch; a response carrying a
// stale epoch is dropped without touching state.
type Controller struct {
	svc      Service
	profile  Profile
	progress ProgressSink
	events   EventRecorder
	logger   *slog.Logger
	id       string
	hintSem  *semaphore.Weighted

	mu       sync.Mutex
	phase    Phase
	topicID  string
	question *question.Question
	hints    HintState
	feedback *Feedback
	loadErr  error
	epoch    uint64
	tally    Tally
}

// NewController creates an idle controller.
func NewController(svc Service, profile Profile, opts ...Option) *Controller {
	c := &Controller{
		svc:     svc,
		profile: profile,
		id:      uuid.New().String(),
		hintSem: semaphore.NewWeighted(1),
		logger:  slog.New(slog.DiscardHandler),
		tally:   Tally{StartedAt: time.Now()},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("session", c.id)
	return c
}

// ID returns the session's UUID.
func (c *Controller) ID() string { return c.id }

// Start requests the first question for topicID.
func (c *Controller) Start(ctx context.Context, topicID string) (*question.Question, error) {
	if c.profile.UserID() == "" {
		return nil, fmt.Errorf("start session: %w", auth.ErrUnauthorized)
	}

	c.mu.Lock()
	if c.phase != PhaseIdle {
		c.mu.Unlock()
		return nil, ErrWrongPhase
	}
	c.topicID = topicID
	epoch := c.beginLoadLocked()
	c.mu.Unlock()

	return c.load(ctx, epoch, topicID)
}

// Retry re-requests a question after a failed load.
func (c *Controller) Retry(ctx context.Context) (*question.Question, error) {
	c.mu.Lock()
	if c.phase != PhaseLoadFailed {
		c.mu.Unlock()
		return nil, ErrWrongPhase
	}
	topicID := c.topicID
	epoch := c.beginLoadLocked()
	c.mu.Unlock()

	return c.load(ctx, epoch, topicID)
}

// Advance leaves the reviewed question and loads the next one.
func (c *Controller) Advance(ctx context.Context) (*question.Question, error) {
	c.mu.Lock()
	if c.phase != PhaseReviewing {
		c.mu.Unlock()
		return nil, ErrWrongPhase
	}
	topicID := c.topicID
	epoch := c.beginLoadLocked()
	c.mu.Unlock()

	return c.load(ctx, epoch, topicID)
}

// beginLoadLocked drops the active question and enters PhaseLoading.
// Caller must hold c.mu.
func (c *Controller) beginLoadLocked() uint64 {
	c.epoch++
	c.phase = PhaseLoading
	c.question = nil
	c.hints = HintState{}
	c.feedback = nil
	c.loadErr = nil
	return c.epoch
}

func (c *Controller) load(ctx context.Context, epoch uint64, topicID string) (*question.Question, error) {
	q, err := c.svc.GenerateAdaptiveQuestion(ctx, c.profile.UserID(), topicID)
	if err == nil {
		if q == nil {
			err = errors.New("service returned no question")
		} else {
			err = q.Validate()
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.epoch != epoch {
		return nil, ErrSessionClosed
	}
	if err != nil {
		c.phase = PhaseLoadFailed
		c.loadErr = err
		c.logger.Warn("question load failed", "topic", topicID, "error", err)
		return nil, fmt.Errorf("load question: %w", err)
	}

	c.question = q
	c.hints = HintState{}
	c.phase = PhasePresenting
	c.logger.Debug("question presented", "question", q.ID, "kind", q.Kind, "difficulty", q.Difficulty)
	return q, nil
}

// RequestHint reveals the next hint. Concurrent calls are serialized so
// each accepted request advances the index by exactly one.
func (c *Controller) RequestHint(ctx context.Context) (HintState, error) {
	if err := c.hintSem.Acquire(ctx, 1); err != nil {
		return HintState{}, err
	}
	defer c.hintSem.Release(1)

	c.mu.Lock()
	if c.phase != PhasePresenting {
		c.mu.Unlock()
		return HintState{}, ErrWrongPhase
	}
	q := c.question
	idx := c.hints.Index
	epoch := c.epoch
	topicID := c.topicID
	if idx >= q.HintCount() {
		hs := c.hints
		c.mu.Unlock()
		return hs, ErrHintsExhausted
	}
	c.mu.Unlock()

	text, err := c.svc.GetHint(ctx, q.ID, idx)
	if err != nil {
		return HintState{}, fmt.Errorf("get hint: %w", err)
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return HintState{}, ErrSessionClosed
	}
	c.hints = HintState{Index: idx + 1, Text: text}
	c.tally.HintsUsed++
	hs := c.hints
	c.mu.Unlock()

	if c.events != nil {
		if err := c.events.AppendHintEvent(ctx, store.HintEventData{
			SessionID:  c.id,
			QuestionID: q.ID,
			TopicID:    topicID,
			HintIndex:  idx,
			HintText:   text,
		}); err != nil {
			c.logger.Warn("record hint event", "error", err)
		}
	}
	return hs, nil
}

// Submit grades answer for the active question. Only one submit may be
// outstanding; a failed submit returns to PhasePresenting so the learner
// can try again.
func (c *Controller) Submit(ctx context.Context, answer question.Answer) (*Feedback, error) {
	c.mu.Lock()
	switch c.phase {
	case PhasePresenting:
	case PhaseSubmitting:
		c.mu.Unlock()
		return nil, ErrAlreadySubmitting
	default:
		c.mu.Unlock()
		return nil, ErrWrongPhase
	}
	q := c.question
	epoch := c.epoch
	topicID := c.topicID
	sub, err := question.NewSubmission(q, c.profile.UserID(), answer)
	if err != nil {
		c.mu.Unlock()
		return nil, err
	}
	c.phase = PhaseSubmitting
	c.mu.Unlock()

	outcome, err := c.svc.SubmitAnswer(ctx, sub)
	if err == nil && outcome == nil {
		err = errors.New("service returned no evaluation")
	}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		return nil, ErrSessionClosed
	}
	if err != nil {
		c.phase = PhasePresenting
		c.mu.Unlock()
		c.logger.Warn("submit failed", "question", q.ID, "error", err)
		return nil, fmt.Errorf("submit answer: %w", err)
	}
	c.phase = PhaseReviewing
	c.mu.Unlock()

	eval := outcome.Evaluation
	levelUp, awardErr := c.profile.ApplyXPAward(eval.XPAwarded)
	if awardErr != nil {
		c.logger.Warn("apply xp award", "xp", eval.XPAwarded, "error", awardErr)
	}
	if eval.LevelUp != nil {
		levelUp = eval.LevelUp
	}
	if outcome.Progress != nil && c.progress != nil {
		c.progress.Patch(topicID, *outcome.Progress)
	}

	fb := &Feedback{Evaluation: eval, LevelUp: levelUp, Progress: outcome.Progress}

	c.mu.Lock()
	if c.epoch != epoch {
		c.mu.Unlock()
		// The award is already on the ledger; keep the event log in step.
		c.recordAnswer(ctx, q, topicID, eval, levelUp)
		return nil, ErrSessionClosed
	}
	c.feedback = fb
	c.tally.Answered++
	c.tally.XPEarned += eval.XPAwarded
	if eval.Correct {
		c.tally.Correct++
	}
	if levelUp != nil {
		c.tally.LevelUps++
	}
	c.mu.Unlock()

	c.recordAnswer(ctx, q, topicID, eval, levelUp)
	return fb, nil
}

func (c *Controller) recordAnswer(ctx context.Context, q *question.Question, topicID string, eval question.Evaluation, levelUp *xp.LevelUpEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.AppendAnswerEvent(ctx, store.AnswerEventData{
		SessionID:  c.id,
		QuestionID: q.ID,
		TopicID:    topicID,
		Kind:       string(q.Kind),
		Difficulty: string(q.Difficulty),
		Correct:    eval.Correct,
		Score:      eval.Score,
		XPAwarded:  eval.XPAwarded,
	}); err != nil {
		c.logger.Warn("record answer event", "error", err)
	}
	if levelUp == nil {
		return
	}
	if err := c.events.AppendLevelUpEvent(ctx, store.LevelUpEventData{
		SessionID: c.id,
		Level:     levelUp.NewLevel,
		Rewards:   levelUp.Rewards,
	}); err != nil {
		c.logger.Warn("record level-up event", "error", err)
	}
}

// Exit abandons the session. Responses still in flight are dropped.
func (c *Controller) Exit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.phase != PhaseIdle {
		c.logger.Debug("session exited", "phase", c.phase)
	}
	c.epoch++
	c.phase = PhaseIdle
	c.question = nil
	c.hints = HintState{}
	c.feedback = nil
	c.loadErr = nil
}

// Phase returns the current phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		Phase:    c.phase,
		TopicID:  c.topicID,
		Question: c.question,
		Hints:    c.hints,
		Feedback: c.feedback,
		LoadErr:  c.loadErr,
	}
}

// Tally returns the running totals for this session.
func (c *Controller) Tally() Tally {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tally
}
