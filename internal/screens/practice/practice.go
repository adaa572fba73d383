package practice

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/screens/summary"
	"github.com/abhisek/devquest/internal/session"
	"github.com/abhisek/devquest/internal/store"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/layout"
)

const (
	editorWidth  = 68
	editorHeight = 12
)

// PracticeScreen runs one practice session on a single topic.
type PracticeScreen struct {
	ctrl   *session.Controller
	events store.EventRepo
	logger *slog.Logger
	topic  api.Topic

	snap       session.Snapshot
	questionID string
	choices    components.MultiChoice
	editor     components.CodeEditor
	notice     string // hint or submit problems, cleared on the next question
	ended      bool
}

var _ screen.Screen = (*PracticeScreen)(nil)
var _ screen.KeyHintProvider = (*PracticeScreen)(nil)
var _ screen.BackHandler = (*PracticeScreen)(nil)
var _ screen.Leaver = (*PracticeScreen)(nil)

// New creates a practice screen for topic.
func New(deps screens.Deps, topic api.Topic) *PracticeScreen {
	opts := []session.Option{
		session.WithEventRecorder(deps.Events),
		session.WithLogger(deps.Log()),
	}
	if deps.Progress != nil {
		opts = append(opts, session.WithProgressSink(deps.Progress))
	}
	return &PracticeScreen{
		ctrl:   session.NewController(deps.Service, deps.Profile, opts...),
		events: deps.Events,
		logger: deps.Log(),
		topic:  topic,
	}
}

func (s *PracticeScreen) Init() tea.Cmd {
	ctrl, topicID := s.ctrl, s.topic.ID
	s.recordSession(store.SessionStart)
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		_, err := ctrl.Start(ctx, topicID)
		return questionLoadedMsg{Err: err}
	}
}

func (s *PracticeScreen) Title() string {
	return s.topic.Name
}

// HandlesBack ends the session through the summary instead of a bare pop.
func (s *PracticeScreen) HandlesBack() bool { return true }

func (s *PracticeScreen) KeyHints() []layout.KeyHint {
	end := layout.KeyHint{Key: "Esc", Description: "End session"}
	switch s.snap.Phase {
	case session.PhasePresenting:
		if s.snap.Question != nil && s.snap.Question.Kind == question.KindCoding {
			return []layout.KeyHint{
				{Key: "Ctrl+S", Description: "Submit"},
				{Key: "Ctrl+T", Description: "Hint"},
				end,
			}
		}
		return []layout.KeyHint{
			{Key: "1-9", Description: "Pick"},
			{Key: "↑↓ Enter", Description: "Select"},
			{Key: "H", Description: "Hint"},
			end,
		}
	case session.PhaseReviewing:
		return []layout.KeyHint{{Key: "Enter", Description: "Next question"}, end}
	case session.PhaseLoadFailed:
		return []layout.KeyHint{{Key: "R", Description: "Retry"}, end}
	}
	return []layout.KeyHint{end}
}

func (s *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case questionLoadedMsg:
		return s.handleLoaded(msg)

	case hintMsg:
		return s.handleHint(msg)

	case submittedMsg:
		return s.handleSubmitted(msg)

	case tea.KeyMsg:
		return s.handleKey(msg)
	}

	if s.presentingCode() {
		var cmd tea.Cmd
		s.editor, cmd = s.editor.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *PracticeScreen) handleLoaded(msg questionLoadedMsg) (screen.Screen, tea.Cmd) {
	if s.ended || errors.Is(msg.Err, session.ErrSessionClosed) {
		return s, nil
	}
	s.sync()
	if msg.Err != nil || s.snap.Question == nil {
		return s, nil
	}

	q := s.snap.Question
	if q.ID == s.questionID {
		return s, nil
	}
	s.questionID = q.ID
	s.notice = ""

	if q.Kind.TakesOption() {
		choices := make([]components.Choice, len(q.Options))
		for i, o := range q.Options {
			choices[i] = components.Choice{ID: o.ID, Text: o.Text}
		}
		s.choices = components.NewMultiChoice(choices)
		return s, nil
	}
	s.editor = components.NewCodeEditor(q.StarterCode, editorWidth, editorHeight)
	return s, s.editor.Focus()
}

func (s *PracticeScreen) handleHint(msg hintMsg) (screen.Screen, tea.Cmd) {
	switch {
	case msg.Err == nil:
		s.notice = ""
	case errors.Is(msg.Err, session.ErrHintsExhausted):
		s.notice = "No more hints for this question."
	case errors.Is(msg.Err, session.ErrSessionClosed), errors.Is(msg.Err, session.ErrWrongPhase):
	default:
		s.notice = screens.Describe(msg.Err)
	}
	s.sync()
	return s, nil
}

func (s *PracticeScreen) handleSubmitted(msg submittedMsg) (screen.Screen, tea.Cmd) {
	if s.ended || errors.Is(msg.Err, session.ErrSessionClosed) {
		return s, nil
	}
	s.sync()
	if msg.Err != nil {
		s.notice = screens.Describe(msg.Err)
		return s, nil
	}
	s.notice = ""
	if s.snap.Question != nil && s.snap.Question.Kind.TakesOption() {
		eval := msg.Feedback.Evaluation
		s.choices.Reveal(eval.Correct, eval.CorrectAnswer)
	}
	return s, nil
}

func (s *PracticeScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	if s.ended {
		return s, nil
	}
	key := msg.String()
	if key == "esc" {
		return s, s.end()
	}

	switch s.snap.Phase {
	case session.PhasePresenting:
		if s.presentingCode() {
			switch key {
			case "ctrl+s":
				return s, s.submit(question.CodeAnswer{Code: s.editor.Value()})
			case "ctrl+t":
				return s, s.requestHint()
			}
			var cmd tea.Cmd
			s.editor, cmd = s.editor.Update(msg)
			return s, cmd
		}

		switch key {
		case "enter":
			return s, s.submit(question.OptionAnswer{OptionID: s.choices.SelectedID()})
		case "h":
			return s, s.requestHint()
		}
		var picked bool
		s.choices, picked = s.choices.Update(msg)
		if picked {
			return s, s.submit(question.OptionAnswer{OptionID: s.choices.SelectedID()})
		}

	case session.PhaseReviewing:
		switch key {
		case "enter", "n", "space":
			return s, s.load(s.ctrl.Advance)
		}

	case session.PhaseLoadFailed:
		if key == "r" {
			return s, s.load(s.ctrl.Retry)
		}
	}
	return s, nil
}

func (s *PracticeScreen) presentingCode() bool {
	return s.snap.Phase == session.PhasePresenting &&
		s.snap.Question != nil && s.snap.Question.Kind == question.KindCoding
}

// sync copies controller state for rendering.
func (s *PracticeScreen) sync() {
	s.snap = s.ctrl.Snapshot()
}

func (s *PracticeScreen) load(next func(context.Context) (*question.Question, error)) tea.Cmd {
	s.snap.Phase = session.PhaseLoading
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		_, err := next(ctx)
		return questionLoadedMsg{Err: err}
	}
}

func (s *PracticeScreen) requestHint() tea.Cmd {
	if s.snap.HintsRemaining() <= 0 {
		s.notice = "No more hints for this question."
		return nil
	}
	ctrl := s.ctrl
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		_, err := ctrl.RequestHint(ctx)
		return hintMsg{Err: err}
	}
}

func (s *PracticeScreen) submit(answer question.Answer) tea.Cmd {
	if code, ok := answer.(question.CodeAnswer); ok && strings.TrimSpace(code.Code) == "" {
		s.notice = "Write some code before submitting."
		return nil
	}
	s.snap.Phase = session.PhaseSubmitting
	ctrl := s.ctrl
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		fb, err := ctrl.Submit(ctx, answer)
		return submittedMsg{Feedback: fb, Err: err}
	}
}

// end abandons the session and shows what it added up to.
func (s *PracticeScreen) end() tea.Cmd {
	if s.ended {
		return nil
	}
	s.Leave()

	result := summary.New(s.topic.Name, s.ctrl.Tally(), time.Now())
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: result} }
}

// Leave closes the session and records its end. It runs on Esc and when the
// router drops the screen, e.g. after the credential is rejected.
func (s *PracticeScreen) Leave() {
	if s.ended {
		return
	}
	s.ended = true
	s.ctrl.Exit()
	s.recordSession(store.SessionEnd)
}

func (s *PracticeScreen) recordSession(action string) {
	if s.events == nil {
		return
	}
	t := s.ctrl.Tally()
	data := store.SessionEventData{
		SessionID: s.ctrl.ID(),
		Action:    action,
		TopicID:   s.topic.ID,
	}
	if action == store.SessionEnd {
		data.QuestionsAnswered = t.Answered
		data.CorrectAnswers = t.Correct
		data.XPEarned = t.XPEarned
		data.DurationSecs = int(time.Since(t.StartedAt).Seconds())
	}
	if err := s.events.AppendSessionEvent(context.Background(), data); err != nil {
		s.logger.Warn("record session event", "action", action, "error", err)
	}
}
