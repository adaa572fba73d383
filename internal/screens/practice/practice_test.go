package practice

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/screens/summary"
	"github.com/abhisek/devquest/internal/session"
	"github.com/abhisek/devquest/internal/store"
)

type fakeService struct {
	mu        sync.Mutex
	questions []*question.Question
	served    int
	loadErr   error
	submitted []question.Submission
}

func (f *fakeService) GenerateAdaptiveQuestion(context.Context, string, string) (*question.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	q := f.questions[f.served%len(f.questions)]
	f.served++
	return q, nil
}

func (f *fakeService) SubmitAnswer(_ context.Context, sub question.Submission) (*question.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, sub)
	correct := false
	if a, ok := sub.Answer.(question.OptionAnswer); ok {
		correct = a.OptionID == "b"
	}
	xpAwarded := 0
	if correct {
		xpAwarded = 50
	}
	return &question.Outcome{
		Evaluation: question.Evaluation{
			Correct:       correct,
			Score:         map[bool]int{true: 100, false: 0}[correct],
			XPAwarded:     xpAwarded,
			Feedback:      "Slices share their backing array.",
			CorrectAnswer: "len 3",
		},
		Progress: &progress.TopicProgress{TopicID: "go-basics", Attempted: 1, Correct: 1, Mastery: 40},
	}, nil
}

func (f *fakeService) GetHint(_ context.Context, questionID string, index int) (string, error) {
	for _, q := range f.questions {
		if q.ID == questionID {
			return q.Hints[index], nil
		}
	}
	return "", errors.New("unknown question")
}

func (f *fakeService) Courses(context.Context) ([]api.Course, error) { return nil, nil }
func (f *fakeService) Topics(context.Context, string) ([]api.Topic, error) {
	return nil, nil
}
func (f *fakeService) UserProgress(context.Context, string) (api.ProgressOverview, error) {
	return api.ProgressOverview{}, nil
}
func (f *fakeService) UserStats(context.Context, string) (api.UserStats, error) {
	return api.UserStats{}, nil
}
func (f *fakeService) Leaderboard(context.Context, int) ([]api.LeaderboardEntry, error) {
	return nil, nil
}

type fakeBackend struct{}

func (fakeBackend) Login(context.Context, string, string) (string, error) { return "tok", nil }
func (fakeBackend) Register(context.Context, string, string, string) (string, error) {
	return "tok", nil
}
func (fakeBackend) CurrentUser(context.Context) (profile.UserProfile, error) {
	return profile.UserProfile{ID: "u1", DisplayName: "Ada", XP: 80}, nil
}

type fakeEvents struct {
	mu       sync.Mutex
	sessions []store.SessionEventData
	answers  []store.AnswerEventData
	hints    []store.HintEventData
}

func (f *fakeEvents) AppendHintEvent(_ context.Context, d store.HintEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hints = append(f.hints, d)
	return nil
}
func (f *fakeEvents) AppendAnswerEvent(_ context.Context, d store.AnswerEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, d)
	return nil
}
func (f *fakeEvents) AppendLevelUpEvent(context.Context, store.LevelUpEventData) error { return nil }
func (f *fakeEvents) AppendSessionEvent(_ context.Context, d store.SessionEventData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, d)
	return nil
}
func (f *fakeEvents) QuerySessions(context.Context, store.QueryOpts) ([]store.SessionRecord, error) {
	return nil, nil
}
func (f *fakeEvents) QueryAnswers(context.Context, store.QueryOpts) ([]store.AnswerRecord, error) {
	return nil, nil
}
func (f *fakeEvents) TopicAccuracy(context.Context) ([]store.TopicAccuracy, error) { return nil, nil }
func (f *fakeEvents) HintsForQuestion(context.Context, string) (int, error)      { return 0, nil }

func mcq() *question.Question {
	return &question.Question{
		ID:       "q1",
		TopicID:  "go-basics",
		Kind:     question.KindMCQ,
		Text:     "What is len(s[1:4])?",
		Options:  []question.Option{{ID: "a", Text: "len 4"}, {ID: "b", Text: "len 3"}},
		Hints:    []string{"Half-open interval."},
		XPReward: 50,
	}
}

func coding() *question.Question {
	return &question.Question{
		ID:          "q2",
		TopicID:     "go-basics",
		Kind:        question.KindCoding,
		Text:        "Reverse a slice in place.",
		StarterCode: "func reverse(s []int) {\n}",
		Language:    "go",
	}
}

type harness struct {
	screen  *PracticeScreen
	svc     *fakeService
	events  *fakeEvents
	profile *profile.Store
}

func newHarness(t *testing.T, questions ...*question.Question) *harness {
	t.Helper()
	svc := &fakeService{questions: questions}
	events := &fakeEvents{}
	ps := profile.NewStore(fakeBackend{}, auth.NewMemoryStore(""))
	if _, err := ps.Authenticate(context.Background(), "ada@example.com", "pw"); err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	deps := screens.Deps{
		Service:  svc,
		Profile:  ps,
		Progress: progress.NewCache(nil),
		Events:   events,
	}
	return &harness{
		screen:  New(deps, api.Topic{ID: "go-basics", Name: "Go Basics"}),
		svc:     svc,
		events:  events,
		profile: ps,
	}
}

// run feeds cmd's message back into the screen, as the runtime would.
func (h *harness) run(t *testing.T, cmd tea.Cmd) tea.Cmd {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	_, next := h.screen.Update(cmd())
	return next
}

func (h *harness) key(msg tea.KeyPressMsg) tea.Cmd {
	_, cmd := h.screen.Update(msg)
	return cmd
}

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func TestStartPresentsFirstQuestion(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())

	if h.screen.snap.Phase != session.PhasePresenting {
		t.Fatalf("phase = %v, want presenting", h.screen.snap.Phase)
	}
	if !strings.Contains(h.screen.View(100, 30), "What is len(s[1:4])?") {
		t.Error("question text not rendered")
	}
	if len(h.events.sessions) != 1 || h.events.sessions[0].Action != store.SessionStart {
		t.Errorf("session events = %+v, want one start", h.events.sessions)
	}
}

func TestNumberKeySubmitsChoice(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())

	cmd := h.key(keyPress('2'))
	if h.screen.snap.Phase != session.PhaseSubmitting {
		t.Errorf("phase = %v, want submitting", h.screen.snap.Phase)
	}
	h.run(t, cmd)

	if h.screen.snap.Phase != session.PhaseReviewing {
		t.Fatalf("phase = %v, want reviewing", h.screen.snap.Phase)
	}
	if got := h.svc.submitted[0].Answer.(question.OptionAnswer).OptionID; got != "b" {
		t.Errorf("submitted option = %q, want b", got)
	}
	if p, _ := h.profile.Profile(); p.XP != 130 {
		t.Errorf("profile XP = %d, want 130", p.XP)
	}
	if !strings.Contains(h.screen.View(100, 30), "Correct!") {
		t.Error("feedback not rendered")
	}
}

func TestHintThenExhausted(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())

	h.run(t, h.key(keyPress('h')))
	if h.screen.snap.Hints.Index != 1 {
		t.Fatalf("hint index = %d, want 1", h.screen.snap.Hints.Index)
	}
	if !strings.Contains(h.screen.View(100, 30), "Half-open interval.") {
		t.Error("hint not rendered")
	}

	if cmd := h.key(keyPress('h')); cmd != nil {
		t.Error("no request expected once hints are exhausted")
	}
	if h.screen.notice == "" {
		t.Error("expected an exhausted-hints notice")
	}
}

func TestAdvanceToCodingQuestion(t *testing.T) {
	h := newHarness(t, mcq(), coding())
	h.run(t, h.screen.Init())
	h.run(t, h.key(keyPress('1')))

	h.run(t, h.key(tea.KeyPressMsg{Code: tea.KeyEnter}))
	if h.screen.snap.Question == nil || h.screen.snap.Question.ID != "q2" {
		t.Fatalf("question = %+v, want q2", h.screen.snap.Question)
	}
	if got := h.screen.editor.Value(); got != coding().StarterCode {
		t.Errorf("editor = %q, want starter code", got)
	}

	h.run(t, h.key(tea.KeyPressMsg{Code: 's', Mod: tea.ModCtrl}))
	sub := h.svc.submitted[len(h.svc.submitted)-1]
	code, ok := sub.Answer.(question.CodeAnswer)
	if !ok || code.Language != "go" {
		t.Errorf("answer = %#v, want go code", sub.Answer)
	}
}

func TestLoadFailureThenRetry(t *testing.T) {
	h := newHarness(t, mcq())
	h.svc.loadErr = &api.TransportError{Op: "adaptive question", Err: errors.New("connection refused")}
	h.run(t, h.screen.Init())

	if h.screen.snap.Phase != session.PhaseLoadFailed {
		t.Fatalf("phase = %v, want load failed", h.screen.snap.Phase)
	}
	if !strings.Contains(h.screen.View(100, 30), "Can't reach the learning service") {
		t.Error("load failure not rendered")
	}

	h.svc.loadErr = nil
	h.run(t, h.key(keyPress('r')))
	if h.screen.snap.Phase != session.PhasePresenting {
		t.Errorf("phase = %v, want presenting after retry", h.screen.snap.Phase)
	}
}

func TestEscEndsSessionWithSummary(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())
	h.run(t, h.key(keyPress('2')))

	cmd := h.key(tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected navigation on Esc")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok {
		t.Fatal("expected ReplaceScreenMsg")
	}
	if _, ok := msg.Screen.(*summary.SummaryScreen); !ok {
		t.Errorf("replacement = %T, want summary", msg.Screen)
	}
	if h.screen.ctrl.Phase() != session.PhaseIdle {
		t.Error("controller should be idle after exit")
	}

	last := h.events.sessions[len(h.events.sessions)-1]
	if last.Action != store.SessionEnd || last.QuestionsAnswered != 1 || last.XPEarned != 50 {
		t.Errorf("end event = %+v", last)
	}

	if cmd := h.key(tea.KeyPressMsg{Code: tea.KeyEscape}); cmd != nil {
		t.Error("second Esc should not end the session again")
	}
}

func TestLateResponseAfterExitIgnored(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())
	submit := h.key(keyPress('2'))
	h.key(tea.KeyPressMsg{Code: tea.KeyEscape})

	h.screen.Update(submit())
	if h.screen.ctrl.Tally().Answered != 0 {
		t.Error("a response after exit must not count")
	}
}

func TestRouterResetEndsSession(t *testing.T) {
	h := newHarness(t, mcq())
	h.run(t, h.screen.Init())

	r := router.New(h.screen)
	r.Reset(summary.New("signed out", session.Tally{}, time.Now()))

	if h.screen.ctrl.Phase() != session.PhaseIdle {
		t.Error("controller should be idle once the screen is dropped")
	}
	if n := len(h.events.sessions); n != 2 || h.events.sessions[1].Action != store.SessionEnd {
		t.Errorf("session events = %+v, want start then end", h.events.sessions)
	}

	h.screen.Leave()
	if len(h.events.sessions) != 2 {
		t.Error("a second Leave must not record another end")
	}
}
