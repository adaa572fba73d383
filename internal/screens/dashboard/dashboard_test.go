package dashboard

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/screens/screenstest"
)

func service() *screenstest.Service {
	return &screenstest.Service{
		Overview: api.ProgressOverview{
			Topics: []progress.TopicProgress{
				{TopicID: "go-basics", Difficulty: progress.DifficultyIntermediate, Attempted: 6, Correct: 5, Mastery: 70, XPEarned: 250},
				{TopicID: "go-errors", Difficulty: progress.DifficultyBeginner, Attempted: 2, Correct: 0, Mastery: 5},
			},
			TotalQuestions:  8,
			OverallAccuracy: 75,
		},
		Stats: api.UserStats{
			TotalAttempts:    8,
			CorrectAttempts:  5,
			Accuracy:         62.5,
			TotalXPEarned:    250,
			MistakeBreakdown: map[string]int{"conceptual": 3},
		},
		Leaders: []api.LeaderboardEntry{
			{Rank: 1, UserID: "u2", DisplayName: "Grace", Level: 3, XP: 1200},
			{Rank: 2, UserID: "u1", DisplayName: "Ada", Level: 2, XP: 450, Streak: 2},
		},
	}
}

func loaded(t *testing.T, svc *screenstest.Service) *DashboardScreen {
	t.Helper()
	s := New(screenstest.Deps(t, svc, profile.UserProfile{ID: "u1", DisplayName: "Ada"}))
	s.Update(s.Init()())
	return s
}

func TestDashboardProgressTab(t *testing.T) {
	s := loaded(t, service())
	view := s.View(120, 40)
	for _, want := range []string{"8 questions answered", "75% overall accuracy", "go-basics", "5/6 correct"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if strings.Index(view, "go-basics") > strings.Index(view, "go-errors") {
		t.Error("topics should be ordered by mastery")
	}
	if p, ok := s.deps.Progress.Get("go-errors"); !ok || p.Attempted != 2 {
		t.Error("overview should refresh the progress cache")
	}
}

func TestDashboardTabs(t *testing.T) {
	s := loaded(t, service())

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.active != tabStats {
		t.Fatalf("active = %d, want stats", s.active)
	}
	if !strings.Contains(s.View(120, 40), "conceptual") {
		t.Error("stats tab should list mistakes")
	}

	s.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if s.active != tabLeaderboard {
		t.Fatalf("active = %d, want leaderboard", s.active)
	}
	view := s.View(120, 40)
	if !strings.Contains(view, "Grace") || !strings.Contains(view, "Ada") {
		t.Error("leaderboard should list ranked learners")
	}

	s.Update(tea.KeyPressMsg{Code: tea.KeyTab})
	if s.active != tabProgress {
		t.Errorf("tab should wrap around, got %d", s.active)
	}
}

func TestDashboardSectionErrorsAreIndependent(t *testing.T) {
	svc := service()
	svc.LeadersErr = &api.StatusError{Code: 422, Detail: "limit out of range"}
	s := loaded(t, svc)

	if s.data.Err != nil {
		t.Errorf("a section failure should not fail the load, got %v", s.data.Err)
	}
	if !strings.Contains(s.View(120, 40), "8 questions answered") {
		t.Error("progress should render despite a leaderboard failure")
	}
	s.Update(tea.KeyPressMsg{Code: '3', Text: "3"})
	if !strings.Contains(s.View(120, 40), "limit out of range") {
		t.Error("leaderboard tab should show its error")
	}
}

func TestDashboardUnauthorizedFailsLoad(t *testing.T) {
	svc := service()
	svc.StatsErr = fmt.Errorf("GET /users/u1/stats: %w", auth.ErrUnauthorized)
	s := loaded(t, svc)

	if !errors.Is(s.data.Err, auth.ErrUnauthorized) {
		t.Errorf("Err = %v, want unauthorized", s.data.Err)
	}
	if !errors.Is(s.data.StatsErr, auth.ErrUnauthorized) {
		t.Error("the rejected section keeps its own error")
	}
}

func TestDashboardRefresh(t *testing.T) {
	s := loaded(t, service())
	_, cmd := s.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil || s.data != nil {
		t.Fatal("refresh should clear data and reload")
	}
	s.Update(cmd())
	if s.data == nil {
		t.Error("data should be reloaded")
	}
}
