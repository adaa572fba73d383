package summary

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/session"
)

func testTally() session.Tally {
	return session.Tally{
		StartedAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Answered:  4,
		Correct:   3,
		XPEarned:  170,
		HintsUsed: 2,
		LevelUps:  1,
	}
}

func endedAt() time.Time {
	return time.Date(2026, 3, 1, 10, 7, 5, 0, time.UTC)
}

func TestSummaryScreen_Title(t *testing.T) {
	s := New("Go Basics", testTally(), endedAt())
	if s.Title() != "Session Summary" {
		t.Errorf("Title = %q, want %q", s.Title(), "Session Summary")
	}
}

func TestSummaryScreen_Display(t *testing.T) {
	s := New("Go Basics", testTally(), endedAt())
	view := s.View(80, 24)
	for _, want := range []string{"Session complete!", "Go Basics", "7:05", "75%", "+170 XP", "2 hint(s) used", "1 level up(s)"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestSummaryScreen_EmptySession(t *testing.T) {
	s := New("Go Basics", session.Tally{StartedAt: endedAt()}, endedAt())
	view := s.View(80, 24)
	if !strings.Contains(view, "No questions answered") {
		t.Error("expected empty-session message")
	}
	if strings.Contains(view, "Accuracy") {
		t.Error("empty session should not show accuracy")
	}
}

func TestSummaryScreen_NegativeDurationClamped(t *testing.T) {
	s := New("", testTally(), testTally().StartedAt.Add(-time.Minute))
	if s.duration != 0 {
		t.Errorf("duration = %v, want 0", s.duration)
	}
}

func TestSummaryScreen_Navigation_Enter(t *testing.T) {
	s := New("Go Basics", testTally(), endedAt())
	_, cmd := s.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command on Enter (pop)")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}
}

func TestSummaryScreen_KeyHints(t *testing.T) {
	s := New("Go Basics", testTally(), endedAt())
	hints := s.KeyHints()
	if len(hints) != 2 {
		t.Errorf("KeyHints length = %d, want 2", len(hints))
	}
}
