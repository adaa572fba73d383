package home

import (
	"errors"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screens/screenstest"
	"github.com/abhisek/devquest/internal/screens/topics"
)

var ada = profile.UserProfile{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", XP: 450, Streak: 4}

func catalog() *screenstest.Service {
	return &screenstest.Service{
		Catalog: []api.Course{
			{ID: "go-fundamentals", Name: "Go Fundamentals", TotalTopics: 3, EstimatedHours: 6},
		},
		Overview: api.ProgressOverview{
			Topics: []progress.TopicProgress{{TopicID: "go-basics", Attempted: 4, Correct: 3, Mastery: 55}},
		},
	}
}

func TestHomeLoadsCourses(t *testing.T) {
	deps := screenstest.Deps(t, catalog(), ada)
	h := New(deps)
	if !strings.Contains(h.View(120, 40), "Loading courses") {
		t.Error("expected loading state before the catalog arrives")
	}

	h.Update(h.Init()())

	view := h.View(120, 40)
	for _, want := range []string{"Welcome back, Ada", "Go Fundamentals", "3 topics", "LV 2", "4 day streak"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
	if p, ok := deps.Progress.Get("go-basics"); !ok || p.Mastery != 55 {
		t.Errorf("progress cache entry = %+v, %v", p, ok)
	}
}

func TestHomeSelectCoursePushesTopics(t *testing.T) {
	h := New(screenstest.Deps(t, catalog(), ada))
	h.Update(h.Init()())

	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	push, ok := cmd().(router.PushScreenMsg)
	if !ok {
		t.Fatal("expected PushScreenMsg")
	}
	if _, ok := push.Screen.(*topics.TopicsScreen); !ok {
		t.Errorf("pushed %T, want topics screen", push.Screen)
	}
}

func TestHomeCatalogErrorThenReload(t *testing.T) {
	svc := catalog()
	svc.CatalogErr = &api.TransportError{Op: "courses", Err: errors.New("connection refused")}
	h := New(screenstest.Deps(t, svc, ada))
	h.Update(h.Init()())

	if !strings.Contains(h.View(120, 40), "Can't reach the learning service") {
		t.Error("expected a connection error")
	}

	svc.CatalogErr = nil
	_, cmd := h.Update(tea.KeyPressMsg{Code: 'r', Text: "r"})
	if cmd == nil {
		t.Fatal("expected a reload command")
	}
	h.Update(cmd())
	if len(h.courses) != 1 || h.errMsg != "" {
		t.Errorf("courses = %d, err = %q after reload", len(h.courses), h.errMsg)
	}
}

func TestHomeSignOut(t *testing.T) {
	deps := screenstest.Deps(t, catalog(), ada)
	h := New(deps)
	h.Update(h.Init()())

	// Sign out sits after the course, Progress and History items.
	for range 3 {
		h.Update(tea.KeyPressMsg{Code: tea.KeyDown})
	}
	_, cmd := h.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a sign-out command")
	}
	h.Update(cmd())

	if deps.Profile.IsAuthenticated() {
		t.Error("profile should be cleared after sign out")
	}
}

func TestMascotFor(t *testing.T) {
	tests := []struct {
		streak int
		want   MascotVariant
	}{
		{0, MascotAlert},
		{1, MascotIdle},
		{2, MascotIdle},
		{3, MascotCelebrating},
		{30, MascotCelebrating},
	}
	for _, tt := range tests {
		if got := mascotFor(tt.streak); got != tt.want {
			t.Errorf("mascotFor(%d) = %v, want %v", tt.streak, got, tt.want)
		}
	}
}
