package welcome

import (
	"strings"
	"testing"
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
)

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                          { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                   { return "home" }
func (s *stubScreen) Title() string                          { return "Home" }

func newSplash(greeting string) (*WelcomeScreen, *int) {
	calls := 0
	return New(func() screen.Screen {
		calls++
		return &stubScreen{}
	}, greeting), &calls
}

func advance(w *WelcomeScreen, n int) {
	for range n {
		w.Update(tickMsg(time.Now()))
	}
}

func TestBannerAndGreetingAppearAfterIntro(t *testing.T) {
	w, _ := newSplash("Welcome back, Ada · LV 2")

	view := w.View(100, 40)
	if strings.Contains(view, "one question at a time") || strings.Contains(view, "Ada") {
		t.Error("banner and greeting should wait for the intro")
	}

	advance(w, 15)
	if w.elapsed != bannerIn {
		t.Fatalf("elapsed = %v, want %v", w.elapsed, bannerIn)
	}
	view = w.View(100, 40)
	for _, want := range []string{"one question at a time", "Welcome back, Ada", "press any key"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestElapsedCapsAtTotal(t *testing.T) {
	w, calls := newSplash("")
	advance(w, 45)
	if w.elapsed != totalDur {
		t.Errorf("elapsed = %v, want %v", w.elapsed, totalDur)
	}
	if *calls != 0 {
		t.Error("the splash must not leave without a key")
	}
}

func TestProverbRotates(t *testing.T) {
	w, _ := newSplash("")
	first := w.proverb()
	advance(w, proverbTicks)
	if w.proverb() == first {
		t.Error("proverb should change after proverbTicks")
	}
	advance(w, proverbTicks*(len(proverbs)-1))
	if w.proverb() != first {
		t.Error("proverbs should cycle back to the first")
	}
}

func TestAnyKeyLeavesOnce(t *testing.T) {
	w, calls := newSplash("")
	advance(w, 3)

	_, cmd := w.Update(tea.KeyPressMsg{Code: ' ', Text: " "})
	if cmd == nil {
		t.Fatal("a key mid-intro should leave the splash")
	}
	msg, ok := cmd().(router.ReplaceScreenMsg)
	if !ok || msg.Screen == nil {
		t.Fatalf("expected ReplaceScreenMsg with a screen, got %T", cmd())
	}

	if _, cmd := w.Update(tea.KeyPressMsg{Code: 'q', Text: "q"}); cmd != nil {
		t.Error("a second key should do nothing")
	}
	if *calls != 1 {
		t.Errorf("next called %d times, want 1", *calls)
	}
}

func TestTicksStopAfterLeaving(t *testing.T) {
	w, _ := newSplash("")
	w.Update(tea.KeyPressMsg{Code: tea.KeyEnter})
	if _, cmd := w.Update(tickMsg(time.Now())); cmd != nil {
		t.Error("no more ticks once the splash has handed over")
	}
}
