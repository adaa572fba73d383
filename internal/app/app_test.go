package app

import (
	"context"
	"path/filepath"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screens/home"
	"github.com/abhisek/devquest/internal/screens/login"
	"github.com/abhisek/devquest/internal/screens/screenstest"
	"github.com/abhisek/devquest/internal/screens/welcome"
	"github.com/abhisek/devquest/internal/store"
)

var ada = profile.UserProfile{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", XP: 450, Streak: 2}

func testDeps(t *testing.T) Deps {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	svc := &screenstest.Service{Catalog: []api.Course{{ID: "go", Name: "Go"}}}
	d := Deps{Deps: screenstest.Deps(t, svc, ada), Snapshots: st.SnapshotRepo(), SkipSplash: true}
	d.Events = st.EventRepo()
	return d
}

func update(m AppModel, msg tea.Msg) (AppModel, tea.Cmd) {
	next, cmd := m.Update(msg)
	return next.(AppModel), cmd
}

func TestStartsOnHomeWhenSignedIn(t *testing.T) {
	m := newAppModel(testDeps(t))
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home", m.router.Active())
	}
	if m.stats.Level != 2 || m.stats.XP != 450 {
		t.Errorf("header stats = %+v", m.stats)
	}
}

func TestStartsOnLoginWhenSignedOut(t *testing.T) {
	deps := testDeps(t)
	if err := deps.Profile.Clear(context.Background()); err != nil {
		t.Fatalf("clear: %v", err)
	}
	m := newAppModel(deps)
	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Errorf("active = %T, want login", m.router.Active())
	}
}

func TestSplashLeadsToEntryScreen(t *testing.T) {
	deps := testDeps(t)
	deps.SkipSplash = false
	m := newAppModel(deps)
	if _, ok := m.router.Active().(*welcome.WelcomeScreen); !ok {
		t.Fatalf("active = %T, want welcome", m.router.Active())
	}

	m, cmd := update(m, tea.KeyPressMsg{Code: ' ', Text: " "})
	if cmd == nil {
		t.Fatal("expected a transition")
	}
	m, _ = update(m, cmd())
	if _, ok := m.router.Active().(*home.HomeScreen); !ok {
		t.Errorf("active = %T, want home", m.router.Active())
	}
}

func TestSignOutResetsToLogin(t *testing.T) {
	m := newAppModel(testDeps(t))
	m.router.Push(home.New(m.deps.Deps))

	m, _ = update(m, profileChangedMsg{Profile: nil})

	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Errorf("active = %T, want login", m.router.Active())
	}
	if m.router.Depth() != 1 {
		t.Errorf("depth = %d, want 1", m.router.Depth())
	}
	if m.stats.Level != 0 {
		t.Error("header should show signed out")
	}

	// A second notification while already signed out changes nothing.
	before := m.router.Active()
	m, _ = update(m, profileChangedMsg{Profile: nil})
	if m.router.Active() != before {
		t.Error("already signed out; screen should not be replaced")
	}
}

func TestProfileChangeSavesSnapshot(t *testing.T) {
	deps := testDeps(t)
	m := newAppModel(deps)

	p := ada
	p.XP, p.Level = 950, 3
	m, cmd := update(m, profileChangedMsg{Profile: &p})
	if m.stats.Level != 3 || m.stats.XP != 950 {
		t.Errorf("header stats = %+v", m.stats)
	}
	if cmd == nil {
		t.Fatal("expected a snapshot command")
	}
	cmd()

	snap, err := deps.Snapshots.Latest(context.Background())
	if err != nil || snap == nil {
		t.Fatalf("latest snapshot: %v, %v", snap, err)
	}
	if snap.Data.XP != 950 || snap.Data.Email != ada.Email || snap.Data.Version != store.SnapshotVersion {
		t.Errorf("snapshot = %+v", snap.Data)
	}
}

func TestEscPopsUnlessScreenHandlesIt(t *testing.T) {
	m := newAppModel(testDeps(t))
	m.router.Push(home.New(m.deps.Deps))

	_, cmd := update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if cmd == nil {
		t.Fatal("expected a pop")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg")
	}

	m.router.Reset(m.loginScreen())
	m, _ = update(m, tea.KeyPressMsg{Code: tea.KeyEscape})
	if _, ok := m.router.Active().(*login.LoginScreen); !ok {
		t.Error("login should stay active on Esc")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newAppModel(testDeps(t))
	_, cmd := update(m, tea.KeyPressMsg{Code: 'c', Mod: tea.ModCtrl})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestViewRendersFrame(t *testing.T) {
	m := newAppModel(testDeps(t))
	m, _ = update(m, tea.WindowSizeMsg{Width: 100, Height: 30})
	v := m.View()
	if v.Content == nil {
		t.Error("expected frame content")
	}
}
