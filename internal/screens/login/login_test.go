package login

import (
	"context"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
)

type fakeBackend struct {
	loginErr   error
	registered string
}

func (f *fakeBackend) Login(_ context.Context, email, _ string) (string, error) {
	if f.loginErr != nil {
		return "", f.loginErr
	}
	return "tok-" + email, nil
}

func (f *fakeBackend) Register(_ context.Context, _, _, fullName string) (string, error) {
	f.registered = fullName
	return "tok-new", nil
}

func (f *fakeBackend) CurrentUser(context.Context) (profile.UserProfile, error) {
	return profile.UserProfile{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", XP: 120}, nil
}

type stubScreen struct{}

func (s *stubScreen) Init() tea.Cmd                           { return nil }
func (s *stubScreen) Update(tea.Msg) (screen.Screen, tea.Cmd) { return s, nil }
func (s *stubScreen) View(int, int) string                    { return "home" }
func (s *stubScreen) Title() string                           { return "Home" }

func newTestLogin(b *fakeBackend) (*LoginScreen, *profile.Store, *int) {
	store := profile.NewStore(b, auth.NewMemoryStore(""))
	calls := 0
	l := New(store, func() screen.Screen {
		calls++
		return &stubScreen{}
	})
	l.Init()
	return l, store, &calls
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestSubmitRequiresEmail(t *testing.T) {
	l, _, _ := newTestLogin(&fakeBackend{})
	l.fields[fieldPassword].SetValue("secret")
	l.setFocus(fieldPassword)

	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd != nil {
		t.Fatal("expected no request without an email")
	}
	if l.errMsg == "" {
		t.Error("expected a validation message")
	}
}

func TestEnterMovesToNextField(t *testing.T) {
	l, _, _ := newTestLogin(&fakeBackend{})
	l.Update(specialKey(tea.KeyEnter))
	if l.focus != fieldPassword {
		t.Errorf("focus = %d, want password field", l.focus)
	}
}

func TestSuccessfulLoginResetsToNextScreen(t *testing.T) {
	l, store, calls := newTestLogin(&fakeBackend{})
	l.fields[fieldEmail].SetValue("ada@example.com")
	l.fields[fieldPassword].SetValue("secret")
	l.setFocus(fieldPassword)

	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a sign-in command")
	}
	if !l.busy {
		t.Error("screen should be busy while signing in")
	}

	done := cmd()
	if _, ok := done.(authDoneMsg); !ok {
		t.Fatalf("expected authDoneMsg, got %T", done)
	}
	if !store.IsAuthenticated() {
		t.Error("profile should be loaded after sign-in")
	}

	_, cmd = l.Update(done)
	if cmd == nil {
		t.Fatal("expected navigation after sign-in")
	}
	if _, ok := cmd().(router.ResetScreenMsg); !ok {
		t.Error("expected ResetScreenMsg")
	}
	if *calls != 1 {
		t.Errorf("next called %d times, want 1", *calls)
	}
}

func TestRejectedLoginShowsDetail(t *testing.T) {
	l, store, calls := newTestLogin(&fakeBackend{
		loginErr: &api.StatusError{Code: 401, Detail: "Incorrect email or password"},
	})
	l.fields[fieldEmail].SetValue("ada@example.com")
	l.fields[fieldPassword].SetValue("wrong")
	l.setFocus(fieldPassword)

	_, cmd := l.Update(specialKey(tea.KeyEnter))
	l.Update(cmd())

	if l.errMsg != "Incorrect email or password" {
		t.Errorf("errMsg = %q", l.errMsg)
	}
	if store.IsAuthenticated() || *calls != 0 {
		t.Error("a rejected login must not sign in")
	}
}

func TestRegisterModeNeedsName(t *testing.T) {
	b := &fakeBackend{}
	l, _, _ := newTestLogin(b)
	l.Update(tea.KeyPressMsg{Code: 'r', Mod: tea.ModCtrl})
	if !l.register {
		t.Fatal("ctrl+r should switch to registration")
	}
	l.fields[fieldEmail].SetValue("new@example.com")
	l.fields[fieldPassword].SetValue("longenough")
	l.setFocus(fieldName)

	if _, cmd := l.Update(specialKey(tea.KeyEnter)); cmd != nil {
		t.Fatal("expected no request without a name")
	}

	l.fields[fieldName].SetValue("Grace Hopper")
	_, cmd := l.Update(specialKey(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected a registration command")
	}
	cmd()
	if b.registered != "Grace Hopper" {
		t.Errorf("registered name = %q", b.registered)
	}
}

func TestHandlesBack(t *testing.T) {
	l, _, _ := newTestLogin(&fakeBackend{})
	var s screen.Screen = l
	if bh, ok := s.(screen.BackHandler); !ok || !bh.HandlesBack() {
		t.Error("login should handle Esc itself")
	}
}
