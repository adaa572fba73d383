package login

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldName
)

// authDoneMsg carries the result of a sign-in or sign-up.
type authDoneMsg struct {
	Profile profile.UserProfile
	Err     error
}

// LoginScreen signs a learner in, or registers a new account.
type LoginScreen struct {
	profile  *profile.Store
	next     func() screen.Screen
	fields   []components.TextInput
	focus    int
	register bool
	busy     bool
	errMsg   string
	done     bool
}

var _ screen.Screen = (*LoginScreen)(nil)
var _ screen.KeyHintProvider = (*LoginScreen)(nil)

// New creates a LoginScreen. next builds the screen shown once signed in.
func New(store *profile.Store, next func() screen.Screen) *LoginScreen {
	l := &LoginScreen{
		profile: store,
		next:    next,
		fields: []components.TextInput{
			components.NewTextInput("Email", "you@example.com", false, 254),
			components.NewTextInput("Password", "", true, 128),
			components.NewTextInput("Name", "Ada Lovelace", false, 100),
		},
	}
	return l
}

func (l *LoginScreen) Init() tea.Cmd {
	return l.fields[fieldEmail].Focus()
}

func (l *LoginScreen) Title() string {
	if l.register {
		return "Create account"
	}
	return "Sign in"
}

// HandlesBack keeps Esc from popping the only screen a signed-out learner has.
func (l *LoginScreen) HandlesBack() bool { return true }

func (l *LoginScreen) KeyHints() []layout.KeyHint {
	toggle := "New account"
	if l.register {
		toggle = "Have an account"
	}
	return []layout.KeyHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl+R", Description: toggle},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

func (l *LoginScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case authDoneMsg:
		l.busy = false
		if msg.Err != nil {
			l.errMsg = screens.Describe(msg.Err)
			return l, nil
		}
		if l.done {
			return l, nil
		}
		l.done = true
		home := l.next()
		return l, func() tea.Msg { return router.ResetScreenMsg{Screen: home} }

	case tea.KeyMsg:
		if l.busy {
			return l, nil
		}
		switch msg.String() {
		case "tab", "down":
			return l, l.moveFocus(1)
		case "shift+tab", "up":
			return l, l.moveFocus(-1)
		case "ctrl+r":
			l.register = !l.register
			l.errMsg = ""
			if !l.register && l.focus == fieldName {
				return l, l.setFocus(fieldPassword)
			}
			return l, nil
		case "esc":
			l.errMsg = ""
			return l, nil
		case "enter":
			if l.focus < l.lastField() {
				return l, l.moveFocus(1)
			}
			return l, l.submit()
		}
	}

	var cmd tea.Cmd
	l.fields[l.focus], cmd = l.fields[l.focus].Update(msg)
	return l, cmd
}

func (l *LoginScreen) lastField() int {
	if l.register {
		return fieldName
	}
	return fieldPassword
}

func (l *LoginScreen) moveFocus(delta int) tea.Cmd {
	n := l.lastField() + 1
	return l.setFocus((l.focus + delta + n) % n)
}

func (l *LoginScreen) setFocus(i int) tea.Cmd {
	l.fields[l.focus].Blur()
	l.focus = i
	return l.fields[i].Focus()
}

func (l *LoginScreen) submit() tea.Cmd {
	email := strings.TrimSpace(l.fields[fieldEmail].Value())
	password := l.fields[fieldPassword].Value()
	name := strings.TrimSpace(l.fields[fieldName].Value())

	switch {
	case email == "" || !strings.Contains(email, "@"):
		l.errMsg = "Enter a valid email address."
		return nil
	case password == "":
		l.errMsg = "Enter your password."
		return nil
	case l.register && len(password) < 8:
		l.errMsg = "Passwords need at least 8 characters."
		return nil
	case l.register && name == "":
		l.errMsg = "Tell us your name."
		return nil
	}

	l.errMsg = ""
	l.busy = true
	store, register := l.profile, l.register
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		var p profile.UserProfile
		var err error
		if register {
			p, err = store.Register(ctx, email, password, name)
		} else {
			p, err = store.Authenticate(ctx, email, password)
		}
		return authDoneMsg{Profile: p, Err: err}
	}
}

func (l *LoginScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render("devquest"))
	b.WriteString("\n")
	sub := "Sign in to keep your streak going"
	if l.register {
		sub = "Create an account to start practicing"
	}
	b.WriteString(theme.Subtitle.Width(cw).Render(sub))
	b.WriteString("\n\n")

	for i := 0; i <= l.lastField(); i++ {
		b.WriteString(l.fields[i].View())
		b.WriteString("\n\n")
	}

	switch {
	case l.busy:
		b.WriteString(theme.Hint.Render("Contacting the learning service..."))
	case l.errMsg != "":
		b.WriteString(theme.ErrorText.Render(l.errMsg))
	}

	card := components.Card(b.String(), cw)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, card)
}
