package topics

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/router"
	"github.com/abhisek/devquest/internal/screen"
	"github.com/abhisek/devquest/internal/screens"
	"github.com/abhisek/devquest/internal/screens/practice"
	"github.com/abhisek/devquest/internal/ui/components"
	"github.com/abhisek/devquest/internal/ui/layout"
	"github.com/abhisek/devquest/internal/ui/theme"
)

type topicsLoadedMsg struct {
	Topics []api.Topic
	Err    error
}

// TopicsScreen lists a course's topics with the learner's mastery of each.
type TopicsScreen struct {
	deps   screens.Deps
	course api.Course
	topics []api.Topic
	menu   components.Menu
	loaded bool
	errMsg string
}

var _ screen.Screen = (*TopicsScreen)(nil)
var _ screen.KeyHintProvider = (*TopicsScreen)(nil)

// New creates a TopicsScreen for course.
func New(deps screens.Deps, course api.Course) *TopicsScreen {
	return &TopicsScreen{deps: deps, course: course}
}

func (s *TopicsScreen) Init() tea.Cmd {
	svc, courseID := s.deps.Service, s.course.ID
	return func() tea.Msg {
		ctx, cancel := screens.RequestContext()
		defer cancel()
		topics, err := svc.Topics(ctx, courseID)
		return topicsLoadedMsg{Topics: topics, Err: err}
	}
}

func (s *TopicsScreen) Title() string {
	return s.course.Name
}

func (s *TopicsScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Practice"},
		{Key: "Esc", Description: "Back"},
	}
}

func (s *TopicsScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case topicsLoadedMsg:
		s.loaded = true
		if msg.Err != nil {
			s.errMsg = screens.Describe(msg.Err)
			return s, nil
		}
		s.topics = msg.Topics
		items := make([]components.MenuItem, len(s.topics))
		for i, t := range s.topics {
			topic := t
			items[i] = components.MenuItem{
				Label: topic.Name,
				Action: func() tea.Cmd {
					return func() tea.Msg {
						return router.PushScreenMsg{Screen: practice.New(s.deps, topic)}
					}
				},
			}
		}
		s.menu = components.NewMenu(items)
		return s, nil
	}

	var cmd tea.Cmd
	s.menu, cmd = s.menu.Update(msg)
	return s, cmd
}

// detail describes the learner's standing on topic from the progress cache,
// which practice sessions keep current.
func (s *TopicsScreen) detail(topic api.Topic) string {
	if s.deps.Progress != nil {
		if p, ok := s.deps.Progress.Get(topic.ID); ok && p.Attempted > 0 {
			return fmt.Sprintf("mastery %d%% · %s · %d answered", p.Mastery, p.Difficulty, p.Attempted)
		}
	}
	d := string(topic.Difficulty)
	if topic.EstimatedMinutes > 0 {
		d += fmt.Sprintf(" · ~%d min", topic.EstimatedMinutes)
	}
	return d + " · new"
}

func (s *TopicsScreen) View(width, height int) string {
	cw := components.ContentWidth(width)

	var b strings.Builder
	b.WriteString(theme.Title.Width(cw).Render(s.course.Name))
	b.WriteString("\n")
	if s.course.Description != "" {
		b.WriteString(theme.Subtitle.Width(cw).Render(s.course.Description))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case s.errMsg != "":
		b.WriteString(theme.ErrorText.Render(s.errMsg))
	case !s.loaded:
		b.WriteString(theme.Hint.Render("Loading topics..."))
	case len(s.topics) == 0:
		b.WriteString(theme.Hint.Render("This course has no topics yet."))
	default:
		for i := range s.menu.Items {
			s.menu.Items[i].Detail = s.detail(s.topics[i])
		}
		b.WriteString(s.menu.View())
	}

	return lipgloss.PlaceHorizontal(width, lipgloss.Center, components.Card(b.String(), cw))
}
