// Package screenstest provides in-memory stand-ins for screen tests.
package screenstest

import (
	"context"
	"errors"
	"testing"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/screens"
)

// Service is a canned screens.Service. Unset fields return empty results.
type Service struct {
	Catalog     []api.Course
	CatalogErr  error
	TopicsBy    map[string][]api.Topic
	Overview    api.ProgressOverview
	OverviewErr error
	Stats       api.UserStats
	StatsErr    error
	Leaders     []api.LeaderboardEntry
	LeadersErr  error
	Questions   []*question.Question
}

var _ screens.Service = (*Service)(nil)

func (s *Service) Courses(context.Context) ([]api.Course, error) {
	return s.Catalog, s.CatalogErr
}

func (s *Service) Topics(_ context.Context, courseID string) ([]api.Topic, error) {
	topics, ok := s.TopicsBy[courseID]
	if !ok {
		return nil, api.ErrNotFound
	}
	return topics, nil
}

func (s *Service) UserProgress(context.Context, string) (api.ProgressOverview, error) {
	return s.Overview, s.OverviewErr
}

func (s *Service) UserStats(context.Context, string) (api.UserStats, error) {
	return s.Stats, s.StatsErr
}

func (s *Service) Leaderboard(_ context.Context, limit int) ([]api.LeaderboardEntry, error) {
	if len(s.Leaders) > limit {
		return s.Leaders[:limit], s.LeadersErr
	}
	return s.Leaders, s.LeadersErr
}

func (s *Service) GenerateAdaptiveQuestion(context.Context, string, string) (*question.Question, error) {
	if len(s.Questions) == 0 {
		return nil, api.ErrNotFound
	}
	return s.Questions[0], nil
}

func (s *Service) SubmitAnswer(context.Context, question.Submission) (*question.Outcome, error) {
	return nil, errors.New("screenstest: grading not supported")
}

func (s *Service) GetHint(context.Context, string, int) (string, error) {
	return "", errors.New("screenstest: hints not supported")
}

// Backend signs everyone in as User.
type Backend struct {
	User profile.UserProfile
}

func (b Backend) Login(context.Context, string, string) (string, error) { return "token", nil }

func (b Backend) Register(context.Context, string, string, string) (string, error) {
	return "token", nil
}

func (b Backend) CurrentUser(context.Context) (profile.UserProfile, error) { return b.User, nil }

// SignedIn returns a profile store with u loaded.
func SignedIn(t testing.TB, u profile.UserProfile) *profile.Store {
	t.Helper()
	ps := profile.NewStore(Backend{User: u}, auth.NewMemoryStore(""))
	if _, err := ps.Authenticate(context.Background(), u.Email, "password"); err != nil {
		t.Fatalf("sign in: %v", err)
	}
	return ps
}

// Deps wires svc and a signed-in u into screen dependencies.
func Deps(t testing.TB, svc *Service, u profile.UserProfile) screens.Deps {
	t.Helper()
	return screens.Deps{
		Service:  svc,
		Profile:  SignedIn(t, u),
		Progress: progress.NewCache(nil),
	}
}
