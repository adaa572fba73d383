package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/abhisek/devquest/internal/auth"
	"github.com/abhisek/devquest/internal/xp"
)

// ErrNotLoaded is returned by operations that need a loaded profile.
var ErrNotLoaded = errors.New("no profile loaded")

// UserProfile is the authenticated learner. Level is always derived from XP.
type UserProfile struct {
	ID          string
	Email       string
	DisplayName string
	XP          int
	Level       int
	Streak      int
}

// Progression returns the XP-derived fields.
func (p UserProfile) Progression() xp.Progression {
	return xp.Progression{XP: p.XP, Level: p.Level}
}

// Backend is the subset of the service the store talks to.
type Backend interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, email, password, fullName string) (string, error)
	CurrentUser(ctx context.Context) (UserProfile, error)
}

// Listener receives the profile after every change; nil means signed out.
type Listener func(p *UserProfile)

// Store holds the single authoritative profile for the running session.
// Other components read it; XP only changes through ApplyXPAward.
type Store struct {
	backend Backend
	tokens  auth.TokenStore
	logger  *slog.Logger

	mu      sync.RWMutex
	profile *UserProfile

	listenerMu sync.Mutex
	listeners  map[int]Listener
	nextID     int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the diagnostics logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// NewStore creates an unauthenticated store.
func NewStore(backend Backend, tokens auth.TokenStore, opts ...Option) *Store {
	s := &Store{
		backend:   backend,
		tokens:    tokens,
		logger:    slog.New(slog.DiscardHandler),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load fetches the profile with the stored credential.
//
// A missing or rejected credential clears the credential and the profile.
// Any other failure leaves the current profile in place.
func (s *Store) Load(ctx context.Context) (UserProfile, error) {
	token, err := s.tokens.Token(ctx)
	if err != nil {
		return UserProfile{}, fmt.Errorf("read credential: %w", err)
	}
	if token == "" {
		s.set(nil)
		return UserProfile{}, fmt.Errorf("load profile: %w", auth.ErrUnauthorized)
	}

	p, err := s.backend.CurrentUser(ctx)
	if err != nil {
		if errors.Is(err, auth.ErrUnauthorized) {
			if clearErr := s.tokens.ClearToken(ctx); clearErr != nil {
				s.logger.Warn("clear rejected credential", "error", clearErr)
			}
			s.set(nil)
		} else {
			s.logger.Warn("profile load failed, keeping current state", "error", err)
		}
		return UserProfile{}, fmt.Errorf("load profile: %w", err)
	}

	p.Level = xp.LevelFor(p.XP)
	s.set(&p)
	s.logger.Info("profile loaded", "user", p.ID, "xp", p.XP, "level", p.Level)
	return p, nil
}

// Authenticate logs in, stores the credential, and loads the profile.
// A login failure is returned as-is and nothing else runs.
func (s *Store) Authenticate(ctx context.Context, email, password string) (UserProfile, error) {
	token, err := s.backend.Login(ctx, email, password)
	if err != nil {
		return UserProfile{}, err
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return UserProfile{}, fmt.Errorf("store credential: %w", err)
	}
	return s.Load(ctx)
}

// Register creates an account, stores its credential, and loads the profile.
// When the service registers without issuing a session, it logs in with the
// same credentials.
func (s *Store) Register(ctx context.Context, email, password, fullName string) (UserProfile, error) {
	token, err := s.backend.Register(ctx, email, password, fullName)
	if err != nil {
		return UserProfile{}, err
	}
	if token == "" {
		return s.Authenticate(ctx, email, password)
	}
	if err := s.tokens.SetToken(ctx, token); err != nil {
		return UserProfile{}, fmt.Errorf("store credential: %w", err)
	}
	return s.Load(ctx)
}

// ApplyXPAward runs the XP ledger on the held profile and replaces it with
// the result. The level-up event, if any, is returned once and not retained.
func (s *Store) ApplyXPAward(delta int) (*xp.LevelUpEvent, error) {
	s.mu.Lock()
	if s.profile == nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("apply xp award: %w", ErrNotLoaded)
	}
	next, ev, err := xp.ApplyAward(s.profile.Progression(), delta)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	updated := *s.profile
	updated.XP = next.XP
	updated.Level = next.Level
	s.profile = &updated
	s.mu.Unlock()

	if ev != nil {
		s.logger.Info("level up", "user", updated.ID, "level", ev.NewLevel)
	}
	snapshot := updated
	s.notify(&snapshot)
	return ev, nil
}

// Clear discards the credential and the profile. Safe to call repeatedly.
func (s *Store) Clear(ctx context.Context) error {
	err := s.tokens.ClearToken(ctx)
	s.set(nil)
	if err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// HandleUnauthorized drops the profile after the transport has already
// cleared a rejected credential.
func (s *Store) HandleUnauthorized() {
	s.set(nil)
}

// Profile returns a copy of the held profile.
func (s *Store) Profile() (UserProfile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return UserProfile{}, false
	}
	return *s.profile, true
}

// IsAuthenticated reports whether a profile is loaded.
func (s *Store) IsAuthenticated() bool {
	_, ok := s.Profile()
	return ok
}

// UserID returns the loaded user's id, or "".
func (s *Store) UserID() string {
	p, _ := s.Profile()
	return p.ID
}

// Subscribe registers fn for change notifications and returns a func that
// removes it.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.listenerMu.Lock()
	defer s.listenerMu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.listenerMu.Lock()
		defer s.listenerMu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Store) set(p *UserProfile) {
	s.mu.Lock()
	wasNil := s.profile == nil
	s.profile = p
	s.mu.Unlock()

	if wasNil && p == nil {
		return
	}
	var snapshot *UserProfile
	if p != nil {
		cp := *p
		snapshot = &cp
	}
	s.notify(snapshot)
}

func (s *Store) notify(p *UserProfile) {
	s.listenerMu.Lock()
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.listenerMu.Unlock()

	for _, fn := range listeners {
		fn(p)
	}
}
