// Package mockserver is an in-memory grading, content and progress service
// speaking the same HTTP API as the production backend. It backs
// `devquest serve-mock` and the client integration tests.
package mockserver

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/devquest/internal/progress"
)

// APIVersion is reported in the X-API-Version header.
const APIVersion = "1.2.0"

const userKey = "devquest_user"

type user struct {
	ID           string
	Email        string
	Password     string
	FullName     string
	XP           int
	Level        int
	Streak       int
	LastPractice time.Time
	CreatedAt    time.Time
}

type topicProgress struct {
	TopicID      string
	Difficulty   progress.Difficulty
	Attempted    int
	Correct      int
	Accuracy     float64
	XPEarned     int
	Mastery      int
	LastActivity time.Time
}

type attempt struct {
	QuestionID        string
	TopicID           string
	Correct           bool
	XPEarned          int
	Mistakes          []mistake
	RecommendedAction string
	AttemptedAt       time.Time
}

type mistake struct {
	Type        string `json:"mistake_type"`
	Description string `json:"description"`
	ConceptGap  string `json:"concept_gap"`
	Suggestion  string `json:"suggestion"`
}

// issued is a question handed to a user.
type issued struct {
	ID     string
	UserID string
	tmpl   *template
}

// Server holds all service state in memory.
type Server struct {
	mu        sync.Mutex
	users     map[string]*user // by id
	byEmail   map[string]*user
	tokens    map[string]string // token -> user id
	questions map[string]*issued
	progress  map[string]map[string]*topicProgress // user id -> topic id
	attempts  map[string][]attempt
	served    map[string]int // user id + "/" + topic id

	courses []course
	topics  []topic
	bank    []template

	now             func() time.Time
	version         string
	tokenOnRegister bool
	logger          *slog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithClock overrides time.Now, for streak tests.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// WithVersion overrides the reported API version.
func WithVersion(v string) Option {
	return func(s *Server) { s.version = v }
}

// WithoutRegisterToken makes registration return no token, so clients must
// log in afterwards.
func WithoutRegisterToken() Option {
	return func(s *Server) { s.tokenOnRegister = false }
}

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// New creates a server seeded with the default catalog and question bank.
func New(opts ...Option) *Server {
	s := &Server{
		users:           make(map[string]*user),
		byEmail:         make(map[string]*user),
		tokens:          make(map[string]string),
		questions:       make(map[string]*issued),
		progress:        make(map[string]map[string]*topicProgress),
		attempts:        make(map[string][]attempt),
		served:          make(map[string]int),
		courses:         defaultCourses,
		topics:          defaultTopics,
		bank:            defaultBank,
		now:             time.Now,
		version:         APIVersion,
		tokenOnRegister: true,
		logger:          slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP handler serving the API under /api.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests(), s.versionHeader())

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.POST("/register", s.handleRegister)
	authGroup.POST("/login", s.handleLogin)
	authGroup.GET("/me", s.requireAuth(), s.handleMe)

	api.GET("/courses", s.handleCourses)
	api.GET("/courses/:course_id", s.handleCourse)
	api.GET("/topics/course/:course_id", s.handleTopicsByCourse)

	authed := api.Group("", s.requireAuth())
	authed.POST("/questions/adaptive", s.handleAdaptive)
	authed.POST("/evaluation/submit", s.handleSubmit)
	authed.POST("/evaluation/hint/:question_id", s.handleHint)
	authed.GET("/progress/user/:user_id", s.handleUserProgress)
	authed.GET("/progress/topic/:user_id/:topic_id", s.handleTopicProgress)
	authed.GET("/progress/stats/:user_id", s.handleStats)
	authed.GET("/progress/leaderboard", s.handleLeaderboard)

	return r
}

// RevokeTokens invalidates every token issued to the user with email, as
// if the session had expired.
func (s *Server) RevokeTokens(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return
	}
	for tok, id := range s.tokens {
		if id == u.ID {
			delete(s.tokens, tok)
		}
	}
}

// issueToken creates a bearer token for u. Caller must hold s.mu.
func (s *Server) issueToken(u *user) string {
	tok := uuid.NewString()
	s.tokens[tok] = u.ID
	return tok
}

func (s *Server) versionHeader() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-API-Version", s.version)
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"request_id", c.GetHeader("X-Request-ID"),
			"latency_ms", time.Since(start).Milliseconds(),
		)
	}
}

// requireAuth resolves the bearer token to a user or aborts with 401.
func (s *Server) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)

		s.mu.Lock()
		id, ok := s.tokens[token]
		s.mu.Unlock()
		if token == "" || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Unauthorized"})
			return
		}
		c.Set(userKey, id)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	if !ok {
		return ""
	}
	return strings.TrimSpace(token)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(userKey)
}

func abort(c *gin.Context, code int, detail string) {
	c.AbortWithStatusJSON(code, gin.H{"detail": detail})
}
