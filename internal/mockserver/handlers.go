package mockserver

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/xp"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"full_name"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type submitRequest struct {
	QuestionID       string  `json:"question_id" binding:"required"`
	UserID           string  `json:"user_id" binding:"required"`
	SelectedOptionID *string `json:"selected_option_id"`
	CodeSolution     *string `json:"code_solution"`
	Language         *string `json:"language"`
}

func userJSON(u *user) gin.H {
	return gin.H{
		"id":         u.ID,
		"email":      u.Email,
		"full_name":  u.FullName,
		"level":      u.Level,
		"xp":         u.XP,
		"streak":     u.Streak,
		"created_at": u.CreatedAt,
	}
}

func progressJSON(p *topicProgress) gin.H {
	return gin.H{
		"topic_id":            p.TopicID,
		"current_difficulty":  p.Difficulty,
		"questions_attempted": p.Attempted,
		"questions_correct":   p.Correct,
		"accuracy":            p.Accuracy,
		"total_xp_earned":     p.XPEarned,
		"mastery_level":       p.Mastery,
		"last_activity":       p.LastActivity,
	}
}

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(req.Email)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[email]; exists {
		abort(c, http.StatusBadRequest, "Email already registered")
		return
	}
	u := &user{
		ID:        uuid.NewString(),
		Email:     email,
		Password:  req.Password,
		FullName:  req.FullName,
		Level:     1,
		CreatedAt: s.now(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u

	resp := gin.H{"user": userJSON(u)}
	if s.tokenOnRegister {
		resp["access_token"] = s.issueToken(u)
		resp["token_type"] = "bearer"
	}
	c.JSON(http.StatusCreated, resp)
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.byEmail[strings.ToLower(req.Email)]
	if !ok || u.Password != req.Password {
		abort(c, http.StatusUnauthorized, "Incorrect email or password")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": s.issueToken(u),
		"token_type":   "bearer",
	})
}

func (s *Server) handleMe(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[currentUserID(c)]
	if !ok {
		abort(c, http.StatusUnauthorized, "Unauthorized")
		return
	}
	c.JSON(http.StatusOK, userJSON(u))
}

func (s *Server) handleCourses(c *gin.Context) {
	c.JSON(http.StatusOK, s.courses)
}

func (s *Server) handleCourse(c *gin.Context) {
	id := c.Param("course_id")
	for _, co := range s.courses {
		if co.ID == id {
			c.JSON(http.StatusOK, co)
			return
		}
	}
	abort(c, http.StatusNotFound, "Course not found")
}

func (s *Server) handleTopicsByCourse(c *gin.Context) {
	id := c.Param("course_id")
	topics := make([]topic, 0)
	for _, t := range s.topics {
		if t.CourseID == id {
			topics = append(topics, t)
		}
	}
	slices.SortFunc(topics, func(a, b topic) int { return a.Order - b.Order })
	c.JSON(http.StatusOK, gin.H{"topics": topics})
}

func (s *Server) findTopic(id string) (topic, bool) {
	for _, t := range s.topics {
		if t.ID == id {
			return t, true
		}
	}
	return topic{}, false
}

// pickTemplate selects a question for the topic at the given difficulty,
// falling back to the nearest difficulty with questions. Repeated requests
// rotate through the candidates. Caller must hold s.mu.
func (s *Server) pickTemplate(userID, topicID string, d progress.Difficulty) *template {
	ladder := progress.AllDifficulties()
	start := max(slices.Index(ladder, d), 0)

	var candidates []*template
	for dist := 0; dist < len(ladder) && len(candidates) == 0; dist++ {
		for _, idx := range []int{start - dist, start + dist} {
			if idx < 0 || idx >= len(ladder) {
				continue
			}
			for i := range s.bank {
				t := &s.bank[i]
				if t.Topic == topicID && t.Difficulty == ladder[idx] {
					candidates = append(candidates, t)
				}
			}
			if dist == 0 {
				break
			}
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	key := userID + "/" + topicID
	n := s.served[key]
	s.served[key] = n + 1
	return candidates[n%len(candidates)]
}

func (s *Server) handleAdaptive(c *gin.Context) {
	userID := c.Query("user_id")
	topicID := c.Query("topic_id")
	if userID == "" || topicID == "" {
		abort(c, http.StatusBadRequest, "user_id and topic_id are required")
		return
	}
	if userID != currentUserID(c) {
		abort(c, http.StatusForbidden, "Cannot request questions for another user")
		return
	}
	if _, ok := s.findTopic(topicID); !ok {
		abort(c, http.StatusNotFound, "Topic not found")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	difficulty := progress.DifficultyBeginner
	if p, ok := s.progress[userID][topicID]; ok {
		difficulty = p.Difficulty
	}
	t := s.pickTemplate(userID, topicID, difficulty)
	if t == nil {
		abort(c, http.StatusNotFound, "No questions available for topic")
		return
	}

	q := &issued{ID: uuid.NewString(), UserID: userID, tmpl: t}
	s.questions[q.ID] = q

	resp := gin.H{
		"id":            q.ID,
		"topic_id":      t.Topic,
		"question_type": t.Kind,
		"difficulty":    t.Difficulty,
		"question_text": t.Text,
		"hints":         t.Hints,
		"xp_reward":     t.XPReward,
		"options":       nil,
		"code_snippet":  nil,
		"starter_code":  nil,
		"language":      nil,
	}
	if len(t.Choices) > 0 {
		opts := make([]gin.H, 0, len(t.Choices))
		for _, ch := range t.Choices {
			opts = append(opts, gin.H{"id": ch.ID, "text": ch.Text})
		}
		resp["options"] = opts
	}
	if t.CodeSnippet != "" {
		resp["code_snippet"] = t.CodeSnippet
	}
	if t.StarterCode != "" {
		resp["starter_code"] = t.StarterCode
	}
	if t.Language != "" {
		resp["language"] = t.Language
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.UserID != currentUserID(c) {
		abort(c, http.StatusForbidden, "Cannot submit for another user")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[req.QuestionID]
	if !ok || q.UserID != req.UserID {
		abort(c, http.StatusNotFound, "Question not found")
		return
	}
	u := s.users[req.UserID]
	t := q.tmpl

	var g grade
	var correctAnswer any
	switch t.Kind {
	case "coding":
		if req.CodeSolution == nil || strings.TrimSpace(*req.CodeSolution) == "" {
			abort(c, http.StatusBadRequest, "code_solution is required")
			return
		}
		g = gradeCode(t, *req.CodeSolution)
		if !g.Correct {
			correctAnswer = "Solution should use: " + strings.Join(t.Expect, ", ")
		}
	default:
		if req.SelectedOptionID == nil || *req.SelectedOptionID == "" {
			abort(c, http.StatusBadRequest, "selected_option_id is required")
			return
		}
		g = gradeChoice(t, *req.SelectedOptionID)
		if !g.Correct {
			correctAnswer = t.correctChoice().Text
		}
	}

	now := s.now()

	tp := s.topicProgress(u.ID, t.Topic)
	tp.Attempted++
	if g.Correct {
		tp.Correct++
	}
	tp.Accuracy = float64(tp.Correct) / float64(tp.Attempted) * 100
	tp.XPEarned += g.XP
	action := recommend(g.Correct, tp.Accuracy)
	tp.Difficulty = adjustDifficulty(tp.Difficulty, tp.Accuracy, tp.Attempted, action)
	tp.Mastery = mastery(tp.Accuracy, tp.Attempted, tp.Difficulty)
	tp.LastActivity = now

	prevLevel := u.Level
	u.XP += g.XP
	u.Level = xp.LevelFor(u.XP)
	u.Streak = nextStreak(u.Streak, u.LastPractice, now)
	u.LastPractice = now

	var levelUp any
	if u.Level > prevLevel {
		ev := xp.NewLevelUpEvent(u.Level)
		levelUp = gin.H{
			"new_level":   ev.NewLevel,
			"xp_required": ev.XPRequired,
			"rewards":     ev.Rewards,
			"message":     ev.Message,
		}
	}

	mistakes := make([]mistake, 0)
	if !g.Correct {
		mistakes = append(mistakes, mistake{
			Type:        "conceptual",
			Description: "The answer does not match the expected behaviour.",
			ConceptGap:  t.Concept,
			Suggestion:  "Review " + t.Concept + " and try a similar question.",
		})
	}

	s.attempts[u.ID] = append(s.attempts[u.ID], attempt{
		QuestionID:        q.ID,
		TopicID:           t.Topic,
		Correct:           g.Correct,
		XPEarned:          g.XP,
		Mistakes:          mistakes,
		RecommendedAction: action,
		AttemptedAt:       now,
	})

	c.JSON(http.StatusOK, gin.H{
		"evaluation": gin.H{
			"is_correct":         g.Correct,
			"score":              g.Score,
			"xp_earned":          g.XP,
			"mistakes":           mistakes,
			"recommended_action": action,
			"detailed_feedback":  t.Explanation,
			"correct_answer":     correctAnswer,
		},
		"progress":     progressJSON(tp),
		"user_profile": userJSON(u),
		"level_up":     levelUp,
		"xp_earned":    g.XP,
	})
}

// topicProgress returns the user's progress row for topicID, creating it at
// beginner difficulty. Caller must hold s.mu.
func (s *Server) topicProgress(userID, topicID string) *topicProgress {
	byTopic, ok := s.progress[userID]
	if !ok {
		byTopic = make(map[string]*topicProgress)
		s.progress[userID] = byTopic
	}
	tp, ok := byTopic[topicID]
	if !ok {
		tp = &topicProgress{TopicID: topicID, Difficulty: progress.DifficultyBeginner}
		byTopic[topicID] = tp
	}
	return tp
}

func (s *Server) handleHint(c *gin.Context) {
	index := 0
	if raw := c.Query("hint_index"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			abort(c, http.StatusBadRequest, "hint_index must be a non-negative integer")
			return
		}
		index = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[c.Param("question_id")]
	if !ok || q.UserID != currentUserID(c) {
		abort(c, http.StatusNotFound, "Question not found")
		return
	}
	if index >= len(q.tmpl.Hints) {
		abort(c, http.StatusBadRequest, "No more hints available")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"hint":            q.tmpl.Hints[index],
		"hints_remaining": len(q.tmpl.Hints) - index - 1,
	})
}

// sameUser rejects requests for another user's data.
func sameUser(c *gin.Context) bool {
	if c.Param("user_id") != currentUserID(c) {
		abort(c, http.StatusForbidden, "Cannot read another user's progress")
		return false
	}
	return true
}

func (s *Server) handleUserProgress(c *gin.Context) {
	if !sameUser(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]gin.H, 0)
	total, correct := 0, 0
	for _, t := range s.topics {
		tp, ok := s.progress[c.Param("user_id")][t.ID]
		if !ok {
			continue
		}
		rows = append(rows, progressJSON(tp))
		total += tp.Attempted
		correct += tp.Correct
	}
	var accuracy float64
	if total > 0 {
		accuracy = float64(correct) / float64(total) * 100
	}
	c.JSON(http.StatusOK, gin.H{
		"topic_progress":   rows,
		"total_questions":  total,
		"overall_accuracy": accuracy,
	})
}

func (s *Server) handleTopicProgress(c *gin.Context) {
	if !sameUser(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tp, ok := s.progress[c.Param("user_id")][c.Param("topic_id")]
	if !ok {
		c.JSON(http.StatusOK, gin.H{"progress": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"progress": progressJSON(tp)})
}

func (s *Server) handleStats(c *gin.Context) {
	if !sameUser(c) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	attempts := s.attempts[c.Param("user_id")]
	correct, earned := 0, 0
	breakdown := make(map[string]int)
	for _, a := range attempts {
		if a.Correct {
			correct++
		}
		earned += a.XPEarned
		for _, m := range a.Mistakes {
			breakdown[m.Type]++
		}
	}
	var accuracy float64
	if len(attempts) > 0 {
		accuracy = float64(correct) / float64(len(attempts)) * 100
	}
	c.JSON(http.StatusOK, gin.H{
		"total_attempts":    len(attempts),
		"correct_attempts":  correct,
		"accuracy":          accuracy,
		"total_xp_earned":   earned,
		"mistake_breakdown": breakdown,
	})
}

func (s *Server) handleLeaderboard(c *gin.Context) {
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 100 {
			abort(c, http.StatusBadRequest, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]*user, 0, len(s.users))
	for _, u := range s.users {
		users = append(users, u)
	}

	slices.SortFunc(users, func(a, b *user) int {
		if a.XP != b.XP {
			return b.XP - a.XP
		}
		return strings.Compare(a.Email, b.Email)
	})
	if len(users) > limit {
		users = users[:limit]
	}

	rows := make([]gin.H, 0, len(users))
	for _, u := range users {
		rows = append(rows, gin.H{
			"id":        u.ID,
			"full_name": u.FullName,
			"level":     u.Level,
			"xp":        u.XP,
			"streak":    u.Streak,
		})
	}
	c.JSON(http.StatusOK, gin.H{"leaderboard": rows})
}
