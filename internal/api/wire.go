package api

import (
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/question"
	"github.com/abhisek/devquest/internal/xp"
)

// Wire shapes of the service. They are decoded only after schema
// validation and converted to domain types immediately.

type wireToken struct {
	AccessToken *string `json:"access_token"`
}

type wireUser struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	FullName *string `json:"full_name"`
	Level    int     `json:"level"`
	XP       int     `json:"xp"`
	Streak   int     `json:"streak"`
}

func (w wireUser) toProfile() profile.UserProfile {
	p := profile.UserProfile{
		ID:     w.ID,
		Email:  w.Email,
		XP:     w.XP,
		Level:  w.Level,
		Streak: w.Streak,
	}
	if w.FullName != nil {
		p.DisplayName = *w.FullName
	}
	return p
}

type wireOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type wireQuestion struct {
	ID          string       `json:"id"`
	TopicID     *string      `json:"topic_id"`
	Type        string       `json:"question_type"`
	Difficulty  string       `json:"difficulty"`
	Text        string       `json:"question_text"`
	Options     []wireOption `json:"options"`
	CodeSnippet *string      `json:"code_snippet"`
	StarterCode *string      `json:"starter_code"`
	Language    *string      `json:"language"`
	Hints       []string     `json:"hints"`
	XPReward    int          `json:"xp_reward"`
}

func (w wireQuestion) toQuestion(topicID string) *question.Question {
	q := &question.Question{
		ID:          w.ID,
		TopicID:     topicID,
		Kind:        question.Kind(w.Type),
		Difficulty:  progress.Difficulty(w.Difficulty),
		Text:        w.Text,
		CodeSnippet: deref(w.CodeSnippet),
		StarterCode: deref(w.StarterCode),
		Language:    deref(w.Language),
		Hints:       w.Hints,
		XPReward:    w.XPReward,
	}
	if w.TopicID != nil && *w.TopicID != "" {
		q.TopicID = *w.TopicID
	}
	for _, o := range w.Options {
		q.Options = append(q.Options, question.Option{ID: o.ID, Text: o.Text})
	}
	return q
}

type wireSubmission struct {
	QuestionID       string  `json:"question_id"`
	UserID           string  `json:"user_id"`
	SelectedOptionID *string `json:"selected_option_id,omitempty"`
	CodeSolution     *string `json:"code_solution,omitempty"`
	Language         *string `json:"language,omitempty"`
}

func newWireSubmission(sub question.Submission) wireSubmission {
	w := wireSubmission{QuestionID: sub.QuestionID, UserID: sub.UserID}
	switch a := sub.Answer.(type) {
	case question.OptionAnswer:
		w.SelectedOptionID = &a.OptionID
	case question.CodeAnswer:
		w.CodeSolution = &a.Code
		w.Language = &a.Language
	}
	return w
}

type wireMistake struct {
	Type        string `json:"mistake_type"`
	Description string `json:"description"`
	ConceptGap  string `json:"concept_gap"`
	Suggestion  string `json:"suggestion"`
}

type wireEvaluation struct {
	IsCorrect         bool          `json:"is_correct"`
	Score             int           `json:"score"`
	XPEarned          int           `json:"xp_earned"`
	Mistakes          []wireMistake `json:"mistakes"`
	RecommendedAction *string       `json:"recommended_action"`
	DetailedFeedback  *string       `json:"detailed_feedback"`
	CorrectAnswer     *string       `json:"correct_answer"`
}

type wireLevelUp struct {
	NewLevel   int      `json:"new_level"`
	XPRequired int      `json:"xp_required"`
	Rewards    []string `json:"rewards"`
	Message    string   `json:"message"`
}

type wireProgress struct {
	TopicID    string  `json:"topic_id"`
	Difficulty string  `json:"current_difficulty"`
	Attempted  int     `json:"questions_attempted"`
	Correct    int     `json:"questions_correct"`
	Accuracy   float64 `json:"accuracy"`
	XPEarned   int     `json:"total_xp_earned"`
	Mastery    int     `json:"mastery_level"`
}

func (w wireProgress) toProgress() progress.TopicProgress {
	return progress.TopicProgress{
		TopicID:    w.TopicID,
		Difficulty: progress.Difficulty(w.Difficulty),
		Attempted:  w.Attempted,
		Correct:    w.Correct,
		Accuracy:   w.Accuracy,
		XPEarned:   w.XPEarned,
		Mastery:    w.Mastery,
	}
}

type wireSubmitResult struct {
	Evaluation wireEvaluation `json:"evaluation"`
	Progress   *wireProgress  `json:"progress"`
	LevelUp    *wireLevelUp   `json:"level_up"`
}

func (w wireSubmitResult) toOutcome() *question.Outcome {
	e := w.Evaluation
	out := &question.Outcome{Evaluation: question.Evaluation{
		Correct:           e.IsCorrect,
		Score:             e.Score,
		XPAwarded:         e.XPEarned,
		Feedback:          deref(e.DetailedFeedback),
		CorrectAnswer:     deref(e.CorrectAnswer),
		RecommendedAction: deref(e.RecommendedAction),
	}}
	for _, m := range e.Mistakes {
		out.Evaluation.Mistakes = append(out.Evaluation.Mistakes, question.Mistake{
			Type:        m.Type,
			Description: m.Description,
			ConceptGap:  m.ConceptGap,
			Suggestion:  m.Suggestion,
		})
	}
	if w.LevelUp != nil {
		out.Evaluation.LevelUp = &xp.LevelUpEvent{
			NewLevel:   w.LevelUp.NewLevel,
			XPRequired: w.LevelUp.XPRequired,
			Rewards:    w.LevelUp.Rewards,
			Message:    w.LevelUp.Message,
		}
	}
	if w.Progress != nil {
		p := w.Progress.toProgress()
		out.Progress = &p
	}
	return out
}

type wireHint struct {
	Hint           string `json:"hint"`
	HintsRemaining int    `json:"hints_remaining"`
}

type wireTopicProgress struct {
	Progress *wireProgress `json:"progress"`
}

type wireUserProgress struct {
	TopicProgress   []wireProgress `json:"topic_progress"`
	TotalQuestions  int            `json:"total_questions"`
	OverallAccuracy float64        `json:"overall_accuracy"`
}

type wireStats struct {
	TotalAttempts    int            `json:"total_attempts"`
	CorrectAttempts  int            `json:"correct_attempts"`
	Accuracy         float64        `json:"accuracy"`
	TotalXPEarned    int            `json:"total_xp_earned"`
	MistakeBreakdown map[string]int `json:"mistake_breakdown"`
}

type wireLeaderboard struct {
	Leaderboard []struct {
		ID       string  `json:"id"`
		FullName *string `json:"full_name"`
		Level    int     `json:"level"`
		XP       int     `json:"xp"`
		Streak   int     `json:"streak"`
	} `json:"leaderboard"`
}

type wireCourse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	TotalTopics    int    `json:"total_topics"`
	EstimatedHours int    `json:"estimated_hours"`
}

type wireTopics struct {
	Topics []struct {
		ID               string `json:"id"`
		CourseID         string `json:"course_id"`
		Name             string `json:"name"`
		Description      string `json:"description"`
		Order            int    `json:"order"`
		Difficulty       string `json:"difficulty"`
		EstimatedMinutes int    `json:"estimated_minutes"`
	} `json:"topics"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
