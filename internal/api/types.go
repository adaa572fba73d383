package api

import (
	"github.com/abhisek/devquest/internal/progress"
)

// ProgressOverview is the user's progress across all topics.
type ProgressOverview struct {
	Topics          []progress.TopicProgress
	TotalQuestions  int
	OverallAccuracy float64
}

// UserStats summarizes all graded attempts of a user.
type UserStats struct {
	TotalAttempts    int
	CorrectAttempts  int
	Accuracy         float64 // percent
	TotalXPEarned    int
	MistakeBreakdown map[string]int
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	Rank        int
	UserID      string
	DisplayName string
	Level       int
	XP          int
	Streak      int
}

// Course is a catalog entry.
type Course struct {
	ID             string
	Name           string
	Description    string
	TotalTopics    int
	EstimatedHours int
}

// Topic belongs to a course and is the unit questions are generated for.
type Topic struct {
	ID               string
	CourseID         string
	Name             string
	Description      string
	Order            int
	Difficulty       progress.Difficulty
	EstimatedMinutes int
}
