package mockserver

import (
	"slices"
	"strings"
	"time"

	"github.com/abhisek/devquest/internal/progress"
)

// Recommended actions attached to an evaluation.
const (
	actionRevision            = "revision"
	actionDetailedExplanation = "detailed_explanation"
	actionMorePractice        = "more_practice"
	actionNextDifficulty      = "next_difficulty"
)

// minAttemptsForChange is how many attempts a topic needs before its
// difficulty may move.
const minAttemptsForChange = 5

// adjustDifficulty moves a topic's difficulty one step based on accuracy
// (percent) and the recommended action.
func adjustDifficulty(current progress.Difficulty, accuracy float64, attempted int, action string) progress.Difficulty {
	if attempted < minAttemptsForChange {
		return current
	}
	if action == actionNextDifficulty && accuracy >= 75 {
		return stepDifficulty(current, 1)
	}
	if action == actionRevision {
		return stepDifficulty(current, -1)
	}
	switch {
	case accuracy >= 80 && attempted >= 10:
		return stepDifficulty(current, 1)
	case accuracy < 50:
		return stepDifficulty(current, -1)
	}
	return current
}

func stepDifficulty(d progress.Difficulty, delta int) progress.Difficulty {
	ladder := progress.AllDifficulties()
	idx := slices.Index(ladder, d)
	if idx < 0 {
		return progress.DifficultyBeginner
	}
	idx = min(max(idx+delta, 0), len(ladder)-1)
	return ladder[idx]
}

// mastery scores a topic from 0 to 100: 40 points for accuracy, 30 for
// volume (capped at 50 attempts) and up to 30 for difficulty.
func mastery(accuracy float64, attempted int, d progress.Difficulty) int {
	accuracyScore := accuracy / 100 * 40
	volumeScore := min(float64(attempted)/50, 1) * 30

	var difficultyScore float64
	switch d {
	case progress.DifficultyIntermediate:
		difficultyScore = 20
	case progress.DifficultyAdvanced:
		difficultyScore = 25
	case progress.DifficultyExpert:
		difficultyScore = 30
	default:
		difficultyScore = 10
	}

	return min(int(accuracyScore+volumeScore+difficultyScore), 100)
}

// nextStreak returns the streak after practising on day now, given the
// previous practice day (zero if never).
func nextStreak(streak int, last, now time.Time) int {
	if last.IsZero() {
		return 1
	}
	lastDay := truncateDay(last)
	today := truncateDay(now)
	switch days := int(today.Sub(lastDay).Hours() / 24); days {
	case 0:
		return max(streak, 1)
	case 1:
		return streak + 1
	default:
		return 1
	}
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// grade is the service-side evaluation of one answer.
type grade struct {
	Correct bool
	Score   int
	XP      int
}

// gradeChoice grades an mcq or snippet answer. Wrong answers still earn a
// small participation award.
func gradeChoice(t *template, selected string) grade {
	if selected == t.correctChoice().ID {
		return grade{Correct: true, Score: 100, XP: t.XPReward}
	}
	return grade{XP: 10}
}

// gradeCode scores a coding answer by the fraction of expected fragments it
// contains. Partial solutions earn 1.5 XP per score point.
func gradeCode(t *template, code string) grade {
	if len(t.Expect) == 0 {
		return grade{Correct: true, Score: 100, XP: t.XPReward}
	}
	passed := 0
	for _, want := range t.Expect {
		if strings.Contains(code, want) {
			passed++
		}
	}
	score := passed * 100 / len(t.Expect)
	if passed == len(t.Expect) {
		return grade{Correct: true, Score: 100, XP: t.XPReward}
	}
	return grade{Score: score, XP: int(float64(score) * 1.5)}
}

// recommend picks the follow-up action from the outcome and the topic
// accuracy including this attempt.
func recommend(correct bool, accuracy float64) string {
	switch {
	case correct && accuracy >= 75:
		return actionNextDifficulty
	case !correct && accuracy < 50:
		return actionRevision
	case !correct:
		return actionDetailedExplanation
	default:
		return actionMorePractice
	}
}
