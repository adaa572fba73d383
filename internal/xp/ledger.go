package xp

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidAward is returned when an award would decrease XP.
var ErrInvalidAward = errors.New("invalid xp award")

// Progression is the XP-derived part of a learner profile.
type Progression struct {
	XP    int
	Level int
}

// LevelUpEvent is produced once when an award crosses one or more level
// thresholds. It carries only the highest level reached.
type LevelUpEvent struct {
	NewLevel   int
	XPRequired int // XP needed to reach the level after NewLevel
	Rewards    []string
	Message    string
}

// ThresholdFor returns the cumulative XP required to reach level+1.
func ThresholdFor(level int) int {
	return (level + 1) * (level + 1) * 100
}

// LevelFor returns the level for a cumulative XP total. Level L (L >= 2) is
// reached once xp >= ThresholdFor(L-1); level 1 is the floor.
func LevelFor(xp int) int {
	level := 1
	for xp >= ThresholdFor(level) {
		level++
	}
	return level
}

// ApplyAward adds delta to p and recomputes the level from the new total.
// A negative delta is rejected and p is returned unchanged.
func ApplyAward(p Progression, delta int) (Progression, *LevelUpEvent, error) {
	if delta < 0 {
		return p, nil, fmt.Errorf("%w: delta %d is negative", ErrInvalidAward, delta)
	}
	if p.XP > math.MaxInt-delta {
		return p, nil, fmt.Errorf("%w: delta %d overflows total %d", ErrInvalidAward, delta, p.XP)
	}

	from := p.Level
	if from < 1 {
		from = LevelFor(p.XP)
	}

	next := Progression{XP: p.XP + delta}
	next.Level = max(from, LevelFor(next.XP))

	if next.Level > from {
		return next, NewLevelUpEvent(next.Level), nil
	}
	return next, nil, nil
}

// NewLevelUpEvent builds the notification payload for reaching level.
func NewLevelUpEvent(level int) *LevelUpEvent {
	return &LevelUpEvent{
		NewLevel:   level,
		XPRequired: ThresholdFor(level),
		Rewards:    RewardsFor(level),
		Message:    fmt.Sprintf("Congratulations! You've reached Level %d!", level),
	}
}

// RewardsFor lists the milestone rewards unlocked at level.
func RewardsFor(level int) []string {
	var rewards []string
	if level%5 == 0 {
		rewards = append(rewards, fmt.Sprintf("Milestone Badge: Level %d", level))
	}
	switch level {
	case 10:
		rewards = append(rewards, "Unlocked: Advanced Topics")
	case 20:
		rewards = append(rewards, "Unlocked: Expert Challenges")
	}
	return rewards
}

// ProgressToNext returns how far xp is toward ThresholdFor(level), in [0, 1].
func ProgressToNext(xp, level int) float64 {
	target := ThresholdFor(level)
	if target <= 0 {
		return 0
	}
	f := float64(xp) / float64(target)
	return min(max(f, 0), 1)
}
