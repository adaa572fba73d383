package xp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdFor(t *testing.T) {
	tests := []struct {
		level int
		want  int
	}{
		{0, 100},
		{1, 400},
		{2, 900},
		{5, 3600},
		{12, 16900},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ThresholdFor(tt.level), "level %d", tt.level)
	}
	for level := 1; level <= 200; level++ {
		require.Equal(t, (level+1)*(level+1)*100, ThresholdFor(level))
	}
}

func TestLevelFor(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{-10, 1},
		{0, 1},
		{399, 1},
		{400, 2},
		{450, 2},
		{899, 2},
		{900, 3},
		{16899, 12},
		{16900, 13},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelFor(tt.xp), "xp %d", tt.xp)
	}
}

func TestApplyAwardScenarioA(t *testing.T) {
	got, ev, err := ApplyAward(Progression{XP: 0, Level: 1}, 450)
	require.NoError(t, err)
	assert.Equal(t, 450, got.XP)
	assert.Equal(t, 2, got.Level)
	require.NotNil(t, ev)
	assert.Equal(t, 2, ev.NewLevel)
	assert.Equal(t, ThresholdFor(2), ev.XPRequired)
}

func TestApplyAwardNoLevelUp(t *testing.T) {
	got, ev, err := ApplyAward(Progression{XP: 100, Level: 1}, 50)
	require.NoError(t, err)
	assert.Equal(t, Progression{XP: 150, Level: 1}, got)
	assert.Nil(t, ev)
}

func TestApplyAwardMultipleThresholdsEmitsOneEvent(t *testing.T) {
	got, ev, err := ApplyAward(Progression{XP: 0, Level: 1}, 2600)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Level)
	require.NotNil(t, ev)
	assert.Equal(t, 5, ev.NewLevel)
	assert.Contains(t, ev.Rewards, "Milestone Badge: Level 5")
}

func TestApplyAwardNegativeRejected(t *testing.T) {
	p := Progression{XP: 500, Level: 2}
	got, ev, err := ApplyAward(p, -1)
	require.ErrorIs(t, err, ErrInvalidAward)
	assert.Equal(t, p, got)
	assert.Nil(t, ev)
}

func TestApplyAwardZeroLevelUsesDerived(t *testing.T) {
	// An unset level is derived from XP rather than treated as a level-up.
	got, ev, err := ApplyAward(Progression{XP: 450}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, got.Level)
	assert.Nil(t, ev)
}

func TestApplyAwardMonotonic(t *testing.T) {
	p := Progression{XP: 0, Level: 1}
	for _, d := range []int{0, 10, 390, 1, 0, 5000, 7, 123456} {
		next, _, err := ApplyAward(p, d)
		require.NoError(t, err)
		assert.Equal(t, p.XP+d, next.XP)
		assert.GreaterOrEqual(t, next.Level, p.Level)
		assert.Equal(t, LevelFor(next.XP), next.Level)
		p = next
	}
}

func TestRewardsFor(t *testing.T) {
	assert.Empty(t, RewardsFor(3))
	assert.Equal(t, []string{"Milestone Badge: Level 5"}, RewardsFor(5))
	assert.Equal(t, []string{"Milestone Badge: Level 10", "Unlocked: Advanced Topics"}, RewardsFor(10))
	assert.Equal(t, []string{"Milestone Badge: Level 20", "Unlocked: Expert Challenges"}, RewardsFor(20))
}

func TestProgressToNext(t *testing.T) {
	assert.InDelta(t, 0.0, ProgressToNext(0, 1), 1e-9)
	assert.InDelta(t, 0.5, ProgressToNext(200, 1), 1e-9)
	assert.InDelta(t, 1.0, ProgressToNext(99999, 1), 1e-9)
}
