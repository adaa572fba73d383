package progress

// Difficulty is the adaptive difficulty label the service assigns per topic.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// AllDifficulties returns the difficulty ladder from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}
}

// Valid reports whether d is one of the known labels.
func (d Difficulty) Valid() bool {
	for _, known := range AllDifficulties() {
		if d == known {
			return true
		}
	}
	return false
}

// TopicProgress is a per-topic performance snapshot.
type TopicProgress struct {
	TopicID    string
	Difficulty Difficulty
	Attempted  int
	Correct    int
	Accuracy   float64 // percent, 0-100
	XPEarned   int
	Mastery    int // 0-100
}

// ComputedAccuracy derives accuracy (percent) from the attempt counts.
func (p TopicProgress) ComputedAccuracy() float64 {
	if p.Attempted == 0 {
		return 0
	}
	return float64(p.Correct) / float64(p.Attempted) * 100
}
