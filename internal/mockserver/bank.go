package mockserver

import "github.com/abhisek/devquest/internal/progress"

type course struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Icon           string `json:"icon"`
	Color          string `json:"color"`
	TotalTopics    int    `json:"total_topics"`
	EstimatedHours int    `json:"estimated_hours"`
}

type topic struct {
	ID               string              `json:"id"`
	CourseID         string              `json:"course_id"`
	Name             string              `json:"name"`
	Description      string              `json:"description"`
	Order            int                 `json:"order"`
	Difficulty       progress.Difficulty `json:"difficulty"`
	EstimatedMinutes int                 `json:"estimated_minutes"`
}

type choice struct {
	ID      string
	Text    string
	Correct bool
}

// template is a bank entry. Each adaptive request issues a fresh copy of a
// template under a new question id.
type template struct {
	Topic       string
	Kind        string
	Difficulty  progress.Difficulty
	Text        string
	Choices     []choice
	CodeSnippet string
	StarterCode string
	Language    string

	// Expect lists substrings a coding answer must contain.
	Expect []string

	Hints       []string
	XPReward    int
	Explanation string
	Concept     string
}

func (t *template) correctChoice() choice {
	for _, c := range t.Choices {
		if c.Correct {
			return c
		}
	}
	return choice{}
}

var defaultCourses = []course{
	{
		ID:             "go",
		Name:           "Go Programming",
		Description:    "From syntax to goroutines.",
		Icon:           "gopher",
		Color:          "#00ADD8",
		TotalTopics:    3,
		EstimatedHours: 12,
	},
}

var defaultTopics = []topic{
	{ID: "go-basics", CourseID: "go", Name: "Basics", Description: "Types, slices and maps.", Order: 1, Difficulty: progress.DifficultyBeginner, EstimatedMinutes: 60},
	{ID: "go-errors", CourseID: "go", Name: "Error Handling", Description: "Errors as values, wrapping and inspection.", Order: 2, Difficulty: progress.DifficultyIntermediate, EstimatedMinutes: 45},
	{ID: "go-concurrency", CourseID: "go", Name: "Concurrency", Description: "Goroutines, channels and sync.", Order: 3, Difficulty: progress.DifficultyAdvanced, EstimatedMinutes: 90},
}

var defaultBank = []template{
	{
		Topic:      "go-basics",
		Kind:       "mcq",
		Difficulty: progress.DifficultyBeginner,
		Text:       "What is the length of a nil slice?",
		Choices: []choice{
			{ID: "a", Text: "0", Correct: true},
			{ID: "b", Text: "It panics"},
			{ID: "c", Text: "-1"},
			{ID: "d", Text: "nil"},
		},
		Hints:       []string{"Think about zero values.", "len works on nil slices without panicking."},
		XPReward:    50,
		Explanation: "A nil slice has length and capacity 0.",
		Concept:     "zero values",
	},
	{
		Topic:       "go-basics",
		Kind:        "snippet",
		Difficulty:  progress.DifficultyBeginner,
		Text:        "What does this program print?",
		CodeSnippet: "m := map[string]int{}\nm[\"a\"]++\nfmt.Println(m[\"a\"], len(m))",
		Language:    "go",
		Choices: []choice{
			{ID: "a", Text: "0 0"},
			{ID: "b", Text: "1 1", Correct: true},
			{ID: "c", Text: "It panics"},
		},
		Hints:       []string{"Reading a missing key yields the zero value.", "The increment stores the key."},
		XPReward:    60,
		Explanation: "m[\"a\"]++ reads 0, adds one and stores the key.",
		Concept:     "map zero values",
	},
	{
		Topic:       "go-basics",
		Kind:        "coding",
		Difficulty:  progress.DifficultyIntermediate,
		Text:        "Write Sum(xs []int) int that returns the sum of xs.",
		StarterCode: "func Sum(xs []int) int {\n\t\n}\n",
		Language:    "go",
		Expect:      []string{"func Sum", "range", "return"},
		Hints:       []string{"Use a for-range loop.", "Accumulate into a local variable.", "Return the accumulator."},
		XPReward:    150,
		Explanation: "Loop over xs with range and add each element to a total.",
		Concept:     "range loops",
	},
	{
		Topic:      "go-basics",
		Kind:       "mcq",
		Difficulty: progress.DifficultyAdvanced,
		Text:       "Appending to a slice whose length equals its capacity...",
		Choices: []choice{
			{ID: "a", Text: "always panics"},
			{ID: "b", Text: "allocates a new backing array", Correct: true},
			{ID: "c", Text: "overwrites the first element"},
		},
		Hints:       []string{"Capacity is the size of the backing array."},
		XPReward:    80,
		Explanation: "append grows the backing array when capacity is exhausted.",
		Concept:     "slice growth",
	},
	{
		Topic:      "go-errors",
		Kind:       "mcq",
		Difficulty: progress.DifficultyBeginner,
		Text:       "Which verb wraps an error with fmt.Errorf?",
		Choices: []choice{
			{ID: "a", Text: "%v"},
			{ID: "b", Text: "%w", Correct: true},
			{ID: "c", Text: "%e"},
		},
		Hints:       []string{"The verb name hints at wrapping."},
		XPReward:    50,
		Explanation: "%w records the operand so errors.Unwrap can return it.",
		Concept:     "error wrapping",
	},
	{
		Topic:       "go-errors",
		Kind:        "coding",
		Difficulty:  progress.DifficultyIntermediate,
		Text:        "Write IsNotExist(err error) bool using errors.Is and fs.ErrNotExist.",
		StarterCode: "func IsNotExist(err error) bool {\n\t\n}\n",
		Language:    "go",
		Expect:      []string{"errors.Is", "fs.ErrNotExist"},
		Hints:       []string{"errors.Is walks the wrap chain.", "Compare against fs.ErrNotExist."},
		XPReward:    120,
		Explanation: "return errors.Is(err, fs.ErrNotExist)",
		Concept:     "error inspection",
	},
	{
		Topic:       "go-concurrency",
		Kind:        "snippet",
		Difficulty:  progress.DifficultyBeginner,
		Text:        "What happens when this runs?",
		CodeSnippet: "ch := make(chan int)\nch <- 1\nfmt.Println(<-ch)",
		Language:    "go",
		Choices: []choice{
			{ID: "a", Text: "Prints 1"},
			{ID: "b", Text: "Deadlock", Correct: true},
			{ID: "c", Text: "Prints 0"},
		},
		Hints:       []string{"The channel is unbuffered.", "A send blocks until someone receives."},
		XPReward:    60,
		Explanation: "The send blocks forever because nothing receives concurrently.",
		Concept:     "unbuffered channels",
	},
	{
		Topic:      "go-concurrency",
		Kind:       "mcq",
		Difficulty: progress.DifficultyIntermediate,
		Text:       "Which type waits for a collection of goroutines to finish?",
		Choices: []choice{
			{ID: "a", Text: "sync.Mutex"},
			{ID: "b", Text: "sync.WaitGroup", Correct: true},
			{ID: "c", Text: "sync.Once"},
		},
		Hints:       []string{"It has Add, Done and Wait methods."},
		XPReward:    70,
		Explanation: "sync.WaitGroup counts outstanding goroutines.",
		Concept:     "synchronization",
	},
	{
		Topic:       "go-concurrency",
		Kind:        "coding",
		Difficulty:  progress.DifficultyAdvanced,
		Text:        "Write Merge(a, b <-chan int) <-chan int that forwards both inputs until they are closed.",
		StarterCode: "func Merge(a, b <-chan int) <-chan int {\n\t\n}\n",
		Language:    "go",
		Expect:      []string{"make(chan int", "go func", "close("},
		Hints:       []string{"Start a goroutine per input.", "Close the output once both inputs are drained."},
		XPReward:    200,
		Explanation: "Fan in with one goroutine per input and a WaitGroup that closes the output.",
		Concept:     "fan-in",
	},
}
