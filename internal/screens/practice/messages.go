package practice

import (
	"github.com/abhisek/devquest/internal/session"
)

// questionLoadedMsg is sent when Start, Retry or Advance returns.
type questionLoadedMsg struct {
	Err error
}

// hintMsg is sent when a hint request returns.
type hintMsg struct {
	Err error
}

// submittedMsg is sent when grading returns.
type submittedMsg struct {
	Feedback *session.Feedback
	Err      error
}
