package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/abhisek/devquest/internal/question"
)

// GenerateAdaptiveQuestion asks the service for the next question for
// userID in topicID, at the difficulty it picks from the user's progress.
func (c *Client) GenerateAdaptiveQuestion(ctx context.Context, userID, topicID string) (*question.Question, error) {
	var w wireQuestion
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/questions/adaptive",
		query:  url.Values{"user_id": {userID}, "topic_id": {topicID}},
		schema: "question",
		out:    &w,
	})
	if err != nil {
		return nil, err
	}

	q := w.toQuestion(topicID)
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("POST /questions/adaptive: %w", &ErrInvalidResponse{Err: err})
	}
	return q, nil
}

// SubmitAnswer sends sub for grading. It is never retried: the service does
// not deduplicate submissions.
func (c *Client) SubmitAnswer(ctx context.Context, sub question.Submission) (*question.Outcome, error) {
	var w wireSubmitResult
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/evaluation/submit",
		body:   newWireSubmission(sub),
		schema: "submit",
		out:    &w,
	})
	if err != nil {
		return nil, err
	}
	return w.toOutcome(), nil
}

// GetHint returns hint index (zero-based) of a question.
func (c *Client) GetHint(ctx context.Context, questionID string, index int) (string, error) {
	var w wireHint
	err := c.do(ctx, request{
		method: http.MethodPost,
		path:   "/evaluation/hint/" + url.PathEscape(questionID),
		query:  url.Values{"hint_index": {strconv.Itoa(index)}},
		schema: "hint",
		out:    &w,
	})
	if err != nil {
		return "", err
	}
	return w.Hint, nil
}
