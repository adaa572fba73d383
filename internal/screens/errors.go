package screens

import (
	"context"
	"errors"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/auth"
)

// Describe turns a service error into a line a learner can act on.
func Describe(err error) string {
	var status *api.StatusError
	var invalid *api.ErrInvalidResponse
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrUnauthorized):
		if errors.As(err, &status) && status.Detail != "" {
			return status.Detail
		}
		return "Your session has expired. Please sign in again."
	case errors.Is(err, context.DeadlineExceeded):
		return "The service took too long to answer. Try again."
	case api.IsTransport(err):
		return "Can't reach the learning service. Check your connection and try again."
	case errors.Is(err, api.ErrNotFound):
		return "That item no longer exists."
	case errors.As(err, &invalid):
		return "The service sent something unexpected. Try again."
	case errors.As(err, &status) && status.Detail != "":
		return status.Detail
	}
	return err.Error()
}
