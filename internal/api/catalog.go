package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/abhisek/devquest/internal/progress"
)

// Courses lists the course catalog.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var w []wireCourse
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/courses",
		schema: "courses",
		out:    &w,
		public: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Course, 0, len(w))
	for _, wc := range w {
		out = append(out, Course{
			ID:             wc.ID,
			Name:           wc.Name,
			Description:    wc.Description,
			TotalTopics:    wc.TotalTopics,
			EstimatedHours: wc.EstimatedHours,
		})
	}
	return out, nil
}

// Topics lists the topics of a course in order.
func (c *Client) Topics(ctx context.Context, courseID string) ([]Topic, error) {
	var w wireTopics
	err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/topics/course/" + url.PathEscape(courseID),
		schema: "topics",
		out:    &w,
		public: true,
	})
	if err != nil {
		return nil, err
	}

	out := make([]Topic, 0, len(w.Topics))
	for _, wt := range w.Topics {
		out = append(out, Topic{
			ID:               wt.ID,
			CourseID:         wt.CourseID,
			Name:             wt.Name,
			Description:      wt.Description,
			Order:            wt.Order,
			Difficulty:       progress.Difficulty(wt.Difficulty),
			EstimatedMinutes: wt.EstimatedMinutes,
		})
	}
	return out, nil
}
