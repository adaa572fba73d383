package store

import (
	"context"
	"encoding/json"
	"fmt"
)

func (r *eventRepo) AppendLevelUpEvent(ctx context.Context, data LevelUpEventData) error {
	rewards, err := json.Marshal(data.Rewards)
	if err != nil {
		return fmt.Errorf("marshal rewards: %w", err)
	}
	return r.appendEvent(ctx, "level_up_events",
		[]string{"session_id", "level", "rewards"},
		data.SessionID, data.Level, string(rewards),
	)
}
