package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/store"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent practice sessions from the local log",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		topic, _ := cmd.Flags().GetString("topic")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		sessions, err := e.store.EventRepo().QuerySessions(ctx, store.QueryOpts{Limit: limit, TopicID: topic})
		if err != nil {
			return fmt.Errorf("query sessions: %w", err)
		}
		if len(sessions) == 0 {
			fmt.Println("No practice sessions recorded yet.")
			return nil
		}

		fmt.Printf("%-16s  %-24s  %-9s  %-6s  %s\n", "Finished", "Topic", "Correct", "XP", "Time")
		fmt.Println(strings.Repeat("─", 72))
		for _, s := range sessions {
			fmt.Printf("%-16s  %-24s  %3d/%-5d  %-6s  %d:%02d\n",
				s.Timestamp.Local().Format("2006-01-02 15:04"),
				truncate(s.TopicID, 24),
				s.CorrectAnswers, s.QuestionsAnswered,
				fmt.Sprintf("+%d", s.XPEarned),
				s.DurationSecs/60, s.DurationSecs%60,
			)
		}

		totals, err := e.store.EventRepo().TopicAccuracy(ctx)
		if err != nil {
			return fmt.Errorf("aggregate answers: %w", err)
		}
		if len(totals) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Println("All answers by topic")
		for _, t := range totals {
			if topic != "" && t.TopicID != topic {
				continue
			}
			fmt.Printf("  %-24s  %d/%d correct  +%d XP\n", truncate(t.TopicID, 24), t.Correct, t.Attempted, t.XPEarned)
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().Int("limit", 20, "Maximum number of sessions to show")
	historyCmd.Flags().String("topic", "", "Only show sessions for this topic")
}
