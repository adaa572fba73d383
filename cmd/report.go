package cmd

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress [topic]",
	Short: "Show mastery per topic",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.requireProfile(ctx)
		if err != nil {
			return err
		}

		if len(args) == 1 {
			topic := args[0]
			tp, err := e.progress.Refresh(ctx, topic)
			if err != nil {
				cached, ok := e.progress.Get(topic)
				if !ok {
					return err
				}
				warn("could not refresh %s, showing last known progress", topic)
				tp = cached
			}
			printProgressTable([]progress.TopicProgress{tp})
			return nil
		}

		overview, err := e.client.UserProgress(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load progress: %w", err)
		}
		for _, tp := range overview.Topics {
			e.progress.Patch(tp.TopicID, tp)
		}
		if len(overview.Topics) == 0 {
			fmt.Println("No progress yet. Start a practice session with `devquest`.")
			return nil
		}
		fmt.Printf("%d questions answered, %.0f%% overall accuracy\n\n", overview.TotalQuestions, overview.OverallAccuracy)
		printProgressTable(overview.Topics)
		return nil
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer statistics and common mistakes",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.requireProfile(ctx)
		if err != nil {
			return err
		}
		stats, err := e.client.UserStats(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("load stats: %w", err)
		}

		fmt.Printf("Attempts   %d\n", stats.TotalAttempts)
		fmt.Printf("Correct    %d\n", stats.CorrectAttempts)
		fmt.Printf("Accuracy   %.0f%%\n", stats.Accuracy)
		fmt.Printf("XP earned  %d\n", stats.TotalXPEarned)

		if len(stats.MistakeBreakdown) == 0 {
			return nil
		}
		fmt.Println()
		fmt.Println("Mistakes")
		kinds := slices.SortedFunc(maps.Keys(stats.MistakeBreakdown), func(a, b string) int {
			if d := stats.MistakeBreakdown[b] - stats.MistakeBreakdown[a]; d != 0 {
				return d
			}
			return strings.Compare(a, b)
		})
		for _, k := range kinds {
			fmt.Printf("  %-16s %d\n", k, stats.MistakeBreakdown[k])
		}
		return nil
	},
}

var leaderboardCmd = &cobra.Command{
	Use:   "leaderboard",
	Short: "Show the top learners by XP",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.requireProfile(ctx)
		if err != nil {
			return err
		}
		entries, err := e.client.Leaderboard(ctx, limit)
		if err != nil {
			return fmt.Errorf("load leaderboard: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("Nobody on the leaderboard yet.")
			return nil
		}

		fmt.Printf("%-4s  %-24s  %-5s  %-8s  %s\n", "#", "Name", "Level", "XP", "Streak")
		fmt.Println(strings.Repeat("─", 56))
		for _, en := range entries {
			marker := ""
			if en.UserID == p.ID {
				marker = "  ← you"
			}
			fmt.Printf("%-4d  %-24s  %-5d  %-8d  %d%s\n", en.Rank, truncate(en.DisplayName, 24), en.Level, en.XP, en.Streak, marker)
		}
		return nil
	},
}

func init() {
	leaderboardCmd.Flags().Int("limit", 10, "Number of entries (1-100)")
}

func printProgressTable(topics []progress.TopicProgress) {
	sorted := slices.Clone(topics)
	slices.SortStableFunc(sorted, func(a, b progress.TopicProgress) int { return b.Mastery - a.Mastery })

	fmt.Printf("%-24s  %-12s  %-7s  %-9s  %-8s  %s\n", "Topic", "Difficulty", "Mastery", "Correct", "Accuracy", "XP")
	fmt.Println(strings.Repeat("─", 80))
	for _, tp := range sorted {
		fmt.Printf("%-24s  %-12s  %6d%%  %4d/%-4d  %7.0f%%  %d\n",
			truncate(tp.TopicID, 24), tp.Difficulty, tp.Mastery, tp.Correct, tp.Attempted, tp.ComputedAccuracy(), tp.XPEarned)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
