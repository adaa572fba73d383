package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/app"
	"github.com/abhisek/devquest/internal/screens"
)

// runApp opens the store, builds dependencies, and launches the TUI.
func runApp(cmd *cobra.Command) error {
	e, err := openEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx, cancel := requestContext(cmd)
	_, err = e.profile.Load(ctx)
	cancel()
	switch {
	case err == nil, api.IsUnauthorized(err):
	case api.IsTransport(err):
		fmt.Fprintln(os.Stderr, "Learning service unreachable at", e.cfg.API.BaseURL)
		fmt.Fprintln(os.Stderr, "You can sign in once it is back.")
	default:
		e.logger.Warn("initial profile load", "error", err)
	}

	skip, _ := cmd.Flags().GetBool("no-splash")
	return app.Run(app.Deps{
		Deps: screens.Deps{
			Service:  e.client,
			Profile:  e.profile,
			Progress: e.progress,
			Events:   e.store.EventRepo(),
			Logger:   e.logger,
		},
		Snapshots:  e.store.SnapshotRepo(),
		SkipSplash: skip,
	})
}
