package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/config"
	"github.com/abhisek/devquest/internal/logging"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/progress"
	"github.com/abhisek/devquest/internal/store"
)

// env is everything a command needs to talk to the service and the local
// database.
type env struct {
	cfg      config.Config
	logger   *slog.Logger
	store    *store.Store
	client   *api.Client
	profile  *profile.Store
	progress *progress.Cache

	closers []io.Closer
}

// openEnv loads configuration, opens the log and database, and wires the
// client, profile store and progress cache together.
func openEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	logger, logCloser, err := logging.Open(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	e := &env{cfg: cfg, logger: logger, closers: []io.Closer{logCloser}}

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}
	e.store = st
	e.closers = append(e.closers, st)

	client, err := api.New(cfg.Client(), st.Credentials(), api.WithLogger(logger))
	if err != nil {
		e.Close()
		return nil, fmt.Errorf("create client: %w", err)
	}
	e.client = client

	e.profile = profile.NewStore(client, st.Credentials(), profile.WithLogger(logger))
	client.OnUnauthorized(e.profile.HandleUnauthorized)

	e.progress = progress.NewCache(
		func(ctx context.Context, topicID string) (progress.TopicProgress, error) {
			return client.TopicProgress(ctx, e.profile.UserID(), topicID)
		},
		progress.WithPersister(st.ProgressRepo()),
		progress.WithLogger(logger),
	)
	if saved, err := st.ProgressRepo().LoadAll(cmd.Context()); err != nil {
		logger.Warn("load cached progress", "error", err)
	} else {
		e.progress.Seed(saved)
	}

	return e, nil
}

// Close releases the database and log file in reverse order of opening.
func (e *env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i].Close()
	}
}

// requestContext bounds one CLI round trip.
func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 45*time.Second)
}

// requireProfile loads the signed-in profile or explains how to sign in.
func (e *env) requireProfile(ctx context.Context) (profile.UserProfile, error) {
	p, err := e.profile.Load(ctx)
	if err == nil {
		e.saveSnapshot(ctx, p)
		return p, nil
	}
	if api.IsUnauthorized(err) {
		return p, errors.New("not signed in; run `devquest login` first")
	}
	return p, err
}

// saveSnapshot records p for offline display. Failures are only logged.
func (e *env) saveSnapshot(ctx context.Context, p profile.UserProfile) {
	repo := e.store.SnapshotRepo()
	err := repo.Save(ctx, &store.Snapshot{
		Timestamp: time.Now(),
		Data: store.SnapshotData{
			Version:     store.SnapshotVersion,
			UserID:      p.ID,
			Email:       p.Email,
			DisplayName: p.DisplayName,
			XP:          p.XP,
			Level:       p.Level,
			Streak:      p.Streak,
		},
	})
	if err == nil {
		err = repo.Prune(ctx, store.SnapshotKeep)
	}
	if err != nil {
		e.logger.Warn("save profile snapshot", "error", err)
	}
}

// warn prints a user-facing warning on stderr.
func warn(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
