package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/devquest/internal/api"
	"github.com/abhisek/devquest/internal/profile"
	"github.com/abhisek/devquest/internal/xp"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		email, password, err := credentialsFrom(cmd, os.Stdin)
		if err != nil {
			return err
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.profile.Authenticate(ctx, email, password)
		if err != nil {
			return fmt.Errorf("sign in: %w", err)
		}
		e.saveSnapshot(ctx, p)
		fmt.Printf("Signed in as %s (level %d, %d XP)\n", p.DisplayName, p.Level, p.XP)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and sign in",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		email, password, err := credentialsFrom(cmd, os.Stdin)
		if err != nil {
			return err
		}
		name, _ := cmd.Flags().GetString("name")
		if strings.TrimSpace(name) == "" {
			return errors.New("--name is required")
		}
		if len(password) < 8 {
			return errors.New("password must be at least 8 characters")
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.profile.Register(ctx, email, password, name)
		if err != nil {
			return fmt.Errorf("register: %w", err)
		}
		e.saveSnapshot(ctx, p)
		fmt.Printf("Welcome, %s! You start at level %d.\n", p.DisplayName, p.Level)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.profile.Clear(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in learner",
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx, cancel := requestContext(cmd)
		defer cancel()
		p, err := e.requireProfile(ctx)
		if err == nil {
			printProfile(p)
			return nil
		}
		if !api.IsTransport(err) && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		snap, snapErr := e.store.SnapshotRepo().Latest(cmd.Context())
		if snapErr != nil || snap == nil {
			return err
		}
		warn("service unreachable, showing profile as of %s", snap.Timestamp.Local().Format(time.DateTime))
		printProfile(profile.UserProfile{
			ID:          snap.Data.UserID,
			Email:       snap.Data.Email,
			DisplayName: snap.Data.DisplayName,
			XP:          snap.Data.XP,
			Level:       snap.Data.Level,
			Streak:      snap.Data.Streak,
		})
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "Account email")
		c.Flags().String("password", "", "Account password (read from stdin when omitted)")
	}
	registerCmd.Flags().String("name", "", "Display name")
}

// credentialsFrom reads --email and --password, prompting on in for a
// missing password.
func credentialsFrom(cmd *cobra.Command, in io.Reader) (email, password string, err error) {
	email, _ = cmd.Flags().GetString("email")
	password, _ = cmd.Flags().GetString("password")
	email = strings.TrimSpace(email)
	if !strings.Contains(email, "@") {
		return "", "", errors.New("--email must be a valid address")
	}
	if password == "" {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		line, readErr := bufio.NewReader(in).ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return "", "", fmt.Errorf("read password: %w", readErr)
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return "", "", errors.New("password is required")
	}
	return email, password, nil
}

func printProfile(p profile.UserProfile) {
	fmt.Printf("%s <%s>\n", p.DisplayName, p.Email)
	fmt.Printf("  Level   %d (%.0f%% to level %d at %d XP)\n",
		p.Level, xp.ProgressToNext(p.XP, p.Level)*100, p.Level+1, xp.ThresholdFor(p.Level))
	fmt.Printf("  XP      %d\n", p.XP)
	fmt.Printf("  Streak  %d day(s)\n", p.Streak)
}
