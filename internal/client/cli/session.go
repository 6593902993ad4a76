package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/models"
)

func (r *runner) loginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in with username and password",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
			return c.runLogin(ctx, username)
		}),
	}
	cmd.Flags().StringVarP(&username, "username", "u", "", "username, prompted when empty")
	return cmd
}

func (r *runner) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the session and wipe local data",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
			return c.runLogout(ctx)
		}),
	}
}

func (r *runner) statusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the session and last synchronization times",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
			return c.runStatus(ctx)
		}),
	}
}

func (c *Cli) runLogin(ctx context.Context, username string) error {
	c.io.Println("=== Login ===")

	if username == "" {
		var err error
		username, err = c.io.ReadInput("Username: ")
		if err != nil {
			return fmt.Errorf("failed to read username: %w", err)
		}
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := c.authService.Login(ctx, username, password); err != nil {
		return err
	}

	c.io.Printf("Logged in as %s\n", username)
	c.io.Println("Run 'finsync sync' to download your data.")
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("Logged out. Local data removed.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Session Status ===")

	st, err := c.authService.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to read session: %w", err)
	}

	if !st.LoggedIn {
		c.io.Println("Status: Not authenticated")
		c.io.Println("Run 'finsync login' to authenticate.")
		return nil
	}

	c.io.Println("Status: Authenticated")
	c.io.Printf("Username: %s\n", st.Username)
	c.io.Printf("Access token expires: %s\n", st.AccessTokenExpiry.Format(time.RFC3339))
	if !st.AccessTokenValid {
		c.io.Println("Access token expired, it is refreshed on the next request.")
	}
	c.io.Printf("Refresher: %s\n", st.RefresherState)

	times, err := c.syncService.LastSyncTimes(ctx)
	if err != nil {
		return fmt.Errorf("failed to read sync times: %w", err)
	}

	c.io.Println()
	c.io.Println("Last synchronization:")
	for _, rt := range models.ResourceTypes {
		at, ok := times[rt]
		if !ok || at.IsZero() {
			c.io.Printf("  %-13s never\n", rt)
			continue
		}
		c.io.Printf("  %-13s %s\n", rt, at.Format(time.RFC3339))
	}
	return nil
}
