package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/client/sync"
	"github.com/iudanet/finsync/internal/models"
)

// syncOptions are the flags of the sync command
type syncOptions struct {
	since     string
	accountID int64
	full      bool
	relink    bool
}

func (r *runner) syncCommand() *cobra.Command {
	var opts syncOptions

	cmd := &cobra.Command{
		Use:   "sync [resource]",
		Short: "Synchronize every resource type, or one of them",
		Long: `Synchronize the local mirror with the API.

Without arguments every type is synchronized, accounts first.
Transactions are fetched incrementally unless --full is given;
--account and --since apply to transactions only.
--relink rebuilds the links between stored records without calling the API.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: resourceNames(),
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			resource := ""
			if len(args) == 1 {
				resource = args[0]
			}
			return c.runSync(ctx, resource, opts)
		}),
	}

	flags := cmd.Flags()
	flags.Int64Var(&opts.accountID, "account", 0, "only transactions of this account")
	flags.StringVar(&opts.since, "since", "", "only transactions changed after this RFC 3339 time")
	flags.BoolVar(&opts.full, "full", false, "fetch every transaction instead of the changes since the last sync")
	flags.BoolVar(&opts.relink, "relink", false, "re-resolve links of the stored records only")
	return cmd
}

func resourceNames() []string {
	names := make([]string, 0, len(models.ResourceTypes))
	for _, rt := range models.ResourceTypes {
		names = append(names, rt.String())
	}
	return names
}

func (c *Cli) runSync(ctx context.Context, resource string, opts syncOptions) error {
	if opts.relink {
		if resource != "" || opts.accountID != 0 || opts.since != "" || opts.full {
			return errors.New("--relink takes no resource or other flags")
		}
		return c.runRelink(ctx)
	}

	if resource == "" {
		if opts.accountID != 0 || opts.since != "" {
			return errors.New("--account and --since require the transactions resource")
		}
		return c.runSyncAll(ctx)
	}

	rt, ok := models.ParseResourceType(resource)
	if !ok {
		return fmt.Errorf("unknown resource %q", resource)
	}

	var (
		summary *reconcile.Summary
		err     error
	)
	if rt == models.ResourceTransactions {
		q := sync.TransactionQuery{AccountID: opts.accountID, Incremental: !opts.full}
		if opts.since != "" {
			q.Since, err = time.Parse(time.RFC3339, opts.since)
			if err != nil {
				return fmt.Errorf("invalid --since: %w", err)
			}
		}
		summary, err = c.syncService.SyncTransactions(ctx, q)
	} else {
		if opts.accountID != 0 || opts.since != "" {
			return errors.New("--account and --since require the transactions resource")
		}
		summary, err = c.syncService.SyncResource(ctx, rt)
	}
	if err != nil {
		return fmt.Errorf("sync %s: %w", rt, err)
	}

	c.printSummary(summary)
	return nil
}

func (c *Cli) runSyncAll(ctx context.Context) error {
	c.io.Println("=== Synchronization ===")

	result, err := c.syncService.SyncAll(ctx)
	if result != nil {
		for _, rt := range models.ResourceTypes {
			if s, ok := result.Summaries[rt]; ok {
				c.printSummary(s)
			}
		}
		if skipped := result.Skipped(); skipped > 0 {
			c.io.Printf("Skipped %d malformed record(s)\n", skipped)
		}
	}
	if err != nil {
		return fmt.Errorf("synchronization incomplete: %w", err)
	}

	c.io.Println("Synchronization completed.")
	return nil
}

func (c *Cli) runRelink(ctx context.Context) error {
	result, err := c.syncService.Relink(ctx)
	if err != nil {
		return err
	}

	for _, rt := range models.ResourceTypes {
		if s, ok := result.Summaries[rt]; ok {
			c.io.Printf("%-13s checked %d, relinked %d, unlinked %d\n", s.Type, s.Received, s.Relinked, s.Unlinked)
		}
	}
	c.io.Println("Relink completed.")
	return nil
}

func (c *Cli) printSummary(s *reconcile.Summary) {
	c.io.Printf("%-13s received %d, inserted %d, updated %d, deleted %d, skipped %d\n",
		s.Type, s.Received, s.Inserted, s.Updated, s.Deleted, s.Skipped)
	for _, f := range s.Failures {
		c.io.Printf("  skipped: %v\n", f)
	}
}
