package cli

import (
	"context"
	"fmt"
	"text/template"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/models"
)

// recentTransactions ограничивает вывод команды get
const recentTransactions = 5

var accountTmpl = template.Must(template.New("account").Parse(accountTemplate))

func (r *runner) getCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account and its recent transactions",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runGetAccount(ctx, id)
		}),
	}
}

func (r *runner) totalsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "totals",
		Short: "Show the balance of visible accounts per currency",
		Args:  cobra.NoArgs,
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, _ []string) error {
			return c.runTotals(ctx)
		}),
	}
}

func (r *runner) hideCommand() *cobra.Command {
	var unhide bool

	cmd := &cobra.Command{
		Use:   "hide <account-id>",
		Short: "Hide an account locally",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runHide(ctx, id, !unhide)
		}),
	}
	cmd.Flags().BoolVar(&unhide, "undo", false, "show the account again")
	return cmd
}

func (r *runner) reviewCommand() *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:   "review <transaction-id>",
		Short: "Mark a transaction as reviewed",
		Args:  cobra.ExactArgs(1),
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return c.runReview(ctx, id, !undo)
		}),
	}
	cmd.Flags().BoolVar(&undo, "undo", false, "clear the reviewed mark")
	return cmd
}

func (r *runner) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "delete <goal|contact> <id>",
		Short:     "Delete a goal or a contact on the server and locally",
		Args:      cobra.ExactArgs(2),
		ValidArgs: []string{"goal", "contact"},
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return c.runDelete(ctx, args[0], id)
		}),
	}
}

func (c *Cli) runGetAccount(ctx context.Context, id int64) error {
	account, err := c.dataService.GetAccount(ctx, id)
	if err != nil {
		return err
	}

	transactions, err := c.dataService.ListTransactions(ctx, id)
	if err != nil {
		return err
	}
	if len(transactions) > recentTransactions {
		transactions = transactions[:recentTransactions]
	}

	return accountTmpl.Execute(c.io, struct {
		Account      *models.Account
		Transactions []models.Transaction
	}{account, transactions})
}

func (c *Cli) runTotals(ctx context.Context) error {
	totals, err := c.dataService.Totals(ctx)
	if err != nil {
		return err
	}
	if len(totals) == 0 {
		c.io.Println("No accounts found. Run 'finsync sync' first.")
		return nil
	}

	c.io.Println("=== Totals ===")
	for _, m := range totals {
		c.io.Printf("%s  %s\n", m.Currency().Code, m.Display())
	}
	return nil
}

func (c *Cli) runHide(ctx context.Context, id int64, hidden bool) error {
	if err := c.dataService.SetAccountHidden(ctx, id, hidden); err != nil {
		return err
	}
	if hidden {
		c.io.Printf("Account %d hidden\n", id)
	} else {
		c.io.Printf("Account %d visible\n", id)
	}
	return nil
}

func (c *Cli) runReview(ctx context.Context, id int64, reviewed bool) error {
	if err := c.dataService.SetTransactionReviewed(ctx, id, reviewed); err != nil {
		return err
	}
	if reviewed {
		c.io.Printf("Transaction %d marked as reviewed\n", id)
	} else {
		c.io.Printf("Transaction %d marked as not reviewed\n", id)
	}
	return nil
}

func (c *Cli) runDelete(ctx context.Context, kind string, id int64) error {
	var err error
	switch kind {
	case "goal", "goals":
		err = c.syncService.DeleteGoal(ctx, id)
	case "contact", "contacts":
		err = c.syncService.DeleteContact(ctx, id)
	default:
		return fmt.Errorf("cannot delete %q: only goals and contacts can be deleted", kind)
	}
	if err != nil {
		return err
	}

	c.io.Printf("Deleted %s %d\n", kind, id)
	return nil
}
