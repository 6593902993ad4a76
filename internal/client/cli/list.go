package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iudanet/finsync/internal/models"
)

// listOptions are the flags of the list command
type listOptions struct {
	accountID     int64
	includeHidden bool
}

func (r *runner) listCommand() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:       "list <resource>",
		Short:     "List locally stored records of one type",
		Args:      cobra.ExactArgs(1),
		ValidArgs: resourceNames(),
		RunE: r.run(func(ctx context.Context, c *Cli, _ *cobra.Command, args []string) error {
			return c.runList(ctx, args[0], opts)
		}),
	}

	flags := cmd.Flags()
	flags.Int64Var(&opts.accountID, "account", 0, "only transactions of this account")
	flags.BoolVar(&opts.includeHidden, "all", false, "include hidden accounts")
	return cmd
}

func (c *Cli) runList(ctx context.Context, resource string, opts listOptions) error {
	rt, ok := models.ParseResourceType(resource)
	if !ok {
		return fmt.Errorf("unknown resource %q", resource)
	}

	w := tabwriter.NewWriter(c.io, 0, 4, 2, ' ', 0)

	var (
		count int
		err   error
	)
	switch rt {
	case models.ResourceAccounts:
		count, err = c.listAccounts(ctx, w, opts.includeHidden)
	case models.ResourceTransactions:
		count, err = c.listTransactions(ctx, w, opts.accountID)
	case models.ResourceGoals:
		count, err = c.listGoals(ctx, w)
	case models.ResourceBills:
		count, err = c.listBills(ctx, w)
	case models.ResourceCards:
		count, err = c.listCards(ctx, w)
	case models.ResourceContacts:
		count, err = c.listContacts(ctx, w)
	}
	if err != nil {
		return err
	}

	if count == 0 {
		c.io.Printf("No %s found. Run 'finsync sync' first.\n", rt)
		return nil
	}
	return w.Flush()
}

func (c *Cli) listAccounts(ctx context.Context, w *tabwriter.Writer, includeHidden bool) (int, error) {
	accounts, err := c.dataService.ListAccounts(ctx, includeHidden)
	if err != nil || len(accounts) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tNAME\tTYPE\tINSTITUTION\tBALANCE\t")
	for _, a := range accounts {
		name := a.Name
		if a.Hidden {
			name += " (hidden)"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", a.ID, name, a.Type, a.Institution, a.Balance)
	}
	return len(accounts), nil
}

func (c *Cli) listTransactions(ctx context.Context, w *tabwriter.Writer, accountID int64) (int, error) {
	transactions, err := c.dataService.ListTransactions(ctx, accountID)
	if err != nil || len(transactions) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tDATE\tACCOUNT\tAMOUNT\tSTATUS\tDESCRIPTION\t")
	for _, t := range transactions {
		account := fmt.Sprint(t.AccountID)
		if !t.AccountLinked {
			account += "?"
		}
		status := t.Status
		if t.Reviewed {
			status += ", reviewed"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t\n",
			t.ID, t.Date.Format("2006-01-02"), account, t.Amount, status, t.Description)
	}
	return len(transactions), nil
}

func (c *Cli) listGoals(ctx context.Context, w *tabwriter.Writer) (int, error) {
	goals, err := c.dataService.ListGoals(ctx)
	if err != nil || len(goals) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tNAME\tSAVED\tTARGET\tDUE\t")
	for _, g := range goals {
		due := "-"
		if g.DueDate != nil {
			due = g.DueDate.Format("2006-01-02")
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", g.ID, g.Name, g.Saved, g.Target, due)
	}
	return len(goals), nil
}

func (c *Cli) listBills(ctx context.Context, w *tabwriter.Writer) (int, error) {
	bills, err := c.dataService.ListBills(ctx)
	if err != nil || len(bills) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tPAYEE\tAMOUNT\tDUE\tRECURRENCE\t")
	for _, b := range bills {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t\n", b.ID, b.Payee, b.Amount, b.DueDate.Format("2006-01-02"), b.Recurrence)
	}
	return len(bills), nil
}

func (c *Cli) listCards(ctx context.Context, w *tabwriter.Writer) (int, error) {
	cards, err := c.dataService.ListCards(ctx)
	if err != nil || len(cards) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tCARD\tACCOUNT\tSTATUS\tLIMIT\t")
	for _, card := range cards {
		fmt.Fprintf(w, "%d\t%s *%s\t%d\t%s\t%s\t\n", card.ID, card.Network, card.Last4, card.AccountID, card.Status, card.Limit)
	}
	return len(cards), nil
}

func (c *Cli) listContacts(ctx context.Context, w *tabwriter.Writer) (int, error) {
	contacts, err := c.dataService.ListContacts(ctx)
	if err != nil || len(contacts) == 0 {
		return 0, err
	}

	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tPHONE\t")
	for _, ct := range contacts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t\n", ct.ID, ct.Name, ct.Email, ct.Phone)
	}
	return len(contacts), nil
}
