package sync

import (
	"errors"
	"fmt"

	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/models"
)

// LinkAccount is the name of the account foreign key on every linked type.
const LinkAccount = "account"

// ErrInvalidRecord indicates a listing element that decoded but misses required fields.
var ErrInvalidRecord = errors.New("invalid record")

func accountLink[T any](key func(*T) int64, set func(*T, bool)) reconcile.Link[T] {
	return reconcile.Link[T]{
		Name:      LinkAccount,
		Target:    models.ResourceAccounts,
		Key:       key,
		SetLinked: set,
	}
}

// AccountSchema keeps the local Hidden flag across syncs.
var AccountSchema = reconcile.Schema[models.Account]{
	Type: models.ResourceAccounts,
	ID:   func(a *models.Account) int64 { return a.ID },
	Merge: func(incoming, stored *models.Account) {
		incoming.Hidden = stored.Hidden
	},
}

// TransactionSchema keeps the local Reviewed flag and links to the account.
var TransactionSchema = reconcile.Schema[models.Transaction]{
	Type: models.ResourceTransactions,
	ID:   func(t *models.Transaction) int64 { return t.ID },
	Merge: func(incoming, stored *models.Transaction) {
		incoming.Reviewed = stored.Reviewed
	},
	Links: []reconcile.Link[models.Transaction]{
		accountLink(
			func(t *models.Transaction) int64 { return t.AccountID },
			func(t *models.Transaction, linked bool) { t.AccountLinked = linked },
		),
	},
}

// GoalSchema links a goal to its optional funding account.
var GoalSchema = reconcile.Schema[models.Goal]{
	Type: models.ResourceGoals,
	ID:   func(g *models.Goal) int64 { return g.ID },
	Links: []reconcile.Link[models.Goal]{
		accountLink(
			func(g *models.Goal) int64 { return g.AccountID },
			func(g *models.Goal, linked bool) { g.AccountLinked = linked },
		),
	},
}

// BillSchema links a bill to its optional paying account.
var BillSchema = reconcile.Schema[models.Bill]{
	Type: models.ResourceBills,
	ID:   func(b *models.Bill) int64 { return b.ID },
	Links: []reconcile.Link[models.Bill]{
		accountLink(
			func(b *models.Bill) int64 { return b.AccountID },
			func(b *models.Bill, linked bool) { b.AccountLinked = linked },
		),
	},
}

// CardSchema links a card to its account.
var CardSchema = reconcile.Schema[models.Card]{
	Type: models.ResourceCards,
	ID:   func(c *models.Card) int64 { return c.ID },
	Links: []reconcile.Link[models.Card]{
		accountLink(
			func(c *models.Card) int64 { return c.AccountID },
			func(c *models.Card, linked bool) { c.AccountLinked = linked },
		),
	},
}

// ContactSchema has no links and no local fields.
var ContactSchema = reconcile.Schema[models.Contact]{
	Type: models.ResourceContacts,
	ID:   func(c *models.Contact) int64 { return c.ID },
}

func validateAccount(a *models.Account) error {
	if a.Name == "" {
		return fmt.Errorf("%w: account has no name", ErrInvalidRecord)
	}
	return nil
}

func validateTransaction(t *models.Transaction) error {
	if t.AccountID <= 0 {
		return fmt.Errorf("%w: transaction has no account_id", ErrInvalidRecord)
	}
	if t.Amount.Value == "" || t.Amount.Currency == "" {
		return fmt.Errorf("%w: transaction has no amount", ErrInvalidRecord)
	}
	return nil
}

func validateGoal(g *models.Goal) error {
	if g.Name == "" {
		return fmt.Errorf("%w: goal has no name", ErrInvalidRecord)
	}
	return nil
}

func validateBill(b *models.Bill) error {
	if b.Payee == "" {
		return fmt.Errorf("%w: bill has no payee", ErrInvalidRecord)
	}
	return nil
}

func validateCard(c *models.Card) error {
	if c.AccountID <= 0 {
		return fmt.Errorf("%w: card has no account_id", ErrInvalidRecord)
	}
	return nil
}

func validateContact(c *models.Contact) error {
	if c.Name == "" {
		return fmt.Errorf("%w: contact has no name", ErrInvalidRecord)
	}
	return nil
}
