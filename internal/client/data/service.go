package data

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/Rhymond/go-money"
	"github.com/samber/lo"

	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/client/sync"
	"github.com/iudanet/finsync/internal/models"
)

//go:generate moq -out service_mock.go . Service

// Service определяет интерфейс локального чтения синхронизированных данных
type Service interface {
	ListAccounts(ctx context.Context, includeHidden bool) ([]models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	SetAccountHidden(ctx context.Context, id int64, hidden bool) error

	// ListTransactions returns transactions newest first; accountID 0 means all
	ListTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error)
	SetTransactionReviewed(ctx context.Context, id int64, reviewed bool) error

	ListGoals(ctx context.Context) ([]models.Goal, error)
	ListBills(ctx context.Context) ([]models.Bill, error)
	ListCards(ctx context.Context) ([]models.Card, error)
	ListContacts(ctx context.Context) ([]models.Contact, error)

	// Totals sums balances of visible accounts per currency
	Totals(ctx context.Context) ([]*money.Money, error)
}

// service reads the local store. Local-only flags are changed through the
// reconciler, under the same per-type lock as syncs.
type service struct {
	records    storage.RecordStore
	reconciler *reconcile.Reconciler
}

// NewService creates a new data service
func NewService(records storage.RecordStore, reconciler *reconcile.Reconciler) Service {
	return &service{
		records:    records,
		reconciler: reconciler,
	}
}

func (s *service) ListAccounts(ctx context.Context, includeHidden bool) ([]models.Account, error) {
	accounts, err := storage.QueryRecords(ctx, s.records, models.ResourceAccounts, func(a *models.Account) bool {
		return includeHidden || !a.Hidden
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *service) GetAccount(ctx context.Context, id int64) (*models.Account, error) {
	account, err := storage.GetRecord[models.Account](ctx, s.records, models.ResourceAccounts, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %d: %w", id, err)
	}
	return account, nil
}

func (s *service) SetAccountHidden(ctx context.Context, id int64, hidden bool) error {
	return reconcile.Modify(ctx, s.reconciler, sync.AccountSchema, id, func(a *models.Account) error {
		a.Hidden = hidden
		return nil
	})
}

func (s *service) ListTransactions(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	var (
		transactions []models.Transaction
		err          error
	)
	if accountID == 0 {
		transactions, err = storage.QueryRecords[models.Transaction](ctx, s.records, models.ResourceTransactions, nil)
	} else {
		transactions, err = s.transactionsOf(ctx, accountID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}

	// Новые сверху, при равной дате по ID
	slices.SortStableFunc(transactions, func(a, b models.Transaction) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	return transactions, nil
}

// transactionsOf читает транзакции счёта через индекс связей
func (s *service) transactionsOf(ctx context.Context, accountID int64) ([]models.Transaction, error) {
	ids, err := s.reconciler.Owners(ctx, models.ResourceTransactions, sync.LinkAccount, accountID)
	if err != nil {
		return nil, err
	}

	transactions := make([]models.Transaction, 0, len(ids))
	for _, id := range ids {
		t, err := storage.GetRecord[models.Transaction](ctx, s.records, models.ResourceTransactions, id)
		if errors.Is(err, storage.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if t.AccountID == accountID {
			transactions = append(transactions, *t)
		}
	}
	return transactions, nil
}

func (s *service) SetTransactionReviewed(ctx context.Context, id int64, reviewed bool) error {
	return reconcile.Modify(ctx, s.reconciler, sync.TransactionSchema, id, func(t *models.Transaction) error {
		t.Reviewed = reviewed
		return nil
	})
}

func (s *service) ListGoals(ctx context.Context) ([]models.Goal, error) {
	return list[models.Goal](ctx, s.records, models.ResourceGoals)
}

func (s *service) ListBills(ctx context.Context) ([]models.Bill, error) {
	bills, err := list[models.Bill](ctx, s.records, models.ResourceBills)
	if err != nil {
		return nil, err
	}
	// Ближайшие платежи первыми
	slices.SortStableFunc(bills, func(a, b models.Bill) int {
		return a.DueDate.Compare(b.DueDate)
	})
	return bills, nil
}

func (s *service) ListCards(ctx context.Context) ([]models.Card, error) {
	return list[models.Card](ctx, s.records, models.ResourceCards)
}

func (s *service) ListContacts(ctx context.Context) ([]models.Contact, error) {
	return list[models.Contact](ctx, s.records, models.ResourceContacts)
}

func (s *service) Totals(ctx context.Context) ([]*money.Money, error) {
	accounts, err := s.ListAccounts(ctx, false)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]*money.Money)
	for _, a := range accounts {
		m, err := a.Balance.ToMoney()
		if err != nil {
			return nil, fmt.Errorf("account %d: %w", a.ID, err)
		}
		code := m.Currency().Code
		sum, ok := totals[code]
		if !ok {
			totals[code] = m
			continue
		}
		if totals[code], err = sum.Add(m); err != nil {
			return nil, fmt.Errorf("account %d: %w", a.ID, err)
		}
	}

	codes := lo.Keys(totals)
	slices.Sort(codes)
	return lo.Map(codes, func(code string, _ int) *money.Money { return totals[code] }), nil
}

func list[T any](ctx context.Context, records storage.RecordStore, rt models.ResourceType) ([]T, error) {
	out, err := storage.QueryRecords[T](ctx, records, rt, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", rt, err)
	}
	return out, nil
}
