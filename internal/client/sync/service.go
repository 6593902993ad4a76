package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	gosync "sync"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/iudanet/finsync/internal/async"
	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/pipeline"
	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/pkg/api"
)

//go:generate moq -out service_mock.go . Service

// ErrMalformedResponse indicates a listing whose envelope could not be decoded.
var ErrMalformedResponse = errors.New("malformed response")

// Service определяет интерфейс для sync.Service
type Service interface {
	// SyncResource fetches the full listing of rt and reconciles it
	SyncResource(ctx context.Context, rt models.ResourceType) (*reconcile.Summary, error)

	// SyncTransactions fetches transactions, optionally for one account or since a time
	SyncTransactions(ctx context.Context, q TransactionQuery) (*reconcile.Summary, error)

	// SyncAll syncs accounts first, then every other type concurrently
	SyncAll(ctx context.Context) (*Result, error)

	// DeleteGoal deletes a goal on the server and locally
	DeleteGoal(ctx context.Context, id int64) error

	// DeleteContact deletes a contact on the server and locally
	DeleteContact(ctx context.Context, id int64) error

	// Relink re-resolves the links of every stored record and rebuilds the link index
	Relink(ctx context.Context) (*Result, error)

	// LastSyncTimes returns the last successful full sync per resource type
	LastSyncTimes(ctx context.Context) (map[models.ResourceType]time.Time, error)
}

// Requester executes authenticated API calls; see pipeline.Pipeline.
type Requester interface {
	Execute(ctx context.Context, req *pipeline.Request) (*pipeline.Response, error)
}

// TransactionQuery narrows a transaction listing.
type TransactionQuery struct {
	// Since requests only transactions changed after it; the listing is
	// then partial and deletes nothing
	Since time.Time

	// AccountID bounds the listing to one account; 0 means every account
	AccountID int64

	// Incremental uses the stored last sync time when Since is zero
	Incremental bool
}

// Result collects per-type summaries of SyncAll.
type Result struct {
	Summaries map[models.ResourceType]*reconcile.Summary
}

// Skipped returns the number of malformed records over all types.
func (r *Result) Skipped() int {
	return lo.SumBy(lo.Values(r.Summaries), func(s *reconcile.Summary) int { return s.Skipped })
}

// service handles synchronization between the API and the local store
type service struct {
	requester  Requester
	reconciler *reconcile.Reconciler
	metadata   storage.MetadataStorage
	logger     *slog.Logger
	now        func() time.Time
}

// NewService creates a new sync service and registers every schema with
// the reconciler, so links resolve whatever order types are synced in.
func NewService(requester Requester, reconciler *reconcile.Reconciler, metadata storage.MetadataStorage, logger *slog.Logger) (Service, error) {
	err := errors.Join(
		reconcile.Register(reconciler, AccountSchema),
		reconcile.Register(reconciler, TransactionSchema),
		reconcile.Register(reconciler, GoalSchema),
		reconcile.Register(reconciler, BillSchema),
		reconcile.Register(reconciler, CardSchema),
		reconcile.Register(reconciler, ContactSchema),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register schemas: %w", err)
	}

	return &service{
		requester:  requester,
		reconciler: reconciler,
		metadata:   metadata,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// SyncAllAsync runs SyncAll in the background.
func SyncAllAsync(ctx context.Context, s Service) *async.Future[*Result] {
	return async.Run(ctx, s.SyncAll)
}

func (s *service) SyncResource(ctx context.Context, rt models.ResourceType) (*reconcile.Summary, error) {
	switch rt {
	case models.ResourceAccounts:
		return syncList(ctx, s, AccountSchema, api.PathAccounts, nil, validateAccount, reconcile.All[models.Account]())
	case models.ResourceTransactions:
		return s.SyncTransactions(ctx, TransactionQuery{})
	case models.ResourceGoals:
		return syncList(ctx, s, GoalSchema, api.PathGoals, nil, validateGoal, reconcile.All[models.Goal]())
	case models.ResourceBills:
		return syncList(ctx, s, BillSchema, api.PathBills, nil, validateBill, reconcile.All[models.Bill]())
	case models.ResourceCards:
		return syncList(ctx, s, CardSchema, api.PathCards, nil, validateCard, reconcile.All[models.Card]())
	case models.ResourceContacts:
		return syncList(ctx, s, ContactSchema, api.PathContacts, nil, validateContact, reconcile.All[models.Contact]())
	default:
		return nil, fmt.Errorf("unknown resource type %q", rt)
	}
}

func (s *service) SyncTransactions(ctx context.Context, q TransactionQuery) (*reconcile.Summary, error) {
	key := transactionsKey(q.AccountID)

	since := q.Since
	if since.IsZero() && q.Incremental {
		last, err := s.metadata.GetLastSync(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to get last sync time, running full sync", "key", key, "error", err)
		}
		since = last
	}

	query := url.Values{}
	var scope reconcile.Scope[models.Transaction]
	if q.AccountID != 0 {
		query.Set(api.QueryAccountID, strconv.FormatInt(q.AccountID, 10))
		accountID := q.AccountID
		scope = func(t *models.Transaction) bool { return t.AccountID == accountID }
	} else {
		scope = reconcile.All[models.Transaction]()
	}
	if !since.IsZero() {
		query.Set(api.QueryUpdatedSince, since.UTC().Format(time.RFC3339))
		// частичный листинг ничего не удаляет
		scope = nil
	}

	return syncListKey(ctx, s, TransactionSchema, api.PathTransactions, query, validateTransaction, scope, key)
}

func transactionsKey(accountID int64) string {
	if accountID == 0 {
		return string(models.ResourceTransactions)
	}
	return fmt.Sprintf("%s:account:%d", models.ResourceTransactions, accountID)
}

func (s *service) SyncAll(ctx context.Context) (*Result, error) {
	result := &Result{Summaries: make(map[models.ResourceType]*reconcile.Summary)}
	started := s.now()
	s.logger.Info("Starting synchronization")

	var (
		mu       gosync.Mutex
		failures []error
	)

	// сначала счета: остальные типы на них ссылаются
	summary, err := s.SyncResource(ctx, models.ResourceAccounts)
	if err != nil {
		if errs.IsAuth(err) || ctx.Err() != nil {
			return result, fmt.Errorf("sync %s: %w", models.ResourceAccounts, err)
		}
		s.logger.Warn("Account sync failed, continuing with unresolved links", "error", err)
		failures = append(failures, fmt.Errorf("sync %s: %w", models.ResourceAccounts, err))
	} else {
		result.Summaries[models.ResourceAccounts] = summary
	}

	var g errgroup.Group
	for _, rt := range lo.Without(models.ResourceTypes, models.ResourceAccounts) {
		g.Go(func() error {
			var (
				summary *reconcile.Summary
				err     error
			)
			if rt == models.ResourceTransactions {
				summary, err = s.SyncTransactions(ctx, TransactionQuery{Incremental: true})
			} else {
				summary, err = s.SyncResource(ctx, rt)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, fmt.Errorf("sync %s: %w", rt, err))
				return nil
			}
			result.Summaries[rt] = summary
			return nil
		})
	}
	_ = g.Wait()

	s.logger.Info("Synchronization completed",
		"types", len(result.Summaries),
		"failed", len(failures),
		"skipped", result.Skipped(),
		"duration", s.now().Sub(started),
	)
	return result, errors.Join(failures...)
}

func (s *service) DeleteGoal(ctx context.Context, id int64) error {
	return deleteRemote(ctx, s, GoalSchema, api.PathGoals, id)
}

func (s *service) DeleteContact(ctx context.Context, id int64) error {
	return deleteRemote(ctx, s, ContactSchema, api.PathContacts, id)
}

// Relink walks the types in link order, targets before owners. Nothing is
// fetched from the API.
func (s *service) Relink(ctx context.Context) (*Result, error) {
	result := &Result{Summaries: make(map[models.ResourceType]*reconcile.Summary)}
	relinkers := []func(context.Context) (*reconcile.Summary, error){
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, AccountSchema) },
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, TransactionSchema) },
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, GoalSchema) },
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, BillSchema) },
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, CardSchema) },
		func(ctx context.Context) (*reconcile.Summary, error) { return reconcile.Relink(ctx, s.reconciler, ContactSchema) },
	}

	for _, relink := range relinkers {
		summary, err := relink(ctx)
		if err != nil {
			return result, fmt.Errorf("relink: %w", err)
		}
		result.Summaries[summary.Type] = summary
	}

	s.logger.Info("Local records relinked",
		"relinked", lo.SumBy(lo.Values(result.Summaries), func(sum *reconcile.Summary) int { return sum.Relinked }))
	return result, nil
}

func (s *service) LastSyncTimes(ctx context.Context) (map[models.ResourceType]time.Time, error) {
	times := make(map[models.ResourceType]time.Time, len(models.ResourceTypes))
	for _, rt := range models.ResourceTypes {
		at, err := s.metadata.GetLastSync(ctx, string(rt))
		if err != nil {
			return nil, fmt.Errorf("failed to get last sync for %s: %w", rt, err)
		}
		times[rt] = at
	}
	return times, nil
}

func syncList[T any](ctx context.Context, s *service, schema reconcile.Schema[T], path string, query url.Values, validate func(*T) error, scope reconcile.Scope[T]) (*reconcile.Summary, error) {
	return syncListKey(ctx, s, schema, path, query, validate, scope, string(schema.Type))
}

// syncListKey fetches one listing, reconciles it and records the sync time
// under key. The time is taken before the request so that changes made on
// the server during the sync are fetched again next time.
func syncListKey[T any](ctx context.Context, s *service, schema reconcile.Schema[T], path string, query url.Values, validate func(*T) error, scope reconcile.Scope[T], key string) (*reconcile.Summary, error) {
	started := s.now()

	items, err := fetchList(ctx, s.requester, path, query, validate)
	if err != nil {
		return nil, err
	}

	summary, err := reconcile.Apply(ctx, s.reconciler, schema, items, scope)
	if err != nil {
		return nil, err
	}

	if err := s.metadata.SaveLastSync(ctx, key, started); err != nil {
		s.logger.Warn("Failed to save last sync time", "key", key, "error", err)
	}
	return summary, nil
}

// fetchList requests a listing and decodes it element by element.
func fetchList[T any](ctx context.Context, requester Requester, path string, query url.Values, validate func(*T) error) ([]reconcile.Item[T], error) {
	resp, err := requester.Execute(ctx, &pipeline.Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
	if err != nil {
		return nil, err
	}

	body := bytes.TrimSpace(resp.Body)
	if len(body) > 0 && body[0] == '{' {
		var envelope api.ListResponse
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, path, err)
		}
		body = envelope.Data
	}

	items, err := reconcile.DecodeList(body, validate)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformedResponse, path, err)
	}
	return items, nil
}

// deleteRemote удаляет запись на сервере, затем локально.
// 404 значит, что записи на сервере уже нет, и локальная копия тоже удаляется.
func deleteRemote[T any](ctx context.Context, s *service, schema reconcile.Schema[T], path string, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: %d", reconcile.ErrInvalidID, id)
	}

	_, err := s.requester.Execute(ctx, &pipeline.Request{
		Method: http.MethodDelete,
		Path:   fmt.Sprintf("%s/%d", path, id),
	})
	if err != nil && !pipeline.IsNotFound(err) {
		return err
	}

	if _, err := reconcile.Remove(ctx, s.reconciler, schema, id); err != nil {
		return err
	}
	s.logger.Info("Record deleted", "type", schema.Type, "id", id)
	return nil
}
