package sync

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	gosync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/pipeline"
	"github.com/iudanet/finsync/internal/client/reconcile"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/client/storage/boltdb"
	"github.com/iudanet/finsync/internal/models"
	"github.com/iudanet/finsync/pkg/api"
)

type handlerFunc func(req *pipeline.Request) (*pipeline.Response, error)

// fakeRequester answers pipeline requests by "METHOD /path"
type fakeRequester struct {
	handlers map[string]handlerFunc
	requests []pipeline.Request
	mu       gosync.Mutex
}

func newFakeRequester() *fakeRequester {
	return &fakeRequester{handlers: make(map[string]handlerFunc)}
}

func (f *fakeRequester) handle(method, path string, h handlerFunc) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[method+" "+path] = h
}

func (f *fakeRequester) list(path, body string) {
	f.handle(http.MethodGet, path, func(*pipeline.Request) (*pipeline.Response, error) {
		return &pipeline.Response{StatusCode: http.StatusOK, Body: []byte(body), Attempts: 1}, nil
	})
}

func (f *fakeRequester) Execute(_ context.Context, req *pipeline.Request) (*pipeline.Response, error) {
	f.mu.Lock()
	f.requests = append(f.requests, *req)
	h := f.handlers[req.Method+" "+req.Path]
	f.mu.Unlock()

	if h == nil {
		return nil, &errs.APIError{StatusCode: http.StatusNotFound, Code: "not_found"}
	}
	return h(req)
}

func (f *fakeRequester) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.requests))
	for _, r := range f.requests {
		out = append(out, r.Method+" "+r.Path)
	}
	return out
}

func (f *fakeRequester) last() pipeline.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[len(f.requests)-1]
}

var syncTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, requester Requester) (*service, *boltdb.Storage) {
	t.Helper()

	store, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "sync.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, err := NewService(requester, reconcile.New(store, logger), store, logger)
	require.NoError(t, err)

	s := svc.(*service)
	s.now = func() time.Time { return syncTime }
	return s, store
}

func storedIDs(t *testing.T, store storage.RecordStore, rt models.ResourceType) []int64 {
	t.Helper()
	records, err := store.Query(context.Background(), rt, nil)
	require.NoError(t, err)
	ids := make([]int64, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}
	return ids
}

func accountsBody(ids ...int64) string {
	body := `{"data":[`
	for i, id := range ids {
		if i > 0 {
			body += ","
		}
		body += fmt.Sprintf(`{"id":%d,"name":"Account %d","type":"checking","balance":{"value":"10.00","currency":"USD"}}`, id, id)
	}
	return body + `]}`
}

func transactionJSON(id, accountID int64) string {
	return fmt.Sprintf(`{"id":%d,"account_id":%d,"description":"Coffee","status":"posted","amount":{"value":"-3.50","currency":"USD"},"date":"2026-02-27T00:00:00Z"}`, id, accountID)
}

func TestNewService(t *testing.T) {
	requester := newFakeRequester()
	s, _ := newTestService(t, requester)

	assert.Equal(t, requester, s.requester)
	assert.NotNil(t, s.reconciler)
	assert.NotNil(t, s.metadata)
	assert.NotNil(t, s.logger)
}

func TestSyncResource_AccountsSkipsMalformed(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathAccounts, `{"data":[
		{"id":1,"name":"Checking","type":"checking","balance":{"value":"10.00","currency":"USD"}},
		{"id":2,"name":""},
		{"id":"three","name":"Broken"},
		{"id":4,"name":"Savings","type":"savings","balance":{"value":"250.00","currency":"USD"}}
	]}`)
	s, store := newTestService(t, requester)
	ctx := context.Background()

	summary, err := s.SyncResource(ctx, models.ResourceAccounts)
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Received)
	assert.Equal(t, 2, summary.Inserted)
	assert.Equal(t, 2, summary.Skipped)
	assert.ErrorIs(t, summary.Failures[0], ErrInvalidRecord)

	assert.Equal(t, []int64{1, 4}, storedIDs(t, store, models.ResourceAccounts))

	last, err := store.GetLastSync(ctx, string(models.ResourceAccounts))
	require.NoError(t, err)
	assert.True(t, last.Equal(syncTime))
}

func TestSyncResource_FullListingDeletesMissing(t *testing.T) {
	requester := newFakeRequester()
	s, store := newTestService(t, requester)
	ctx := context.Background()

	requester.list(api.PathAccounts, accountsBody(1, 2, 3))
	_, err := s.SyncResource(ctx, models.ResourceAccounts)
	require.NoError(t, err)

	requester.list(api.PathAccounts, accountsBody(1, 3))
	summary, err := s.SyncResource(ctx, models.ResourceAccounts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, 2, summary.Unchanged)
	assert.Equal(t, []int64{1, 3}, storedIDs(t, store, models.ResourceAccounts))
}

func TestSyncResource_BareArrayBody(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathContacts, `[{"id":1,"name":"Alice","email":"alice@example.com"}]`)
	s, store := newTestService(t, requester)

	summary, err := s.SyncResource(context.Background(), models.ResourceContacts)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Inserted)
	assert.Equal(t, []int64{1}, storedIDs(t, store, models.ResourceContacts))
}

func TestSyncResource_MalformedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "data is an object", body: `{"data":{"id":1}}`},
		{name: "no data", body: `{}`},
		{name: "broken json", body: `{"data":[`},
		{name: "plain text", body: `internal error`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requester := newFakeRequester()
			requester.list(api.PathGoals, tt.body)
			s, store := newTestService(t, requester)

			_, err := s.SyncResource(context.Background(), models.ResourceGoals)
			assert.ErrorIs(t, err, ErrMalformedResponse)
			assert.Empty(t, storedIDs(t, store, models.ResourceGoals))
		})
	}
}

func TestSyncResource_UnknownType(t *testing.T) {
	s, _ := newTestService(t, newFakeRequester())

	_, err := s.SyncResource(context.Background(), models.ResourceType("loans"))
	assert.Error(t, err)
}

func TestSyncTransactions_AccountScope(t *testing.T) {
	requester := newFakeRequester()
	s, store := newTestService(t, requester)
	ctx := context.Background()

	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(10, 1)+`,`+transactionJSON(11, 1)+`,`+transactionJSON(20, 2)+`]}`)
	_, err := s.SyncTransactions(ctx, TransactionQuery{})
	require.NoError(t, err)

	// по счёту 1 сервер знает только про 10
	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(10, 1)+`]}`)
	summary, err := s.SyncTransactions(ctx, TransactionQuery{AccountID: 1})
	require.NoError(t, err)

	assert.Equal(t, "1", requester.last().Query.Get(api.QueryAccountID))
	assert.Equal(t, 1, summary.Deleted)
	assert.Equal(t, []int64{10, 20}, storedIDs(t, store, models.ResourceTransactions))

	last, err := store.GetLastSync(ctx, "transactions:account:1")
	require.NoError(t, err)
	assert.True(t, last.Equal(syncTime))
}

func TestSyncTransactions_IncrementalNeverDeletes(t *testing.T) {
	requester := newFakeRequester()
	s, store := newTestService(t, requester)
	ctx := context.Background()

	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(10, 1)+`,`+transactionJSON(11, 1)+`]}`)
	_, err := s.SyncTransactions(ctx, TransactionQuery{Incremental: true})
	require.NoError(t, err)
	assert.Empty(t, requester.last().Query.Get(api.QueryUpdatedSince))

	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(12, 1)+`]}`)
	summary, err := s.SyncTransactions(ctx, TransactionQuery{Incremental: true})
	require.NoError(t, err)

	assert.Equal(t, syncTime.Format(time.RFC3339), requester.last().Query.Get(api.QueryUpdatedSince))
	assert.Equal(t, 1, summary.Inserted)
	assert.Zero(t, summary.Deleted)
	assert.Equal(t, []int64{10, 11, 12}, storedIDs(t, store, models.ResourceTransactions))
}

func TestSyncTransactions_ExplicitSince(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathTransactions, `{"data":[]}`)
	s, _ := newTestService(t, requester)

	since := time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("MSK", 3*60*60))
	_, err := s.SyncTransactions(context.Background(), TransactionQuery{Since: since, AccountID: 5})
	require.NoError(t, err)

	req := requester.last()
	assert.Equal(t, "2025-12-31T21:00:00Z", req.Query.Get(api.QueryUpdatedSince))
	assert.Equal(t, "5", req.Query.Get(api.QueryAccountID))
}

func TestSyncAll(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathAccounts, accountsBody(1, 2))
	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(10, 1)+`,`+transactionJSON(11, 9)+`,{"id":12}]}`)
	requester.list(api.PathGoals, `{"data":[{"id":1,"name":"Vacation","account_id":2,"target":{"value":"1000","currency":"USD"}}]}`)
	requester.list(api.PathBills, `{"data":[{"id":1,"payee":"Power Co","recurrence":"monthly"}]}`)
	requester.list(api.PathCards, `{"data":[{"id":1,"account_id":1,"last4":"4242","network":"visa","status":"active"}]}`)
	requester.list(api.PathContacts, `{"data":[{"id":1,"name":"Alice"}]}`)
	s, store := newTestService(t, requester)
	ctx := context.Background()

	result, err := s.SyncAll(ctx)
	require.NoError(t, err)
	require.Len(t, result.Summaries, len(models.ResourceTypes))
	assert.Equal(t, 1, result.Skipped())

	assert.Equal(t, "GET "+api.PathAccounts, requester.paths()[0])

	tx, err := storage.GetRecord[models.Transaction](ctx, store, models.ResourceTransactions, 10)
	require.NoError(t, err)
	assert.True(t, tx.AccountLinked)

	tx, err = storage.GetRecord[models.Transaction](ctx, store, models.ResourceTransactions, 11)
	require.NoError(t, err)
	assert.False(t, tx.AccountLinked)

	goal, err := storage.GetRecord[models.Goal](ctx, store, models.ResourceGoals, 1)
	require.NoError(t, err)
	assert.True(t, goal.AccountLinked)

	times, err := s.LastSyncTimes(ctx)
	require.NoError(t, err)
	for _, rt := range models.ResourceTypes {
		assert.True(t, times[rt].Equal(syncTime), rt)
	}
}

func TestSyncAll_PartialFailure(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathAccounts, accountsBody(1))
	requester.list(api.PathTransactions, `{"data":[]}`)
	requester.list(api.PathGoals, `{"data":[]}`)
	requester.handle(http.MethodGet, api.PathBills, func(*pipeline.Request) (*pipeline.Response, error) {
		return nil, &errs.APIError{StatusCode: http.StatusServiceUnavailable, Code: "maintenance"}
	})
	requester.list(api.PathCards, `{"data":[]}`)
	requester.list(api.PathContacts, `{"data":[]}`)
	s, _ := newTestService(t, requester)

	result, err := s.SyncAll(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sync bills")

	var apiErr *errs.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "maintenance", apiErr.Code)

	assert.Len(t, result.Summaries, len(models.ResourceTypes)-1)
	assert.NotContains(t, result.Summaries, models.ResourceBills)
}

func TestSyncAll_AuthFailureStops(t *testing.T) {
	requester := newFakeRequester()
	requester.handle(http.MethodGet, api.PathAccounts, func(*pipeline.Request) (*pipeline.Response, error) {
		return nil, fmt.Errorf("%w: refresh rejected", errs.ErrSessionInvalid)
	})
	s, _ := newTestService(t, requester)

	result, err := s.SyncAll(context.Background())
	require.ErrorIs(t, err, errs.ErrSessionInvalid)
	assert.Empty(t, result.Summaries)
	assert.Equal(t, []string{"GET " + api.PathAccounts}, requester.paths())
}

func TestSyncAllAsync(t *testing.T) {
	mock := &ServiceMock{
		SyncAllFunc: func(ctx context.Context) (*Result, error) {
			return &Result{Summaries: map[models.ResourceType]*reconcile.Summary{
				models.ResourceAccounts: {Type: models.ResourceAccounts, Inserted: 3},
			}}, nil
		},
	}

	result, err := SyncAllAsync(context.Background(), mock).Result()
	require.NoError(t, err)
	assert.Equal(t, 3, result.Summaries[models.ResourceAccounts].Inserted)
	assert.Len(t, mock.SyncAllCalls(), 1)
}

func TestDeleteGoal(t *testing.T) {
	tests := []struct {
		deleteErr error
		name      string
		wantIDs   []int64
		wantErr   bool
	}{
		{name: "deleted on server", wantIDs: []int64{2}},
		{
			name:      "already gone on server",
			deleteErr: &errs.APIError{StatusCode: http.StatusNotFound},
			wantIDs:   []int64{2},
		},
		{
			name:      "server failure keeps local copy",
			deleteErr: &errs.APIError{StatusCode: http.StatusInternalServerError},
			wantIDs:   []int64{1, 2},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requester := newFakeRequester()
			requester.list(api.PathGoals, `{"data":[{"id":1,"name":"Car"},{"id":2,"name":"House"}]}`)
			requester.handle(http.MethodDelete, api.PathGoals+"/1", func(*pipeline.Request) (*pipeline.Response, error) {
				if tt.deleteErr != nil {
					return nil, tt.deleteErr
				}
				return &pipeline.Response{StatusCode: http.StatusNoContent}, nil
			})
			s, store := newTestService(t, requester)
			ctx := context.Background()

			_, err := s.SyncResource(ctx, models.ResourceGoals)
			require.NoError(t, err)

			err = s.DeleteGoal(ctx, 1)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantIDs, storedIDs(t, store, models.ResourceGoals))
		})
	}
}

func TestDeleteContact(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathContacts, `{"data":[{"id":7,"name":"Bob"}]}`)
	requester.handle(http.MethodDelete, api.PathContacts+"/7", func(*pipeline.Request) (*pipeline.Response, error) {
		return &pipeline.Response{StatusCode: http.StatusNoContent}, nil
	})
	s, store := newTestService(t, requester)
	ctx := context.Background()

	_, err := s.SyncResource(ctx, models.ResourceContacts)
	require.NoError(t, err)

	require.NoError(t, s.DeleteContact(ctx, 7))
	assert.Empty(t, storedIDs(t, store, models.ResourceContacts))

	assert.ErrorIs(t, s.DeleteContact(ctx, 0), reconcile.ErrInvalidID)
}

func TestLastSyncTimes_NeverSynced(t *testing.T) {
	s, _ := newTestService(t, newFakeRequester())

	times, err := s.LastSyncTimes(context.Background())
	require.NoError(t, err)
	assert.Len(t, times, len(models.ResourceTypes))
	for _, at := range times {
		assert.True(t, at.IsZero())
	}
}

func TestRelink(t *testing.T) {
	requester := newFakeRequester()
	requester.list(api.PathTransactions, `{"data":[`+transactionJSON(10, 1)+`]}`)
	svc, store := newTestService(t, requester)
	ctx := context.Background()

	_, err := svc.SyncTransactions(ctx, TransactionQuery{})
	require.NoError(t, err)

	// счёт записан в обход синхронизации, признак связи устарел
	err = store.Update(ctx, func(tx storage.RecordTx) error {
		return tx.UpsertBatch(models.ResourceAccounts, []storage.Record{{ID: 1, Data: []byte(`{"id":1,"name":"Checking"}`)}})
	})
	require.NoError(t, err)

	got, err := storage.GetRecord[models.Transaction](ctx, store, models.ResourceTransactions, 10)
	require.NoError(t, err)
	assert.False(t, got.AccountLinked)

	calls := len(requester.paths())
	result, err := svc.Relink(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Summaries, len(models.ResourceTypes))
	assert.Equal(t, 1, result.Summaries[models.ResourceTransactions].Relinked)
	assert.Len(t, requester.paths(), calls, "relink must not call the API")

	got, err = storage.GetRecord[models.Transaction](ctx, store, models.ResourceTransactions, 10)
	require.NoError(t, err)
	assert.True(t, got.AccountLinked)
}
