package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/iudanet/finsync/internal/async"
	"github.com/iudanet/finsync/internal/client/errs"
	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
)

// ErrInvalidID indicates a record whose primary key is missing or not positive.
var ErrInvalidID = errors.New("record has no valid id")

// Summary reports what one reconcile call did.
type Summary struct {
	Failures   []*DecodeFailure
	Type       models.ResourceType
	Received   int // элементов в ответе сервера
	Inserted   int
	Updated    int
	Unchanged  int
	Deleted    int
	Skipped    int // битые элементы
	Duplicates int // повторы ID в одном ответе, побеждает последний
	Linked     int // ссылок, для которых цель найдена
	Unlinked   int // ссылок без цели
	Relinked   int // записей-владельцев, у которых поменялся признак связи
}

// backlink обновляет признак связи у владельца, когда цель появилась или исчезла
type backlink struct {
	set   func(data []byte, target int64, linked bool) ([]byte, error)
	owner models.ResourceType
	index models.ResourceType
}

// Reconciler applies server listings to a RecordStore.
// Calls for the same resource type are serialized, different types run
// concurrently. Every call is a single store transaction.
type Reconciler struct {
	store      storage.RecordStore
	logger     *slog.Logger
	locks      map[models.ResourceType]*sync.Mutex
	backlinks  map[models.ResourceType][]backlink
	registered map[models.ResourceType]struct{}
	mu         sync.Mutex
}

// New creates a Reconciler over store.
func New(store storage.RecordStore, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		store:      store,
		logger:     logger,
		locks:      make(map[models.ResourceType]*sync.Mutex),
		backlinks:  make(map[models.ResourceType][]backlink),
		registered: make(map[models.ResourceType]struct{}),
	}
}

// Register makes r aware of the links declared by s, so that inserting or
// deleting a link target updates the linked flag on its owners.
// Apply registers its schema on first use; registering up front matters
// when targets may be reconciled before any owner.
func Register[T any](r *Reconciler, s Schema[T]) error {
	if err := s.validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.registered[s.Type]; ok {
		return nil
	}
	r.registered[s.Type] = struct{}{}

	for _, l := range s.Links {
		r.backlinks[l.Target] = append(r.backlinks[l.Target], backlink{
			owner: s.Type,
			index: indexType(s.Type, l.Name),
			set: func(data []byte, target int64, linked bool) ([]byte, error) {
				var v T
				if err := json.Unmarshal(data, &v); err != nil {
					return nil, err
				}
				// владелец мог уже сменить ссылку, индекс тогда устарел
				if l.Key(&v) != target {
					return data, nil
				}
				l.SetLinked(&v, linked)
				return json.Marshal(&v)
			},
		})
	}
	return nil
}

// Owners returns the IDs of owner records whose link points at target.
func (r *Reconciler) Owners(ctx context.Context, owner models.ResourceType, link string, target int64) ([]int64, error) {
	data, err := r.store.Get(ctx, indexType(owner, link), target)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var owners []int64
	if err := json.Unmarshal(data, &owners); err != nil {
		return nil, fmt.Errorf("failed to decode link index: %w", err)
	}
	return owners, nil
}

// lock захватывает мьютексы типа и всех типов, которые на него ссылаются,
// всегда в одном порядке
func (r *Reconciler) lock(rt models.ResourceType) func() {
	r.mu.Lock()
	types := []models.ResourceType{rt}
	for _, bl := range r.backlinks[rt] {
		if !slices.Contains(types, bl.owner) {
			types = append(types, bl.owner)
		}
	}
	slices.Sort(types)

	mutexes := make([]*sync.Mutex, 0, len(types))
	for _, t := range types {
		m, ok := r.locks[t]
		if !ok {
			m = &sync.Mutex{}
			r.locks[t] = m
		}
		mutexes = append(mutexes, m)
	}
	r.mu.Unlock()

	for _, m := range mutexes {
		m.Lock()
	}
	return func() {
		for i := len(mutexes) - 1; i >= 0; i-- {
			mutexes[i].Unlock()
		}
	}
}

func (r *Reconciler) backlinksFor(target models.ResourceType) []backlink {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.backlinks[target])
}

// begin registers s, takes the type locks and re-checks ctx once they are held.
// Nothing is cancelled after the transaction starts.
func begin[T any](ctx context.Context, r *Reconciler, s Schema[T]) (func(), error) {
	if err := Register(r, s); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	unlock := r.lock(s.Type)
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, err
	}
	return unlock, nil
}

// commit runs fn in one store transaction and classifies the failure.
func (r *Reconciler) commit(ctx context.Context, fn func(tx storage.RecordTx) error) error {
	err := r.store.Update(ctx, fn)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return err
	}
	return errs.Storage(err)
}

// Apply upserts the decoded listing into the store. Failed items are
// counted and skipped. With a non-nil scope, stored records matching the
// scope that are absent from the listing are deleted.
func Apply[T any](ctx context.Context, r *Reconciler, s Schema[T], items []Item[T], scope Scope[T]) (*Summary, error) {
	unlock, err := begin(ctx, r, s)
	if err != nil {
		return nil, err
	}
	defer unlock()

	summary := &Summary{Type: s.Type, Received: len(items)}
	records := collect(r.logger, s, items, summary)

	var result Summary
	err = r.commit(ctx, func(tx storage.RecordTx) error {
		// при повторном вызове fn счётчики начинаются заново
		result = *summary
		return applyTx(tx, r, s, records, scope, &result)
	})
	if err != nil {
		r.logger.Error("Reconcile failed", "type", s.Type, "error", err)
		return nil, err
	}

	r.logger.Info("Reconcile completed",
		"type", result.Type,
		"received", result.Received,
		"inserted", result.Inserted,
		"updated", result.Updated,
		"unchanged", result.Unchanged,
		"deleted", result.Deleted,
		"skipped", result.Skipped,
		"linked", result.Linked,
		"unlinked", result.Unlinked,
		"relinked", result.Relinked,
		"scoped", scope != nil,
	)
	return &result, nil
}

// ApplyAsync runs Apply in the background.
func ApplyAsync[T any](ctx context.Context, r *Reconciler, s Schema[T], items []Item[T], scope Scope[T]) *async.Future[*Summary] {
	return async.Run(ctx, func(ctx context.Context) (*Summary, error) {
		return Apply(ctx, r, s, items, scope)
	})
}

// collect отбрасывает битые элементы и схлопывает повторы ID
func collect[T any](logger *slog.Logger, s Schema[T], items []Item[T], summary *Summary) []*T {
	records := make([]*T, 0, len(items))
	pos := make(map[int64]int, len(items))

	for i, item := range items {
		failure := item.Failure
		if failure == nil && item.Record == nil {
			failure = &DecodeFailure{Index: i, Err: ErrInvalidID}
		}
		if failure == nil {
			if id := s.ID(item.Record); id <= 0 {
				failure = &DecodeFailure{Index: i, ID: id, Err: ErrInvalidID}
			}
		}
		if failure != nil {
			summary.Skipped++
			summary.Failures = append(summary.Failures, failure)
			logger.Warn("Skipping malformed record",
				"type", s.Type,
				"index", failure.Index,
				"id", failure.ID,
				"error", failure.Err,
			)
			continue
		}

		id := s.ID(item.Record)
		if p, ok := pos[id]; ok {
			summary.Duplicates++
			records[p] = item.Record
			logger.Debug("Duplicate record in listing, keeping the last one", "type", s.Type, "id", id)
			continue
		}
		pos[id] = len(records)
		records = append(records, item.Record)
	}
	return records
}

func applyTx[T any](tx storage.RecordTx, r *Reconciler, s Schema[T], records []*T, scope Scope[T], summary *Summary) error {
	ix := newLinkIndex(tx)
	incoming := make(map[int64]struct{}, len(records))
	upserts := make([]storage.Record, 0, len(records))
	var inserted []int64

	for _, rec := range records {
		id := s.ID(rec)
		incoming[id] = struct{}{}

		storedData, stored, err := loadStored(tx, r.logger, s, id)
		if err != nil {
			return err
		}
		if stored != nil && s.Merge != nil {
			s.Merge(rec, stored)
		}

		for _, l := range s.Links {
			if err := resolveLink(tx, ix, s.Type, l, id, rec, stored, summary); err != nil {
				return err
			}
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to encode %s %d: %w", s.Type, id, err)
		}

		switch {
		case storedData == nil:
			summary.Inserted++
			inserted = append(inserted, id)
			r.logger.Debug("Inserting record", "type", s.Type, "id", id)
		case bytes.Equal(storedData, data):
			summary.Unchanged++
			continue
		default:
			summary.Updated++
			r.logger.Debug("Updating record", "type", s.Type, "id", id)
		}
		upserts = append(upserts, storage.Record{ID: id, Data: data})
	}

	if len(upserts) > 0 {
		if err := tx.UpsertBatch(s.Type, upserts); err != nil {
			return fmt.Errorf("failed to upsert %s: %w", s.Type, err)
		}
	}

	var deleted []int64
	if scope != nil {
		err := tx.ForEach(s.Type, func(id int64, data []byte) error {
			if _, ok := incoming[id]; ok {
				return nil
			}
			var v T
			if err := json.Unmarshal(data, &v); err != nil {
				r.logger.Warn("Stored record is unreadable, leaving it in place", "type", s.Type, "id", id, "error", err)
				return nil
			}
			if !scope(&v) {
				return nil
			}
			deleted = append(deleted, id)
			return unindex(ix, s, id, &v)
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", s.Type, err)
		}
	}

	if len(deleted) > 0 {
		if err := tx.DeleteBatch(s.Type, deleted); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.Type, err)
		}
		summary.Deleted = len(deleted)
		r.logger.Debug("Deleted records absent from listing", "type", s.Type, "ids", deleted)
	}

	if err := relinkOwners(tx, ix, r, s.Type, inserted, true, summary); err != nil {
		return err
	}
	if err := relinkOwners(tx, ix, r, s.Type, deleted, false, summary); err != nil {
		return err
	}
	return ix.flush()
}

// loadStored returns the stored bytes and, if they decode, the stored record.
func loadStored[T any](tx storage.RecordTx, logger *slog.Logger, s Schema[T], id int64) ([]byte, *T, error) {
	data, err := tx.Get(s.Type, id)
	if errors.Is(err, storage.ErrRecordNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load %s %d: %w", s.Type, id, err)
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		logger.Warn("Stored record is unreadable, replacing it", "type", s.Type, "id", id, "error", err)
		return data, nil, nil
	}
	return data, &v, nil
}

// resolveLink ищет цель ссылки в той же транзакции и обновляет индекс
func resolveLink[T any](tx storage.RecordTx, ix *linkIndex, owner models.ResourceType, l Link[T], id int64, rec, stored *T, summary *Summary) error {
	it := indexType(owner, l.Name)
	key := l.Key(rec)

	if stored != nil {
		if old := l.Key(stored); old != 0 && old != key {
			if err := ix.remove(it, old, id); err != nil {
				return err
			}
		}
	}

	if key == 0 {
		l.SetLinked(rec, false)
		return nil
	}
	if err := ix.add(it, key, id); err != nil {
		return err
	}

	linked, err := exists(tx, l.Target, key)
	if err != nil {
		return err
	}
	l.SetLinked(rec, linked)
	if linked {
		summary.Linked++
	} else {
		summary.Unlinked++
	}
	return nil
}

func exists(tx storage.RecordTx, rt models.ResourceType, id int64) (bool, error) {
	_, err := tx.Get(rt, id)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to look up %s %d: %w", rt, id, err)
	default:
		return true, nil
	}
}

// unindex убирает удаляемую запись из всех её индексов
func unindex[T any](ix *linkIndex, s Schema[T], id int64, v *T) error {
	for _, l := range s.Links {
		if key := l.Key(v); key != 0 {
			if err := ix.remove(indexType(s.Type, l.Name), key, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// relinkOwners переключает признак связи у владельцев, чьи цели
// только что появились (linked=true) или были удалены (linked=false)
func relinkOwners(tx storage.RecordTx, ix *linkIndex, r *Reconciler, target models.ResourceType, ids []int64, linked bool, summary *Summary) error {
	if len(ids) == 0 {
		return nil
	}

	for _, bl := range r.backlinksFor(target) {
		var upserts []storage.Record
		for _, id := range ids {
			owners, err := ix.owners(bl.index, id)
			if err != nil {
				return err
			}
			for _, ownerID := range owners {
				data, err := tx.Get(bl.owner, ownerID)
				if errors.Is(err, storage.ErrRecordNotFound) {
					continue
				}
				if err != nil {
					return fmt.Errorf("failed to load %s %d: %w", bl.owner, ownerID, err)
				}

				out, err := bl.set(data, id, linked)
				if err != nil {
					r.logger.Warn("Stored record is unreadable, cannot relink", "type", bl.owner, "id", ownerID, "error", err)
					continue
				}
				if bytes.Equal(out, data) {
					continue
				}
				upserts = append(upserts, storage.Record{ID: ownerID, Data: out})
			}
		}

		if len(upserts) == 0 {
			continue
		}
		if err := tx.UpsertBatch(bl.owner, upserts); err != nil {
			return fmt.Errorf("failed to relink %s: %w", bl.owner, err)
		}
		summary.Relinked += len(upserts)
	}
	return nil
}

// Relink re-resolves every link of every stored record of s.Type and
// rebuilds the link index from scratch.
func Relink[T any](ctx context.Context, r *Reconciler, s Schema[T]) (*Summary, error) {
	unlock, err := begin(ctx, r, s)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result Summary
	err = r.commit(ctx, func(tx storage.RecordTx) error {
		result = Summary{Type: s.Type}
		ix := newLinkIndex(tx)
		for _, l := range s.Links {
			if err := ix.reset(indexType(s.Type, l.Name)); err != nil {
				return err
			}
		}

		type stored struct {
			data []byte
			id   int64
		}
		var all []stored
		err := tx.ForEach(s.Type, func(id int64, data []byte) error {
			all = append(all, stored{id: id, data: slices.Clone(data)})
			return nil
		})
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", s.Type, err)
		}

		var upserts []storage.Record
		for _, rec := range all {
			var v T
			if err := json.Unmarshal(rec.data, &v); err != nil {
				result.Skipped++
				r.logger.Warn("Stored record is unreadable, cannot relink", "type", s.Type, "id", rec.id, "error", err)
				continue
			}
			result.Received++
			for _, l := range s.Links {
				if err := resolveLink(tx, ix, s.Type, l, rec.id, &v, nil, &result); err != nil {
					return err
				}
			}

			data, err := json.Marshal(&v)
			if err != nil {
				return fmt.Errorf("failed to encode %s %d: %w", s.Type, rec.id, err)
			}
			if bytes.Equal(data, rec.data) {
				result.Unchanged++
				continue
			}
			result.Relinked++
			upserts = append(upserts, storage.Record{ID: rec.id, Data: data})
		}

		if len(upserts) > 0 {
			if err := tx.UpsertBatch(s.Type, upserts); err != nil {
				return fmt.Errorf("failed to relink %s: %w", s.Type, err)
			}
		}
		return ix.flush()
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Relink completed",
		"type", result.Type,
		"records", result.Received,
		"linked", result.Linked,
		"unlinked", result.Unlinked,
		"relinked", result.Relinked,
	)
	return &result, nil
}

// Remove deletes records the server confirmed as deleted.
// IDs that are not stored are ignored.
func Remove[T any](ctx context.Context, r *Reconciler, s Schema[T], ids ...int64) (*Summary, error) {
	unlock, err := begin(ctx, r, s)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var result Summary
	err = r.commit(ctx, func(tx storage.RecordTx) error {
		result = Summary{Type: s.Type, Received: len(ids)}
		ix := newLinkIndex(tx)

		var deleted []int64
		for _, id := range ids {
			data, err := tx.Get(s.Type, id)
			if errors.Is(err, storage.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return fmt.Errorf("failed to load %s %d: %w", s.Type, id, err)
			}

			var v T
			if err := json.Unmarshal(data, &v); err == nil {
				if err := unindex(ix, s, id, &v); err != nil {
					return err
				}
			}
			deleted = append(deleted, id)
		}

		if len(deleted) == 0 {
			return nil
		}
		if err := tx.DeleteBatch(s.Type, deleted); err != nil {
			return fmt.Errorf("failed to delete %s: %w", s.Type, err)
		}
		result.Deleted = len(deleted)

		if err := relinkOwners(tx, ix, r, s.Type, deleted, false, &result); err != nil {
			return err
		}
		return ix.flush()
	})
	if err != nil {
		return nil, err
	}

	r.logger.Info("Remove completed", "type", s.Type, "requested", len(ids), "deleted", result.Deleted)
	return &result, nil
}

// Modify changes local fields of one stored record under the type lock.
// fn must not change the record ID. Returns storage.ErrRecordNotFound
// when the record is not stored and fn's own error unchanged.
func Modify[T any](ctx context.Context, r *Reconciler, s Schema[T], id int64, fn func(*T) error) error {
	unlock, err := begin(ctx, r, s)
	if err != nil {
		return err
	}
	defer unlock()

	var callerErr error
	err = r.commit(ctx, func(tx storage.RecordTx) error {
		data, stored, err := loadStored(tx, r.logger, s, id)
		if err != nil {
			return err
		}
		if data == nil || stored == nil {
			callerErr = storage.ErrRecordNotFound
			return callerErr
		}

		v := *stored
		if err := fn(&v); err != nil {
			callerErr = err
			return err
		}
		if s.ID(&v) != id {
			callerErr = fmt.Errorf("%w: id changed from %d to %d", ErrInvalidID, id, s.ID(&v))
			return callerErr
		}

		ix := newLinkIndex(tx)
		var summary Summary
		for _, l := range s.Links {
			if err := resolveLink(tx, ix, s.Type, l, id, &v, stored, &summary); err != nil {
				return err
			}
		}

		out, err := json.Marshal(&v)
		if err != nil {
			return fmt.Errorf("failed to encode %s %d: %w", s.Type, id, err)
		}
		if bytes.Equal(out, data) {
			return nil
		}
		if err := tx.UpsertBatch(s.Type, []storage.Record{{ID: id, Data: out}}); err != nil {
			return fmt.Errorf("failed to update %s %d: %w", s.Type, id, err)
		}
		return ix.flush()
	})
	if callerErr != nil {
		return callerErr
	}
	return err
}
