package reconcile

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/iudanet/finsync/internal/client/storage"
	"github.com/iudanet/finsync/internal/models"
)

// linkIndex буферизует изменения индекса target ID -> owner IDs
// в пределах одной транзакции и пишет их одним проходом в flush.
type linkIndex struct {
	tx      storage.RecordTx
	entries map[models.ResourceType]map[int64][]int64
	dirty   map[models.ResourceType]map[int64]struct{}
}

func newLinkIndex(tx storage.RecordTx) *linkIndex {
	return &linkIndex{
		tx:      tx,
		entries: make(map[models.ResourceType]map[int64][]int64),
		dirty:   make(map[models.ResourceType]map[int64]struct{}),
	}
}

func (ix *linkIndex) owners(it models.ResourceType, target int64) ([]int64, error) {
	if m, ok := ix.entries[it]; ok {
		if owners, ok := m[target]; ok {
			return owners, nil
		}
	}

	var owners []int64
	data, err := ix.tx.Get(it, target)
	switch {
	case errors.Is(err, storage.ErrRecordNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load link index %s/%d: %w", it, target, err)
	default:
		if err := json.Unmarshal(data, &owners); err != nil {
			return nil, fmt.Errorf("failed to decode link index %s/%d: %w", it, target, err)
		}
	}

	ix.put(it, target, owners, false)
	return owners, nil
}

func (ix *linkIndex) put(it models.ResourceType, target int64, owners []int64, dirty bool) {
	m, ok := ix.entries[it]
	if !ok {
		m = make(map[int64][]int64)
		ix.entries[it] = m
	}
	m[target] = owners

	if !dirty {
		return
	}
	d, ok := ix.dirty[it]
	if !ok {
		d = make(map[int64]struct{})
		ix.dirty[it] = d
	}
	d[target] = struct{}{}
}

func (ix *linkIndex) add(it models.ResourceType, target, owner int64) error {
	owners, err := ix.owners(it, target)
	if err != nil {
		return err
	}
	if _, found := slices.BinarySearch(owners, owner); found {
		return nil
	}

	owners = append(slices.Clone(owners), owner)
	slices.Sort(owners)
	ix.put(it, target, owners, true)
	return nil
}

func (ix *linkIndex) remove(it models.ResourceType, target, owner int64) error {
	owners, err := ix.owners(it, target)
	if err != nil {
		return err
	}
	pos, found := slices.BinarySearch(owners, owner)
	if !found {
		return nil
	}

	owners = slices.Delete(slices.Clone(owners), pos, pos+1)
	ix.put(it, target, owners, true)
	return nil
}

// reset помечает весь индекс пустым, чтобы перестроить его с нуля
func (ix *linkIndex) reset(it models.ResourceType) error {
	var targets []int64
	err := ix.tx.ForEach(it, func(id int64, _ []byte) error {
		targets = append(targets, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan link index %s: %w", it, err)
	}

	for _, target := range targets {
		ix.put(it, target, nil, true)
	}
	return nil
}

func (ix *linkIndex) flush() error {
	for it, targets := range ix.dirty {
		var (
			upserts []storage.Record
			deletes []int64
		)
		for target := range targets {
			owners := ix.entries[it][target]
			if len(owners) == 0 {
				deletes = append(deletes, target)
				continue
			}
			data, err := json.Marshal(owners)
			if err != nil {
				return fmt.Errorf("failed to encode link index %s/%d: %w", it, target, err)
			}
			upserts = append(upserts, storage.Record{ID: target, Data: data})
		}

		if len(upserts) > 0 {
			if err := ix.tx.UpsertBatch(it, upserts); err != nil {
				return fmt.Errorf("failed to write link index %s: %w", it, err)
			}
		}
		if len(deletes) > 0 {
			if err := ix.tx.DeleteBatch(it, deletes); err != nil {
				return fmt.Errorf("failed to prune link index %s: %w", it, err)
			}
		}
	}
	clear(ix.dirty)
	return nil
}
