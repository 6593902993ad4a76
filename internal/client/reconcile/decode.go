package reconcile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotList indicates that a listing body is not a JSON array.
var ErrNotList = errors.New("response body is not a list")

// DecodeFailure describes one listing element that could not be used.
// It is reported in the Summary and never fails the whole batch.
type DecodeFailure struct {
	Err   error
	Index int   // позиция в ответе сервера
	ID    int64 // 0, если ID не удалось извлечь
}

func (f *DecodeFailure) Error() string {
	if f.ID != 0 {
		return fmt.Sprintf("element %d (id %d): %v", f.Index, f.ID, f.Err)
	}
	return fmt.Sprintf("element %d: %v", f.Index, f.Err)
}

func (f *DecodeFailure) Unwrap() error {
	return f.Err
}

// Item is one decoded listing element: either a record or a failure.
type Item[T any] struct {
	Record  *T
	Failure *DecodeFailure
}

// Items wraps already decoded records.
func Items[T any](records []T) []Item[T] {
	items := make([]Item[T], len(records))
	for i := range records {
		items[i] = Item[T]{Record: &records[i]}
	}
	return items
}

// DecodeList decodes a JSON array element by element. An element that
// does not unmarshal into T or is rejected by validate becomes a
// DecodeFailure; only a body that is not an array is an error.
func DecodeList[T any](body []byte, validate func(*T) error) ([]Item[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotList
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotList, err)
	}

	items := make([]Item[T], 0, len(raw))
	for i, elem := range raw {
		var v T
		if err := json.Unmarshal(elem, &v); err != nil {
			items = append(items, Item[T]{Failure: &DecodeFailure{Index: i, ID: peekID(elem), Err: err}})
			continue
		}
		if validate != nil {
			if err := validate(&v); err != nil {
				items = append(items, Item[T]{Failure: &DecodeFailure{Index: i, ID: peekID(elem), Err: err}})
				continue
			}
		}
		items = append(items, Item[T]{Record: &v})
	}
	return items, nil
}

// peekID достаёт id из элемента, который не разобрался целиком
func peekID(elem json.RawMessage) int64 {
	var probe struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal(elem, &probe); err != nil {
		return 0
	}
	id, err := probe.ID.Int64()
	if err != nil {
		return 0
	}
	return id
}
