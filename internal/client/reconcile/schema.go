// Package reconcile merges server listings into the local record store:
// keyed upsert, deletion by absence inside an explicit scope and
// foreign-key linking through a link index.
package reconcile

import (
	"fmt"

	"github.com/iudanet/finsync/internal/models"
)

// Schema describes how records of one resource type are reconciled.
type Schema[T any] struct {
	// ID returns the primary key; values <= 0 are rejected
	ID func(*T) int64

	// Merge copies local-only fields from the stored copy into the
	// incoming record before it is written. Nil means nothing is local.
	Merge func(incoming, stored *T)

	Type  models.ResourceType
	Links []Link[T]
}

// Link is a foreign key from T to a record of another type.
type Link[T any] struct {
	// Key returns the referenced ID, 0 if the record has no reference
	Key func(*T) int64

	// SetLinked stores whether the referenced record exists locally
	SetLinked func(*T, bool)

	Name   string
	Target models.ResourceType
}

// Scope bounds the local records a listing is authoritative for.
// Records inside the scope that the listing does not contain are deleted.
// A nil Scope means the listing is partial and nothing is deleted.
type Scope[T any] func(*T) bool

// All returns a scope covering every record of the type.
func All[T any]() Scope[T] {
	return func(*T) bool { return true }
}

// indexType is the pseudo resource type holding the link index
// target ID -> owner IDs for one link.
func indexType(owner models.ResourceType, link string) models.ResourceType {
	return models.ResourceType(fmt.Sprintf("links:%s.%s", owner, link))
}

func (s Schema[T]) validate() error {
	if s.Type == "" {
		return fmt.Errorf("schema has no resource type")
	}
	if s.ID == nil {
		return fmt.Errorf("schema %s has no ID accessor", s.Type)
	}
	for _, l := range s.Links {
		if l.Name == "" || l.Target == "" || l.Key == nil || l.SetLinked == nil {
			return fmt.Errorf("schema %s has incomplete link %q", s.Type, l.Name)
		}
	}
	return nil
}
