package storage

import (
	"context"
	"time"

	"github.com/iudanet/finsync/internal/models"
)

// ResourceFilter narrows a resource listing. Zero values disable a filter.
type ResourceFilter struct {
	Since     time.Time // только записи, изменённые не раньше Since
	AccountID int64     // только записи этого счёта
}

// ResourceStorage defines interface for resource records served by the sandbox API
type ResourceStorage interface {
	// PutResource creates or replaces a record identified by user, type and ID
	PutResource(ctx context.Context, res *models.StoredResource) error

	// ListResources returns the user's records of one type ordered by ID
	// Returns empty slice if no records found
	ListResources(ctx context.Context, userID string, rt models.ResourceType, filter ResourceFilter) ([]*models.StoredResource, error)

	// DeleteResource deletes one record
	// Returns ErrResourceNotFound if record doesn't exist
	DeleteResource(ctx context.Context, userID string, rt models.ResourceType, id int64) error
}
