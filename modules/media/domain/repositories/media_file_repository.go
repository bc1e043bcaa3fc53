package repositories

import (
	"context"

	"ingestpipe/modules/media/domain/entities"
)

// MediaFileRepository is the narrow persistence port C1/C2 use. The
// content store calls FindByOwnerAndHash to implement dedup inside the
// same transaction as the insert, so Create takes a context that the
// caller may already be running in a transaction on.
type MediaFileRepository interface {
	Create(ctx context.Context, mf *entities.MediaFile) error
	FindByID(ctx context.Context, id string) (*entities.MediaFile, error)
	FindByOwnerAndHash(ctx context.Context, ownerID, contentHash string) (*entities.MediaFile, error)
	Delete(ctx context.Context, id string) error
	// WithTransaction runs fn with a repository bound to a single DB
	// transaction, committing on success and rolling back on error or
	// panic - used by Ingest.
	WithTransaction(ctx context.Context, fn func(tx MediaFileRepository) error) error
}
