package repositories

import (
	"context"

	"ingestpipe/modules/collection/domain/entities"
)

type CollectionRepository interface {
	Create(ctx context.Context, c *entities.Collection) error
	FindByID(ctx context.Context, id string) (*entities.Collection, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*entities.Collection, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, link *entities.TranscriptionCollection) error
	FindMembers(ctx context.Context, collectionID string) ([]*entities.TranscriptionCollection, error)
}
