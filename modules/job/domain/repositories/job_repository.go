package repositories

import (
	"context"

	"ingestpipe/modules/job/domain/entities"
)

type JobRepository interface {
	Create(ctx context.Context, j *entities.Job) error
	FindByID(ctx context.Context, id string) (*entities.Job, error)
	FindByOwnerID(ctx context.Context, ownerID string) ([]*entities.Job, error)
	Update(ctx context.Context, j *entities.Job) error
}
