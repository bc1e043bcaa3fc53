package repositories

import (
	"context"

	"ingestpipe/modules/transcription/domain/entities"
)

type TranscriptionRepository interface {
	Save(ctx context.Context, t *entities.Transcription) error
	FindByID(ctx context.Context, id string) (*entities.Transcription, error)
	FindByMediaFileID(ctx context.Context, mediaFileID string) ([]*entities.Transcription, error)
	Update(ctx context.Context, t *entities.Transcription) error
	Delete(ctx context.Context, id string) error
}
