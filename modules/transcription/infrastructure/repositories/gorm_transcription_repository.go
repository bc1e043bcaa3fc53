package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ingestpipe/modules/transcription/domain/entities"
)

// GormTranscriptionRepository follows this codebase's standard GORM
// repository shape (WithContext, Save-as-upsert, RowsAffected check on
// Update).
type GormTranscriptionRepository struct {
	db *gorm.DB
}

func NewGormTranscriptionRepository(db *gorm.DB) *GormTranscriptionRepository {
	return &GormTranscriptionRepository{db: db}
}

func (r *GormTranscriptionRepository) Save(ctx context.Context, t *entities.Transcription) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *GormTranscriptionRepository) FindByID(ctx context.Context, id string) (*entities.Transcription, error) {
	var t entities.Transcription
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTranscriptionRepository) FindByMediaFileID(ctx context.Context, mediaFileID string) ([]*entities.Transcription, error) {
	var ts []*entities.Transcription
	err := r.db.WithContext(ctx).Where("media_file_id = ?", mediaFileID).Order("created_at DESC").Find(&ts).Error
	return ts, err
}

func (r *GormTranscriptionRepository) Update(ctx context.Context, t *entities.Transcription) error {
	result := r.db.WithContext(ctx).Save(t)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("transcription not found: %s", t.GetID())
	}
	return nil
}

func (r *GormTranscriptionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entities.Transcription{}, "id = ?", id).Error
}
