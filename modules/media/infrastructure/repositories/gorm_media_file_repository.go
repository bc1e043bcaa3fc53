package repositories

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"ingestpipe/modules/media/domain/entities"
	"ingestpipe/modules/media/domain/repositories"
)

// GormMediaFileRepository implements MediaFileRepository using GORM,
// in the NewGormXRepository(db)/WithContext shape used by the other
// repositories in this codebase.
type GormMediaFileRepository struct {
	db *gorm.DB
}

func NewGormMediaFileRepository(db *gorm.DB) *GormMediaFileRepository {
	return &GormMediaFileRepository{db: db}
}

func (r *GormMediaFileRepository) Create(ctx context.Context, mf *entities.MediaFile) error {
	return r.db.WithContext(ctx).Create(mf).Error
}

func (r *GormMediaFileRepository) FindByID(ctx context.Context, id string) (*entities.MediaFile, error) {
	var mf entities.MediaFile
	if err := r.db.WithContext(ctx).First(&mf, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &mf, nil
}

func (r *GormMediaFileRepository) FindByOwnerAndHash(ctx context.Context, ownerID, contentHash string) (*entities.MediaFile, error) {
	var mf entities.MediaFile
	err := r.db.WithContext(ctx).
		Where("owner_id = ? AND content_hash = ?", ownerID, contentHash).
		First(&mf).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mf, nil
}

// Delete hard-deletes the media_files row rather than soft-deleting it,
// so the migrations' ON DELETE CASCADE foreign keys actually fire and
// take the owned Transcription/Chunk rows (and anything chained off
// them) with it. A soft delete is an UPDATE at the DB level and never
// triggers a foreign-key cascade.
func (r *GormMediaFileRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Unscoped().Delete(&entities.MediaFile{}, "id = ?", id).Error
}

func (r *GormMediaFileRepository) WithTransaction(ctx context.Context, fn func(tx repositories.MediaFileRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormMediaFileRepository{db: tx})
	})
}
