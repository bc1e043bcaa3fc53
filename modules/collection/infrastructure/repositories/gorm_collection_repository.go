package repositories

import (
	"context"

	"gorm.io/gorm"

	"ingestpipe/modules/collection/domain/entities"
)

type GormCollectionRepository struct {
	db *gorm.DB
}

func NewGormCollectionRepository(db *gorm.DB) *GormCollectionRepository {
	return &GormCollectionRepository{db: db}
}

func (r *GormCollectionRepository) Create(ctx context.Context, c *entities.Collection) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *GormCollectionRepository) FindByID(ctx context.Context, id string) (*entities.Collection, error) {
	var c entities.Collection
	if err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *GormCollectionRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*entities.Collection, error) {
	var cs []*entities.Collection
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&cs).Error
	return cs, err
}

func (r *GormCollectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entities.Collection{}, "id = ?", id).Error
}

func (r *GormCollectionRepository) AddMember(ctx context.Context, link *entities.TranscriptionCollection) error {
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *GormCollectionRepository) FindMembers(ctx context.Context, collectionID string) ([]*entities.TranscriptionCollection, error) {
	var links []*entities.TranscriptionCollection
	err := r.db.WithContext(ctx).
		Where("collection_id = ?", collectionID).
		Order("position ASC").
		Find(&links).Error
	return links, err
}
