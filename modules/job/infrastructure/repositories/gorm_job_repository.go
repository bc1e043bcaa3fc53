package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ingestpipe/modules/job/domain/entities"
)

type GormJobRepository struct {
	db *gorm.DB
}

func NewGormJobRepository(db *gorm.DB) *GormJobRepository {
	return &GormJobRepository{db: db}
}

func (r *GormJobRepository) Create(ctx context.Context, j *entities.Job) error {
	return r.db.WithContext(ctx).Create(j).Error
}

func (r *GormJobRepository) FindByID(ctx context.Context, id string) (*entities.Job, error) {
	var j entities.Job
	if err := r.db.WithContext(ctx).First(&j, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *GormJobRepository) FindByOwnerID(ctx context.Context, ownerID string) ([]*entities.Job, error) {
	var jobs []*entities.Job
	err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&jobs).Error
	return jobs, err
}

func (r *GormJobRepository) Update(ctx context.Context, j *entities.Job) error {
	result := r.db.WithContext(ctx).Save(j)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("job not found: %s", j.GetID())
	}
	return nil
}
