package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"ingestpipe/modules/topic/domain/entities"
)

type GormTopicRepository struct {
	db *gorm.DB
}

func NewGormTopicRepository(db *gorm.DB) *GormTopicRepository {
	return &GormTopicRepository{db: db}
}

func (r *GormTopicRepository) Create(ctx context.Context, t *entities.Topic) error {
	if t.ParentID != nil {
		if _, err := r.FindByID(ctx, *t.ParentID); err != nil {
			return fmt.Errorf("parent topic not found: %w", err)
		}
	}
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *GormTopicRepository) FindByID(ctx context.Context, id string) (*entities.Topic, error) {
	var t entities.Topic
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTopicRepository) FindByName(ctx context.Context, name string) (*entities.Topic, error) {
	var t entities.Topic
	err := r.db.WithContext(ctx).First(&t, "name = ?", name).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *GormTopicRepository) ListAll(ctx context.Context) ([]*entities.Topic, error) {
	var topics []*entities.Topic
	err := r.db.WithContext(ctx).Order("name ASC").Find(&topics).Error
	return topics, err
}

// Reparent walks newParentID's ancestor chain in-memory and rejects
// the move if topicID appears in it, enforcing P1 before the write
// ever reaches the row.
func (r *GormTopicRepository) Reparent(ctx context.Context, topicID string, newParentID *string) error {
	if newParentID != nil {
		all, err := r.ListAll(ctx)
		if err != nil {
			return err
		}
		byID := make(map[string]*entities.Topic, len(all))
		for _, t := range all {
			byID[t.GetID()] = t
		}
		cursor := *newParentID
		for {
			if cursor == topicID {
				return fmt.Errorf("reparenting %s under %s would create a cycle", topicID, *newParentID)
			}
			t, ok := byID[cursor]
			if !ok || t.ParentID == nil {
				break
			}
			cursor = *t.ParentID
		}
	}
	return r.db.WithContext(ctx).Model(&entities.Topic{}).Where("id = ?", topicID).Update("parent_id", newParentID).Error
}

func (r *GormTopicRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&entities.Topic{}, "id = ?", id).Error
}

func (r *GormTopicRepository) EnsureUnknown(ctx context.Context) (string, error) {
	existing, err := r.FindByName(ctx, entities.UnknownTopicName)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return existing.GetID(), nil
	}
	t := entities.NewTopic(entities.UnknownTopicName, nil, nil)
	if err := r.db.WithContext(ctx).Create(t).Error; err != nil {
		return "", err
	}
	return t.GetID(), nil
}

type GormTranscriptionTopicRepository struct {
	db *gorm.DB
}

func NewGormTranscriptionTopicRepository(db *gorm.DB) *GormTranscriptionTopicRepository {
	return &GormTranscriptionTopicRepository{db: db}
}

func (r *GormTranscriptionTopicRepository) Link(ctx context.Context, link *entities.TranscriptionTopic) error {
	exists, err := r.Exists(ctx, link.TranscriptionID, link.TopicID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	return r.db.WithContext(ctx).Create(link).Error
}

func (r *GormTranscriptionTopicRepository) FindByTranscriptionID(ctx context.Context, transcriptionID string) ([]*entities.TranscriptionTopic, error) {
	var links []*entities.TranscriptionTopic
	err := r.db.WithContext(ctx).Where("transcription_id = ?", transcriptionID).Find(&links).Error
	return links, err
}

func (r *GormTranscriptionTopicRepository) Exists(ctx context.Context, transcriptionID, topicID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.TranscriptionTopic{}).
		Where("transcription_id = ? AND topic_id = ?", transcriptionID, topicID).
		Count(&count).Error
	return count > 0, err
}
