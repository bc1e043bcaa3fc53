package repositories

import (
	"context"

	"ingestpipe/modules/topic/domain/entities"
)

// TopicRepository enforces P1 (acyclic parent relation) on Create/
// Reparent, outside the type itself.
type TopicRepository interface {
	Create(ctx context.Context, t *entities.Topic) error
	FindByID(ctx context.Context, id string) (*entities.Topic, error)
	FindByName(ctx context.Context, name string) (*entities.Topic, error)
	ListAll(ctx context.Context) ([]*entities.Topic, error)
	// Reparent moves t under newParentID, rejecting the change if it
	// would introduce a cycle (P1).
	Reparent(ctx context.Context, topicID string, newParentID *string) error
	Delete(ctx context.Context, id string) error
	// EnsureUnknown returns the Unknown topic's id, creating it as a
	// root topic if it doesn't exist yet (P2).
	EnsureUnknown(ctx context.Context) (string, error)
}

// TranscriptionTopicRepository persists C7's link rows.
type TranscriptionTopicRepository interface {
	// Link inserts the row unless (transcription_id, topic_id) already
	// exists, so a retried classification activity stays idempotent.
	Link(ctx context.Context, link *entities.TranscriptionTopic) error
	FindByTranscriptionID(ctx context.Context, transcriptionID string) ([]*entities.TranscriptionTopic, error)
	Exists(ctx context.Context, transcriptionID, topicID string) (bool, error)
}
