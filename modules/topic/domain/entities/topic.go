// Package entities holds the Topic tree and its assignment link to a
// Transcription.
package entities

import (
	"ingestpipe/seedwork/domain"
)

// UnknownTopicName is the reserved, always-present fallback topic
// (invariant P2).
const UnknownTopicName = "Unknown"

// Topic is an admin-curated label node in a tree. Invariant P1 (the
// parent relation is acyclic) is enforced by the repository's
// reachability check on reparent (modules/topic/infrastructure/
// repositories), not by this type.
type Topic struct {
	domain.BaseEntity
	Name        string  `json:"name" gorm:"column:name;not null;uniqueIndex"`
	Description *string `json:"description,omitempty" gorm:"column:description"`
	ParentID    *string `json:"parent_id,omitempty" gorm:"column:parent_id;index"`
}

func (Topic) TableName() string { return "topics" }

func NewTopic(name string, description *string, parentID *string) *Topic {
	t := &Topic{Name: name, Description: description, ParentID: parentID}
	t.SetID(domain.GenerateID())
	return t
}

// TranscriptionTopic is an assignment link with provenance.
type TranscriptionTopic struct {
	domain.BaseEntity
	TranscriptionID string   `json:"transcription_id" gorm:"column:transcription_id;not null;index:idx_transcription_topic,unique,priority:1"`
	TopicID         string   `json:"topic_id" gorm:"column:topic_id;not null;index:idx_transcription_topic,unique,priority:2"`
	AIConfidence    *float64 `json:"ai_confidence,omitempty" gorm:"column:ai_confidence"`
	AIReasoning     *string  `json:"ai_reasoning,omitempty" gorm:"column:ai_reasoning"`
	AssignedBy      *string  `json:"assigned_by,omitempty" gorm:"column:assigned_by"`
	UserReviewed    bool     `json:"user_reviewed" gorm:"column:user_reviewed;not null;default:false"`
}

func (TranscriptionTopic) TableName() string { return "transcription_topics" }

// NewAILink builds a TranscriptionTopic assigned by C7 (assigned_by
// null means AI-assigned).
func NewAILink(transcriptionID, topicID string, confidence *float64, reasoning string) *TranscriptionTopic {
	l := &TranscriptionTopic{
		TranscriptionID: transcriptionID,
		TopicID:         topicID,
		AIConfidence:    confidence,
		AIReasoning:     &reasoning,
		UserReviewed:    false,
	}
	l.SetID(domain.GenerateID())
	return l
}
