package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTopic(t *testing.T) {
	desc := "music and audio production"
	topic := NewTopic("Music", &desc, nil)

	assert.NotEmpty(t, topic.GetID())
	assert.Equal(t, "Music", topic.Name)
	assert.Equal(t, desc, *topic.Description)
	assert.Nil(t, topic.ParentID)
	assert.Equal(t, "topics", topic.TableName())
}

func TestNewTopic_WithParent(t *testing.T) {
	parentID := "parent-1"
	topic := NewTopic("Jazz", nil, &parentID)
	assert.Equal(t, parentID, *topic.ParentID)
}

func TestNewAILink(t *testing.T) {
	confidence := 0.83
	link := NewAILink("tr-1", "topic-1", &confidence, "matched keywords in chunk 3")

	assert.NotEmpty(t, link.GetID())
	assert.Equal(t, "tr-1", link.TranscriptionID)
	assert.Equal(t, "topic-1", link.TopicID)
	assert.InDelta(t, confidence, *link.AIConfidence, 1e-9)
	assert.Equal(t, "matched keywords in chunk 3", *link.AIReasoning)
	assert.False(t, link.UserReviewed, "AI-assigned links start unreviewed")
	assert.Equal(t, "transcription_topics", link.TableName())
}

func TestUnknownTopicName(t *testing.T) {
	assert.Equal(t, "Unknown", UnknownTopicName)
}
