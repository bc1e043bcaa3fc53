package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewTranscription(t *testing.T) {
	tr := NewTranscription("media-1", "owner-1")

	assert.NotEmpty(t, tr.GetID())
	assert.Equal(t, "media-1", tr.MediaFileID)
	assert.Equal(t, "owner-1", tr.OwnerID)
	assert.Equal(t, Pending, tr.Status)
	assert.False(t, tr.IsCompleted())
	assert.False(t, tr.IsFailed())
}

func TestTranscription_Complete(t *testing.T) {
	tr := NewTranscription("media-1", "owner-1")
	tr.StartProcessing()
	assert.Equal(t, Processing, tr.Status)

	segments := []Segment{
		{StartS: 0, EndS: 2.5, Text: "hello", Confidence: 0.9},
		{StartS: 2.5, EndS: 5.0, Text: "world", Confidence: 0.95},
	}
	tr.Complete("hello world", segments, "en", "whisper", "large-v3", 0.92, 12.3)

	assert.True(t, tr.IsCompleted())
	assert.False(t, tr.IsFailed())
	assert.True(t, tr.HasContent())
	assert.Equal(t, "hello world", tr.FullText)
	assert.Equal(t, segments, tr.Segments.Value)
	assert.Equal(t, "en", *tr.Language)
	assert.Equal(t, "whisper", *tr.ModelName)
	assert.Equal(t, "large-v3", *tr.ModelVersion)
	assert.InDelta(t, 0.92, *tr.AvgConfidence, 1e-9)
	assert.InDelta(t, 12.3, *tr.ProcessingSeconds, 1e-9)
	assert.Nil(t, tr.ErrorText)
}

func TestTranscription_Fail(t *testing.T) {
	tr := NewTranscription("media-1", "owner-1")
	tr.StartProcessing()

	tr.Fail("model crashed")

	assert.True(t, tr.IsFailed())
	assert.False(t, tr.IsCompleted())
	assert.Equal(t, "model crashed", *tr.ErrorText)
}

func TestTranscription_CompleteClearsPriorError(t *testing.T) {
	tr := NewTranscription("media-1", "owner-1")
	tr.Fail("transient failure")
	assert.NotNil(t, tr.ErrorText)

	tr.Complete("retried ok", nil, "", "", "", 0, 0)
	assert.Nil(t, tr.ErrorText)
	assert.True(t, tr.IsCompleted())
}
