package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewChunk(t *testing.T) {
	c := NewChunk("tr-1", 2, "hello world", 10, 21)

	assert.NotEmpty(t, c.GetID())
	assert.Equal(t, "tr-1", c.TranscriptionID)
	assert.Equal(t, 2, c.ChunkIndex)
	assert.Equal(t, "hello world", c.Text)
	assert.Equal(t, 10, *c.StartChar)
	assert.Equal(t, 21, *c.EndChar)
	assert.Nil(t, c.Embedding)
	assert.Nil(t, c.TopicSummary)
}

func TestChunk_WithTopic(t *testing.T) {
	c := NewChunk("tr-1", 0, "text", 0, 4)
	c.WithTopic("a summary", []string{"a", "b"}, 0.75)

	assert.Equal(t, "a summary", *c.TopicSummary)
	assert.Equal(t, []string{"a", "b"}, c.Keywords.Value)
	assert.InDelta(t, 0.75, *c.Confidence, 1e-9)
}

func TestChunk_WithTimestamps(t *testing.T) {
	c := NewChunk("tr-1", 0, "text", 0, 4)
	c.WithTimestamps(1.5, 3.25)

	assert.InDelta(t, 1.5, *c.StartS, 1e-9)
	assert.InDelta(t, 3.25, *c.EndS, 1e-9)
}

func TestChunk_ChainedBuilders(t *testing.T) {
	c := NewChunk("tr-1", 0, "text", 0, 4).
		WithTopic("summary", []string{"x"}, 0.5).
		WithTimestamps(0, 1)

	assert.Equal(t, "summary", *c.TopicSummary)
	assert.InDelta(t, float64(0), *c.StartS, 1e-9)
	assert.InDelta(t, float64(1), *c.EndS, 1e-9)
}
