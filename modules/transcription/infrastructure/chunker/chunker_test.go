package chunker

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ingestpipe/modules/transcription/domain/entities"
	"ingestpipe/seedwork/infrastructure/config"
)

func TestExtractBalancedObject(t *testing.T) {
	raw := `noise before {"a": 1, "b": {"c": "}}"}, "d": [1,2]} noise after`
	got, ok := extractBalancedObject(raw)
	require.True(t, ok)
	assert.Equal(t, `{"a": 1, "b": {"c": "}}"}, "d": [1,2]}`, got)
}

func TestExtractBalancedObject_NoBrace(t *testing.T) {
	_, ok := extractBalancedObject("no json here")
	assert.False(t, ok)
}

func TestParseLLMChunks_StripsThinkTags(t *testing.T) {
	raw := "<think>reasoning here</think>\n" + `{"chunks":[{"start_pos":0,"end_pos":5,"topic":"intro","keywords":["a"],"confidence":0.8}]}`
	parsed, ok := parseLLMChunks(raw)
	require.True(t, ok)
	require.Len(t, parsed, 1)
	assert.Equal(t, "intro", parsed[0].Topic)
}

func TestValidateSpans_AcceptsFullCoverage(t *testing.T) {
	chunks := []llmChunk{
		{StartPos: jsonNum(0), EndPos: jsonNum(5)},
		{StartPos: jsonNum(5), EndPos: jsonNum(10)},
	}
	spans, ok := validateSpans(chunks, 10)
	require.True(t, ok)
	require.Len(t, spans, 2)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 10, spans[1].End)
}

func TestValidateSpans_RejectsGap(t *testing.T) {
	chunks := []llmChunk{
		{StartPos: jsonNum(0), EndPos: jsonNum(4)},
		{StartPos: jsonNum(5), EndPos: jsonNum(10)},
	}
	_, ok := validateSpans(chunks, 10)
	assert.False(t, ok, "a gap between chunks must fail validation")
}

func TestValidateSpans_RejectsOverlap(t *testing.T) {
	chunks := []llmChunk{
		{StartPos: jsonNum(0), EndPos: jsonNum(6)},
		{StartPos: jsonNum(5), EndPos: jsonNum(10)},
	}
	_, ok := validateSpans(chunks, 10)
	assert.False(t, ok, "overlapping chunks must fail validation")
}

func TestValidateSpans_RejectsWrongStartOrEnd(t *testing.T) {
	chunks := []llmChunk{{StartPos: jsonNum(1), EndPos: jsonNum(10)}}
	_, ok := validateSpans(chunks, 10)
	assert.False(t, ok, "first chunk must start at 0")

	chunks = []llmChunk{{StartPos: jsonNum(0), EndPos: jsonNum(9)}}
	_, ok = validateSpans(chunks, 10)
	assert.False(t, ok, "last chunk must end at textLen")
}

func TestSplitSentences(t *testing.T) {
	text := "Hello world. How are you? I am fine!"
	ranges := splitSentences(text)
	require.Len(t, ranges, 3)
	assert.Equal(t, "Hello world. ", text[ranges[0].Start:ranges[0].End])
	assert.Equal(t, text, text[ranges[0].Start:ranges[len(ranges)-1].End])
}

func TestSentenceSpans_FullCoverageNoGapsNoOverlap(t *testing.T) {
	text := "One sentence here. Another sentence follows. A third one arrives. And a fourth."
	spans := sentenceSpans(text, 1, 8, 2)

	require.NotEmpty(t, spans)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, len(text), spans[len(spans)-1].End)
	for i := 1; i < len(spans); i++ {
		assert.Equal(t, spans[i-1].End, spans[i].Start, "chunk %d must abut chunk %d with no gap or overlap", i-1, i)
	}
}

func TestSentenceSpans_EmptyTranscriptFallsBackToWholeText(t *testing.T) {
	spans := sentenceSpans("", 10, 100, 5)
	require.Len(t, spans, 1)
	assert.Equal(t, 0, spans[0].Start)
	assert.Equal(t, 0, spans[0].End)
}

func TestChunker_Chunk_SingleStrategy(t *testing.T) {
	c := New(nil, config.ChunkingConfig{Strategy: "single"})
	chunks, err := c.Chunk(context.Background(), "tr-1", "full transcript text", nil, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "full transcript text", chunks[0].Text)
}

func TestChunker_Chunk_SentenceStrategy_ReportsHeartbeat(t *testing.T) {
	c := New(nil, config.ChunkingConfig{Strategy: "sentence", MinTokens: 1, MaxTokens: 20, OverlapTokens: 2})
	var pcts []int
	chunks, err := c.Chunk(context.Background(), "tr-1", "First sentence here. Second sentence follows.", nil, func(p int) {
		pcts = append(pcts, p)
	})
	require.NoError(t, err)
	assert.NotEmpty(t, chunks)
	assert.Equal(t, []int{0, 100}, pcts)
}

func TestChunker_Chunk_MapsSegmentTimestamps(t *testing.T) {
	c := New(nil, config.ChunkingConfig{Strategy: "single"})
	segments := []entities.Segment{
		{StartS: 0, EndS: 1.5, Text: "hello "},
		{StartS: 1.5, EndS: 3.0, Text: "world"},
	}
	chunks, err := c.Chunk(context.Background(), "tr-1", "hello world", segments, nil)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.InDelta(t, 0, *chunks[0].StartS, 1e-9)
	assert.InDelta(t, 3.0, *chunks[0].EndS, 1e-9)
}

func jsonNum(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}
