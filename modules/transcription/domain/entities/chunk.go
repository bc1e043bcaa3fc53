package entities

import (
	"github.com/pgvector/pgvector-go"

	"ingestpipe/seedwork/domain"
)

// EmbeddingDimensions is the fixed dense-vector width C6 produces.
const EmbeddingDimensions = 384

// Chunk is one topic-coherent slice of a Transcription.
// Invariant K1: (transcription_id, chunk_index) unique, dense 0..N-1.
// K2: start_char <= end_char, character ranges cover the transcript
// with no gaps/overlap. K3: start_s/end_s derived from covering
// segments. These invariants are enforced by the chunker (K1/K2) and
// its segment-timestamp mapping (K3), not by this type.
type Chunk struct {
	domain.BaseEntity
	TranscriptionID string                      `json:"transcription_id" gorm:"column:transcription_id;not null;index:idx_chunk_transcription_index,unique,priority:1"`
	ChunkIndex      int                         `json:"chunk_index" gorm:"column:chunk_index;not null;index:idx_chunk_transcription_index,unique,priority:2"`
	Text            string                      `json:"text" gorm:"column:text;type:text;not null"`
	StartS          *float64                    `json:"start_s,omitempty" gorm:"column:start_s"`
	EndS            *float64                    `json:"end_s,omitempty" gorm:"column:end_s"`
	StartChar       *int                        `json:"start_char,omitempty" gorm:"column:start_char"`
	EndChar         *int                        `json:"end_char,omitempty" gorm:"column:end_char"`
	TopicSummary    *string                     `json:"topic_summary,omitempty" gorm:"column:topic_summary"`
	Keywords        domain.JSONColumn[[]string] `json:"keywords" gorm:"column:keywords;type:jsonb"`
	Confidence      *float64                    `json:"confidence,omitempty" gorm:"column:confidence"`
	Embedding       *pgvector.Vector            `json:"embedding,omitempty" gorm:"column:embedding;type:vector(384)"`
}

func (Chunk) TableName() string { return "chunks" }

// NewChunk builds a chunk row with embedding left nil, to be filled in
// later by C6 once the embedding activity runs.
func NewChunk(transcriptionID string, index int, text string, startChar, endChar int) *Chunk {
	c := &Chunk{
		TranscriptionID: transcriptionID,
		ChunkIndex:      index,
		Text:            text,
		StartChar:       &startChar,
		EndChar:         &endChar,
	}
	c.SetID(domain.GenerateID())
	return c
}

// WithTopic attaches the LLM-derived topic metadata for the llm
// chunking strategy (sentence/single strategies leave these nil).
func (c *Chunk) WithTopic(summary string, keywords []string, confidence float64) *Chunk {
	c.TopicSummary = &summary
	c.Keywords = domain.JSONColumn[[]string]{Value: keywords}
	c.Confidence = &confidence
	return c
}

// WithTimestamps sets start_s/end_s derived from covering segments
// (K3).
func (c *Chunk) WithTimestamps(startS, endS float64) *Chunk {
	c.StartS = &startS
	c.EndS = &endS
	return c
}
