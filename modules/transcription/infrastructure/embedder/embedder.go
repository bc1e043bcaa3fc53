// Package embedder implements C6: encoding a transcription's chunks
// into fixed-dimension vectors and writing them
// back transactionally. The encoder is reached through the same
// llmclient used by C5/C7, since most OpenAI-compatible local
// inference servers expose an /embeddings endpoint alongside
// /chat/completions.
package embedder

import (
	"context"
	"fmt"

	"ingestpipe/modules/transcription/domain/repositories"
	"ingestpipe/seedwork/apperr"
	"ingestpipe/seedwork/infrastructure/config"
	"ingestpipe/seedwork/infrastructure/llmclient"
)

const stageName = "embed"

type HeartbeatFunc func(percent int)

type Embedder struct {
	llm   *llmclient.Client
	chunk repositories.ChunkRepository
	cfg   config.EmbeddingConfig
}

func New(llm *llmclient.Client, chunkRepo repositories.ChunkRepository, cfg config.EmbeddingConfig) *Embedder {
	return &Embedder{llm: llm, chunk: chunkRepo, cfg: cfg}
}

// Embed reads all chunks of transcriptionID in index order, truncates
// each to cfg.MaxCharsPerChunk, batch-encodes them, and writes each
// vector back. Empty chunk text encodes to the zero vector rather than
// being sent to the model.
func (e *Embedder) Embed(ctx context.Context, transcriptionID string, heartbeat HeartbeatFunc) error {
	if heartbeat != nil {
		heartbeat(0)
	}

	chunks, err := e.chunk.FindByTranscriptionID(ctx, transcriptionID)
	if err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("load chunks: %w", err))
	}
	if len(chunks) == 0 {
		if heartbeat != nil {
			heartbeat(100)
		}
		return nil
	}

	texts := make([]string, len(chunks))
	empty := make([]bool, len(chunks))
	nonEmptyTexts := make([]string, 0, len(chunks))
	for i, c := range chunks {
		text := c.Text
		if len(text) > e.cfg.MaxCharsPerChunk {
			text = text[:e.cfg.MaxCharsPerChunk]
		}
		texts[i] = text
		if text == "" {
			empty[i] = true
		} else {
			nonEmptyTexts = append(nonEmptyTexts, text)
		}
	}
	if heartbeat != nil {
		heartbeat(20)
	}

	var encoded [][]float32
	if len(nonEmptyTexts) > 0 {
		encoded, err = e.llm.EmbedBatch(ctx, e.cfg.Model, nonEmptyTexts)
		if err != nil {
			return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("encode batch: %w", err))
		}
	}
	if heartbeat != nil {
		heartbeat(70)
	}

	zero := make([]float32, e.cfg.Dimensions)
	encodedIdx := 0
	vecs := make([]repositories.ChunkEmbedding, len(chunks))
	for i, c := range chunks {
		var vec []float32
		if empty[i] {
			vec = zero
		} else {
			vec = encoded[encodedIdx]
			encodedIdx++
		}
		vecs[i] = repositories.ChunkEmbedding{ChunkID: c.GetID(), Embedding: vec}
	}
	if err := e.chunk.UpdateEmbeddings(ctx, vecs); err != nil {
		return apperr.New(apperr.KindTransient, stageName, fmt.Errorf("update embeddings: %w", err))
	}

	if heartbeat != nil {
		heartbeat(100)
	}
	return nil
}
