// Package application implements C10: encoding a search query and
// ranking chunks against it.
package application

import (
	"context"
	"fmt"

	"ingestpipe/modules/transcription/domain/repositories"
	"ingestpipe/seedwork/infrastructure/config"
	"ingestpipe/seedwork/infrastructure/llmclient"
)

// Hit is C10's output contract, one ranked row.
type Hit struct {
	ChunkID         string
	TranscriptionID string
	MediaFileName   string
	MatchedText     string
	TopicSummary    *string
	Keywords        []string
	TimestampS      *float64
	Similarity      float64
}

type Service struct {
	llm    *llmclient.Client
	chunks repositories.ChunkRepository
	cfg    config.EmbeddingConfig
}

func New(llm *llmclient.Client, chunks repositories.ChunkRepository, cfg config.EmbeddingConfig) *Service {
	return &Service{llm: llm, chunks: chunks, cfg: cfg}
}

func (s *Service) Search(ctx context.Context, ownerID, query string, limit int) ([]Hit, error) {
	if limit <= 0 {
		limit = 10
	}

	vectors, err := s.llm.EmbedBatch(ctx, s.cfg.Model, []string{query})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("no embedding returned for query")
	}

	results, err := s.chunks.SearchByOwner(ctx, ownerID, vectors[0], limit)
	if err != nil {
		return nil, fmt.Errorf("ann search: %w", err)
	}

	hits := make([]Hit, 0, len(results))
	for _, r := range results {
		var timestamp *float64
		if r.Chunk.StartS != nil {
			timestamp = r.Chunk.StartS
		}
		hits = append(hits, Hit{
			ChunkID:         r.Chunk.GetID(),
			TranscriptionID: r.TranscriptionID,
			MediaFileName:   r.MediaFileName,
			MatchedText:     r.Chunk.Text,
			TopicSummary:    r.Chunk.TopicSummary,
			Keywords:        r.Chunk.Keywords.Value,
			TimestampS:      timestamp,
			Similarity:      r.Similarity,
		})
	}
	return hits, nil
}
