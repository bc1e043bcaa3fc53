package repositories

import (
	"context"

	"ingestpipe/modules/transcription/domain/entities"
)

// ChunkRepository's ReplaceAll implements the chunking activity's
// idempotent retry contract: a retry must first DELETE all chunks for
// the transcription to preserve K1.
type ChunkRepository interface {
	ReplaceAll(ctx context.Context, transcriptionID string, chunks []*entities.Chunk) error
	FindByTranscriptionID(ctx context.Context, transcriptionID string) ([]*entities.Chunk, error)
	// UpdateEmbeddings writes every vector in vecs inside a single
	// transaction, so a crash partway through never leaves a
	// transcription with some chunks embedded and others still null.
	UpdateEmbeddings(ctx context.Context, vecs []ChunkEmbedding) error
	// SearchByOwner runs the ANN cosine-distance query behind C10,
	// restricted to chunks whose parent transcription is owned by
	// ownerID and whose parent MediaFile is not soft-deleted.
	SearchByOwner(ctx context.Context, ownerID string, queryVector []float32, limit int) ([]SearchHit, error)
}

// ChunkEmbedding pairs a chunk id with its encoded vector for a batch
// UpdateEmbeddings call.
type ChunkEmbedding struct {
	ChunkID   string
	Embedding []float32
}

// SearchHit is one ranked result from C10.
type SearchHit struct {
	Chunk           *entities.Chunk
	TranscriptionID string
	MediaFileName   string
	Similarity      float64
}
