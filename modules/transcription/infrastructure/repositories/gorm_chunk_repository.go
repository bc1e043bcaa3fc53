package repositories

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ingestpipe/modules/transcription/domain/entities"
	"ingestpipe/modules/transcription/domain/repositories"
)

type GormChunkRepository struct {
	db *gorm.DB
}

func NewGormChunkRepository(db *gorm.DB) *GormChunkRepository {
	return &GormChunkRepository{db: db}
}

// ReplaceAll deletes all existing chunks for transcriptionID then
// bulk-inserts chunks in one transaction, preserving K1 across a
// chunking-activity retry via the same delete-then-bulk-insert shape
// used elsewhere in this codebase for replacing owned child rows.
func (r *GormChunkRepository) ReplaceAll(ctx context.Context, transcriptionID string, chunks []*entities.Chunk) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("transcription_id = ?", transcriptionID).Delete(&entities.Chunk{}).Error; err != nil {
			return err
		}
		if len(chunks) == 0 {
			return nil
		}
		return tx.Create(&chunks).Error
	})
}

func (r *GormChunkRepository) FindByTranscriptionID(ctx context.Context, transcriptionID string) ([]*entities.Chunk, error) {
	var chunks []*entities.Chunk
	err := r.db.WithContext(ctx).
		Where("transcription_id = ?", transcriptionID).
		Order("chunk_index ASC").
		Find(&chunks).Error
	return chunks, err
}

// UpdateEmbeddings writes every chunk's vector inside one transaction:
// either the whole transcription's chunk set ends up embedded, or none
// of it does, so a crash mid-batch can never leave a mix of embedded
// and null rows behind.
func (r *GormChunkRepository) UpdateEmbeddings(ctx context.Context, vecs []repositories.ChunkEmbedding) error {
	if len(vecs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ce := range vecs {
			v := pgvector.NewVector(ce.Embedding)
			result := tx.Model(&entities.Chunk{}).
				Where("id = ?", ce.ChunkID).
				Update("embedding", v)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("chunk not found: %s", ce.ChunkID)
			}
		}
		return nil
	})
}

// SearchByOwner runs C10's ANN query: cosine distance against
// chunks.embedding, restricted to chunks whose parent transcription is
// owned by ownerID and whose parent media file is not soft-deleted,
// ranked by distance ascending.
func (r *GormChunkRepository) SearchByOwner(ctx context.Context, ownerID string, queryVector []float32, limit int) ([]repositories.SearchHit, error) {
	v := pgvector.NewVector(queryVector)

	type row struct {
		entities.Chunk
		TranscriptionIDOut string
		MediaFileName      string
		Distance           float64
	}

	var rows []row
	query := `
		SELECT c.*, t.id AS transcription_id_out, m.display_name AS media_file_name,
		       (c.embedding <=> ?) AS distance
		FROM chunks c
		JOIN transcriptions t ON t.id = c.transcription_id
		JOIN media_files m ON m.id = t.media_file_id
		WHERE t.owner_id = ? AND m.deleted_at IS NULL AND c.embedding IS NOT NULL
		ORDER BY distance ASC
		LIMIT ?
	`
	if err := r.db.WithContext(ctx).Raw(query, v, ownerID, limit).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("ann search: %w", err)
	}

	hits := make([]repositories.SearchHit, 0, len(rows))
	for _, row := range rows {
		chunk := row.Chunk
		hits = append(hits, repositories.SearchHit{
			Chunk:           &chunk,
			TranscriptionID: row.TranscriptionIDOut,
			MediaFileName:   row.MediaFileName,
			Similarity:      1 - row.Distance,
		})
	}
	return hits, nil
}
