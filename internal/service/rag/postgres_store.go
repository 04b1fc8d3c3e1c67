package rag

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/pkg/errors"
)

// PostgresStore persists chunk embeddings in a pgvector column so an indexed
// video survives restarts. Similarity search is delegated to the <=> cosine
// distance operator.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
}

func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{db: db, logger: logger}
}

func (p *PostgresStore) Replace(ctx context.Context, videoID string, chunks []domain.Chunk) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewServiceError("begin transaction failed", "vectorstore", "replace", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_chunks WHERE video_id = $1`, videoID); err != nil {
		return errors.NewServiceError("delete old chunks failed", "vectorstore", "replace", err)
	}

	const insert = `
		INSERT INTO transcript_chunks (video_id, chunk_id, text, word_start, word_end, embedding)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return errors.NewServiceError("prepare insert failed", "vectorstore", "replace", err)
	}
	defer stmt.Close()

	for _, c := range chunks {
		if _, err := stmt.ExecContext(ctx,
			c.VideoID, c.ChunkID, c.Text, c.WordStart, c.WordEnd,
			pgvector.NewVector(c.Embedding),
		); err != nil {
			return errors.NewServiceError(
				fmt.Sprintf("insert chunk %d failed", c.ChunkID), "vectorstore", "replace", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewServiceError("commit failed", "vectorstore", "replace", err)
	}

	p.logger.Debug("Chunks stored",
		zap.String("video_id", videoID),
		zap.Int("count", len(chunks)),
	)

	return nil
}

func (p *PostgresStore) Search(ctx context.Context, videoID string, query []float32, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	const search = `
		SELECT chunk_id, text, word_start, word_end, 1 - (embedding <=> $2) AS score
		FROM transcript_chunks
		WHERE video_id = $1
		ORDER BY embedding <=> $2
		LIMIT $3
	`

	rows, err := p.db.QueryContext(ctx, search, videoID, pgvector.NewVector(query), topK)
	if err != nil {
		return nil, errors.NewServiceError("similarity search failed", "vectorstore", "search", err)
	}
	defer rows.Close()

	var results []domain.ScoredChunk
	for rows.Next() {
		sc := domain.ScoredChunk{Chunk: domain.Chunk{VideoID: videoID}}
		if err := rows.Scan(&sc.ChunkID, &sc.Text, &sc.WordStart, &sc.WordEnd, &sc.Score); err != nil {
			return nil, errors.NewServiceError("scan result failed", "vectorstore", "search", err)
		}
		results = append(results, sc)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.NewServiceError("iterate results failed", "vectorstore", "search", err)
	}

	return results, nil
}

func (p *PostgresStore) Count(ctx context.Context, videoID string) (int, error) {
	var (
		count int
		err   error
	)
	if videoID != "" {
		err = p.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transcript_chunks WHERE video_id = $1`, videoID).Scan(&count)
	} else {
		err = p.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM transcript_chunks`).Scan(&count)
	}
	if err != nil {
		return 0, errors.NewServiceError("count failed", "vectorstore", "count", err)
	}
	return count, nil
}
