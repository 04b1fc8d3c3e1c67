package rag

import (
	"context"

	"github.com/kapu/video-qna-go/internal/domain"
)

// VectorStore holds embedded transcript chunks and answers nearest-neighbor
// queries over them. One video's chunks replace the previous video's wholesale;
// the service keeps no history beyond the indexed corpus.
type VectorStore interface {
	// Replace atomically swaps in the chunks for videoID, removing any
	// previously stored chunks for the same video.
	Replace(ctx context.Context, videoID string, chunks []domain.Chunk) error

	// Search returns the topK most similar chunks for videoID, best first.
	Search(ctx context.Context, videoID string, query []float32, topK int) ([]domain.ScoredChunk, error)

	// Count reports how many chunks are stored for videoID. An empty video ID
	// counts chunks across all videos.
	Count(ctx context.Context, videoID string) (int, error)
}
