package rag

import (
	"context"
	"math"
	"testing"

	"github.com/kapu/video-qna-go/internal/domain"
)

func chunkWithVec(id int, vec []float32) domain.Chunk {
	return domain.Chunk{
		VideoID:   "vid",
		ChunkID:   id,
		Text:      "chunk",
		Embedding: vec,
	}
}

func TestMemoryStoreSearchOrdersBySimilarity(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	err := store.Replace(ctx, "vid", []domain.Chunk{
		chunkWithVec(0, []float32{1, 0, 0}),
		chunkWithVec(1, []float32{0, 1, 0}),
		chunkWithVec(2, []float32{0.9, 0.1, 0}),
	})
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	results, err := store.Search(ctx, "vid", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results", len(results))
	}
	if results[0].ChunkID != 0 || results[1].ChunkID != 2 {
		t.Errorf("order = [%d, %d], want [0, 2]", results[0].ChunkID, results[1].ChunkID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("scores not descending: %v then %v", results[0].Score, results[1].Score)
	}
	// Identical direction scores 1 under cosine similarity.
	if math.Abs(float64(results[0].Score)-1) > 1e-5 {
		t.Errorf("exact match score = %v, want ~1", results[0].Score)
	}
}

func TestMemoryStoreReplaceDropsOldChunks(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	if err := store.Replace(ctx, "vid", []domain.Chunk{
		chunkWithVec(0, []float32{1, 0}),
		chunkWithVec(1, []float32{0, 1}),
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := store.Replace(ctx, "vid", []domain.Chunk{
		chunkWithVec(0, []float32{1, 1}),
	}); err != nil {
		t.Fatalf("Replace: %v", err)
	}

	count, err := store.Count(ctx, "vid")
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestMemoryStoreScopesByVideo(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_ = store.Replace(ctx, "a", []domain.Chunk{chunkWithVec(0, []float32{1, 0})})
	_ = store.Replace(ctx, "b", []domain.Chunk{chunkWithVec(0, []float32{0, 1})})

	results, err := store.Search(ctx, "a", []float32{0, 1}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].VideoID != "a" {
		t.Errorf("search leaked across videos: %+v", results)
	}

	total, _ := store.Count(ctx, "")
	if total != 2 {
		t.Errorf("total count = %d, want 2", total)
	}
}

func TestMemoryStoreSearchEmpty(t *testing.T) {
	store := NewMemoryStore()

	results, err := store.Search(context.Background(), "missing", []float32{1}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for unknown video", len(results))
	}
}

func TestNormalize(t *testing.T) {
	v := normalize([]float32{3, 4})
	if math.Abs(float64(v[0])-0.6) > 1e-6 || math.Abs(float64(v[1])-0.8) > 1e-6 {
		t.Errorf("normalize = %v", v)
	}

	zero := normalize([]float32{0, 0})
	if zero[0] != 0 || zero[1] != 0 {
		t.Errorf("zero vector changed: %v", zero)
	}
}
