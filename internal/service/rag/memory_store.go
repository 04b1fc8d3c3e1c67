package rag

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/kapu/video-qna-go/internal/domain"
)

// MemoryStore is an in-process vector index: vectors are L2-normalized on
// insert so inner product equals cosine similarity, then search is a linear
// scan. Fine for the few hundred chunks a single transcript produces; the
// Postgres store takes over when persistence across restarts matters.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks map[string][]domain.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		chunks: make(map[string][]domain.Chunk),
	}
}

func (m *MemoryStore) Replace(_ context.Context, videoID string, chunks []domain.Chunk) error {
	stored := make([]domain.Chunk, len(chunks))
	for i, c := range chunks {
		c.Embedding = normalize(c.Embedding)
		stored[i] = c
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks[videoID] = stored
	return nil
}

func (m *MemoryStore) Search(_ context.Context, videoID string, query []float32, topK int) ([]domain.ScoredChunk, error) {
	if topK <= 0 {
		return nil, nil
	}

	q := normalize(query)

	m.mu.RLock()
	defer m.mu.RUnlock()

	candidates := m.chunks[videoID]
	scored := make([]domain.ScoredChunk, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, domain.ScoredChunk{
			Chunk: c,
			Score: dot(q, c.Embedding),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (m *MemoryStore) Count(_ context.Context, videoID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if videoID != "" {
		return len(m.chunks[videoID]), nil
	}

	total := 0
	for _, chunks := range m.chunks {
		total += len(chunks)
	}
	return total, nil
}

func normalize(v []float32) []float32 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return v
	}
	norm := float32(math.Sqrt(sum))

	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x / norm
	}
	return out
}

func dot(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
