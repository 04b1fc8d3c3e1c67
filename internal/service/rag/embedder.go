package rag

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go/v3"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/pkg/errors"
)

// Embedder converts text into vectors via the OpenAI embeddings endpoint.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

// modelDimensions maps known embedding models to their output width.
var modelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

type OpenAIEmbedder struct {
	client *openai.Client
	model  string
	dim    int
	logger *zap.Logger
}

func NewOpenAIEmbedder(client *openai.Client, model string, logger *zap.Logger) *OpenAIEmbedder {
	dim, ok := modelDimensions[model]
	if !ok {
		dim = 1536
	}
	return &OpenAIEmbedder{
		client: client,
		model:  model,
		dim:    dim,
		logger: logger,
	}
}

func (e *OpenAIEmbedder) Dimension() int {
	return e.dim
}

// EmbedTexts embeds all texts, batching requests and running batches through a
// bounded worker pool. Result order matches input order.
func (e *OpenAIEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	batchSize := constants.Embedding.BatchSize
	vectors := make([][]float32, len(texts))

	p := pool.New().WithMaxGoroutines(constants.Embedding.MaxConcurrency)
	var mu sync.Mutex
	var firstErr error

	for start := 0; start < len(texts); start += batchSize {
		start := start
		end := start + batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[start:end]

		p.Go(func() {
			batchVectors, err := e.embedBatch(ctx, batch)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if firstErr == nil {
					firstErr = err
				}
				return
			}
			copy(vectors[start:end], batchVectors)
		})
	}

	p.Wait()

	if firstErr != nil {
		return nil, firstErr
	}

	e.logger.Debug("Embedded texts",
		zap.Int("count", len(texts)),
		zap.String("model", e.model),
	)

	return vectors, nil
}

func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.embedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, batch []string) ([][]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: batch,
		},
	})
	if err != nil {
		return nil, errors.NewServiceError("embedding request failed", "embedder", "embed", err)
	}

	if len(resp.Data) != len(batch) {
		return nil, errors.NewServiceError(
			fmt.Sprintf("embedding count mismatch: sent %d, got %d", len(batch), len(resp.Data)),
			"embedder", "embed", nil)
	}

	vectors := make([][]float32, len(batch))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= int64(len(vectors)) {
			return nil, errors.NewServiceError(
				fmt.Sprintf("embedding index %d out of range for batch of %d", item.Index, len(batch)),
				"embedder", "embed", nil)
		}
		vec := make([]float32, len(item.Embedding))
		for i, v := range item.Embedding {
			vec[i] = float32(v)
		}
		vectors[item.Index] = vec
	}

	return vectors, nil
}
