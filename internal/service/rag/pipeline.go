package rag

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/service/ai"
	"github.com/kapu/video-qna-go/internal/service/cache"
	"github.com/kapu/video-qna-go/internal/service/transcript"
	"github.com/kapu/video-qna-go/internal/youtube"
	apperrors "github.com/kapu/video-qna-go/pkg/errors"
)

// TranscriptSource yields the full transcript text for a video.
type TranscriptSource interface {
	Fetch(ctx context.Context, videoID string) (string, error)
}

// TitleSource resolves display metadata for a video. Optional.
type TitleSource interface {
	Fetch(ctx context.Context, videoID string) (*domain.VideoMetadata, error)
}

// TextGenerator produces one answer from a system instruction and a user
// message. Satisfied by ai.ModelManager.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, user string) (string, *ai.GenerateMetadata, error)
}

// Pipeline ties transcript fetching, chunking, embedding and retrieval into
// the two operations the API exposes: index a video, answer a question about
// the currently indexed video.
type Pipeline struct {
	transcripts TranscriptSource
	titles      TitleSource
	embedder    Embedder
	store       VectorStore
	generator   TextGenerator
	cache       *cache.Service
	logger      *zap.Logger

	mu             sync.RWMutex
	currentVideoID string
	currentTitle   string
}

func NewPipeline(
	transcripts TranscriptSource,
	titles TitleSource,
	embedder Embedder,
	store VectorStore,
	generator TextGenerator,
	cacheSvc *cache.Service,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		transcripts: transcripts,
		titles:      titles,
		embedder:    embedder,
		store:       store,
		generator:   generator,
		cache:       cacheSvc,
		logger:      logger,
	}
}

// ProcessVideo extracts the video ID from rawURL, fetches and chunks its
// transcript, embeds the chunks and swaps them into the vector store. The
// previously active video stops being answerable.
func (p *Pipeline) ProcessVideo(ctx context.Context, rawURL string) (*domain.ProcessResult, error) {
	if err := youtube.ValidateWatchURL(rawURL); err != nil {
		return nil, err
	}
	videoID, ok := youtube.ExtractVideoID(rawURL)
	if !ok {
		return nil, apperrors.NewValidationError("could not extract a video ID from the URL", "video_url", rawURL)
	}

	p.mu.RLock()
	alreadyActive := p.currentVideoID == videoID
	title := p.currentTitle
	p.mu.RUnlock()

	if alreadyActive {
		count, err := p.store.Count(ctx, videoID)
		if err == nil && count > 0 {
			p.logger.Info("Video already indexed", zap.String("videoId", videoID))
			return &domain.ProcessResult{
				VideoID:    videoID,
				ChunkCount: count,
				FromCache:  true,
				Title:      title,
			}, nil
		}
	}

	text, err := p.transcripts.Fetch(ctx, videoID)
	if err != nil {
		return nil, err
	}

	chunks := ChunkTranscript(videoID, text, constants.Chunking.Size, constants.Chunking.Overlap)
	if len(chunks) == 0 {
		return nil, apperrors.NewServiceError("transcript produced no indexable text", "pipeline", "chunk", nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, err
	}
	for i := range chunks {
		chunks[i].Embedding = vectors[i]
	}

	if err := p.store.Replace(ctx, videoID, chunks); err != nil {
		return nil, err
	}

	title = ""
	if p.titles != nil {
		if meta, metaErr := p.titles.Fetch(ctx, videoID); metaErr == nil {
			title = meta.Title
		} else {
			p.logger.Debug("Title lookup failed", zap.String("videoId", videoID), zap.Error(metaErr))
		}
	}

	p.mu.Lock()
	p.currentVideoID = videoID
	p.currentTitle = title
	p.mu.Unlock()

	p.logger.Info("Video indexed",
		zap.String("videoId", videoID),
		zap.Int("chunks", len(chunks)))

	return &domain.ProcessResult{
		VideoID:    videoID,
		ChunkCount: len(chunks),
		Title:      title,
	}, nil
}

// Answer embeds the question, retrieves the most relevant chunks of the
// active video and asks the model to answer from that context alone.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", apperrors.NewValidationError("question cannot be empty", "question", question)
	}
	if len(question) > constants.AIInputLimits.MaxQuestionLength {
		return "", apperrors.NewValidationError("question is too long", "question", len(question))
	}

	p.mu.RLock()
	videoID := p.currentVideoID
	p.mu.RUnlock()

	if videoID == "" {
		return "", apperrors.NewNotReadyError("no video has been processed yet, submit a video URL first")
	}

	if p.cache != nil {
		key := cache.AnswerKey(videoID, questionHash(question))
		var cached string
		if found, err := p.cache.Get(ctx, key, &cached); err == nil && found {
			p.logger.Debug("Answer cache hit", zap.String("videoId", videoID))
			return cached, nil
		}
	}

	queryVec, err := p.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return "", err
	}

	hits, err := p.store.Search(ctx, videoID, queryVec, constants.Retrieval.TopK)
	if err != nil {
		return "", err
	}
	if len(hits) == 0 {
		return "", apperrors.NewNotReadyError("no video has been processed yet, submit a video URL first")
	}

	contextText := joinContext(hits, constants.AIInputLimits.MaxContextRunes)
	userMessage := contextText + "\n\nQuestion: " + question

	answer, meta, err := p.generator.GenerateText(ctx, constants.Prompts.RAGSystem, userMessage)
	if err != nil {
		return "", err
	}

	p.logger.Info("Question answered",
		zap.String("videoId", videoID),
		zap.String("provider", meta.Provider),
		zap.Bool("fallback", meta.UsedFallback),
		zap.Int("retrieved", len(hits)))

	if p.cache != nil {
		key := cache.AnswerKey(videoID, questionHash(question))
		if cacheErr := p.cache.Set(ctx, key, answer, constants.CacheTTL.Answer); cacheErr != nil {
			p.logger.Warn("Failed to cache answer", zap.Error(cacheErr))
		}
	}
	return answer, nil
}

// CurrentVideo reports the active video, if any.
func (p *Pipeline) CurrentVideo() (videoID, title string) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.currentVideoID, p.currentTitle
}

// ChunkCount reports how many chunks are indexed for the active video.
func (p *Pipeline) ChunkCount(ctx context.Context) int {
	p.mu.RLock()
	videoID := p.currentVideoID
	p.mu.RUnlock()
	if videoID == "" {
		return 0
	}
	n, err := p.store.Count(ctx, videoID)
	if err != nil {
		p.logger.Warn("Chunk count lookup failed", zap.String("videoId", videoID), zap.Error(err))
		return 0
	}
	return n
}

// joinContext concatenates retrieved chunks, best first, stopping before the
// total exceeds maxRunes.
func joinContext(hits []domain.ScoredChunk, maxRunes int) string {
	var b strings.Builder
	total := 0
	for i, hit := range hits {
		runes := len([]rune(hit.Text))
		if total+runes > maxRunes && total > 0 {
			break
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(hit.Text)
		total += runes
	}
	return b.String()
}

func questionHash(question string) string {
	sum := sha256.Sum256([]byte(strings.ToLower(question)))
	return hex.EncodeToString(sum[:8])
}

var _ TranscriptSource = (*transcript.Fetcher)(nil)
