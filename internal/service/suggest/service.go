package suggest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/service/cache"
	"github.com/kapu/video-qna-go/internal/util"
	ytutil "github.com/kapu/video-qna-go/internal/youtube"
	apperrors "github.com/kapu/video-qna-go/pkg/errors"
)

// Service recommends videos related to the one currently loaded. It looks up
// the seed video's title, searches for videos matching the title's leading
// words, and degrades to a curated list whenever the Data API cannot serve.
type Service struct {
	yt         *youtube.Service
	cache      *cache.Service
	logger     *zap.Logger
	quotaUsed  int
	quotaMu    sync.Mutex
	quotaReset time.Time
}

// NewService builds the recommender. An empty API key is allowed; the service
// then always answers with the curated fallback list.
func NewService(ctx context.Context, apiKey string, cacheSvc *cache.Service, logger *zap.Logger) (*Service, error) {
	s := &Service{
		cache:      cacheSvc,
		logger:     logger,
		quotaReset: nextQuotaReset(),
	}

	if apiKey == "" {
		logger.Warn("YouTube API key not set, suggestions will use the fallback list")
		return s, nil
	}

	yt, err := youtube.NewService(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create YouTube service: %w", err)
	}
	s.yt = yt

	logger.Info("YouTube suggestions service initialized",
		zap.Time("quotaReset", s.quotaReset))
	return s, nil
}

// Quota resets at midnight Pacific Time.
func nextQuotaReset() time.Time {
	pt, _ := time.LoadLocation("America/Los_Angeles")
	now := time.Now().In(pt)
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, pt)
}

func (s *Service) checkQuota(cost int) error {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	now := time.Now()
	if now.After(s.quotaReset) {
		s.quotaUsed = 0
		s.quotaReset = nextQuotaReset()
		s.logger.Info("YouTube API quota auto-reset",
			zap.Time("nextReset", s.quotaReset))
	}

	limit := constants.YouTubeQuota.DailyLimit - constants.YouTubeQuota.SafetyMargin
	if s.quotaUsed+cost > limit {
		return &QuotaExceededError{
			Used:      s.quotaUsed,
			Limit:     constants.YouTubeQuota.DailyLimit,
			Requested: cost,
			ResetTime: s.quotaReset,
		}
	}
	return nil
}

func (s *Service) consumeQuota(cost int) {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	s.quotaUsed += cost
	remaining := constants.YouTubeQuota.DailyLimit - s.quotaUsed

	s.logger.Debug("YouTube API quota consumed",
		zap.Int("cost", cost),
		zap.Int("used", s.quotaUsed),
		zap.Int("remaining", remaining))

	if remaining < constants.YouTubeQuota.SafetyMargin {
		s.logger.Warn("YouTube API quota running low",
			zap.Int("remaining", remaining),
			zap.Time("resetTime", s.quotaReset))
	}
}

// SuggestedVideos returns up to five videos related to the seed video. The
// result never includes the seed itself. Any failure along the way degrades
// to the curated fallback list rather than an error.
func (s *Service) SuggestedVideos(ctx context.Context, videoID string) []domain.SuggestedVideo {
	if videoID == "" {
		return FallbackSuggestions()
	}

	if s.cache != nil {
		var cached []domain.SuggestedVideo
		if found, err := s.cache.Get(ctx, cache.SuggestionsKey(videoID), &cached); err == nil && found {
			s.logger.Debug("Suggestions cache hit", zap.String("videoId", videoID))
			return cached
		}
	}

	suggestions, err := s.relatedVideos(ctx, videoID)
	if err != nil {
		s.logger.Warn("Falling back to curated suggestions",
			zap.String("videoId", videoID),
			zap.Error(err))
		return FallbackSuggestions()
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.SuggestionsKey(videoID), suggestions, constants.CacheTTL.SuggestedVideos); err != nil {
			s.logger.Warn("Failed to cache suggestions", zap.Error(err))
		}
	}
	return suggestions
}

func (s *Service) relatedVideos(ctx context.Context, videoID string) ([]domain.SuggestedVideo, error) {
	if s.yt == nil {
		return nil, apperrors.NewServiceError("YouTube API not configured", "suggest", "related", nil)
	}

	title, err := s.videoTitle(ctx, videoID)
	if err != nil {
		return nil, err
	}

	query := util.FirstWords(title, constants.Suggestions.QueryWords)
	if query == "" {
		return nil, apperrors.NewServiceError("seed video has no usable title", "suggest", "related", nil)
	}

	cost := constants.YouTubeQuota.SearchCost
	if err := s.checkQuota(cost); err != nil {
		return nil, err
	}

	call := s.yt.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		Order("relevance").
		MaxResults(int64(constants.Suggestions.SearchPool))

	resp, err := call.Context(ctx).Do()
	if err != nil {
		if apiErr, ok := err.(*googleapi.Error); ok && apiErr.Code == 403 {
			return nil, &QuotaExceededError{
				Used:      s.quotaUsed,
				Limit:     constants.YouTubeQuota.DailyLimit,
				Requested: cost,
				ResetTime: s.quotaReset,
			}
		}
		return nil, fmt.Errorf("YouTube search error: %w", err)
	}
	s.consumeQuota(cost)

	suggestions := make([]domain.SuggestedVideo, 0, constants.Suggestions.MaxResults)
	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" || item.Id.VideoId == videoID {
			continue
		}
		suggestions = append(suggestions, domain.SuggestedVideo{
			ID:        item.Id.VideoId,
			Title:     item.Snippet.Title,
			Thumbnail: bestThumbnail(item.Id.VideoId, item.Snippet.Thumbnails),
			URL:       ytutil.WatchURL(item.Id.VideoId),
		})
		if len(suggestions) >= constants.Suggestions.MaxResults {
			break
		}
	}

	if len(suggestions) == 0 {
		return nil, apperrors.NewServiceError("search returned no related videos", "suggest", "related", nil)
	}
	return suggestions, nil
}

// videoTitle resolves the seed video's title via videos.list (1 unit).
func (s *Service) videoTitle(ctx context.Context, videoID string) (string, error) {
	if err := s.checkQuota(constants.YouTubeQuota.VideosCost); err != nil {
		return "", err
	}

	resp, err := s.yt.Videos.List([]string{"snippet"}).Id(videoID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("YouTube videos.list error: %w", err)
	}
	s.consumeQuota(constants.YouTubeQuota.VideosCost)

	if len(resp.Items) == 0 || resp.Items[0].Snippet == nil {
		return "", apperrors.NewServiceError("video not found", "suggest", "title", nil)
	}
	return resp.Items[0].Snippet.Title, nil
}

func bestThumbnail(videoID string, thumbnails *youtube.ThumbnailDetails) string {
	if thumbnails != nil {
		if thumbnails.Medium != nil && thumbnails.Medium.Url != "" {
			return thumbnails.Medium.Url
		}
		if thumbnails.High != nil && thumbnails.High.Url != "" {
			return thumbnails.High.Url
		}
		if thumbnails.Default != nil && thumbnails.Default.Url != "" {
			return thumbnails.Default.Url
		}
	}
	return ytutil.ThumbnailURL(videoID)
}

// FallbackSuggestions returns the curated list served when the Data API is
// unavailable or over quota.
func FallbackSuggestions() []domain.SuggestedVideo {
	out := make([]domain.SuggestedVideo, 0, len(constants.DefaultSuggestions))
	for _, d := range constants.DefaultSuggestions {
		out = append(out, domain.SuggestedVideo{
			ID:        d.ID,
			Title:     d.Title,
			Thumbnail: ytutil.ThumbnailURL(d.ID),
			URL:       ytutil.WatchURL(d.ID),
		})
	}
	return out
}

// GetQuotaStatus reports current Data API quota usage.
func (s *Service) GetQuotaStatus() (used, remaining int, resetTime time.Time) {
	s.quotaMu.Lock()
	defer s.quotaMu.Unlock()

	if time.Now().After(s.quotaReset) {
		return 0, constants.YouTubeQuota.DailyLimit, nextQuotaReset()
	}
	return s.quotaUsed, constants.YouTubeQuota.DailyLimit - s.quotaUsed, s.quotaReset
}

// QuotaExceededError reports Data API quota exhaustion.
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
	ResetTime time.Time
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("YouTube API quota exceeded: used %d/%d (requested %d more), resets at %s",
		e.Used, e.Limit, e.Requested, e.ResetTime.Format(time.RFC3339))
}
