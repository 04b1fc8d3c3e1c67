package metadata

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/service/cache"
	ytutil "github.com/kapu/video-qna-go/internal/youtube"
	apperrors "github.com/kapu/video-qna-go/pkg/errors"
)

// Scraper recovers basic video metadata from the public watch page. It needs
// no API key and no quota, which makes it the default source for titles.
type Scraper struct {
	httpClient *http.Client
	cache      *cache.Service
	logger     *zap.Logger
	baseURL    string
}

func NewScraper(httpClient *http.Client, cacheSvc *cache.Service, logger *zap.Logger) *Scraper {
	return &Scraper{
		httpClient: httpClient,
		cache:      cacheSvc,
		logger:     logger,
	}
}

// Fetch returns the video's title, channel name and description as published
// in the watch page's meta tags.
func (s *Scraper) Fetch(ctx context.Context, videoID string) (*domain.VideoMetadata, error) {
	if s.cache != nil {
		var cached domain.VideoMetadata
		if found, err := s.cache.Get(ctx, cache.MetadataKey(videoID), &cached); err == nil && found {
			s.logger.Debug("Metadata cache hit", zap.String("videoId", videoID))
			return &cached, nil
		}
	}

	url := ytutil.WatchURL(videoID)
	if s.baseURL != "" {
		url = s.baseURL + "/watch?v=" + videoID
	}

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; VideoQnA/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewServiceError("failed to fetch watch page", "metadata", "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewServiceError(
			fmt.Sprintf("watch page returned status %d", resp.StatusCode), "metadata", "fetch", nil)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperrors.NewServiceError("HTML parse failed", "metadata", "parse", err)
	}

	meta := parseDocument(videoID, doc)
	if meta.Title == "" {
		return nil, apperrors.NewServiceError("watch page carries no title", "metadata", "parse", nil)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, cache.MetadataKey(videoID), meta, constants.CacheTTL.VideoMetadata); err != nil {
			s.logger.Warn("Failed to cache metadata", zap.Error(err))
		}
	}
	return meta, nil
}

func parseDocument(videoID string, doc *goquery.Document) *domain.VideoMetadata {
	meta := &domain.VideoMetadata{ID: videoID}

	if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
		meta.Title = strings.TrimSpace(title)
	}
	if meta.Title == "" {
		// The <title> tag carries a " - YouTube" suffix.
		title := strings.TrimSpace(doc.Find("title").Text())
		meta.Title = strings.TrimSpace(strings.TrimSuffix(title, "- YouTube"))
	}

	if channel, ok := doc.Find(`link[itemprop="name"]`).Attr("content"); ok {
		meta.Channel = strings.TrimSpace(channel)
	}
	if meta.Channel == "" {
		if channel, ok := doc.Find(`meta[itemprop="author"]`).Attr("content"); ok {
			meta.Channel = strings.TrimSpace(channel)
		}
	}

	if desc, ok := doc.Find(`meta[property="og:description"]`).Attr("content"); ok {
		meta.Description = strings.TrimSpace(desc)
	}

	return meta
}
