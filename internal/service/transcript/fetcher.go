// Package transcript fetches YouTube caption text without an API key by
// scraping the watch page: the embedded ytInitialPlayerResponse JSON lists
// caption tracks, and each track resolves to a timedtext XML document.
package transcript

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/service/cache"
	"github.com/kapu/video-qna-go/internal/util"
	"github.com/kapu/video-qna-go/internal/youtube"
	"github.com/kapu/video-qna-go/pkg/errors"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"

// playerResponseMarker precedes the player response JSON in watch page HTML.
const playerResponseMarker = "ytInitialPlayerResponse = "

type Fetcher struct {
	httpClient *http.Client
	cache      *cache.Service
	languages  []string
	logger     *zap.Logger
}

// NewFetcher builds a transcript fetcher. cache may be nil; languages are
// caption language codes in descending preference, defaulting to English.
func NewFetcher(httpClient *http.Client, cacheSvc *cache.Service, languages []string, logger *zap.Logger) *Fetcher {
	if len(languages) == 0 {
		languages = []string{"en"}
	}
	return &Fetcher{
		httpClient: httpClient,
		cache:      cacheSvc,
		languages:  languages,
		logger:     logger,
	}
}

// Fetch returns the full cleaned transcript for a video identifier.
func (f *Fetcher) Fetch(ctx context.Context, videoID string) (string, error) {
	if f.cache != nil {
		var cached string
		if found, err := f.cache.Get(ctx, cache.TranscriptKey(videoID), &cached); err == nil && found && cached != "" {
			f.logger.Debug("Transcript cache hit", zap.String("video_id", videoID))
			return cached, nil
		}
	}

	tracks, err := f.fetchCaptionTracks(ctx, videoID)
	if err != nil {
		return "", err
	}
	if len(tracks) == 0 {
		return "", errors.NewValidationError("no captions available for this video", "video_id", videoID)
	}

	track := pickBestTrack(tracks, f.languages)

	text, err := f.fetchTimedText(ctx, track.BaseURL)
	if err != nil {
		return "", err
	}

	cleaned := util.CollapseWhitespace(text)
	if cleaned == "" {
		return "", errors.NewValidationError("transcript is empty", "video_id", videoID)
	}

	f.logger.Info("Transcript fetched",
		zap.String("video_id", videoID),
		zap.String("language", track.LanguageCode),
		zap.Bool("auto_generated", track.Kind == "asr"),
		zap.Int("length", len(cleaned)),
	)

	if f.cache != nil {
		_ = f.cache.Set(ctx, cache.TranscriptKey(videoID), cleaned, constants.CacheTTL.Transcript)
	}

	return cleaned, nil
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type playerResponse struct {
	Captions *struct {
		PlayerCaptionsTracklistRenderer struct {
			CaptionTracks []captionTrack `json:"captionTracks"`
		} `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
	PlayabilityStatus *struct {
		Status string `json:"status"`
		Reason string `json:"reason"`
	} `json:"playabilityStatus"`
}

func (f *Fetcher) fetchCaptionTracks(ctx context.Context, videoID string) ([]captionTrack, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, youtube.WatchURL(videoID), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewServiceError("failed to fetch watch page", "transcript", "watch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewAPIError(
			fmt.Sprintf("watch page returned status %d", resp.StatusCode),
			resp.StatusCode, map[string]any{"video_id": videoID})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.HTTPConfig.WatchPageLimit))
	if err != nil {
		return nil, errors.NewServiceError("failed to read watch page", "transcript", "watch", err)
	}

	player, err := parsePlayerResponse(body)
	if err != nil {
		return nil, err
	}

	if player.Captions == nil {
		reason := "no captions in player response"
		if player.PlayabilityStatus != nil && player.PlayabilityStatus.Reason != "" {
			reason = player.PlayabilityStatus.Reason
		}
		return nil, errors.NewValidationError(reason, "video_id", videoID)
	}

	return player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks, nil
}

// parsePlayerResponse locates and decodes the ytInitialPlayerResponse object
// embedded in watch page HTML.
func parsePlayerResponse(page []byte) (*playerResponse, error) {
	idx := strings.Index(string(page), playerResponseMarker)
	if idx < 0 {
		return nil, errors.NewServiceError("ytInitialPlayerResponse not found in watch page", "transcript", "parse", nil)
	}

	jsonData := extractJSONObject(page[idx+len(playerResponseMarker):])
	if jsonData == nil {
		return nil, errors.NewServiceError("failed to extract player response JSON", "transcript", "parse", nil)
	}

	var player playerResponse
	if err := json.Unmarshal(jsonData, &player); err != nil {
		return nil, errors.NewServiceError("failed to decode player response", "transcript", "parse", err)
	}
	return &player, nil
}

// extractJSONObject returns the balanced top-level JSON object at the start of
// data, honoring string escapes, or nil when the braces never balance.
func extractJSONObject(data []byte) []byte {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}

	depth := 0
	inString := false
	escaped := false

	for i, b := range data {
		if escaped {
			escaped = false
			continue
		}
		switch b {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return data[:i+1]
				}
			}
		}
	}
	return nil
}

// pickBestTrack prefers a manual track in a requested language, then an
// auto-generated one, then any English track, then whatever is first.
func pickBestTrack(tracks []captionTrack, langs []string) captionTrack {
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t
			}
		}
	}
	for _, lang := range langs {
		for _, t := range tracks {
			if t.LanguageCode == lang {
				return t
			}
		}
	}
	for _, t := range tracks {
		if strings.HasPrefix(t.LanguageCode, "en") {
			return t
		}
	}
	return tracks[0]
}

type timedText struct {
	Lines []struct {
		Text string `xml:",chardata"`
	} `xml:"text"`
}

func (f *Fetcher) fetchTimedText(ctx context.Context, baseURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errors.NewServiceError("failed to fetch timedtext", "transcript", "timedtext", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.NewAPIError(
			fmt.Sprintf("timedtext returned status %d", resp.StatusCode),
			resp.StatusCode, nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, constants.HTTPConfig.TimedTextLimit))
	if err != nil {
		return "", errors.NewServiceError("failed to read timedtext", "transcript", "timedtext", err)
	}

	return parseTimedText(body)
}

var tagRE = regexp.MustCompile(`<[^>]+>`)

// parseTimedText joins the caption lines of a timedtext XML document into one
// plain-text string, dropping markup and entity escapes.
func parseTimedText(body []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return "", errors.NewServiceError("failed to parse timedtext XML", "transcript", "timedtext", err)
	}

	var sb strings.Builder
	for _, line := range tt.Lines {
		text := strings.TrimSpace(tagRE.ReplaceAllString(html.UnescapeString(line.Text), ""))
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}
