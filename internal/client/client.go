// Package client is a typed consumer of the Video Q&A HTTP API. The CLI uses
// it, and it doubles as the reference for the error handling the web UI
// implements in the browser.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/youtube"
)

// ErrKind classifies failures the way the UI reacts to them.
type ErrKind int

const (
	// ErrValidation is rejected input that never reached the network.
	ErrValidation ErrKind = iota
	// ErrTransport is a failed or interrupted HTTP exchange.
	ErrTransport
	// ErrUpstream is a non-2xx response from the API.
	ErrUpstream
	// ErrSemantic is a 2xx response missing the expected payload field.
	ErrSemantic
)

type Error struct {
	Kind    ErrKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

type ProcessOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	VideoID string `json:"video_id"`
}

// ProcessVideo validates the URL locally, then submits it for indexing.
// Validation failures are reported without any network traffic.
func (c *Client) ProcessVideo(ctx context.Context, videoURL string) (*ProcessOutcome, error) {
	videoURL = strings.TrimSpace(videoURL)
	if videoURL == "" {
		return nil, &Error{Kind: ErrValidation, Message: "please enter a video URL"}
	}
	if _, ok := youtube.ExtractVideoID(videoURL); !ok {
		return nil, &Error{Kind: ErrValidation, Message: "that does not look like a YouTube video URL"}
	}

	var resp ProcessOutcome
	if err := c.post(ctx, "/process-video", map[string]string{"video_url": videoURL}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success {
		return nil, &Error{Kind: ErrSemantic, Message: "video processing did not succeed"}
	}
	return &resp, nil
}

// AskQuestion submits a question about the active video. An empty question is
// a no-op, mirroring the UI which simply ignores it.
func (c *Client) AskQuestion(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", nil
	}

	var resp struct {
		Answer string `json:"answer"`
	}
	if err := c.post(ctx, "/ask-question", map[string]string{"question": question}, &resp); err != nil {
		return "", err
	}
	if resp.Answer == "" {
		return "", &Error{Kind: ErrSemantic, Message: "no answer received"}
	}
	return resp.Answer, nil
}

// SuggestedVideos fetches recommendations for a video ID; pass "" to let the
// server pick the active video.
func (c *Client) SuggestedVideos(ctx context.Context, videoID string) ([]domain.SuggestedVideo, error) {
	url := c.baseURL + "/suggested-videos"
	if videoID != "" {
		url += "?video_id=" + videoID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "failed to build request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Message: "could not reach the server", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &Error{Kind: ErrUpstream, Message: extractDetail(resp)}
	}

	var body struct {
		Videos []domain.SuggestedVideo `json:"videos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, &Error{Kind: ErrSemantic, Message: "unexpected response payload", Cause: err}
	}
	return body.Videos, nil
}

func (c *Client) post(ctx context.Context, path string, payload any, dest any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return &Error{Kind: ErrTransport, Message: "failed to encode request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return &Error{Kind: ErrTransport, Message: "failed to build request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: ErrTransport, Message: "could not reach the server", Cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &Error{Kind: ErrUpstream, Message: extractDetail(resp)}
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Kind: ErrSemantic, Message: "unexpected response payload", Cause: err}
	}
	return nil
}

// extractDetail pulls the detail string out of an error body, best effort.
// Non-JSON bodies and bodies without a detail fall back to a generic message.
func extractDetail(resp *http.Response) string {
	fallback := fmt.Sprintf("request failed with status %d", resp.StatusCode)

	var body struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return fallback
	}
	if body.Detail != "" {
		return body.Detail
	}
	if body.Error != "" {
		return body.Error
	}
	return fallback
}
