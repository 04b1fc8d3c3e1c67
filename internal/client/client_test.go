package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestProcessVideoLocalValidation(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, server.Client())

	cases := []struct {
		url     string
		message string
	}{
		{"", "please enter a video URL"},
		{"   ", "please enter a video URL"},
		{"hello world", "that does not look like a YouTube video URL"},
		{"https://vimeo.com/12345", "that does not look like a YouTube video URL"},
	}
	for _, tc := range cases {
		_, err := c.ProcessVideo(context.Background(), tc.url)
		var cerr *Error
		if !errors.As(err, &cerr) {
			t.Fatalf("ProcessVideo(%q): error type %T", tc.url, err)
		}
		if cerr.Kind != ErrValidation {
			t.Errorf("ProcessVideo(%q): kind = %d, want validation", tc.url, cerr.Kind)
		}
		if cerr.Message != tc.message {
			t.Errorf("ProcessVideo(%q): message = %q, want %q", tc.url, cerr.Message, tc.message)
		}
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times by invalid input", hits.Load())
	}
}

func TestProcessVideoSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["video_url"] != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
			t.Errorf("video_url = %q", body["video_url"])
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "message": "ok", "video_id": "dQw4w9WgXcQ"})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	outcome, err := c.ProcessVideo(context.Background(), "https://www.youtube.com/watch?v=dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("ProcessVideo: %v", err)
	}
	if outcome.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("videoID = %q", outcome.VideoID)
	}
}

func TestProcessVideoMissingSuccessField(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"message": "indexed"})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	_, err := c.ProcessVideo(context.Background(), "https://youtu.be/dQw4w9WgXcQ")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrSemantic {
		t.Fatalf("err = %v, want semantic failure", err)
	}
}

func TestAskQuestionEmptyIsNoOp(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	answer, err := c.AskQuestion(context.Background(), "   ")
	if err != nil || answer != "" {
		t.Errorf("empty question: answer = %q, err = %v", answer, err)
	}
	if hits.Load() != 0 {
		t.Errorf("server hit %d times by an empty question", hits.Load())
	}
}

func TestAskQuestionUpstreamDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"detail": "rate limited"})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	_, err := c.AskQuestion(context.Background(), "anything")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrUpstream {
		t.Fatalf("err = %v, want upstream failure", err)
	}
	if cerr.Message != "rate limited" {
		t.Errorf("message = %q, want extracted detail", cerr.Message)
	}
}

func TestAskQuestionNonJSONErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	_, err := c.AskQuestion(context.Background(), "anything")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrUpstream {
		t.Fatalf("err = %v, want upstream failure", err)
	}
	if cerr.Message != "request failed with status 502" {
		t.Errorf("message = %q, want generic fallback", cerr.Message)
	}
}

func TestAskQuestionMissingAnswerIsSemantic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	_, err := c.AskQuestion(context.Background(), "anything")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrSemantic {
		t.Fatalf("err = %v, want semantic failure", err)
	}
	if cerr.Message != "no answer received" {
		t.Errorf("message = %q", cerr.Message)
	}
}

func TestAskQuestionTransportError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := New(server.URL, nil)
	_, err := c.AskQuestion(context.Background(), "anything")

	var cerr *Error
	if !errors.As(err, &cerr) || cerr.Kind != ErrTransport {
		t.Fatalf("err = %v, want transport failure", err)
	}
}

func TestSuggestedVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("video_id") != "dQw4w9WgXcQ" {
			t.Errorf("video_id = %q", r.URL.Query().Get("video_id"))
		}
		json.NewEncoder(w).Encode(map[string]any{
			"videos": []map[string]string{{"id": "abc123def45", "title": "Related"}},
		})
	}))
	defer server.Close()

	c := New(server.URL, server.Client())
	videos, err := c.SuggestedVideos(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("SuggestedVideos: %v", err)
	}
	if len(videos) != 1 || videos[0].ID != "abc123def45" {
		t.Errorf("videos = %+v", videos)
	}
}
