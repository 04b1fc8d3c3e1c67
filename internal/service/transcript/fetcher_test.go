package transcript

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/pkg/errors"
)

func TestExtractJSONObject(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "simple object",
			input: `{"a":1};var next = 2;`,
			want:  `{"a":1}`,
		},
		{
			name:  "nested objects",
			input: `{"a":{"b":{"c":3}},"d":4}trailing`,
			want:  `{"a":{"b":{"c":3}},"d":4}`,
		},
		{
			name:  "braces inside strings",
			input: `{"text":"a } inside {"}rest`,
			want:  `{"text":"a } inside {"}`,
		},
		{
			name:  "escaped quotes inside strings",
			input: `{"text":"she said \"}\" loudly"}rest`,
			want:  `{"text":"she said \"}\" loudly"}`,
		},
		{
			name:  "unbalanced",
			input: `{"a":{"b":1}`,
			want:  "",
		},
		{
			name:  "not an object",
			input: `[1,2,3]`,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSONObject([]byte(tt.input))
			if string(got) != tt.want {
				t.Errorf("extractJSONObject(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestParsePlayerResponse(t *testing.T) {
	page := []byte(`<html><script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"https://example.com/tt","languageCode":"en","kind":"asr"}]}}};</script></html>`)

	player, err := parsePlayerResponse(page)
	if err != nil {
		t.Fatalf("parsePlayerResponse: %v", err)
	}
	if player.Captions == nil {
		t.Fatal("expected captions")
	}
	tracks := player.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) != 1 || tracks[0].LanguageCode != "en" || tracks[0].Kind != "asr" {
		t.Errorf("unexpected tracks: %+v", tracks)
	}
}

func TestParsePlayerResponseMissingMarker(t *testing.T) {
	if _, err := parsePlayerResponse([]byte("<html>nothing here</html>")); err == nil {
		t.Fatal("expected error for page without player response")
	}
}

func TestPickBestTrack(t *testing.T) {
	tracks := []captionTrack{
		{BaseURL: "ko-asr", LanguageCode: "ko", Kind: "asr"},
		{BaseURL: "en-asr", LanguageCode: "en", Kind: "asr"},
		{BaseURL: "en-manual", LanguageCode: "en"},
		{BaseURL: "de-manual", LanguageCode: "de"},
	}

	if got := pickBestTrack(tracks, []string{"en"}); got.BaseURL != "en-manual" {
		t.Errorf("manual preferred: got %q", got.BaseURL)
	}
	if got := pickBestTrack(tracks, []string{"ko"}); got.BaseURL != "ko-asr" {
		t.Errorf("asr fallback in requested language: got %q", got.BaseURL)
	}
	if got := pickBestTrack(tracks, []string{"ja"}); got.BaseURL != "en-asr" {
		t.Errorf("english fallback: got %q", got.BaseURL)
	}
	if got := pickBestTrack(tracks[3:], []string{"ja"}); got.BaseURL != "de-manual" {
		t.Errorf("first-track fallback: got %q", got.BaseURL)
	}
}

func TestParseTimedText(t *testing.T) {
	body := []byte(`<?xml version="1.0" encoding="utf-8"?>
<transcript>
  <text start="0.0" dur="2.5">hello &amp; welcome</text>
  <text start="2.5" dur="3.0">to &lt;i&gt;the&lt;/i&gt; show</text>
  <text start="5.5" dur="1.0">  </text>
</transcript>`)

	got, err := parseTimedText(body)
	if err != nil {
		t.Fatalf("parseTimedText: %v", err)
	}
	want := "hello & welcome to the show"
	if got != want {
		t.Errorf("parseTimedText = %q, want %q", got, want)
	}
}

func TestFetchEndToEnd(t *testing.T) {
	mux := http.NewServeMux()
	var server *httptest.Server

	mux.HandleFunc("/timedtext", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<transcript><text start="0" dur="1">first   line</text><text start="1" dur="1">second line</text></transcript>`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[{"baseUrl":"` + server.URL + `/timedtext","languageCode":"en"}]}}};</html>`))
	})

	server = httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(server.Client(), nil, nil, zap.NewNop())

	// Point the watch-page request at the test server by replacing the URL at
	// request time via a rewriting transport.
	f.httpClient = &http.Client{Transport: rewriteHost(server)}

	got, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "first line second line" {
		t.Errorf("Fetch = %q", got)
	}
}

func TestFetchNoCaptionsIsClientFault(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>ytInitialPlayerResponse = {"playabilityStatus":{"status":"OK"}};</html>`))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	f := NewFetcher(&http.Client{Transport: rewriteHost(server)}, nil, nil, zap.NewNop())

	_, err := f.Fetch(context.Background(), "dQw4w9WgXcQ")
	if err == nil {
		t.Fatal("expected error for video without captions")
	}
	var verr *errors.ValidationError
	if !stderrors.As(err, &verr) {
		t.Fatalf("error type = %T, want *ValidationError", err)
	}
	if verr.HTTPStatus() != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", verr.HTTPStatus())
	}
}

type rewriteTransport struct {
	server *httptest.Server
}

func rewriteHost(server *httptest.Server) http.RoundTripper {
	return &rewriteTransport{server: server}
}

func (rt *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if strings.Contains(req.URL.Host, "youtube.com") {
		target := rt.server.URL + "/?watch=" + req.URL.Query().Get("v")
		redirected, err := http.NewRequestWithContext(req.Context(), req.Method, target, nil)
		if err != nil {
			return nil, err
		}
		redirected.Header = req.Header
		req = redirected
	}
	return rt.server.Client().Transport.RoundTrip(req)
}
