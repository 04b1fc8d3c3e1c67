package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/config"
)

type fakeChat struct {
	answer string
	err    error
	calls  int
	system string
	user   string
}

func (f *fakeChat) Complete(ctx context.Context, system, user string) (string, error) {
	f.calls++
	f.system = system
	f.user = user
	return f.answer, f.err
}

func newTestHandler(chat ChatClient) *Handler {
	return &Handler{
		cfg:    &config.ProxyConfig{GatewayModel: "gpt-4o-mini"},
		chat:   chat,
		logger: zap.NewNop(),
	}
}

func do(h *Handler, method, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	h.ServeHTTP(rec, req)
	return rec
}

func TestPreflightSkipsUpstream(t *testing.T) {
	chat := &fakeChat{answer: "never"}
	rec := do(newTestHandler(chat), http.MethodOptions, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("preflight body = %q, want empty", rec.Body.String())
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS origin header")
	}
	if chat.calls != 0 {
		t.Errorf("upstream called %d times during preflight", chat.calls)
	}
}

func TestNonStringQuestionRejectedWithoutUpstream(t *testing.T) {
	chat := &fakeChat{answer: "never"}
	h := newTestHandler(chat)

	for _, body := range []string{`{}`, `{"question":123}`, `{"question":null}`, `{"question":""}`, `not json`} {
		rec := do(h, http.MethodPost, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, rec.Code)
		}
		var resp map[string]string
		json.Unmarshal(rec.Body.Bytes(), &resp)
		if resp["error"] == "" {
			t.Errorf("body %q: missing error field", body)
		}
	}
	if chat.calls != 0 {
		t.Errorf("upstream called %d times for invalid input", chat.calls)
	}
}

func TestMissingCredentialIs500(t *testing.T) {
	h := newTestHandler(nil)

	rec := do(h, http.MethodPost, `{"question":"hello"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] == "" {
		t.Error("missing error field")
	}
}

func TestSuccessfulAnswer(t *testing.T) {
	chat := &fakeChat{answer: "the video covers goroutines"}
	rec := do(newTestHandler(chat), http.MethodPost, `{"question":"what is it about?"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["answer"] != "the video covers goroutines" {
		t.Errorf("answer = %q", resp["answer"])
	}
	if chat.user != "what is it about?" {
		t.Errorf("question forwarded = %q, want verbatim", chat.user)
	}
	if !strings.Contains(chat.system, "video Q&A assistant") {
		t.Errorf("system prompt = %q", chat.system)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("success response lacks CORS headers")
	}
}

func TestUpstreamFailureIs500(t *testing.T) {
	chat := &fakeChat{err: fmt.Errorf("502 bad gateway")}
	rec := do(newTestHandler(chat), http.MethodPost, `{"question":"anything"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("error response lacks CORS headers")
	}
}

func TestEmptyUpstreamAnswerIs500(t *testing.T) {
	chat := &fakeChat{answer: ""}
	rec := do(newTestHandler(chat), http.MethodPost, `{"question":"anything"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var resp map[string]string
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["error"] != "no answer received" {
		t.Errorf("error = %q, want %q", resp["error"], "no answer received")
	}
}

func TestAnyPathServed(t *testing.T) {
	chat := &fakeChat{answer: "ok"}
	h := newTestHandler(chat)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/some/nested/path", strings.NewReader(`{"question":"q"}`))
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 regardless of path", rec.Code)
	}
}
