package rag

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

type embeddingsReply struct {
	Object string `json:"object"`
	Data   []struct {
		Object    string    `json:"object"`
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Model string `json:"model"`
}

func newTestEmbedder(t *testing.T, handler http.HandlerFunc) *OpenAIEmbedder {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := openai.NewClient(
		option.WithAPIKey("test"),
		option.WithBaseURL(server.URL),
	)
	return NewOpenAIEmbedder(&client, "text-embedding-3-small", zap.NewNop())
}

func TestEmbedTextsOrdersByResponseIndex(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		// Reply out of order; the index field decides placement.
		reply := `{"object":"list","model":"text-embedding-3-small","data":[` +
			`{"object":"embedding","index":1,"embedding":[2.0]},` +
			`{"object":"embedding","index":0,"embedding":[1.0]}]}`
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(reply))
	})

	vectors, err := e.EmbedTexts(context.Background(), []string{"first", "second"})
	if err != nil {
		t.Fatalf("EmbedTexts: %v", err)
	}
	if len(vectors) != 2 || vectors[0][0] != 1.0 || vectors[1][0] != 2.0 {
		t.Errorf("vectors = %v, want index-ordered [1] [2]", vectors)
	}
}

func TestEmbedTextsRejectsOutOfRangeIndex(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		reply := embeddingsReply{Object: "list", Model: "text-embedding-3-small"}
		reply.Data = append(reply.Data, struct {
			Object    string    `json:"object"`
			Embedding []float64 `json:"embedding"`
			Index     int       `json:"index"`
		}{Object: "embedding", Embedding: []float64{1.0}, Index: 7})
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reply)
	})

	_, err := e.EmbedTexts(context.Background(), []string{"only"})
	if err == nil {
		t.Fatal("expected error for out-of-range embedding index")
	}
	if !strings.Contains(err.Error(), "out of range") {
		t.Errorf("error = %v, want out-of-range mention", err)
	}
}

func TestEmbedTextsCountMismatch(t *testing.T) {
	e := newTestEmbedder(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"object":"list","model":"text-embedding-3-small","data":[]}`))
	})

	_, err := e.EmbedTexts(context.Background(), []string{"a", "b"})
	if err == nil {
		t.Fatal("expected error for embedding count mismatch")
	}
	if !strings.Contains(err.Error(), "mismatch") {
		t.Errorf("error = %v, want count mismatch", err)
	}
}
