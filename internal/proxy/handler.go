// Package proxy implements the standalone answer function: a single stateless
// handler that forwards one question per request to an OpenAI-compatible chat
// completion gateway and relays the first choice back as {answer}.
package proxy

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/config"
	"github.com/kapu/video-qna-go/internal/constants"
)

// ChatClient is the slice of the gateway client the handler needs.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type openAIChatClient struct {
	client *openai.Client
	model  string
}

func (c *openAIChatClient) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Handler serves every path with the same three-outcome state machine:
// preflight, malformed request, or one synchronous upstream call.
type Handler struct {
	cfg    *config.ProxyConfig
	chat   ChatClient
	logger *zap.Logger
}

func NewHandler(cfg *config.ProxyConfig, logger *zap.Logger) *Handler {
	h := &Handler{cfg: cfg, logger: logger}
	if cfg.GatewayKey != "" {
		client := openai.NewClient(
			option.WithAPIKey(cfg.GatewayKey),
			option.WithBaseURL(cfg.GatewayURL),
		)
		h.chat = &openAIChatClient{client: &client, model: cfg.GatewayModel}
	}
	return h
}

type askRequest struct {
	Question json.RawMessage `json:"question"`
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "request body must be JSON", err)
		return
	}

	var question string
	if err := json.Unmarshal(req.Question, &question); err != nil || question == "" {
		h.writeError(w, http.StatusBadRequest, "question must be a non-empty string", err)
		return
	}

	if h.chat == nil {
		h.writeError(w, http.StatusInternalServerError, "AI gateway credential is not configured", nil)
		return
	}

	answer, err := h.chat.Complete(r.Context(), constants.Prompts.ProxySystem, question)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, "upstream AI request failed", err)
		return
	}
	if answer == "" {
		h.writeError(w, http.StatusInternalServerError, "no answer received", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"answer": answer})
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string, cause error) {
	if cause != nil {
		h.logger.Error(message, zap.Error(cause))
	} else {
		h.logger.Error(message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeCORS(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
}
