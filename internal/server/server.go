package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kapu/video-qna-go/internal/domain"
)

// VideoPipeline indexes videos and answers questions about the active one.
type VideoPipeline interface {
	ProcessVideo(ctx context.Context, rawURL string) (*domain.ProcessResult, error)
	Answer(ctx context.Context, question string) (string, error)
	CurrentVideo() (videoID, title string)
	ChunkCount(ctx context.Context) int
}

// Suggester returns related videos for a seed video ID.
type Suggester interface {
	SuggestedVideos(ctx context.Context, videoID string) []domain.SuggestedVideo
}

type Server struct {
	pipeline VideoPipeline
	suggest  Suggester
	logger   *zap.Logger
	origins  []string
}

func New(pipeline VideoPipeline, suggest Suggester, allowedOrigins []string, logger *zap.Logger) *Server {
	return &Server{
		pipeline: pipeline,
		suggest:  suggest,
		logger:   logger,
		origins:  allowedOrigins,
	}
}

// Router wires all API routes plus the embedded web UI.
func (s *Server) Router() http.Handler {
	r := mux.NewRouter()

	r.Use(s.corsMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/process-video", s.handleProcessVideo).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/ask-question", s.handleAskQuestion).Methods(http.MethodPost, http.MethodOptions)
	r.HandleFunc("/suggested-videos", s.handleSuggestedVideos).Methods(http.MethodGet, http.MethodOptions)
	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)

	return r
}

// corsMiddleware applies the configured origin policy to every response and
// short-circuits preflight requests.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := "*"
		if len(s.origins) > 0 && s.origins[0] != "*" {
			origin = s.origins[0]
			if requested := r.Header.Get("Origin"); requested != "" {
				for _, allowed := range s.origins {
					if strings.EqualFold(allowed, requested) {
						origin = requested
						break
					}
				}
			}
		}
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
