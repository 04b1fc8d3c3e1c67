package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	apperrors "github.com/kapu/video-qna-go/pkg/errors"
)

type processVideoRequest struct {
	VideoURL string `json:"video_url"`
}

type processVideoResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	VideoID string `json:"video_id,omitempty"`
}

type askQuestionRequest struct {
	Question string `json:"question"`
}

type askQuestionResponse struct {
	Answer string `json:"answer"`
}

type suggestedVideosResponse struct {
	Videos any `json:"videos"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var req processVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("request body must be JSON with a video_url field", "video_url", nil))
		return
	}

	result, err := s.pipeline.ProcessVideo(r.Context(), req.VideoURL)
	if err != nil {
		s.writeError(w, err)
		return
	}

	message := "Video processed and indexed successfully"
	if result.FromCache {
		message = "Video already indexed"
	}

	writeJSON(w, http.StatusOK, processVideoResponse{
		Success: true,
		Message: message,
		VideoID: result.VideoID,
	})
}

func (s *Server) handleAskQuestion(w http.ResponseWriter, r *http.Request) {
	var req askQuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, apperrors.NewValidationError("request body must be JSON with a question field", "question", nil))
		return
	}

	answer, err := s.pipeline.Answer(r.Context(), req.Question)
	if err != nil {
		s.writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, askQuestionResponse{Answer: answer})
}

func (s *Server) handleSuggestedVideos(w http.ResponseWriter, r *http.Request) {
	videoID := r.URL.Query().Get("video_id")
	if videoID == "" {
		videoID, _ = s.pipeline.CurrentVideo()
	}

	videos := s.suggest.SuggestedVideos(r.Context(), videoID)
	writeJSON(w, http.StatusOK, suggestedVideosResponse{Videos: videos})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	videoID, title := s.pipeline.CurrentVideo()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "ok",
		"video_loaded":  videoID != "",
		"current_video": videoID,
		"current_title": title,
		"chunk_count":   s.pipeline.ChunkCount(r.Context()),
	})
}

// writeError maps typed errors to their HTTP status and hides internal detail
// behind the client-safe message the type carries.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var carrier interface {
		HTTPStatus() int
		PublicMessage() string
	}
	if errors.As(err, &carrier) {
		status = carrier.HTTPStatus()
		message = carrier.PublicMessage()
	}

	if status >= 500 {
		s.logger.Error("Request failed", zap.Int("status", status), zap.Error(err))
	} else {
		s.logger.Warn("Request rejected", zap.Int("status", status), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Detail: message})
}
