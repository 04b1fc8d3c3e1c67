package ai

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/kapu/video-qna-go/internal/constants"
	"github.com/kapu/video-qna-go/internal/util"
	apperrors "github.com/kapu/video-qna-go/pkg/errors"
)

// ModelManager routes text generation to the OpenAI-compatible gateway first
// and falls back to Gemini when the primary fails, guarded by a shared
// circuit breaker so a dead upstream does not get hammered per request.
type ModelManager struct {
	openai         *OpenAIProvider
	gemini         *GeminiProvider
	primary        TextProvider
	fallback       TextProvider
	logger         *zap.Logger
	enableFallback bool
	circuitBreaker *util.CircuitBreaker
}

type ModelManagerConfig struct {
	OpenAIClient   *openai.Client
	OpenAIModel    string
	GeminiAPIKey   string
	GeminiModel    string
	EnableFallback bool
}

type GenerateMetadata struct {
	Provider     string
	Model        string
	UsedFallback bool
}

func NewModelManager(ctx context.Context, cfg ModelManagerConfig, logger *zap.Logger) (*ModelManager, error) {
	if cfg.OpenAIClient == nil {
		return nil, fmt.Errorf("OpenAI client is required")
	}

	openaiModel := cfg.OpenAIModel
	if openaiModel == "" {
		openaiModel = "gpt-4o-mini"
	}
	openaiProvider := NewOpenAIProvider(cfg.OpenAIClient, openaiModel, logger)

	mm := &ModelManager{
		openai:  openaiProvider,
		primary: openaiProvider,
		logger:  logger,
	}

	if cfg.EnableFallback && cfg.GeminiAPIKey != "" {
		geminiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}

		geminiModel := cfg.GeminiModel
		if geminiModel == "" {
			geminiModel = "gemini-2.5-flash"
		}

		mm.gemini = NewGeminiProvider(geminiClient, geminiModel, logger)
		mm.fallback = mm.gemini
		mm.enableFallback = true
		logger.Info("Gemini fallback enabled", zap.String("model", geminiModel))
	} else {
		logger.Info("Gemini fallback disabled")
	}

	mm.circuitBreaker = util.NewCircuitBreaker(
		constants.CircuitBreakerConfig.FailureThreshold,
		constants.CircuitBreakerConfig.ResetTimeout,
		constants.CircuitBreakerConfig.HealthCheckInterval,
		mm.healthCheckPing,
		logger,
	)

	return mm, nil
}

// GenerateText runs one chat completion through the primary provider and, on
// failure, the fallback. Service-level failures feed the circuit breaker.
func (mm *ModelManager) GenerateText(ctx context.Context, system, user string) (string, *GenerateMetadata, error) {
	if !mm.circuitBreaker.CanExecute() {
		status := mm.circuitBreaker.GetStatus()
		mm.logger.Error("AI service unavailable (circuit open)",
			zap.String("state", status.State.String()),
			zap.Int("failure_count", status.FailureCount),
		)
		return "", nil, apperrors.NewServiceError("AI service is temporarily unavailable, please try again shortly", "ai", "generate", nil)
	}

	primaryResult, primaryErr := mm.primary.Generate(ctx, system, user)
	if primaryErr == nil {
		mm.circuitBreaker.RecordSuccess()
		return primaryResult.Text, &GenerateMetadata{
			Provider: mm.primary.Name(),
			Model:    primaryResult.Model,
		}, nil
	}

	mm.logger.Warn("Primary provider failed",
		zap.String("provider", mm.primary.Name()),
		zap.Error(primaryErr),
	)

	if mm.enableFallback && mm.fallback != nil {
		fallbackResult, fallbackErr := mm.fallback.Generate(ctx, system, user)
		if fallbackErr == nil {
			mm.circuitBreaker.RecordSuccess()
			return fallbackResult.Text, &GenerateMetadata{
				Provider:     mm.fallback.Name(),
				Model:        fallbackResult.Model,
				UsedFallback: true,
			}, nil
		}

		mm.recordFailure(primaryErr)
		mm.recordFailure(fallbackErr)

		if mm.isServiceFailure(primaryErr) || mm.isServiceFailure(fallbackErr) {
			return "", nil, apperrors.NewServiceError("AI service is temporarily unavailable, please try again shortly", "ai", "generate", fallbackErr)
		}
		return "", nil, fallbackErr
	}

	mm.recordFailure(primaryErr)

	if mm.isServiceFailure(primaryErr) {
		return "", nil, apperrors.NewServiceError("AI service is temporarily unavailable, please try again shortly", "ai", "generate", primaryErr)
	}
	return "", nil, primaryErr
}

func (mm *ModelManager) recordFailure(err error) {
	if err == nil || !mm.isServiceFailure(err) {
		return
	}

	timeout := constants.CircuitBreakerConfig.ResetTimeout
	if mm.isRateLimitError(err) {
		timeout = constants.CircuitBreakerConfig.RateLimitTimeout
	}

	mm.circuitBreaker.RecordFailure(timeout)
}

func (mm *ModelManager) healthCheckPing() bool {
	mm.logger.Info("Health check: testing AI providers")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	openaiOK := false
	if mm.openai != nil {
		openaiOK = mm.openai.Ping(ctx)
	}

	geminiOK := false
	if mm.enableFallback && mm.gemini != nil {
		geminiOK = mm.gemini.Ping(ctx)
	}

	isHealthy := openaiOK || geminiOK

	mm.logger.Info("Health check: result",
		zap.Bool("openai", openaiOK),
		zap.Bool("gemini", geminiOK),
		zap.Bool("healthy", isHealthy),
	)

	return isHealthy
}

func (mm *ModelManager) isServiceFailure(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()

	if strings.Contains(msg, "timeout") || strings.Contains(msg, "connection refused") {
		return true
	}

	if mm.isRateLimitError(err) {
		return true
	}

	statusRegex := regexp.MustCompile(`\b(5\d{2})\b`)
	if statusRegex.MatchString(msg) {
		return true
	}

	geminiCodeRegex := regexp.MustCompile(`"code":(\d{3})`)
	if matches := geminiCodeRegex.FindStringSubmatch(msg); len(matches) > 1 {
		if code, convErr := strconv.Atoi(matches[1]); convErr == nil {
			return code >= 500 && code < 600
		}
	}

	return false
}

func (mm *ModelManager) isRateLimitError(err error) bool {
	if err == nil {
		return false
	}

	msg := err.Error()
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "Rate limit") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "quota")
}

func (mm *ModelManager) GetCircuitStatus() util.CircuitBreakerStatus {
	return mm.circuitBreaker.GetStatus()
}
