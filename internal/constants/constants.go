package constants

import "time"

var CacheTTL = struct {
	Transcript      time.Duration
	SuggestedVideos time.Duration
	Answer          time.Duration
	VideoMetadata   time.Duration
}{
	Transcript:      24 * time.Hour,
	SuggestedVideos: 10 * time.Minute,
	Answer:          30 * time.Minute,
	VideoMetadata:   60 * time.Minute,
}

// Chunking parameters for transcript indexing (word-based windows).
var Chunking = struct {
	Size    int
	Overlap int
}{
	Size:    500,
	Overlap: 100,
}

var Retrieval = struct {
	TopK int
}{
	TopK: 5,
}

var Embedding = struct {
	BatchSize      int
	MaxConcurrency int
}{
	BatchSize:      64,
	MaxConcurrency: 3,
}

var AIInputLimits = struct {
	MaxQuestionLength int
	MaxAnswerTokens   int
	MaxContextRunes   int
}{
	MaxQuestionLength: 500,
	MaxAnswerTokens:   1024,
	MaxContextRunes:   24000,
}

var CircuitBreakerConfig = struct {
	FailureThreshold    int
	ResetTimeout        time.Duration
	RateLimitTimeout    time.Duration
	HealthCheckInterval time.Duration
}{
	FailureThreshold:    3,
	ResetTimeout:        60 * time.Second,
	RateLimitTimeout:    5 * time.Minute,
	HealthCheckInterval: 30 * time.Second,
}

// YouTube Data API quota accounting (units per day / per call).
var YouTubeQuota = struct {
	DailyLimit   int
	SearchCost   int
	VideosCost   int
	SafetyMargin int
}{
	DailyLimit:   10000,
	SearchCost:   100,
	VideosCost:   1,
	SafetyMargin: 2000,
}

var Suggestions = struct {
	MaxResults int
	SearchPool int
	WindowSize int
	QueryWords int
}{
	MaxResults: 5,
	SearchPool: 10,
	WindowSize: 3,
	QueryWords: 5,
}

// Prompts are deployment data, not logic; override-friendly literals.
var Prompts = struct {
	RAGSystem   string
	ProxySystem string
}{
	RAGSystem:   "You are an assistant that answers based on context.",
	ProxySystem: "You are a helpful video Q&A assistant. Answer the user's question about the video clearly and concisely.",
}

// PresetQuestions back the one-click question chips in the web UI.
var PresetQuestions = []string{
	"Summarize this video in a few sentences",
	"What are the key takeaways?",
	"What topics does the video cover?",
	"Who is this video for?",
}

// DefaultSuggestion is one entry of the curated fallback list served when the
// YouTube Data API is unavailable.
type DefaultSuggestion struct {
	ID    string
	Title string
}

var DefaultSuggestions = []DefaultSuggestion{
	{ID: "dQw4w9WgXcQ", Title: "Introduction to Video Learning"},
	{ID: "jNQXAC9IVRw", Title: "Advanced Learning Techniques"},
	{ID: "kJQP7kiw5Fk", Title: "Interactive Learning Guide"},
	{ID: "9bZkp7q19f0", Title: "Educational Content Series"},
	{ID: "L_jWHffIx5E", Title: "Mastering Video Analysis"},
}

var HTTPConfig = struct {
	ClientTimeout   time.Duration
	WatchPageLimit  int64
	TimedTextLimit  int64
	ShutdownTimeout time.Duration
}{
	ClientTimeout:   15 * time.Second,
	WatchPageLimit:  6 * 1024 * 1024,
	TimedTextLimit:  512 * 1024,
	ShutdownTimeout: 10 * time.Second,
}
