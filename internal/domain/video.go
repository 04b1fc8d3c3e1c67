package domain

// SuggestedVideo is one entry of the recommendation strip. Thumbnail may point
// at any host; consumers fall back to the deterministic mqdefault URL when it
// fails to load.
type SuggestedVideo struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	URL       string `json:"url"`
}

// VideoMetadata is what the watch-page scraper can recover without an API key.
type VideoMetadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Description string `json:"description"`
}

// Chunk is one indexed slice of a transcript together with its position in the
// original word stream.
type Chunk struct {
	VideoID   string    `json:"video_id"`
	ChunkID   int       `json:"chunk_id"`
	Text      string    `json:"text"`
	WordStart int       `json:"word_start"`
	WordEnd   int       `json:"word_end"`
	Embedding []float32 `json:"-"`
}

// ScoredChunk is a retrieval hit.
type ScoredChunk struct {
	Chunk
	Score float32 `json:"score"`
}

// ProcessResult reports the outcome of indexing a video.
type ProcessResult struct {
	VideoID    string `json:"video_id"`
	ChunkCount int    `json:"chunk_count"`
	FromCache  bool   `json:"from_cache"`
	Title      string `json:"title,omitempty"`
}
