package rag

import (
	"strings"

	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/util"
)

// ChunkTranscript splits a transcript into overlapping word windows. size and
// overlap are word counts; the window advances by size-overlap words so every
// chunk shares its tail with the next chunk's head, keeping sentence context
// that straddles a boundary retrievable from either side.
func ChunkTranscript(videoID, text string, size, overlap int) []domain.Chunk {
	if size <= 0 {
		return nil
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	words := strings.Fields(util.CollapseWhitespace(text))
	if len(words) == 0 {
		return nil
	}

	step := size - overlap
	chunks := make([]domain.Chunk, 0, len(words)/step+1)

	for i, id := 0, 0; i < len(words); i, id = i+step, id+1 {
		end := util.Min(i+size, len(words))
		chunks = append(chunks, domain.Chunk{
			VideoID:   videoID,
			ChunkID:   id,
			Text:      strings.Join(words[i:end], " "),
			WordStart: i,
			WordEnd:   end,
		})
		if end == len(words) {
			break
		}
	}

	return chunks
}
