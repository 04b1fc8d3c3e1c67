package rag

import (
	"fmt"
	"strings"
	"testing"
)

func words(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("w%d", i)
	}
	return strings.Join(parts, " ")
}

func TestChunkTranscript(t *testing.T) {
	tests := []struct {
		name       string
		wordCount  int
		size       int
		overlap    int
		wantChunks int
	}{
		{"empty", 0, 500, 100, 0},
		{"single short chunk", 42, 500, 100, 1},
		{"exactly one window", 500, 500, 100, 1},
		{"two windows", 501, 500, 100, 2},
		{"default parameters", 1200, 500, 100, 3},
		{"no overlap", 1000, 500, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := ChunkTranscript("vid", words(tt.wordCount), tt.size, tt.overlap)
			if len(chunks) != tt.wantChunks {
				t.Fatalf("got %d chunks, want %d", len(chunks), tt.wantChunks)
			}

			for i, c := range chunks {
				if c.ChunkID != i {
					t.Errorf("chunk %d has id %d", i, c.ChunkID)
				}
				if c.VideoID != "vid" {
					t.Errorf("chunk %d has video id %q", i, c.VideoID)
				}
				if got := len(strings.Fields(c.Text)); got != c.WordEnd-c.WordStart {
					t.Errorf("chunk %d text has %d words, bounds say %d", i, got, c.WordEnd-c.WordStart)
				}
			}

			if tt.wantChunks > 1 {
				step := tt.size - tt.overlap
				for i := 1; i < len(chunks); i++ {
					if chunks[i].WordStart != chunks[i-1].WordStart+step {
						t.Errorf("chunk %d starts at %d, want %d", i, chunks[i].WordStart, chunks[i-1].WordStart+step)
					}
				}
			}

			if tt.wantChunks > 0 {
				last := chunks[len(chunks)-1]
				if last.WordEnd != tt.wordCount {
					t.Errorf("last chunk ends at %d, want %d", last.WordEnd, tt.wordCount)
				}
			}
		})
	}
}

func TestChunkTranscriptOverlapSharesWords(t *testing.T) {
	chunks := ChunkTranscript("vid", words(600), 500, 100)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks", len(chunks))
	}

	first := strings.Fields(chunks[0].Text)
	second := strings.Fields(chunks[1].Text)

	// Last 100 words of the first chunk are the first 100 of the second.
	tail := first[len(first)-100:]
	for i := range tail {
		if tail[i] != second[i] {
			t.Fatalf("overlap mismatch at %d: %q vs %q", i, tail[i], second[i])
		}
	}
}

func TestChunkTranscriptCollapsesWhitespace(t *testing.T) {
	chunks := ChunkTranscript("vid", "  hello\n\nworld\tagain  ", 500, 100)
	if len(chunks) != 1 {
		t.Fatalf("got %d chunks", len(chunks))
	}
	if chunks[0].Text != "hello world again" {
		t.Errorf("text = %q", chunks[0].Text)
	}
}

func TestChunkTranscriptDegenerateParameters(t *testing.T) {
	if got := ChunkTranscript("vid", words(10), 0, 0); got != nil {
		t.Errorf("size 0 should yield nil, got %d chunks", len(got))
	}
	// Overlap >= size would loop forever; it is ignored instead.
	chunks := ChunkTranscript("vid", words(10), 5, 9)
	if len(chunks) != 2 {
		t.Errorf("got %d chunks, want 2", len(chunks))
	}
}
