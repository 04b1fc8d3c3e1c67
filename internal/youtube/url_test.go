package youtube

import "testing"

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{
			name:  "standard watch URL",
			input: "https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			ok:    true,
		},
		{
			name:  "watch URL with extra params",
			input: "https://www.youtube.com/watch?t=42&v=dQw4w9WgXcQ&feature=share",
			want:  "dQw4w9WgXcQ",
			ok:    true,
		},
		{
			name:  "short URL",
			input: "https://youtu.be/jNQXAC9IVRw",
			want:  "jNQXAC9IVRw",
			ok:    true,
		},
		{
			name:  "short URL with query",
			input: "https://youtu.be/jNQXAC9IVRw?si=abcdef",
			want:  "jNQXAC9IVRw",
			ok:    true,
		},
		{
			name:  "embed URL",
			input: "https://www.youtube.com/embed/kJQP7kiw5Fk",
			want:  "kJQP7kiw5Fk",
			ok:    true,
		},
		{
			name:  "shorts URL",
			input: "https://www.youtube.com/shorts/9bZkp7q19f0",
			want:  "9bZkp7q19f0",
			ok:    true,
		},
		{
			name:  "legacy v path",
			input: "https://www.youtube.com/v/L_jWHffIx5E",
			want:  "L_jWHffIx5E",
			ok:    true,
		},
		{
			name:  "user language path",
			input: "https://www.youtube.com/u/en/dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			ok:    true,
		},
		{
			name:  "mobile watch URL",
			input: "https://m.youtube.com/watch?v=dQw4w9WgXcQ",
			want:  "dQw4w9WgXcQ",
			ok:    true,
		},
		{
			name:  "arbitrary text",
			input: "hello world",
			ok:    false,
		},
		{
			name:  "empty string",
			input: "",
			ok:    false,
		},
		{
			name:  "id too short",
			input: "https://www.youtube.com/watch?v=short",
			ok:    false,
		},
		{
			name:  "unrelated URL",
			input: "https://example.com/watch?list=abc",
			ok:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractVideoID(tt.input)
			if ok != tt.ok {
				t.Fatalf("ExtractVideoID(%q) ok = %v, want %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("ExtractVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestExtractVideoIDAgreesWithValidation(t *testing.T) {
	// Every URL the validator accepts must yield an identifier, so the player
	// and the suggestions fetcher always see the same video.
	accepted := []string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ",
		"youtu.be/dQw4w9WgXcQ",
		"https://m.youtube.com/watch?v=dQw4w9WgXcQ",
	}
	for _, raw := range accepted {
		if err := ValidateWatchURL(raw); err != nil {
			t.Fatalf("ValidateWatchURL(%q) = %v, want nil", raw, err)
		}
		if _, ok := ExtractVideoID(raw); !ok {
			t.Errorf("ExtractVideoID(%q) failed for a validated URL", raw)
		}
	}
}

func TestValidateWatchURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", ""},
		{"empty", "", "video URL cannot be empty"},
		{"whitespace only", "   \t", "video URL cannot be empty"},
		{"wrong host", "https://vimeo.com/12345", "not a valid YouTube URL"},
		{"right host no id", "https://www.youtube.com/feed/subscriptions", "not a valid YouTube URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateWatchURL(tt.input)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("ValidateWatchURL(%q) = %v, want nil", tt.input, err)
				}
				return
			}
			if err == nil || err.Error() != tt.wantErr {
				t.Errorf("ValidateWatchURL(%q) = %v, want %q", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestURLBuilders(t *testing.T) {
	const id = "dQw4w9WgXcQ"

	if got := WatchURL(id); got != "https://www.youtube.com/watch?v="+id {
		t.Errorf("WatchURL = %q", got)
	}
	if got := EmbedURL(id); got != "https://www.youtube.com/embed/"+id {
		t.Errorf("EmbedURL = %q", got)
	}
	if got := ThumbnailURL(id); got != "https://img.youtube.com/vi/"+id+"/mqdefault.jpg" {
		t.Errorf("ThumbnailURL = %q", got)
	}

	// Round trip: builders produce URLs the matcher can read back.
	for _, u := range []string{WatchURL(id), EmbedURL(id)} {
		got, ok := ExtractVideoID(u)
		if !ok || got != id {
			t.Errorf("ExtractVideoID(%q) = %q, %v", u, got, ok)
		}
	}
}
