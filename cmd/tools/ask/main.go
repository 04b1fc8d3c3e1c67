// Command ask exercises the Video Q&A API from the terminal: load a video,
// ask questions interactively, list suggestions.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/kapu/video-qna-go/internal/client"
	"github.com/kapu/video-qna-go/internal/domain"
	"github.com/kapu/video-qna-go/internal/service/suggest"
)

func main() {
	apiURL := flag.String("api", envOr("API_URL", "http://localhost:8000"), "Video Q&A API base URL")
	videoURL := flag.String("video", "", "YouTube video URL to load before asking")
	question := flag.String("q", "", "single question; omit for interactive mode")
	suggestions := flag.Bool("suggest", false, "print suggested videos and exit")
	flag.Parse()

	c := client.New(*apiURL, &http.Client{Timeout: 5 * time.Minute})
	ctx := context.Background()

	var seedID string
	if *videoURL != "" {
		fmt.Println("Processing video...")
		outcome, err := c.ProcessVideo(ctx, *videoURL)
		if err != nil {
			fail(err)
		}
		fmt.Printf("Ready: %s (%s)\n", outcome.VideoID, outcome.Message)
		seedID = outcome.VideoID
	}

	if *suggestions {
		videos, err := c.SuggestedVideos(ctx, seedID)
		if err != nil {
			fail(err)
		}
		browseSuggestions(videos)
		return
	}

	if *question != "" {
		ask(ctx, c, *question)
		return
	}

	// Interactive loop.
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("Ask questions about the loaded video (empty line to quit)")
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			return
		}
		ask(ctx, c, line)
	}
}

// browseSuggestions pages through suggested videos three at a time,
// wrapping at either end the way the web carousel does.
func browseSuggestions(videos []domain.SuggestedVideo) {
	if len(videos) == 0 {
		fmt.Println("No suggestions available")
		return
	}
	pager := suggest.NewPager(videos)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		for _, v := range pager.Window() {
			fmt.Printf("%s  %s\n", v.ID, v.Title)
		}
		if pager.Len() <= len(pager.Window()) {
			return
		}
		fmt.Print("[n]ext / [p]rev / quit> ")
		if !scanner.Scan() {
			return
		}
		switch strings.TrimSpace(scanner.Text()) {
		case "n":
			pager.Next()
		case "p":
			pager.Prev()
		default:
			return
		}
	}
}

func ask(ctx context.Context, c *client.Client, question string) {
	answer, err := c.AskQuestion(ctx, question)
	if err != nil {
		var cerr *client.Error
		if errors.As(err, &cerr) && cerr.Kind == client.ErrValidation {
			fmt.Fprintln(os.Stderr, cerr.Message)
			return
		}
		fail(err)
	}
	fmt.Println(answer)
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
