package script

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"

	"briefcast/types"
)

// Titles derives the publication metadata for a finished render. The
// deterministic build always succeeds; when a Cohere key is configured, the
// title is additionally run through the model for a punchier phrasing, and
// any failure there falls back to the deterministic title.
func Titles(ctx context.Context, req types.RenderRequest, cohereKey string) types.VideoMeta {
	title := req.Title
	if title == "" {
		title = capitalize(req.Theme) + " brief"
	}
	date := time.Now().Format("Jan 2")
	title = fmt.Sprintf("%s | %s", title, date)

	var lines []string
	for _, c := range req.Captions {
		lines = append(lines, "• "+c)
	}
	description := strings.Join(lines, "\n")

	tags := []string{"shorts", "news", "daily"}
	if req.Theme != "" && req.Theme != "news" {
		tags = append(tags, req.Theme)
	}

	if polished := polishTitle(ctx, cohereKey, title, req.Captions); polished != "" {
		title = polished
	}

	return types.VideoMeta{Title: title, Description: description, Tags: tags}
}

// polishTitle asks the model for a sharper title. Returns "" on any failure
// or when no API key is configured.
func polishTitle(ctx context.Context, key, title string, captions []string) string {
	if key == "" {
		return ""
	}

	client := cohereclient.NewClient(cohereclient.WithToken(key))
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	prompt := fmt.Sprintf(
		"Rewrite this YouTube Shorts title to be punchier, under 70 characters, no quotes, no hashtags.\nTitle: %s\nStories: %s\nReply with the title only.",
		title, strings.Join(captions, "; "),
	)
	resp, err := client.Chat(ctx, &cohere.ChatRequest{Message: prompt})
	if err != nil {
		log.Printf("title polish skipped: %v", err)
		return ""
	}

	polished := strings.TrimSpace(strings.Trim(resp.Text, `"`))
	if polished == "" || len(polished) > 100 {
		return ""
	}
	return polished
}
