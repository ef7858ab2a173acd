package script

import (
	"context"
	"strings"
	"testing"
	"time"

	"briefcast/types"
)

func TestTitlesDeterministicWithoutKey(t *testing.T) {
	// The key arrives through the config struct; the environment must not
	// change the outcome.
	t.Setenv("COHERE_API_KEY", "should-be-ignored")

	req := types.RenderRequest{
		Theme:    "crypto",
		Title:    "Market pulse",
		Captions: []string{"Bitcoin up 3%", "Ether flat"},
	}
	meta := Titles(context.Background(), req, "")

	date := time.Now().Format("Jan 2")
	if want := "Market pulse | " + date; meta.Title != want {
		t.Fatalf("Title = %q; want %q", meta.Title, want)
	}
	if want := "• Bitcoin up 3%\n• Ether flat"; meta.Description != want {
		t.Fatalf("Description = %q; want %q", meta.Description, want)
	}

	var hasTheme bool
	for _, tag := range meta.Tags {
		if tag == "crypto" {
			hasTheme = true
		}
	}
	if !hasTheme {
		t.Fatalf("Tags = %v; want the theme included", meta.Tags)
	}
}

func TestTitlesDefaultsTitleFromTheme(t *testing.T) {
	meta := Titles(context.Background(), types.RenderRequest{Theme: "news"}, "")
	if !strings.HasPrefix(meta.Title, "News brief | ") {
		t.Fatalf("Title = %q; want a theme-derived default", meta.Title)
	}
}
