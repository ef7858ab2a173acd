// Package script builds render requests: it gathers source material for a
// theme (RSS headlines or crypto prices), filters out headlines already used
// by earlier runs, and writes the labeled narration script plus the caption
// list. The renderer never sees where the content came from.
package script

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/mmcdole/gofeed"
	readability "github.com/go-shiori/go-readability"

	"briefcast/config"
	"briefcast/types"
)

const maxHeadlines = 4

// Headline is one item of source material.
type Headline struct {
	Title   string
	URL     string
	Excerpt string
}

// Generator produces one RenderRequest per call.
type Generator struct {
	cfg  config.Config
	seen *SeenFilter
}

// NewGenerator builds a generator. seen may be nil, in which case no
// cross-run filtering happens.
func NewGenerator(cfg config.Config, seen *SeenFilter) *Generator {
	return &Generator{cfg: cfg, seen: seen}
}

// Generate assembles the script and captions for the configured theme.
// Source failures degrade to a canned no-data script rather than erroring;
// a daily run should publish something even when its sources are down.
func (g *Generator) Generate(ctx context.Context) (types.RenderRequest, error) {
	req := types.RenderRequest{
		UUID:  uuid.NewString(),
		Theme: g.cfg.Theme,
	}

	switch g.cfg.Theme {
	case "crypto":
		prices, err := fetchPrices(ctx, g.cfg.CryptoCoins)
		if err != nil {
			log.Printf("crypto prices unavailable: %v", err)
		}
		req.Script, req.Captions, req.Ticker = cryptoScript(prices)
		req.Title = "Crypto in 60 seconds"
	default:
		headlines, err := g.fetchHeadlines(ctx)
		if err != nil {
			log.Printf("headlines unavailable: %v", err)
		}
		req.Script, req.Captions, req.Ticker = newsScript(headlines, g.cfg.Theme)
		req.Title = capitalize(g.cfg.Theme) + " brief"
	}

	if g.cfg.TitlePrefix != "" {
		req.Title = g.cfg.TitlePrefix + " " + req.Title
	}
	return req, nil
}

// fetchHeadlines pulls the configured RSS feed, drops headlines a previous
// run already used, and enriches the lead item with a readability excerpt.
func (g *Generator) fetchHeadlines(ctx context.Context) ([]Headline, error) {
	parser := gofeed.NewParser()
	feed, err := parser.ParseURLWithContext(g.cfg.RSSURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", g.cfg.RSSURL, err)
	}

	var out []Headline
	for _, item := range feed.Items {
		if len(out) >= maxHeadlines {
			break
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		if g.seen != nil {
			used, err := g.seen.Seen(ctx, title)
			if err != nil {
				log.Printf("seen filter: %v", err)
			} else if used {
				continue
			}
		}
		out = append(out, Headline{Title: title, URL: item.Link})
	}

	if len(out) > 0 && out[0].URL != "" {
		if article, err := readability.FromURL(out[0].URL, g.cfg.FetchTimeout); err == nil {
			out[0].Excerpt = firstSentence(article.TextContent)
		}
	}

	if g.seen != nil {
		for _, h := range out {
			if err := g.seen.Mark(ctx, h.Title); err != nil {
				log.Printf("seen filter: %v", err)
			}
		}
	}
	return out, nil
}

// newsScript writes the labeled narration for a headline set. The on-screen
// line is shown, never spoken.
func newsScript(headlines []Headline, theme string) (script string, captions []string, ticker string) {
	if len(headlines) == 0 {
		script = "[HOOK] No fresh headlines this hour.\n" +
			"[CTA] Check back soon for the next brief."
		captions = []string{"Back soon with more"}
		return script, captions, "Live updates around the clock"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[HOOK] Here is your %s brief in under a minute.\n", theme)
	b.WriteString("[ON SCREEN TEXT] " + headlines[0].Title + "\n")
	for _, h := range headlines {
		line := h.Title
		if h.Excerpt != "" {
			line += ". " + h.Excerpt
		}
		fmt.Fprintf(&b, "[CUT] %s\n", line)
		captions = append(captions, h.Title)
	}
	b.WriteString("[CTA] Follow for tomorrow's brief.")

	var parts []string
	for _, h := range headlines {
		parts = append(parts, h.Title)
	}
	return b.String(), captions, strings.Join(parts, " • ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// firstSentence trims a body of extracted text to one usable sentence.
func firstSentence(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if i := strings.IndexAny(text, ".!?"); i > 0 && i < 220 {
		return text[:i+1]
	}
	if len(text) > 220 {
		return text[:220]
	}
	return text
}
