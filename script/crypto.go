package script

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"
)

const priceEndpoint = "https://api.coingecko.com/api/v3/simple/price"

// CoinPrice is one coin's spot price and 24h move.
type CoinPrice struct {
	ID        string
	USD       float64
	Change24h float64
}

// fetchPrices queries the public CoinGecko simple-price API for the given
// coin ids. Results come back sorted by the size of the 24h move so the
// script leads with the biggest story.
func fetchPrices(ctx context.Context, coins []string) ([]CoinPrice, error) {
	if len(coins) == 0 {
		return nil, fmt.Errorf("no coins configured")
	}

	q := url.Values{}
	q.Set("ids", strings.Join(coins, ","))
	q.Set("vs_currencies", "usd")
	q.Set("include_24hr_change", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, priceEndpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	client := &http.Client{Timeout: 15 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices: status %d", resp.StatusCode)
	}

	var raw map[string]map[string]float64
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}

	var out []CoinPrice
	for _, id := range coins {
		entry, ok := raw[id]
		if !ok {
			continue
		}
		out = append(out, CoinPrice{
			ID:        id,
			USD:       entry["usd"],
			Change24h: entry["usd_24h_change"],
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return abs(out[i].Change24h) > abs(out[j].Change24h)
	})
	return out, nil
}

// cryptoScript writes the narration for a price run.
func cryptoScript(prices []CoinPrice) (script string, captions []string, ticker string) {
	if len(prices) == 0 {
		script = "[HOOK] Crypto markets are quiet, or our price feed is.\n" +
			"[CTA] Back tomorrow with fresh numbers."
		captions = []string{"Prices unavailable"}
		return script, captions, "Crypto daily brief"
	}

	var b strings.Builder
	b.WriteString("[HOOK] Here is today's crypto minute.\n")

	var tickerParts []string
	for _, p := range prices {
		dir := "up"
		if p.Change24h < 0 {
			dir = "down"
		}
		fmt.Fprintf(&b, "[CUT] %s is trading at %s, %s %.1f percent on the day.\n",
			displayName(p.ID), formatUSD(p.USD), dir, abs(p.Change24h))
		captions = append(captions, fmt.Sprintf("%s %s (%+.1f%%)", displayName(p.ID), formatUSD(p.USD), p.Change24h))
		tickerParts = append(tickerParts, fmt.Sprintf("%s %s", strings.ToUpper(p.ID[:min(3, len(p.ID))]), formatUSD(p.USD)))
	}
	b.WriteString("[TIP] Never trade on a sixty second video alone.\n")
	b.WriteString("[CTA] Follow for tomorrow's numbers.")

	return b.String(), captions, strings.Join(tickerParts, " • ")
}

// formatUSD renders a price with sensible precision for its magnitude.
func formatUSD(v float64) string {
	switch {
	case v >= 1000:
		return fmt.Sprintf("$%.0f", v)
	case v >= 1:
		return fmt.Sprintf("$%.2f", v)
	default:
		return fmt.Sprintf("$%.4f", v)
	}
}

func displayName(id string) string {
	return capitalize(id)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
