package tts

import "fmt"

// atempo accepts factors in [0.5, 2.0] only. Factors outside that range are
// reached by chaining the boundary value until the remainder is in range,
// which keeps pitch intact at arbitrary tempos.
const (
	atempoMin = 0.5
	atempoMax = 2.0
)

// TempoChain decomposes a tempo factor into a chain of atempo filters.
// A factor of 1.0 (or anything non-positive) yields an empty chain.
func TempoChain(factor float64) []string {
	if factor <= 0 {
		factor = 1.0
	}
	if factor > 0.999 && factor < 1.001 {
		return nil
	}
	if factor >= atempoMin && factor <= atempoMax {
		return []string{fmt.Sprintf("atempo=%.3f", factor)}
	}

	var chain []string
	current := factor
	for current > atempoMax {
		chain = append(chain, fmt.Sprintf("atempo=%.3f", atempoMax))
		current /= atempoMax
	}
	for current < atempoMin {
		chain = append(chain, fmt.Sprintf("atempo=%.3f", atempoMin))
		current /= atempoMin
	}
	chain = append(chain, fmt.Sprintf("atempo=%.3f", current))
	return chain
}
