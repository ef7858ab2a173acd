package tts

import (
	"regexp"
	"strings"
)

// spokenLine matches script lines carrying a narration label. Lines with
// other labels (e.g. on-screen-only text) are not narrated.
var spokenLine = regexp.MustCompile(`(?i)^\[(HOOK|CUT|TIP|CTA)\]\s*(.*)$`)

// Segments extracts the spoken narration units from a script, in order.
// A script with no labeled lines is narrated whole.
func Segments(script string) []string {
	var out []string
	for _, raw := range strings.Split(script, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		m := spokenLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if spoken := strings.TrimSpace(m[2]); spoken != "" {
			out = append(out, spoken)
		}
	}
	if len(out) == 0 {
		if whole := strings.TrimSpace(script); whole != "" {
			out = []string{whole}
		}
	}
	return out
}
