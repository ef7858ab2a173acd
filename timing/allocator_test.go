package timing

import (
	"math"
	"testing"

	"briefcast/config"
)

func TestAllocateOnePlanPerCaption(t *testing.T) {
	captions := []string{"a", "bb", "ccc", "dddd"}
	plans := Allocate(40.0, captions)
	if len(plans) != len(captions) {
		t.Fatalf("Allocate returned %d plans; want %d", len(plans), len(captions))
	}
	for i, p := range plans {
		if p.Index != i {
			t.Fatalf("plan %d has Index %d", i, p.Index)
		}
		if p.Caption != captions[i] {
			t.Fatalf("plan %d has caption %q; want %q", i, p.Caption, captions[i])
		}
	}
}

func TestAllocateSumsToTotal(t *testing.T) {
	cases := []struct {
		name     string
		total    float64
		captions []string
	}{
		{"even", 40.0, []string{"one headline", "two headline", "three headline", "four headline"}},
		{"skewed", 30.0, []string{"x", "a very long caption that dominates the weight distribution"}},
		{"many short", 60.0, []string{"a", "b", "c", "d", "e", "f"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			plans := Allocate(c.total, c.captions)
			if got := Total(plans); math.Abs(got-c.total) > 1e-9 {
				t.Fatalf("Total(plans) = %v; want %v", got, c.total)
			}
		})
	}
}

func TestAllocateLongestCaptionGetsMost(t *testing.T) {
	captions := []string{"short", "a medium sized caption here", "tiny", "the single longest caption in the whole set by a clear margin"}
	plans := Allocate(40.0, captions)

	longest := plans[3].Duration
	for i := 0; i < 3; i++ {
		if plans[i].Duration > longest {
			t.Fatalf("plan %d (%.2fs) outranks the longest caption (%.2fs)", i, plans[i].Duration, longest)
		}
	}
}

func TestAllocateRespectsFloors(t *testing.T) {
	// Ten captions over a short track force heavy clamping.
	captions := make([]string, 10)
	for i := range captions {
		captions[i] = "caption"
	}
	plans := Allocate(12.0, captions)

	for i, p := range plans[:len(plans)-1] {
		if p.Duration < config.RescaleFloor {
			t.Fatalf("plan %d duration %.3f below floor %.1f", i, p.Duration, config.RescaleFloor)
		}
	}
	if last := plans[len(plans)-1].Duration; last < config.LastSlideFloor {
		t.Fatalf("last slide duration %.3f below floor %.1f", last, config.LastSlideFloor)
	}
}

func TestAllocateSingleCaptionTakesWholeTrack(t *testing.T) {
	plans := Allocate(47.5, []string{"only caption"})
	if len(plans) != 1 {
		t.Fatalf("got %d plans; want 1", len(plans))
	}
	if plans[0].Duration != 47.5 {
		t.Fatalf("single slide duration %.2f; want 47.5", plans[0].Duration)
	}
}

func TestAllocateEmptyCaptionsSynthesizesSlide(t *testing.T) {
	plans := Allocate(20.0, nil)
	if len(plans) != 1 {
		t.Fatalf("got %d plans; want 1", len(plans))
	}
	if plans[0].Caption != config.DefaultCaption {
		t.Fatalf("synthetic caption %q; want %q", plans[0].Caption, config.DefaultCaption)
	}
	if plans[0].Duration != 20.0 {
		t.Fatalf("synthetic slide duration %.2f; want 20.0", plans[0].Duration)
	}
}

func TestAllocateNonPositiveTotalUsesDefault(t *testing.T) {
	plans := Allocate(0, []string{"a", "b"})
	if got := Total(plans); math.Abs(got-config.DefaultAudioSeconds) > 1e-9 {
		t.Fatalf("Total(plans) = %v; want default %v", got, config.DefaultAudioSeconds)
	}
}
