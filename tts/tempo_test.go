package tts

import (
	"reflect"
	"testing"
)

func TestTempoChain(t *testing.T) {
	cases := []struct {
		name   string
		factor float64
		want   []string
	}{
		{"unity", 1.0, nil},
		{"near unity", 1.0005, nil},
		{"non-positive", 0, nil},
		{"negative", -2, nil},
		{"in range", 1.5, []string{"atempo=1.500"}},
		{"lower bound", 0.5, []string{"atempo=0.500"}},
		{"upper bound", 2.0, []string{"atempo=2.000"}},
		{"double speed twice", 4.0, []string{"atempo=2.000", "atempo=2.000"}},
		{"above range", 3.0, []string{"atempo=2.000", "atempo=1.500"}},
		{"far below range", 0.2, []string{"atempo=0.500", "atempo=0.500", "atempo=0.800"}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := TempoChain(c.factor)
			if !reflect.DeepEqual(got, c.want) {
				t.Fatalf("TempoChain(%v) = %v; want %v", c.factor, got, c.want)
			}
		})
	}
}
