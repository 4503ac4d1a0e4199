// internal/app/coloring/counts.go
package coloring

import "github.com/dalemusser/pactomapa/internal/domain/models"

// Counts is the histogram of one recolor pass: how many shapes were drawn
// in each bucket.
type Counts struct {
	Mode    Mode
	Shapes  int
	buckets map[models.Level]int
}

func newCounts(mode Mode) Counts {
	c := Counts{Mode: mode, buckets: make(map[models.Level]int, len(palette(mode)))}
	for l := range palette(mode) {
		c.buckets[l] = 0
	}
	return c
}

// Get returns the count of one bucket.
func (c Counts) Get(l models.Level) int { return c.buckets[l] }

// NotParticipating is the NP bucket.
func (c Counts) NotParticipating() int { return c.buckets[models.NotParticipating] }

// Sum adds all buckets.
func (c Counts) Sum() int {
	n := 0
	for _, v := range c.buckets {
		n += v
	}
	return n
}

// Participants adds all buckets except NP.
func (c Counts) Participants() int { return c.Sum() - c.NotParticipating() }

// Map returns a copy keyed by bucket name ("0".."3", "NP") for JSON.
func (c Counts) Map() map[string]int {
	out := make(map[string]int, len(c.buckets))
	for l, v := range c.buckets {
		out[l.String()] = v
	}
	return out
}

func (c Counts) clone() Counts {
	out := Counts{Mode: c.Mode, Shapes: c.Shapes, buckets: make(map[models.Level]int, len(c.buckets))}
	for l, v := range c.buckets {
		out.buckets[l] = v
	}
	return out
}
