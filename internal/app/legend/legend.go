// internal/app/legend/legend.go
//
// Package legend turns the counts of a recolor pass into the legend panel's
// rows. It holds no state; rendering the same counts twice gives the same
// view.
package legend

import (
	"github.com/dalemusser/pactomapa/internal/app/coloring"
	"github.com/dalemusser/pactomapa/internal/domain/models"
)

// Row is one legend line.
type Row struct {
	Label string
	Color string
	Count int
	// Bordered marks swatches that need an outline to show on a white
	// background (the NP swatch is white).
	Bordered bool
}

// View is the legend panel.
type View struct {
	Title string
	Mode  string
	Rows  []Row
	Total int
}

// Build renders counts in mode. Rows follow the palette order: levels (or
// mission statuses) first, "Não aderiu" last.
func Build(counts coloring.Counts, mode coloring.Mode) View {
	v := View{Title: "Legenda", Mode: mode.String(), Total: counts.Shapes}
	if mode == coloring.ModeMission {
		v.Title = "Legenda da Missão"
	}
	for _, b := range coloring.Buckets(mode) {
		participating := b != models.NotParticipating
		v.Rows = append(v.Rows, Row{
			Label:    coloring.Label(b, mode),
			Color:    string(coloring.Resolve(participating, b, mode)),
			Count:    counts.Get(b),
			Bordered: !participating,
		})
	}
	return v
}
