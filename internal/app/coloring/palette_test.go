package coloring

import (
	"testing"

	"github.com/dalemusser/pactomapa/internal/domain/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		participating bool
		level         models.Level
		mode          Mode
		want          Color
	}{
		{"np level", false, models.Level3, ModeLevel, "#FFFFFF"},
		{"np sentinel while participating", true, models.NotParticipating, ModeLevel, "#FFFFFF"},
		{"level 0", true, models.Level0, ModeLevel, "#707070"},
		{"level 1", true, models.Level1, ModeLevel, "#50B755"},
		{"level 2", true, models.Level2, ModeLevel, "#066829"},
		{"level 3", true, models.Level3, ModeLevel, "#12447F"},
		{"unknown level", true, models.Level(7), ModeLevel, "#707070"},
		{"np mission", false, models.MissionCompleted, ModeMission, "#FFFFFF"},
		{"pending", true, models.MissionPending, ModeMission, "#9F9F9F"},
		{"started", true, models.MissionStarted, ModeMission, "#72C576"},
		{"completed", true, models.MissionCompleted, ModeMission, "#12447F"},
		{"unknown status", true, models.Level(3), ModeMission, "#9F9F9F"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Resolve(tt.participating, tt.level, tt.mode); got != tt.want {
				t.Errorf("Resolve = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestLabel(t *testing.T) {
	if Label(models.NotParticipating, ModeMission) != "Não aderiu" {
		t.Error("NP label")
	}
	if Label(models.Level2, ModeLevel) != "Nível 2" {
		t.Error("level label")
	}
	if Label(models.MissionStarted, ModeMission) != "Em ação" {
		t.Error("mission label")
	}
}

func TestBucketsCoverPalette(t *testing.T) {
	for _, mode := range []Mode{ModeLevel, ModeMission} {
		if len(Buckets(mode)) != len(palette(mode)) {
			t.Errorf("%v: buckets %d, palette %d", mode, len(Buckets(mode)), len(palette(mode)))
		}
	}
}
