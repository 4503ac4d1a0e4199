// internal/app/coloring/palette.go
package coloring

import (
	"strconv"

	"github.com/dalemusser/pactomapa/internal/domain/models"
)

// Mode selects the active color table.
type Mode int

const (
	// ModeLevel colors shapes by program level.
	ModeLevel Mode = iota
	// ModeMission colors shapes by status on the selected mission.
	ModeMission
)

func (m Mode) String() string {
	if m == ModeMission {
		return "mission"
	}
	return "level"
}

// Color is a CSS hex color.
type Color string

var levelPalette = map[models.Level]Color{
	models.NotParticipating: "#FFFFFF",
	models.Level0:           "#707070",
	models.Level1:           "#50B755",
	models.Level2:           "#066829",
	models.Level3:           "#12447F",
}

var missionPalette = map[models.Level]Color{
	models.NotParticipating: "#FFFFFF",
	models.MissionPending:   "#9F9F9F",
	models.MissionStarted:   "#72C576",
	models.MissionCompleted: "#12447F",
}

func palette(mode Mode) map[models.Level]Color {
	if mode == ModeMission {
		return missionPalette
	}
	return levelPalette
}

// Buckets lists the legend buckets of a mode, highest first and NP last.
func Buckets(mode Mode) []models.Level {
	if mode == ModeMission {
		return []models.Level{models.MissionPending, models.MissionStarted, models.MissionCompleted, models.NotParticipating}
	}
	return []models.Level{models.Level0, models.Level1, models.Level2, models.Level3, models.NotParticipating}
}

// bucket maps a resolved level onto a bucket of mode's table. Values the
// table does not know share level 0's bucket, matching their color.
func bucket(participating bool, level models.Level, mode Mode) models.Level {
	if !participating || level == models.NotParticipating {
		return models.NotParticipating
	}
	if _, ok := palette(mode)[level]; ok {
		return level
	}
	return models.Level0
}

// Resolve is the color of a shape. Non-participation is checked first and
// wins over any level or mission status; unknown levels take level 0's
// color.
func Resolve(participating bool, level models.Level, mode Mode) Color {
	return palette(mode)[bucket(participating, level, mode)]
}

// Label is the Portuguese name of a bucket, used by tooltips and the legend.
func Label(level models.Level, mode Mode) string {
	if level == models.NotParticipating {
		return "Não aderiu"
	}
	if mode == ModeMission {
		switch level {
		case models.MissionStarted:
			return "Em ação"
		case models.MissionCompleted:
			return "Concluído"
		default:
			return "Não iniciado"
		}
	}
	return "Nível " + strconv.Itoa(int(level))
}
