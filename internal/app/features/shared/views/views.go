// internal/app/features/shared/views/views.go
//
// Package views holds the page layout every feature renders into and the
// presentation helpers more than one panel uses.
package views

import (
	"embed"
	"html/template"

	"github.com/dalemusser/pactomapa/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
)

// Embed the shared template files.
//
//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "shared",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}

// categoryBackgrounds are the card gradients for each mission category.
var categoryBackgrounds = map[string]string{
	models.CategoryOne:   "linear-gradient(to right, #3D5E85, #5E7DA0)",
	models.CategoryTwo:   "linear-gradient(to right, #256F93, #5B97B5)",
	models.CategoryThree: "linear-gradient(to right, #1C434F, #0A5166)",
}

// CategoryBackground returns the CSS background for a category code in
// either spelling ("CTG2" or "CTG-2"). Unknown codes use the first
// category's gradient.
func CategoryBackground(category string) template.CSS {
	if bg, ok := categoryBackgrounds[models.NormalizeCategory(category)]; ok {
		return template.CSS(bg)
	}
	return template.CSS(categoryBackgrounds[models.CategoryOne])
}

// PlaceholderAvatar is shown when a municipality has no usable avatar.
const PlaceholderAvatar = "/static/img/municipio.svg"

// Avatar returns url, or the placeholder when it is empty.
func Avatar(url string) string {
	if url == "" {
		return PlaceholderAvatar
	}
	return url
}
