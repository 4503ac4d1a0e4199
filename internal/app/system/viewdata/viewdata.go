// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// DefaultSiteName is used when the site_name config key is empty.
const DefaultSiteName = "Pacto Cearense pela Primeira Infância"

// siteName is set once by Init during startup.
var siteName = DefaultSiteName

// Init sets the site name shown in page titles and the header.
// Call this once at startup from bootstrap.
func Init(name string) {
	if name != "" {
		siteName = name
	}
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	data := struct {
//	    viewdata.BaseVM
//	    Legend legend.View
//	}{
//	    BaseVM: viewdata.NewBaseVM(r, "Mapa"),
//	}
type BaseVM struct {
	SiteName string

	// Page context
	Title       string
	CurrentPath string

	// CSRF protection for the filter POSTs
	CSRFToken string
}

// NewBaseVM creates a fully populated BaseVM for a page.
func NewBaseVM(r *http.Request, title string) BaseVM {
	return BaseVM{
		SiteName:    siteName,
		Title:       title,
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
}

// IsHTMX reports whether r was issued by an HTMX swap.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") != ""
}
