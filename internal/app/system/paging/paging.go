// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of events shown per page.
const PageSize = 10

// MaxPageSize caps a client-supplied limit.
const MaxPageSize = 100

// VisiblePages is how many numbered page links the pager shows at once.
const VisiblePages = 5

// ParsePage extracts the 0-based page number from the "pagina" query
// parameter. Returns 0 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := query.Get(r, "pagina")
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ClampLimit returns limit if it is within (0, MaxPageSize], else def.
func ClampLimit(limit, def int) int {
	if limit <= 0 || limit > MaxPageSize {
		return def
	}
	return limit
}

// Link is one numbered page link. Number is 0-based; Label is what users see.
type Link struct {
	Number int
	Label  int
	Active bool
}

// Pager is the view model for a page-number pager.
type Pager struct {
	Show     bool // false when everything fits on one page
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Links    []Link
}

// Build computes the pager for page (0-based) of pages total, given total
// items and limit per page. The window of VisiblePages links is centered on
// the current page and clamped at both ends.
func Build(total, limit, page, pages int) Pager {
	if total <= limit || pages <= 1 {
		return Pager{}
	}
	if page < 0 {
		page = 0
	}
	if page > pages-1 {
		page = pages - 1
	}

	half := VisiblePages / 2
	var first, count int
	switch {
	case pages <= VisiblePages:
		first, count = 0, pages
	case page < half:
		first, count = 0, VisiblePages
	case page >= pages-half:
		first, count = pages-VisiblePages, VisiblePages
	default:
		first, count = page-half, VisiblePages
	}

	links := make([]Link, 0, count)
	for n := first; n < first+count; n++ {
		links = append(links, Link{Number: n, Label: n + 1, Active: n == page})
	}

	return Pager{
		Show:     true,
		HasPrev:  page > 0,
		HasNext:  page < pages-1,
		PrevPage: page - 1,
		NextPage: page + 1,
		Links:    links,
	}
}

// Range holds the 1-based display range for a page ("11–20 de 57").
type Range struct {
	Start int // 0 if no results
	End   int // 0 if no results
}

// ComputeRange calculates the display range for page (0-based) with shown
// items on it.
func ComputeRange(page, limit, shown int) Range {
	if shown == 0 {
		return Range{}
	}
	start := page*limit + 1
	return Range{Start: start, End: start + shown - 1}
}
