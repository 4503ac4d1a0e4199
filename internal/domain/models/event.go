// internal/domain/models/event.go
package models

import "time"

// Event types emitted by the program backend.
const (
	EventMissionCompleted = "mission_completed"
	EventMissionStarted   = "mission_started"
)

// EventTypes lists the types the events feed can filter by.
var EventTypes = []string{EventMissionCompleted, EventMissionStarted}

// IsEventType reports whether t is a filterable event type.
func IsEventType(t string) bool {
	for _, e := range EventTypes {
		if e == t {
			return true
		}
	}
	return false
}

// Event is one entry of the chronological events feed.
type Event struct {
	Type               string
	Municipality       Municipality
	MissionID          string
	MissionDescription string
	Badge              string
	ChangedAt          time.Time
}

// Sort directions accepted by the events endpoint.
const (
	SortDesc = "DESC"
	SortAsc  = "ASC"
)

// EventQuery selects one page of the events feed.
type EventQuery struct {
	Page         int // 0-based
	Limit        int
	Type         string // empty for all types
	Municipality string // free-text municipality search
	Sort         string // SortDesc or SortAsc
}

// Pagination describes one page of a paginated listing.
type Pagination struct {
	Total int
	Page  int // 0-based
	Limit int
	Pages int
}

// PagesFor computes the page count for total items at limit per page.
func PagesFor(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// EventPage is one page of events.
type EventPage struct {
	Events     []Event
	Pagination Pagination
}
