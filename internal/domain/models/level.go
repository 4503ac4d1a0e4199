// internal/domain/models/level.go
package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Level is a municipality's program tier (0..3) or NotParticipating.
// In mission mode the same type carries the mission status bucket
// (MissionPending, MissionStarted, MissionCompleted).
type Level int

// NotParticipating is the "NP" sentinel: the municipality has not joined.
const NotParticipating Level = -1

// Program levels.
const (
	Level0 Level = iota
	Level1
	Level2
	Level3
)

// Mission status buckets.
const (
	MissionPending   Level = 0
	MissionStarted   Level = 1
	MissionCompleted Level = 2
)

// MaxLevel is the highest program level.
const MaxLevel = Level3

// ParseLevel reads a level from an API value. "NP" and the legacy "NA" map
// to NotParticipating; numbers and numeric strings map to their value.
// ok is false only for values that cannot be read at all.
func ParseLevel(raw any) (Level, bool) {
	switch v := raw.(type) {
	case Level:
		return v, true
	case int:
		return Level(v), true
	case float64:
		return Level(int(v)), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return Level0, false
		}
		return Level(n), true
	case string:
		s := strings.ToUpper(strings.TrimSpace(v))
		if s == "NP" || s == "NA" {
			return NotParticipating, true
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return Level0, false
		}
		return Level(n), true
	case nil:
		return Level0, false
	}
	return Level0, false
}

// IsParticipating reports whether l is anything but the NP sentinel.
func (l Level) IsParticipating() bool { return l != NotParticipating }

// Known reports whether l is NotParticipating or one of the program levels.
func (l Level) Known() bool {
	return l == NotParticipating || (l >= Level0 && l <= MaxLevel)
}

func (l Level) String() string {
	if l == NotParticipating {
		return "NP"
	}
	return strconv.Itoa(int(l))
}

// MarshalJSON writes NotParticipating as "NP" and levels as numbers.
func (l Level) MarshalJSON() ([]byte, error) {
	if l == NotParticipating {
		return []byte(`"NP"`), nil
	}
	return []byte(strconv.Itoa(int(l))), nil
}

// UnmarshalJSON accepts numbers, numeric strings, "NP" and "NA".
// Unreadable values decode as level 0 rather than failing the response.
func (l *Level) UnmarshalJSON(b []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, _ := ParseLevel(raw)
	*l = parsed
	return nil
}
