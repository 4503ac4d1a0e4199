// internal/domain/models/municipality.go
package models

// Terminology: Municipality Identifiers
//   - MunicipalityID / codIbge: the 7-digit IBGE code that identifies a municipality
//   - The upstream API and the GeoJSON overlay send it as a number or a string;
//     ParseMunicipalityID is the only place that reconciles the two.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MunicipalityID is the canonical, zero-padded 7-digit IBGE code.
type MunicipalityID string

// idWidth is the number of digits in an IBGE municipality code.
const idWidth = 7

// ParseMunicipalityID normalizes a raw identifier (string, number, or
// json.Number) into its canonical form. ok is false when the value is
// empty, non-numeric, negative, or longer than an IBGE code.
func ParseMunicipalityID(raw any) (MunicipalityID, bool) {
	var s string
	switch v := raw.(type) {
	case MunicipalityID:
		s = string(v)
	case string:
		s = v
	case json.Number:
		s = v.String()
	case int:
		s = strconv.Itoa(v)
	case int64:
		s = strconv.FormatInt(v, 10)
	case float64:
		if v != float64(int64(v)) {
			return "", false
		}
		s = strconv.FormatInt(int64(v), 10)
	default:
		return "", false
	}

	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return "", false
	}
	out := fmt.Sprintf("%0*d", idWidth, n)
	if len(out) > idWidth {
		return "", false
	}
	return MunicipalityID(out), true
}

// MustMunicipalityID is ParseMunicipalityID for literals in tests and fixtures.
func MustMunicipalityID(raw any) MunicipalityID {
	id, ok := ParseMunicipalityID(raw)
	if !ok {
		panic(fmt.Sprintf("models: invalid municipality id %v", raw))
	}
	return id
}

func (id MunicipalityID) String() string { return string(id) }

// UnmarshalJSON accepts both `"2304400"` and `2304400`.
func (id *MunicipalityID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var raw any
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	parsed, ok := ParseMunicipalityID(raw)
	if !ok {
		// Malformed ids are dropped, not fatal; callers skip empty ids.
		*id = ""
		return nil
	}
	*id = parsed
	return nil
}

// Municipality status values sent by the API.
const (
	StatusParticipating = "Participante"
)

// Municipality is one municipality as known to the dashboard.
type Municipality struct {
	ID            MunicipalityID
	Name          string
	Status        string
	Participating bool
	Level         Level
	Points        int
	Badges        int
	AvatarURL     string
}

// LevelFromPoints is the profile level shown in the detail header.
// Every 100 points is one level, starting at level 1.
func LevelFromPoints(points int) int {
	if points < 0 {
		points = 0
	}
	return points/100 + 1
}

// LevelProgress is the number of points earned inside the current level (0..99).
func LevelProgress(points int) int {
	if points < 0 {
		return 0
	}
	return points % 100
}
