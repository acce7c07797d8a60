package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"venue-seating-ops/internal/geometry"
)

// Venue represents a venue row. LayoutJSON is the embedded copy of the
// published layout, kept in sync with VenueLayout by the editor.
type Venue struct {
	ID            string  `json:"id" db:"id"`
	Name          string  `json:"name" db:"name"`
	LayoutJSON    *string `json:"layoutJson,omitempty" db:"layoutJson"`
	LayoutVersion int     `json:"layoutVersion" db:"layoutVersion"`
}

// VenueLayout represents a stored layout version of a venue
type VenueLayout struct {
	ID         string  `json:"id" db:"id"`
	VenueID    string  `json:"venueId" db:"venueId"`
	EventID    *string `json:"eventId,omitempty" db:"eventId"`
	Name       string  `json:"name" db:"name"`
	Version    int     `json:"version" db:"version"`
	LayoutJSON string  `json:"layoutJson" db:"layoutJson"`
	Metadata   *string `json:"metadata,omitempty" db:"metadata"`
}

// Section is a named region of a layout with its boundary polygon
type Section struct {
	ID      string           `json:"id"`
	Name    string           `json:"name"`
	Color   string           `json:"color,omitempty"`
	Polygon []geometry.Point `json:"polygon"`
}

// Prefix returns the seat id prefix used for seats generated in this section.
func (s Section) Prefix() string {
	return SectionPrefix(s.Name)
}

// Layout document shapes
const (
	LayoutShapeSections = "sections"
	LayoutShapeCanvas   = "canvas"
	LayoutShapeEmpty    = "empty"
)

// LayoutDocument is the parsed form of a layoutJson column
type LayoutDocument struct {
	Shape    string    `json:"shape"`
	Sections []Section `json:"sections"`
}

// FindSection looks a section up by name, case-insensitively.
func (d *LayoutDocument) FindSection(name string) (Section, bool) {
	for _, s := range d.Sections {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return Section{}, false
}

// Prefixes returns the seat id prefixes of every section in the document.
func (d *LayoutDocument) Prefixes() []string {
	prefixes := make([]string, 0, len(d.Sections))
	for _, s := range d.Sections {
		if p := s.Prefix(); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// flexString accepts both JSON strings and numbers (older layouts used numeric ids)
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(strings.TrimSpace(string(data)))
	return nil
}

type rawSection struct {
	ID      flexString      `json:"id"`
	Name    string          `json:"name"`
	Label   string          `json:"label"`
	Color   string          `json:"color"`
	Polygon json.RawMessage `json:"polygon"`
}

type rawCanvasObject struct {
	ID         flexString        `json:"id"`
	Type       string            `json:"type"`
	CustomType string            `json:"customType"`
	Label      string            `json:"label"`
	Name       string            `json:"name"`
	Fill       string            `json:"fill"`
	Points     []geometry.Point  `json:"points"`
	Objects    []rawCanvasObject `json:"objects"`
}

type rawLayout struct {
	Sections []rawSection `json:"sections"`
	Canvas   *struct {
		Objects []rawCanvasObject `json:"objects"`
	} `json:"canvas"`
	Objects []rawCanvasObject `json:"objects"`
}

// ParseLayoutDocument parses a layout document in either the sections form or
// the canvas.objects form. A document with neither yields no sections.
func ParseLayoutDocument(raw []byte) (*LayoutDocument, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return &LayoutDocument{Shape: LayoutShapeEmpty}, nil
	}

	var doc rawLayout
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedLayout, err)
	}

	if len(doc.Sections) > 0 {
		sections := make([]Section, 0, len(doc.Sections))
		for _, rs := range doc.Sections {
			polygon, err := parsePolygon(rs.Polygon)
			if err != nil {
				return nil, fmt.Errorf("%w: section %q: %v", ErrMalformedLayout, rs.Name, err)
			}
			name := rs.Name
			if name == "" {
				name = rs.Label
			}
			sections = append(sections, Section{
				ID:      string(rs.ID),
				Name:    name,
				Color:   rs.Color,
				Polygon: polygon,
			})
		}
		return &LayoutDocument{Shape: LayoutShapeSections, Sections: sections}, nil
	}

	objects := doc.Objects
	if doc.Canvas != nil && len(doc.Canvas.Objects) > 0 {
		objects = doc.Canvas.Objects
	}
	if len(objects) == 0 {
		return &LayoutDocument{Shape: LayoutShapeEmpty}, nil
	}

	var sections []Section
	for _, obj := range objects {
		if obj.CustomType != "section" {
			continue
		}
		name := obj.Label
		if name == "" {
			name = obj.Name
		}
		sections = append(sections, Section{
			ID:      string(obj.ID),
			Name:    name,
			Color:   obj.Fill,
			Polygon: findPolygon(obj.Objects),
		})
	}
	return &LayoutDocument{Shape: LayoutShapeCanvas, Sections: sections}, nil
}

// parsePolygon accepts either a bare point array or an object with a points array.
func parsePolygon(raw json.RawMessage) ([]geometry.Point, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	if raw[0] == '[' {
		var points []geometry.Point
		if err := json.Unmarshal(raw, &points); err != nil {
			return nil, err
		}
		return points, nil
	}

	var wrapped struct {
		Points []geometry.Point `json:"points"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Points, nil
}

func findPolygon(objects []rawCanvasObject) []geometry.Point {
	for _, o := range objects {
		if strings.EqualFold(o.Type, "polygon") {
			return o.Points
		}
	}
	for _, o := range objects {
		if p := findPolygon(o.Objects); p != nil {
			return p
		}
	}
	return nil
}
