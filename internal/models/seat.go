package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"venue-seating-ops/internal/geometry"
)

// Seat represents a seat record as stored in the Seat table
type Seat struct {
	ID           string  `json:"id" db:"id"`
	VenueID      string  `json:"venueId" db:"venueId"`
	LayoutID     *string `json:"layoutId,omitempty" db:"layoutId"`
	RowLabel     string  `json:"rowLabel" db:"rowLabel"`
	ColumnNumber int     `json:"columnNumber" db:"columnNumber"`
	Metadata     string  `json:"metadata" db:"metadata"` // serialized JSON
}

// seatMetadata is the part of the metadata document the tools care about
type seatMetadata struct {
	Canvas *struct {
		Position *geometry.Point `json:"position"`
	} `json:"canvas"`
}

// Position returns the seat's canvas position from its metadata. A nil
// position with a nil error means the metadata is valid but has no position.
func (s *Seat) Position() (*geometry.Point, error) {
	return PositionFromMetadata([]byte(s.Metadata))
}

// PositionFromMetadata extracts canvas.position from a serialized metadata document.
func PositionFromMetadata(raw []byte) (*geometry.Point, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var meta seatMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	if meta.Canvas == nil {
		return nil, nil
	}
	return meta.Canvas.Position, nil
}

// SamePosition reports exact equality of two positions. Two missing
// positions are not considered equal here.
func SamePosition(a, b *geometry.Point) bool {
	if a == nil || b == nil {
		return false
	}
	return a.X == b.X && a.Y == b.Y
}

// MetadataEqual compares two serialized metadata documents semantically
// (key order and whitespace are ignored). Unparseable input is never equal.
func MetadataEqual(a, b []byte) bool {
	var va, vb interface{}
	if err := json.Unmarshal(normalizeMetadata(a), &va); err != nil {
		return false
	}
	if err := json.Unmarshal(normalizeMetadata(b), &vb); err != nil {
		return false
	}
	return reflect.DeepEqual(va, vb)
}

// CompactMetadata returns the metadata as compact JSON, ready to be written
// back to the metadata column verbatim.
func CompactMetadata(raw []byte) (string, error) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, normalizeMetadata(raw)); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedMetadata, err)
	}
	return buf.String(), nil
}

func normalizeMetadata(raw []byte) []byte {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return []byte("{}")
	}
	return raw
}
