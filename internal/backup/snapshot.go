// Package backup loads, filters and writes seat snapshots, and moves them
// between local disk and R2.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"venue-seating-ops/internal/models"
)

var ErrInvalidSnapshot = errors.New("invalid backup snapshot")

// SeatEntry is one seat as recorded in a snapshot. Metadata is held as a
// JSON document; snapshots that stored it as a string are unwrapped on load.
// When the column text was not JSON at all, Metadata is a JSON string of that
// text and Verbatim is set.
type SeatEntry struct {
	ID           string          `json:"id"`
	RowLabel     string          `json:"rowLabel,omitempty"`
	ColumnNumber int             `json:"columnNumber,omitempty"`
	Metadata     json.RawMessage `json:"metadata"`
	Verbatim     bool            `json:"verbatim,omitempty"`
}

// MetadataText returns the text to write back to the metadata column:
// the recorded text itself for verbatim entries, compact JSON otherwise.
func (e SeatEntry) MetadataText() (string, error) {
	if !e.Verbatim {
		return models.CompactMetadata(e.Metadata)
	}
	var text string
	if err := json.Unmarshal(e.Metadata, &text); err != nil {
		return "", fmt.Errorf("%w: seat %s: %v", models.ErrMalformedMetadata, e.ID, err)
	}
	return text, nil
}

// Snapshot is a read-only record of seat metadata at some earlier moment.
type Snapshot struct {
	ID         string      `json:"id,omitempty"`
	VenueID    string      `json:"venueId,omitempty"`
	CapturedAt *time.Time  `json:"capturedAt,omitempty"`
	Seats      []SeatEntry `json:"seats"`
}

// Parse reads a whole snapshot document. The document must carry a seats
// array and every entry needs an id.
func Parse(r io.Reader) (*Snapshot, error) {
	var doc struct {
		Snapshot
		Seats *[]SeatEntry `json:"seats"`
	}
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if doc.Seats == nil {
		return nil, fmt.Errorf("%w: no seats array", ErrInvalidSnapshot)
	}

	snap := doc.Snapshot
	snap.Seats = *doc.Seats
	for i := range snap.Seats {
		entry := &snap.Seats[i]
		if entry.ID == "" {
			return nil, fmt.Errorf("%w: seat %d has no id", ErrInvalidSnapshot, i)
		}
		if entry.Verbatim {
			if _, err := entry.MetadataText(); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
			}
			continue
		}
		metadata, verbatim, err := unwrapMetadata(entry.Metadata)
		if err != nil {
			return nil, fmt.Errorf("%w: seat %s: %v", ErrInvalidSnapshot, entry.ID, err)
		}
		entry.Metadata = metadata
		entry.Verbatim = verbatim
	}
	return &snap, nil
}

// unwrapMetadata turns a JSON string holding a document into the document
// itself. Missing metadata becomes an empty object. A string that does not
// hold JSON is kept as a string and reported as verbatim text.
func unwrapMetadata(raw json.RawMessage) (json.RawMessage, bool, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return json.RawMessage("{}"), false, nil
	}
	if raw[0] != '"' {
		return raw, false, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, false, err
	}
	if !json.Valid([]byte(text)) {
		return raw, true, nil
	}
	return json.RawMessage(text), false, nil
}

// Capture builds a snapshot from live seats.
func Capture(venueID string, seats []*models.Seat, now time.Time) *Snapshot {
	captured := now.UTC()
	snap := &Snapshot{
		ID:         uuid.NewString(),
		VenueID:    venueID,
		CapturedAt: &captured,
		Seats:      make([]SeatEntry, 0, len(seats)),
	}
	for _, seat := range seats {
		entry := SeatEntry{
			ID:           seat.ID,
			RowLabel:     seat.RowLabel,
			ColumnNumber: seat.ColumnNumber,
			Metadata:     json.RawMessage(seat.Metadata),
		}
		trimmed := bytes.TrimSpace(entry.Metadata)
		switch {
		case len(trimmed) == 0:
			entry.Metadata = json.RawMessage("{}")
		case trimmed[0] == '"' || !json.Valid(trimmed):
			// not a document: keep the column text as it is
			entry.Metadata, _ = json.Marshal(seat.Metadata)
			entry.Verbatim = true
		}
		snap.Seats = append(snap.Seats, entry)
	}
	return snap
}

// Filter returns a new snapshot holding only the seats in the section named
// by prefix. The receiver is left untouched.
func (s *Snapshot) Filter(prefix string, known []string) *Snapshot {
	filtered := &Snapshot{
		ID:         s.ID,
		VenueID:    s.VenueID,
		CapturedAt: s.CapturedAt,
		Seats:      make([]SeatEntry, 0, len(s.Seats)),
	}
	for _, entry := range s.Seats {
		if prefix == "" || models.MatchesPrefix(entry.ID, prefix, known) {
			filtered.Seats = append(filtered.Seats, entry)
		}
	}
	return filtered
}

// Index maps seat id to its entry.
func (s *Snapshot) Index() map[string]SeatEntry {
	index := make(map[string]SeatEntry, len(s.Seats))
	for _, entry := range s.Seats {
		index[entry.ID] = entry
	}
	return index
}

// Prefixes lists the distinct section prefixes in the snapshot, as far as
// they can be told from the ids alone.
func (s *Snapshot) Prefixes(known []string) []string {
	seen := make(map[string]bool)
	var prefixes []string
	for _, entry := range s.Seats {
		p := models.PrefixOf(entry.ID, known)
		if p != "" && !seen[p] {
			seen[p] = true
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// Encode writes the snapshot as indented JSON.
func (s *Snapshot) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return nil
}

// DefaultKey names a dated snapshot file for a venue, e.g.
// venue-1/backup-layout-20261019-153000.json.
func DefaultKey(venueID string, now time.Time) string {
	return fmt.Sprintf("%s/backup-layout-%s.json", venueID, now.UTC().Format("20060102-150405"))
}
