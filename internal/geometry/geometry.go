// Package geometry holds the small amount of 2D math used to inspect venue
// layouts: section polygon bounds and row direction.
package geometry

import (
	"errors"
	"math"
	"sort"
)

var (
	ErrEmptyPolygon      = errors.New("polygon has no points")
	ErrInsufficientSeats = errors.New("row needs at least two seats")
)

// Point is a canvas coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Box is an axis-aligned bounding rectangle.
type Box struct {
	MinX float64 `json:"minX"`
	MaxX float64 `json:"maxX"`
	MinY float64 `json:"minY"`
	MaxY float64 `json:"maxY"`
}

func (b Box) Width() float64  { return b.MaxX - b.MinX }
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// Contains reports whether p lies inside the box, edges included.
func (b Box) Contains(p Point) bool {
	return p.X >= b.MinX && p.X <= b.MaxX && p.Y >= b.MinY && p.Y <= b.MaxY
}

// BoundingBox returns the minimal box containing every point.
func BoundingBox(points []Point) (Box, error) {
	if len(points) == 0 {
		return Box{}, ErrEmptyPolygon
	}

	box := Box{
		MinX: points[0].X,
		MaxX: points[0].X,
		MinY: points[0].Y,
		MaxY: points[0].Y,
	}
	for _, p := range points[1:] {
		box.MinX = math.Min(box.MinX, p.X)
		box.MaxX = math.Max(box.MaxX, p.X)
		box.MinY = math.Min(box.MinY, p.Y)
		box.MaxY = math.Max(box.MaxY, p.Y)
	}
	return box, nil
}

// Centroid returns the average of the points (not the area centroid).
func Centroid(points []Point) (Point, error) {
	if len(points) == 0 {
		return Point{}, ErrEmptyPolygon
	}

	var sum Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	n := float64(len(points))
	return Point{X: sum.X / n, Y: sum.Y / n}, nil
}

// Vector is a row's direction from its first to its last seat.
type Vector struct {
	DX           float64 `json:"dx"`
	DY           float64 `json:"dy"`
	AngleDegrees float64 `json:"angleDegrees"`
}

// RowSeat is a seat reduced to what the row vector needs.
type RowSeat struct {
	Column   int
	Position Point
}

// RowVector computes the direction of a row from the seats with the lowest and
// highest column numbers. Seats in between are ignored, so the result is only
// meaningful for straight rows.
func RowVector(seats []RowSeat) (Vector, error) {
	if len(seats) < 2 {
		return Vector{}, ErrInsufficientSeats
	}

	ordered := make([]RowSeat, len(seats))
	copy(ordered, seats)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Column < ordered[j].Column
	})

	first := ordered[0].Position
	last := ordered[len(ordered)-1].Position
	dx := last.X - first.X
	dy := last.Y - first.Y

	return Vector{DX: dx, DY: dy, AngleDegrees: angle(dx, dy)}, nil
}

// EdgeAngle returns the angle of the polygon's first edge (points[0] to points[1]).
func EdgeAngle(points []Point) (float64, error) {
	if len(points) < 2 {
		return 0, ErrEmptyPolygon
	}
	return angle(points[1].X-points[0].X, points[1].Y-points[0].Y), nil
}

// angle is atan2 in degrees, normalised to (-180, 180].
func angle(dx, dy float64) float64 {
	deg := math.Atan2(dy, dx) * 180 / math.Pi
	if deg <= -180 {
		deg += 360
	}
	return deg
}
