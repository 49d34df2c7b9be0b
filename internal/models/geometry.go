package models

// Point is a position on the drawing grid, in whole cells.
// X grows rightward, Y grows downward (screen convention).
type Point struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
}

// Add returns p shifted by dx, dy cells.
func (p Point) Add(dx, dy int) Point {
	return Point{X: p.X + dx, Y: p.Y + dy}
}

// Direction is an axis-aligned facing, used for port normals and router steps.
type Direction string

const (
	DirUp    Direction = "up"
	DirRight Direction = "right"
	DirDown  Direction = "down"
	DirLeft  Direction = "left"
)

// Delta returns the unit cell step for the direction.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case DirUp:
		return 0, -1
	case DirRight:
		return 1, 0
	case DirDown:
		return 0, 1
	case DirLeft:
		return -1, 0
	}
	return 0, 0
}

// Opposite returns the reverse direction.
func (d Direction) Opposite() Direction {
	switch d {
	case DirUp:
		return DirDown
	case DirRight:
		return DirLeft
	case DirDown:
		return DirUp
	case DirLeft:
		return DirRight
	}
	return d
}

// Rotated returns the direction turned clockwise by a footprint rotation.
func (d Direction) Rotated(r Rotation) Direction {
	order := []Direction{DirUp, DirRight, DirDown, DirLeft}
	idx := -1
	for i, v := range order {
		if v == d {
			idx = i
			break
		}
	}
	if idx < 0 {
		return d
	}
	steps := int(r/90) % 4
	return order[(idx+steps)%4]
}

// Rotation is a clockwise footprint rotation in degrees. Only the four
// quarter turns are legal.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// Valid reports whether r is one of the four quarter turns.
func (r Rotation) Valid() bool {
	switch r {
	case Rotate0, Rotate90, Rotate180, Rotate270:
		return true
	}
	return false
}

// Rect is an axis-aligned cell rectangle. W and H count cells, so a
// 1x1 footprint occupies exactly the anchor cell.
type Rect struct {
	X int `json:"x" msgpack:"x"`
	Y int `json:"y" msgpack:"y"`
	W int `json:"w" msgpack:"w"`
	H int `json:"h" msgpack:"h"`
}

// Contains reports whether the cell p lies inside the rectangle.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}

// Intersects reports whether two cell rectangles share at least one cell.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W && r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

// Segment is one axis-aligned run of a routed pipeline, from A to B
// inclusive. Consecutive segments of a path share their joint cell.
type Segment struct {
	A Point `json:"a" msgpack:"a"`
	B Point `json:"b" msgpack:"b"`
}

// Horizontal reports whether the segment runs along a row.
func (s Segment) Horizontal() bool {
	return s.A.Y == s.B.Y
}

// Length returns the segment length in cells (0 for a degenerate point).
func (s Segment) Length() int {
	if s.Horizontal() {
		return abs(s.B.X - s.A.X)
	}
	return abs(s.B.Y - s.A.Y)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
