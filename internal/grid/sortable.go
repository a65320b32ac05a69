package grid

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownKey    = errors.New("grid: unknown sortable key")
	ErrOrderMismatch = errors.New("grid: order is not a permutation of the entries")
)

// Strategy computes the order that results from dropping source onto target.
// Implementations must return a new slice and leave current untouched.
type Strategy interface {
	ComputeNewOrder(current []string, source, target string) ([]string, error)
}

// DefaultColumns is the column count used when a RectStrategy has none.
const DefaultColumns = 6

// RectStrategy lays keys out row by row in a fixed number of columns and
// reorders by moving the source into the target's slot.
type RectStrategy struct {
	Columns int
}

func (s RectStrategy) columns() int {
	if s.Columns < 1 {
		return DefaultColumns
	}
	return s.Columns
}

func (s RectStrategy) ComputeNewOrder(current []string, source, target string) ([]string, error) {
	from := indexOf(current, source)
	if from < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, source)
	}
	to := indexOf(current, target)
	if to < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, target)
	}
	return Move(current, from, to), nil
}

// Move returns a copy of order with the element at from relocated to to.
func Move(order []string, from, to int) []string {
	out := make([]string, len(order))
	copy(out, order)
	if from == to || from < 0 || from >= len(out) || to < 0 || to >= len(out) {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}

// Direction names a visual neighbor in the grid.
type Direction int

const (
	Left Direction = iota
	Right
	Up
	Down
)

func (d Direction) String() string {
	switch d {
	case Left:
		return "left"
	case Right:
		return "right"
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "unknown"
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	for _, d := range []Direction{Left, Right, Up, Down} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("grid: unknown direction %q", s)
}

// Position returns the row and column of key.
func (s RectStrategy) Position(order []string, key string) (row, col int, ok bool) {
	i := indexOf(order, key)
	if i < 0 {
		return 0, 0, false
	}
	cols := s.columns()
	return i / cols, i % cols, true
}

// Neighbor resolves the key visually adjacent to key in direction dir. The
// answer depends only on the order and the column count.
func (s RectStrategy) Neighbor(order []string, key string, dir Direction) (string, bool) {
	row, col, ok := s.Position(order, key)
	if !ok {
		return "", false
	}
	switch dir {
	case Left:
		col--
	case Right:
		col++
	case Up:
		row--
	case Down:
		row++
	default:
		return "", false
	}
	cols := s.columns()
	if row < 0 || col < 0 || col >= cols {
		return "", false
	}
	i := row*cols + col
	if i >= len(order) {
		return "", false
	}
	return order[i], true
}

// ApplyOrder returns a new slice of entries arranged by order. order must
// name every entry exactly once.
func ApplyOrder(entries []AppEntry, order []string) ([]AppEntry, error) {
	if len(order) != len(entries) {
		return nil, fmt.Errorf("%w: have %d entries, order has %d", ErrOrderMismatch, len(entries), len(order))
	}
	byName := make(map[string]AppEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}
	out := make([]AppEntry, 0, len(order))
	for _, name := range order {
		e, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrOrderMismatch, name)
		}
		delete(byName, name)
		out = append(out, e)
	}
	return out, nil
}

func indexOf(order []string, key string) int {
	for i, k := range order {
		if k == key {
			return i
		}
	}
	return -1
}
