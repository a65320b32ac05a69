package grid

import (
	"errors"
	"fmt"
)

var ErrGestureActive = errors.New("grid: a drag gesture is already active")

// GestureState is the phase of a drag gesture.
type GestureState int

const (
	GestureIdle GestureState = iota
	GestureDragging
	GestureReordered
)

func (s GestureState) String() string {
	switch s {
	case GestureIdle:
		return "idle"
	case GestureDragging:
		return "dragging"
	case GestureReordered:
		return "reordered"
	default:
		return "unknown"
	}
}

// Gesture tracks one drag over a fixed order:
//
//	Idle -> Dragging(source) -> Reordered(newOrder) | Idle
//
// The order passed to NewGesture is copied and never modified; a successful
// drop yields a new slice.
type Gesture struct {
	strategy Strategy
	order    []string
	state    GestureState
	source   string
	result   []string
}

func NewGesture(strategy Strategy, order []string) *Gesture {
	if strategy == nil {
		strategy = RectStrategy{}
	}
	snapshot := make([]string, len(order))
	copy(snapshot, order)
	return &Gesture{strategy: strategy, order: snapshot}
}

func (g *Gesture) State() GestureState { return g.state }

// Source returns the key being dragged while the gesture is in Dragging.
func (g *Gesture) Source() (string, bool) {
	if g.state != GestureDragging {
		return "", false
	}
	return g.source, true
}

// Result returns the order produced by the drop, if any.
func (g *Gesture) Result() ([]string, bool) {
	if g.state != GestureReordered {
		return nil, false
	}
	out := make([]string, len(g.result))
	copy(out, g.result)
	return out, true
}

// Start begins dragging source. A finished gesture may be restarted.
func (g *Gesture) Start(source string) error {
	if g.state == GestureDragging {
		return ErrGestureActive
	}
	if indexOf(g.order, source) < 0 {
		return fmt.Errorf("%w: %q", ErrUnknownKey, source)
	}
	g.state = GestureDragging
	g.source = source
	g.result = nil
	return nil
}

// Over returns the order a drop on target would produce without changing
// the gesture. It reports false when not dragging or when target is not in
// the order.
func (g *Gesture) Over(target string) ([]string, bool) {
	if g.state != GestureDragging || indexOf(g.order, target) < 0 {
		return nil, false
	}
	preview, err := g.strategy.ComputeNewOrder(g.order, g.source, target)
	if err != nil {
		return nil, false
	}
	return preview, true
}

// Drop ends the gesture over target. Dropping over a key the order does not
// contain counts as a cancel and reports false.
func (g *Gesture) Drop(target string) ([]string, bool, error) {
	if g.state != GestureDragging {
		return nil, false, nil
	}
	if indexOf(g.order, target) < 0 {
		g.Cancel()
		return nil, false, nil
	}
	next, err := g.strategy.ComputeNewOrder(g.order, g.source, target)
	if err != nil {
		g.Cancel()
		return nil, false, err
	}
	g.state = GestureReordered
	g.source = ""
	g.result = next
	out := make([]string, len(next))
	copy(out, next)
	return out, true, nil
}

// Cancel returns the gesture to Idle without producing an order.
func (g *Gesture) Cancel() {
	g.state = GestureIdle
	g.source = ""
	g.result = nil
}
