package grid

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateName = errors.New("grid: duplicate app name")
	ErrEmptyName     = errors.New("grid: app name is empty")
)

// Rendered is the output of one render pass: a card per entry, in input
// order, each registered under its name.
type Rendered struct {
	cards  []*Card
	keys   []string
	byName map[string]*Card
}

// Render builds the cards for entries. Entry names must be unique and
// non-empty; the first violation is returned as an error and nothing is
// rendered. entries is only read.
func Render(entries []AppEntry, onSelect SelectFunc) (Rendered, error) {
	if err := ValidateEntries(entries); err != nil {
		return Rendered{}, err
	}
	r := Rendered{
		cards:  make([]*Card, 0, len(entries)),
		keys:   make([]string, 0, len(entries)),
		byName: make(map[string]*Card, len(entries)),
	}
	for _, e := range entries {
		card := NewCard(e, onSelect)
		r.cards = append(r.cards, card)
		r.keys = append(r.keys, e.Name)
		r.byName[e.Name] = card
	}
	return r, nil
}

// ValidateEntries checks the unique, non-empty name precondition.
func ValidateEntries(entries []AppEntry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.Name == "" {
			return fmt.Errorf("%w: entry %d", ErrEmptyName, i)
		}
		if _, ok := seen[e.Name]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		seen[e.Name] = struct{}{}
	}
	return nil
}

func (r Rendered) Len() int { return len(r.cards) }

// Keys returns the sortable identities in render order.
func (r Rendered) Keys() []string {
	out := make([]string, len(r.keys))
	copy(out, r.keys)
	return out
}

func (r Rendered) Cards() []*Card {
	out := make([]*Card, len(r.cards))
	copy(out, r.cards)
	return out
}

func (r Rendered) Card(name string) (*Card, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// Entries returns the rendered entries in order.
func (r Rendered) Entries() []AppEntry {
	out := make([]AppEntry, 0, len(r.cards))
	for _, c := range r.cards {
		out = append(out, c.entry)
	}
	return out
}

// Drag is an in-flight drag of one rendered card.
type Drag struct {
	card     *Card
	gesture  *Gesture
	transfer *Transfer
}

// BeginDrag starts dragging the card called name, ordering with strategy.
func (r Rendered) BeginDrag(strategy Strategy, name string) (*Drag, error) {
	card, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKey, name)
	}
	g := NewGesture(strategy, r.keys)
	if err := g.Start(name); err != nil {
		return nil, err
	}
	return &Drag{card: card, gesture: g, transfer: card.BeginDrag()}, nil
}

// Transfer is the channel a drop target reads the payload from.
func (d *Drag) Transfer() *Transfer { return d.transfer }

func (d *Drag) State() GestureState { return d.gesture.State() }

// Over previews the order a drop on target would produce.
func (d *Drag) Over(target string) ([]string, bool) {
	return d.gesture.Over(target)
}

// Drop finishes the drag over target and returns the new order. ok is false
// when target is not part of the grid, in which case nothing changes.
func (d *Drag) Drop(target string) (order []string, ok bool, err error) {
	defer d.finish()
	return d.gesture.Drop(target)
}

// Cancel abandons the drag; the order is unchanged and nothing is selected.
func (d *Drag) Cancel() {
	d.gesture.Cancel()
	d.finish()
}

func (d *Drag) finish() {
	d.card.EndDrag()
	d.transfer.Discard()
}
