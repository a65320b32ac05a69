package grid

// AppEntry describes one application tile. Name is both the display label
// and the identity of the entry within a grid.
type AppEntry struct {
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	BgColor   string `json:"bgColor"`
	IconColor string `json:"iconColor"`
}

// SelectFunc receives the name of an activated card.
type SelectFunc func(appName string)

// Presentation is the visual state of a card. It carries no behavior.
type Presentation struct {
	Scale     float64
	Elevation int
	Opacity   float64
	ZIndex    int
}

// Card is a single selectable, draggable tile.
type Card struct {
	entry    AppEntry
	onSelect SelectFunc
	hovered  bool
	dragging bool
}

// NewCard panics when entry has no name; callers validate entries first.
func NewCard(entry AppEntry, onSelect SelectFunc) *Card {
	if entry.Name == "" {
		panic("grid: card entry has no name")
	}
	return &Card{entry: entry, onSelect: onSelect}
}

func (c *Card) Entry() AppEntry { return c.entry }

// Key is the identity registered with the sortable context.
func (c *Card) Key() string { return c.entry.Name }

// Activate handles a discrete activation (click, tap, keyboard). It invokes
// the select callback once and reports true, or does nothing while the card
// is being dragged.
func (c *Card) Activate() bool {
	if c.dragging {
		return false
	}
	if c.onSelect != nil {
		c.onSelect(c.entry.Name)
	}
	return true
}

// BeginDrag puts the card in its drag phase and returns a transfer holding
// the card's payload. Both copy and move are allowed; the drop target picks.
func (c *Card) BeginDrag() *Transfer {
	c.dragging = true

	t := NewTransfer()
	// Keys are non-empty and the transfer is fresh, so these cannot fail.
	_ = t.SetData(PayloadMIME, EncodePayload(c.entry.Name))
	_ = t.SetData(FallbackMIME, c.entry.Name)
	t.SetEffectAllowed(EffectCopyMove)
	return t
}

// EndDrag leaves the drag phase. It does not select the card.
func (c *Card) EndDrag() {
	c.dragging = false
}

func (c *Card) Dragging() bool { return c.dragging }

func (c *Card) SetHover(hovered bool) { c.hovered = hovered }

func (c *Card) Hovered() bool { return c.hovered }

func (c *Card) Presentation() Presentation {
	switch {
	case c.dragging:
		return Presentation{Scale: 1.05, Elevation: 3, Opacity: 0.3, ZIndex: 50}
	case c.hovered:
		return Presentation{Scale: 1.1, Elevation: 2, Opacity: 1}
	default:
		return Presentation{Scale: 1, Elevation: 1, Opacity: 1}
	}
}
