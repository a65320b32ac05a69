package grid

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleEntries() []AppEntry {
	return []AppEntry{
		{Name: "Sales", Icon: "shopping-cart", BgColor: "bg-green-100", IconColor: "text-green-600"},
		{Name: "CRM", Icon: "users", BgColor: "bg-indigo-100", IconColor: "text-indigo-600"},
		{Name: "Billing", Icon: "receipt", BgColor: "bg-amber-100", IconColor: "text-amber-600"},
	}
}

func cloneEntries(in []AppEntry) []AppEntry {
	out := make([]AppEntry, len(in))
	copy(out, in)
	return out
}

func TestRenderKeepsInputOrder(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	before := cloneEntries(entries)

	r1, err := Render(entries, nil)
	require.NoError(t, err)
	r2, err := Render(entries, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"Sales", "CRM", "Billing"}, r1.Keys())
	require.Equal(t, r1.Keys(), r2.Keys())
	require.Equal(t, r1.Entries(), r2.Entries())
	require.Equal(t, before, entries)
}

func TestRenderRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	entries := append(sampleEntries(), AppEntry{Name: "CRM"})
	_, err := Render(entries, nil)
	require.True(t, errors.Is(err, ErrDuplicateName), "err=%v", err)
}

func TestRenderRejectsEmptyName(t *testing.T) {
	t.Parallel()

	_, err := Render([]AppEntry{{Name: "Sales"}, {Icon: "x"}}, nil)
	require.True(t, errors.Is(err, ErrEmptyName), "err=%v", err)
}

func TestActivateSelectsOnce(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	before := cloneEntries(entries)

	var selected []string
	r, err := Render(entries, func(name string) { selected = append(selected, name) })
	require.NoError(t, err)

	card, ok := r.Card("CRM")
	require.True(t, ok)
	require.True(t, card.Activate())

	require.Equal(t, []string{"CRM"}, selected)
	require.Equal(t, before, entries)
}

func TestActivateIgnoredWhileDragging(t *testing.T) {
	t.Parallel()

	calls := 0
	card := NewCard(AppEntry{Name: "CRM"}, func(string) { calls++ })

	card.BeginDrag()
	require.False(t, card.Activate())
	card.EndDrag()
	require.Equal(t, 0, calls)

	require.True(t, card.Activate())
	require.Equal(t, 1, calls)
}

func TestBeginDragPopulatesTransfer(t *testing.T) {
	t.Parallel()

	r, err := Render(sampleEntries(), nil)
	require.NoError(t, err)

	d, err := r.BeginDrag(RectStrategy{Columns: 4}, "Sales")
	require.NoError(t, err)

	tr := d.Transfer()
	require.Equal(t, []string{PayloadMIME, FallbackMIME}, tr.Types())
	require.Equal(t, EffectCopyMove, tr.EffectAllowed())

	payload, err := tr.ConsumePayload()
	require.NoError(t, err)
	require.Equal(t, DragPayload{Name: "Sales", Type: PayloadType}, payload)

	_, _, err = tr.Consume(PayloadMIME)
	require.ErrorIs(t, err, ErrTransferClosed)
}

func TestCancelLeavesOrderUnchanged(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	before := cloneEntries(entries)

	selects := 0
	r, err := Render(entries, func(string) { selects++ })
	require.NoError(t, err)

	d, err := r.BeginDrag(RectStrategy{}, "CRM")
	require.NoError(t, err)
	card, _ := r.Card("CRM")
	require.True(t, card.Dragging())

	order, ok, err := d.Drop("outside")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, order)
	require.Equal(t, GestureIdle, d.State())
	require.False(t, card.Dragging())
	require.False(t, d.Transfer().Open())

	require.Equal(t, before, entries)
	require.Equal(t, []string{"Sales", "CRM", "Billing"}, r.Keys())
	require.Equal(t, 0, selects)
}

func TestExplicitCancel(t *testing.T) {
	t.Parallel()

	r, err := Render(sampleEntries(), nil)
	require.NoError(t, err)
	d, err := r.BeginDrag(RectStrategy{}, "Billing")
	require.NoError(t, err)

	d.Cancel()
	require.Equal(t, GestureIdle, d.State())
	_, _, err = d.Transfer().Consume(PayloadMIME)
	require.ErrorIs(t, err, ErrTransferClosed)
}

func TestDragToFrontReorders(t *testing.T) {
	t.Parallel()

	entries := sampleEntries()
	before := cloneEntries(entries)

	r, err := Render(entries, nil)
	require.NoError(t, err)

	d, err := r.BeginDrag(RectStrategy{Columns: 4}, "CRM")
	require.NoError(t, err)

	order, ok, err := d.Drop("Sales")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []string{"CRM", "Sales", "Billing"}, order)
	require.Equal(t, GestureReordered, d.State())

	reordered, err := ApplyOrder(entries, order)
	require.NoError(t, err)
	require.Equal(t, []AppEntry{before[1], before[0], before[2]}, reordered)
	require.Equal(t, before, entries)
}

func TestBeginDragUnknownCard(t *testing.T) {
	t.Parallel()

	r, err := Render(sampleEntries(), nil)
	require.NoError(t, err)
	_, err = r.BeginDrag(RectStrategy{}, "Payroll")
	require.ErrorIs(t, err, ErrUnknownKey)
}

func TestPresentationHoverHasNoSideEffects(t *testing.T) {
	t.Parallel()

	calls := 0
	card := NewCard(AppEntry{Name: "CRM"}, func(string) { calls++ })
	idle := card.Presentation()

	card.SetHover(true)
	hovered := card.Presentation()
	require.NotEqual(t, idle, hovered)
	require.Equal(t, 0, calls)
	require.False(t, card.Dragging())

	card.BeginDrag()
	require.Equal(t, 0.3, card.Presentation().Opacity)
}

func TestNewCardPanicsWithoutName(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() { NewCard(AppEntry{}, nil) })
}
