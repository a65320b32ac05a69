// Package sidebar manages a user's pinned navigation items. The sidebar is
// the drop target for cards dragged out of the applications grid.
package sidebar

import (
	"errors"
	"fmt"
	"slices"

	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/catalog"
	"github.com/lyceum-academy/lyceum/internal/grid"
)

var (
	ErrProtected = errors.New("sidebar: item cannot be removed")
	ErrNotPinned = errors.New("sidebar: item is not pinned")
)

// AppsItem opens the applications grid. Every user sees it.
const AppsItem = "Apps"

// Protected items survive removal and are restored when a saved order
// lacks them.
var Protected = []string{AppsItem, "dashboard", "student_dashboard", "My Profile"}

var (
	staffDefaults   = []string{AppsItem, "dashboard", "Discuss", "Calendar", "Contacts", "CRM", "Agents", "Accounting", "Tasks", "Reception"}
	studentDefaults = []string{"student_dashboard", AppsItem, "LMS", "Tickets", "My Profile"}
)

// Defaults returns the initial items for role, before filtering by what the
// user may open.
func Defaults(role string) []string {
	if auth.NormalizeRole(role) == auth.RoleStudent {
		return slices.Clone(studentDefaults)
	}
	return slices.Clone(staffDefaults)
}

func IsProtected(name string) bool {
	return slices.Contains(Protected, name)
}

// Sidebar is an ordered list of pinned item names. Methods return a new
// Sidebar and leave the receiver unchanged.
//
// A Sidebar only holds items its user may open: the Apps item, the student
// navigation for students, and the apps in the visible set it was built
// with. A zero visible set permits nothing else.
type Sidebar struct {
	Role  string
	Items []string

	visible map[string]struct{}
}

// New returns the role defaults the user may open.
func New(role string, visible []grid.AppEntry) Sidebar {
	return Restore(role, visible, nil)
}

// Restore rebuilds a sidebar from a saved order. Names the user may not open
// are dropped, duplicates collapse to their first position, and missing
// protected defaults are appended. A nil saved order yields the defaults.
func Restore(role string, visible []grid.AppEntry, saved []string) Sidebar {
	s := Sidebar{Role: role, visible: make(map[string]struct{}, len(visible))}
	for _, e := range visible {
		s.visible[e.Name] = struct{}{}
	}
	defaults := Defaults(role)
	if saved == nil {
		saved = defaults
	}
	items := make([]string, 0, len(saved)+len(Protected))
	for _, name := range saved {
		if slices.Contains(items, name) || !s.permits(name) {
			continue
		}
		if !slices.Contains(defaults, name) {
			if _, ok := catalog.Lookup(name); !ok {
				continue
			}
		}
		items = append(items, name)
	}
	for _, name := range defaults {
		if IsProtected(name) && !slices.Contains(items, name) && s.permits(name) {
			items = append(items, name)
		}
	}
	s.Items = items
	return s
}

// permits reports whether name may appear in this sidebar.
func (s Sidebar) permits(name string) bool {
	if name == AppsItem {
		return true
	}
	if auth.NormalizeRole(s.Role) == auth.RoleStudent && slices.Contains(studentDefaults, name) {
		return true
	}
	_, ok := s.visible[name]
	return ok
}

func (s Sidebar) Contains(name string) bool {
	return slices.Contains(s.Items, name)
}

func (s Sidebar) with(items []string) Sidebar {
	return Sidebar{Role: s.Role, Items: items, visible: s.visible}
}

// AcceptDrop handles a raw drag payload dropped on the sidebar, with the
// effects the drag source allowed.
func (s Sidebar) AcceptDrop(raw string, effect grid.Effect) (Sidebar, bool) {
	t := grid.NewTransfer()
	if err := t.SetData(grid.PayloadMIME, raw); err != nil {
		return s, false
	}
	t.SetEffectAllowed(effect)
	return s.AcceptTransfer(t)
}

// AcceptTransfer consumes a drag transfer and pins its payload. Pinning is
// a copy: transfers that do not allow copy are discarded. Payloads that do
// not decode as grid items, name apps the user may not open, or are already
// pinned are ignored and reported as false.
func (s Sidebar) AcceptTransfer(t *grid.Transfer) (Sidebar, bool) {
	if !t.EffectAllowed().Allows(grid.EffectCopy) {
		t.Discard()
		return s, false
	}
	payload, err := t.ConsumePayload()
	if err != nil {
		return s, false
	}
	return s.Pin(payload.Name)
}

// Pin appends a catalog app the user may open and has not pinned yet.
func (s Sidebar) Pin(name string) (Sidebar, bool) {
	if s.Contains(name) || !s.permits(name) {
		return s, false
	}
	if _, ok := catalog.Lookup(name); !ok {
		return s, false
	}
	return s.with(append(slices.Clone(s.Items), name)), true
}

// Remove unpins name. Protected items cannot be removed.
func (s Sidebar) Remove(name string) (Sidebar, error) {
	if IsProtected(name) {
		return s, fmt.Errorf("%w: %q", ErrProtected, name)
	}
	i := slices.Index(s.Items, name)
	if i < 0 {
		return s, fmt.Errorf("%w: %q", ErrNotPinned, name)
	}
	return s.with(slices.Delete(slices.Clone(s.Items), i, i+1)), nil
}

// Move drops source onto target's slot using strategy.
func (s Sidebar) Move(strategy grid.Strategy, source, target string) (Sidebar, error) {
	if strategy == nil {
		strategy = grid.RectStrategy{Columns: 1}
	}
	next, err := strategy.ComputeNewOrder(s.Items, source, target)
	if err != nil {
		return s, err
	}
	return s.with(next), nil
}
