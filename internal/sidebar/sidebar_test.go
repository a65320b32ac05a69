package sidebar

import (
	"testing"

	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/catalog"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/store"
	"github.com/stretchr/testify/require"
)

func newDefault(role string) Sidebar {
	return New(role, catalog.Visible(role, nil))
}

func TestAcceptDropPinsGridItem(t *testing.T) {
	t.Parallel()

	s := newDefault(auth.RoleStaff)
	before := append([]string(nil), s.Items...)

	next, ok := s.AcceptDrop(grid.EncodePayload("Analytics"), grid.EffectCopyMove)
	require.True(t, ok)
	require.Equal(t, "Analytics", next.Items[len(next.Items)-1])
	require.Equal(t, before, s.Items)
}

func TestAcceptDropIgnoresForeignPayloads(t *testing.T) {
	t.Parallel()

	s := newDefault(auth.RoleStaff)
	for _, raw := range []string{
		"",
		"Analytics",
		`{"name":"Analytics","type":"FILE"}`,
		`{"name":"Payroll","type":"APP_GRID_ITEM"}`,
		grid.EncodePayload("CRM"),
	} {
		next, ok := s.AcceptDrop(raw, grid.EffectCopyMove)
		require.False(t, ok, "raw=%q", raw)
		require.Equal(t, s.Items, next.Items)
	}
}

func TestAcceptDropRequiresCopy(t *testing.T) {
	t.Parallel()

	s := newDefault(auth.RoleStaff)
	for _, effect := range []grid.Effect{grid.EffectNone, grid.EffectMove} {
		next, ok := s.AcceptDrop(grid.EncodePayload("Analytics"), effect)
		require.False(t, ok, "effect=%s", effect)
		require.False(t, next.Contains("Analytics"))
	}
	_, ok := s.AcceptDrop(grid.EncodePayload("Analytics"), grid.EffectCopy)
	require.True(t, ok)
}

func TestAcceptDropRefusesHiddenApps(t *testing.T) {
	t.Parallel()

	staff := newDefault(auth.RoleStaff)
	for _, name := range []string{"Settings", "Access Control", "Agents"} {
		next, ok := staff.AcceptDrop(grid.EncodePayload(name), grid.EffectCopyMove)
		require.False(t, ok, "staff pinned %q", name)
		require.False(t, next.Contains(name))
	}

	student := newDefault(auth.RoleStudent)
	next, ok := student.AcceptDrop(grid.EncodePayload("Access Control"), grid.EffectCopyMove)
	require.False(t, ok)
	require.Equal(t, student.Items, next.Items)

	next, ok = student.AcceptDrop(grid.EncodePayload("Documents"), grid.EffectCopyMove)
	require.True(t, ok)
	require.True(t, next.Contains("Documents"))

	admin := newDefault(auth.RoleAdmin)
	_, ok = admin.AcceptDrop(grid.EncodePayload("Settings"), grid.EffectCopyMove)
	require.True(t, ok)
}

func TestAcceptTransferFromDraggedCard(t *testing.T) {
	t.Parallel()

	r, err := grid.Render([]grid.AppEntry{{Name: "Sales"}, {Name: "Attendance"}}, nil)
	require.NoError(t, err)
	d, err := r.BeginDrag(grid.RectStrategy{}, "Attendance")
	require.NoError(t, err)

	next, ok := newDefault(auth.RoleStaff).AcceptTransfer(d.Transfer())
	require.True(t, ok)
	require.True(t, next.Contains("Attendance"))
	require.False(t, d.Transfer().Open())

	d.Cancel()
	require.Equal(t, []string{"Sales", "Attendance"}, r.Keys())
}

func TestRemove(t *testing.T) {
	t.Parallel()

	s := newDefault(auth.RoleStaff)
	_, err := s.Remove("Apps")
	require.ErrorIs(t, err, ErrProtected)
	_, err = s.Remove("Payroll")
	require.ErrorIs(t, err, ErrNotPinned)

	next, err := s.Remove("CRM")
	require.NoError(t, err)
	require.False(t, next.Contains("CRM"))
	require.True(t, s.Contains("CRM"))

	again, ok := next.Pin("CRM")
	require.True(t, ok)
	require.True(t, again.Contains("CRM"))
}

func TestRestore(t *testing.T) {
	t.Parallel()

	staffVisible := catalog.Visible(auth.RoleStaff, nil)
	s := Restore(auth.RoleStaff, staffVisible, []string{"CRM", "Bogus", "Tasks", "CRM", "Analytics"})
	require.Equal(t, []string{"CRM", "Tasks", "Analytics", "Apps", "dashboard"}, s.Items)

	s = Restore(auth.RoleStudent, catalog.Visible(auth.RoleStudent, nil), []string{"LMS"})
	require.Equal(t, []string{"LMS", "student_dashboard", "Apps", "My Profile"}, s.Items)

	require.Equal(t,
		[]string{"Apps", "dashboard", "Discuss", "Calendar", "Contacts", "CRM", "Tasks", "Reception"},
		Restore(auth.RoleStaff, staffVisible, nil).Items,
	)
	require.Equal(t, Defaults(auth.RoleAdmin), Restore(auth.RoleAdmin, catalog.All(), nil).Items)
}

func TestRestoreDropsItemsNoLongerVisible(t *testing.T) {
	t.Parallel()

	visible := catalog.Visible(auth.RoleStaff, map[string]store.AppPermissions{"CRM": {Read: true}})
	s := Restore(auth.RoleStaff, visible, []string{"Settings", "CRM", "Tasks", "dashboard"})
	require.Equal(t, []string{"CRM", "Apps"}, s.Items)

	_, ok := s.Pin("Tasks")
	require.False(t, ok)
}

func TestMove(t *testing.T) {
	t.Parallel()

	s := Sidebar{Role: auth.RoleStaff, Items: []string{"Apps", "dashboard", "CRM"}}
	next, err := s.Move(nil, "CRM", "Apps")
	require.NoError(t, err)
	require.Equal(t, []string{"CRM", "Apps", "dashboard"}, next.Items)
	require.Equal(t, []string{"Apps", "dashboard", "CRM"}, s.Items)

	_, err = s.Move(nil, "Payroll", "Apps")
	require.ErrorIs(t, err, grid.ErrUnknownKey)
}

func TestDefaultsNameKnownItems(t *testing.T) {
	t.Parallel()

	for _, role := range []string{auth.RoleAdmin, auth.RoleStaff, auth.RoleStudent} {
		for _, name := range Defaults(role) {
			if name == AppsItem || name == "student_dashboard" {
				continue
			}
			_, ok := catalog.Lookup(name)
			require.True(t, ok, "default %q for %s is not a catalog app", name, role)
		}
	}
}
