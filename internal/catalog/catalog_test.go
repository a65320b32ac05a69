package catalog

import (
	"testing"

	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/store"
)

func names(entries []grid.AppEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

func TestCatalogNamesAreUnique(t *testing.T) {
	t.Parallel()

	if err := grid.ValidateEntries(All()); err != nil {
		t.Fatalf("catalog entries invalid: %v", err)
	}
}

func TestAllReturnsCopy(t *testing.T) {
	t.Parallel()

	a := All()
	a[0].Name = "mutated"
	if All()[0].Name == "mutated" {
		t.Fatal("All() exposed the backing slice")
	}
}

func TestVisibleAdminSeesEverything(t *testing.T) {
	t.Parallel()

	got := Visible(auth.RoleAdmin, map[string]store.AppPermissions{"CRM": {Read: true}})
	if len(got) != len(All()) {
		t.Fatalf("admin sees %d apps, want %d", len(got), len(All()))
	}
}

func TestVisibleStudentDefaults(t *testing.T) {
	t.Parallel()

	got := names(Visible(auth.RoleStudent, nil))
	want := []string{"LMS", "Discuss", "Accounts", "Documents", "Visa Application", "Quotations", "My Profile"}
	if len(got) != len(want) {
		t.Fatalf("Visible(student) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Visible(student) = %v, want %v", got, want)
		}
	}
}

func TestVisibleExplicitGrants(t *testing.T) {
	t.Parallel()

	perms := map[string]store.AppPermissions{
		"Tasks":    {Read: true},
		"CRM":      {Read: true, Update: true},
		"Settings": {},
		"Unknown":  {Read: true},
	}
	got := names(Visible(auth.RoleStaff, perms))
	if len(got) != 2 || got[0] != "CRM" || got[1] != "Tasks" {
		t.Fatalf("Visible(staff, grants) = %v, want [CRM Tasks]", got)
	}
}

func TestLookup(t *testing.T) {
	t.Parallel()

	if e, ok := Lookup("CRM"); !ok || e.Icon != "users" {
		t.Fatalf("Lookup(CRM) = %+v, %v", e, ok)
	}
	if _, ok := Lookup("Payroll"); ok {
		t.Fatal("Lookup(Payroll) should miss")
	}
}

func TestDefaultPermissionsNameCatalogApps(t *testing.T) {
	t.Parallel()

	for _, role := range []string{auth.RoleAdmin, auth.RoleStaff, auth.RoleStudent} {
		for name := range DefaultPermissions(role) {
			if _, ok := Lookup(name); !ok {
				t.Fatalf("DefaultPermissions(%s) grants %q, which is not in the catalog", role, name)
			}
		}
	}
}
