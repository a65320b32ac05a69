// Package catalog lists the applications the grid can show and decides
// which of them a user may see.
package catalog

import (
	"github.com/lyceum-academy/lyceum/internal/auth"
	"github.com/lyceum-academy/lyceum/internal/grid"
	"github.com/lyceum-academy/lyceum/internal/store"
)

var apps = []grid.AppEntry{
	{Name: "dashboard", Icon: "bar-chart-3", BgColor: "bg-cyan-100", IconColor: "text-cyan-600"},
	{Name: "Contacts", Icon: "contact", BgColor: "bg-yellow-100", IconColor: "text-yellow-600"},
	{Name: "LMS", Icon: "book-open", BgColor: "bg-blue-100", IconColor: "text-blue-600"},
	{Name: "CRM", Icon: "users", BgColor: "bg-indigo-100", IconColor: "text-indigo-600"},
	{Name: "Agents", Icon: "user-check", BgColor: "bg-violet-100", IconColor: "text-violet-600"},
	{Name: "Accounting", Icon: "file-text", BgColor: "bg-green-100", IconColor: "text-green-600"},
	{Name: "Sales", Icon: "shopping-cart", BgColor: "bg-purple-100", IconColor: "text-purple-600"},
	{Name: "Calendar", Icon: "calendar", BgColor: "bg-rose-100", IconColor: "text-rose-600"},
	{Name: "Discuss", Icon: "messages-square", BgColor: "bg-teal-100", IconColor: "text-teal-600"},
	{Name: "Accounts", Icon: "file-text", BgColor: "bg-green-100", IconColor: "text-green-600"},
	{Name: "Analytics", Icon: "trending-up", BgColor: "bg-pink-100", IconColor: "text-pink-600"},
	{Name: "Tasks", Icon: "clipboard-list", BgColor: "bg-blue-100", IconColor: "text-blue-600"},
	{Name: "Tickets", Icon: "file-text", BgColor: "bg-amber-100", IconColor: "text-amber-600"},
	{Name: "Reception", Icon: "concierge-bell", BgColor: "bg-emerald-100", IconColor: "text-emerald-600"},
	{Name: "Settings", Icon: "cog", BgColor: "bg-slate-200", IconColor: "text-slate-600"},
	{Name: "Access Control", Icon: "key-round", BgColor: "bg-red-100", IconColor: "text-red-600"},
	{Name: "Visitor Display", Icon: "users", BgColor: "bg-purple-100", IconColor: "text-purple-600"},
	{Name: "Department Dashboard", Icon: "check-circle", BgColor: "bg-blue-100", IconColor: "text-blue-600"},
	{Name: "Attendance", Icon: "clock", BgColor: "bg-pink-100", IconColor: "text-pink-600"},
	{Name: "University Application", Icon: "graduation-cap", BgColor: "bg-violet-100", IconColor: "text-violet-600"},
	{Name: "Visa Operations", Icon: "file-text", BgColor: "bg-orange-100", IconColor: "text-orange-600"},
	{Name: "Documents", Icon: "paperclip", BgColor: "bg-green-100", IconColor: "text-green-600"},
	{Name: "Visa Application", Icon: "file-text", BgColor: "bg-orange-100", IconColor: "text-orange-600"},
	{Name: "Quotations", Icon: "file-text", BgColor: "bg-indigo-100", IconColor: "text-indigo-600"},
	{Name: "My Profile", Icon: "user-circle", BgColor: "bg-purple-100", IconColor: "text-purple-600"},
	{Name: "University Manager", Icon: "cog", BgColor: "bg-indigo-100", IconColor: "text-indigo-600"},
}

var (
	fullAccess = store.AppPermissions{Read: true, Create: true, Update: true, Delete: true}
	readOnly   = store.AppPermissions{Read: true}

	staffFullAccess = []string{
		"Contacts", "CRM", "Calendar", "Discuss", "Tasks", "Tickets", "Reception", "Sales", "Analytics", "LMS",
		"Visitor Display", "Department Dashboard", "Attendance", "University Application", "University Manager",
	}
	staffReadOnly = []string{"dashboard", "Accounts"}

	studentDefaults = map[string]store.AppPermissions{
		"LMS":              readOnly,
		"Discuss":          fullAccess,
		"Visa Application": fullAccess,
		"Documents":        fullAccess,
		"Accounts":         fullAccess,
		"Quotations":       fullAccess,
		"My Profile":       fullAccess,
	}
)

// All returns every catalog entry in catalog order.
func All() []grid.AppEntry {
	out := make([]grid.AppEntry, len(apps))
	copy(out, apps)
	return out
}

func Lookup(name string) (grid.AppEntry, bool) {
	for _, a := range apps {
		if a.Name == name {
			return a, true
		}
	}
	return grid.AppEntry{}, false
}

// DefaultPermissions returns the grants a role starts with.
func DefaultPermissions(role string) map[string]store.AppPermissions {
	out := make(map[string]store.AppPermissions)
	switch auth.NormalizeRole(role) {
	case auth.RoleAdmin:
		for _, a := range apps {
			out[a.Name] = fullAccess
		}
	case auth.RoleStaff:
		for _, name := range staffFullAccess {
			out[name] = fullAccess
		}
		for _, name := range staffReadOnly {
			out[name] = readOnly
		}
	case auth.RoleStudent:
		for name, p := range studentDefaults {
			out[name] = p
		}
	}
	return out
}

// Visible returns the apps a user with role and explicit grants may open,
// in catalog order. Admins see everything; an empty grant set falls back to
// the role defaults.
func Visible(role string, permissions map[string]store.AppPermissions) []grid.AppEntry {
	if auth.NormalizeRole(role) == auth.RoleAdmin {
		return All()
	}
	if len(permissions) == 0 {
		permissions = DefaultPermissions(role)
	}
	out := make([]grid.AppEntry, 0, len(permissions))
	for _, a := range apps {
		if permissions[a.Name].Read {
			out = append(out, a)
		}
	}
	return out
}
