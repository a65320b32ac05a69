// Package views renders the server-side pages. Pages are html/template
// documents exposed as templ components so handlers render every page the
// same way.
package views

import (
	"embed"
	"html/template"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/lyceum-academy/lyceum/internal/http/viewmodels"
)

//go:embed templates/*.html
var templateFS embed.FS

var funcs = template.FuncMap{
	"itoa":      strconv.Itoa,
	"initials":  Initials,
	"roleLabel": RoleLabel,
}

var (
	base      = template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))
	loginPage = mustPage("templates/login.html")
	appsPage  = mustPage("templates/apps.html")
)

func mustPage(name string) *template.Template {
	return template.Must(template.Must(base.Clone()).ParseFS(templateFS, name))
}

type page struct {
	t    *template.Template
	name string
}

func (p page) Execute(w io.Writer, data any) error {
	return p.t.ExecuteTemplate(w, p.name, data)
}

// template returns the named template; executing it is equivalent to Execute.
func (p page) template() *template.Template {
	return p.t.Lookup(p.name)
}

func Layout(data viewmodels.LayoutData) templ.Component {
	return templ.FromGoHTML(page{t: base, name: "layout"}.template(), struct {
		Layout viewmodels.LayoutData
	}{Layout: data})
}

func LoginPage(data viewmodels.LoginViewData) templ.Component {
	return templ.FromGoHTML(page{t: loginPage, name: "login"}.template(), data)
}

func AppsPage(data viewmodels.AppsViewData) templ.Component {
	return templ.FromGoHTML(page{t: appsPage, name: "layout"}.template(), data)
}

// Initials returns up to two uppercase initials for an avatar.
func Initials(name string) string {
	var out []rune
	for _, field := range strings.Fields(name) {
		for _, r := range field {
			out = append(out, []rune(strings.ToUpper(string(r)))...)
			break
		}
		if len(out) == 2 {
			break
		}
	}
	return string(out)
}

func RoleLabel(role string) string {
	role = strings.TrimSpace(role)
	if role == "" {
		return "Guest"
	}
	return role
}
