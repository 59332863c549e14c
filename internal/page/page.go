package page

import (
	"context"
	"embed"
	"html/template"
	"io"

	"github.com/a-h/templ"

	"qualrole/internal/form"
	"qualrole/internal/goal"
	"qualrole/internal/selection"
)

//go:embed templates/*.html
var templatesFS embed.FS

var homeTmpl = template.Must(
	template.New("home.html").
		Funcs(template.FuncMap{
			"fieldClass": func(s form.State, f string) string {
				if s.HasError(selection.Field(f)) {
					return "field field--error"
				}
				return "field"
			},
			"numberSelected": func(s form.State, n int) bool {
				return s.Filters.Number != nil && *s.Filters.Number == n
			},
		}).
		ParseFS(templatesFS, "templates/*.html"),
)

// Meta is the SEO and Open Graph information of the page.
type Meta struct {
	Title           string
	Description     string
	SiteName        string
	PreviewImageURL string
}

type HomeData struct {
	Meta       Meta
	Categories []string
	Form       form.State
}

func (d HomeData) Numbers() []int {
	out := make([]int, 0, selection.MaxNumber-selection.MinNumber+1)
	for n := selection.MinNumber; n <= selection.MaxNumber; n++ {
		out = append(out, n)
	}
	return out
}

func (d HomeData) Result() *goal.Goal { return d.Form.Result() }

func (d HomeData) NoResult() bool { return d.Form.Phase == form.PhaseNoResultShown }

// ResultName falls back to a placeholder for goals whose name is unset.
func (d HomeData) ResultName() string {
	g := d.Form.Result()
	if g == nil {
		return ""
	}
	if g.Name == "" {
		return "(sem nome)"
	}
	return g.Name
}

// Home renders the whole page for d.
func Home(d HomeData) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		return homeTmpl.ExecuteTemplate(w, "home.html", d)
	})
}
