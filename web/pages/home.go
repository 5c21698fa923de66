// Package pages contains the page views served by the application.
package pages

import (
	_ "embed"

	"starterkit/styles"
	"starterkit/web/pages/comps"

	"github.com/rohanthewiz/element"
)

// HomeHeading is the fixed text of the home page heading
const HomeHeading = "This is our Home Page"

//go:embed css/home.css
var homeCSS string

// HomeStyles is the compiled home sheet, built once when the package loads
var HomeStyles = styles.MustCompile("home", homeCSS)

// Home renders the home page fragment: an outer root container, an inner
// content container and the page heading.
type Home struct {
	Styles   *styles.Sheet
	Inserter styles.Inserter
}

// NewHome binds the home sheet to the caller's style collector
func NewHome(ins styles.Inserter) Home {
	return Home{Styles: HomeStyles, Inserter: ins}
}

// Render registers the home sheet and writes the fragment
func (h Home) Render(b *element.Builder) (x any) {
	if h.Inserter != nil {
		h.Inserter.Insert(h.Styles)
	}

	b.Div("class", h.Styles.Class("root")).R(
		b.Div("class", h.Styles.Class("container")).R(
			element.RenderComponents(b, comps.Heading{Title: HomeHeading}),
		),
	)
	return
}
