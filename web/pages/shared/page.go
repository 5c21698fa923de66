// Package shared contains the document shell and the components every page shares.
package shared

import (
	"starterkit/styles"

	"github.com/rohanthewiz/element"
)

// Page describes the document a page body is served in
type Page struct {
	Title       string
	Description string
}

// Banner returns the site banner bound to the request's collector
func (p Page) Banner(css styles.Inserter) Banner {
	return Banner{Title: p.Title, Inserter: css}
}

// Footer returns the site footer bound to the request's collector
func (p Page) Footer(css styles.Inserter) Footer {
	return Footer{Inserter: css}
}

// Render builds the whole document around body.
// The body and chrome are rendered first so every sheet they use is in css
// by the time the head is written.
func (p Page) Render(css *styles.Collector, body element.Component) string {
	inner := element.NewBuilder()
	element.RenderComponents(inner, p.Banner(css), body, p.Footer(css))
	content := inner.String()

	b := element.NewBuilder()
	b.Html().R(
		b.Head().R(
			b.Meta("charset", "UTF-8"),
			b.Meta("name", "viewport", "content", "width=device-width, initial-scale=1.0"),
			b.Title().T(p.Title),
			b.Wrap(func() {
				if p.Description != "" {
					b.Meta("name", "description", "content", p.Description)
				}
			}),
			b.Link("rel", "stylesheet", "href", "/static/css/base.css"),
			b.Style("id", "css").T(css.CSS()),
		),
		b.Body().R(
			b.Div("id", "app").T(content),
		),
	)

	return b.String()
}
