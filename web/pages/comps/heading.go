package comps

import "github.com/rohanthewiz/element"

// Heading is a plain top-level page heading
type Heading struct {
	Title string
}

func (h Heading) Render(b *element.Builder) (x any) {
	b.H1().T(h.Title)
	return
}
