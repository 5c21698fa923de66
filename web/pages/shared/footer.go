package shared

import (
	_ "embed"

	"starterkit/styles"

	"github.com/rohanthewiz/element"
)

//go:embed css/footer.css
var footerCSS string

// FooterStyles is the compiled footer sheet
var FooterStyles = styles.MustCompile("footer", footerCSS)

// Footer is the site footer shown below every page body
type Footer struct {
	Inserter styles.Inserter
}

func (f Footer) Render(b *element.Builder) any {
	if f.Inserter != nil {
		f.Inserter.Insert(FooterStyles)
	}

	b.Footer("class", FooterStyles.Class("root")).R(
		b.Div("class", FooterStyles.Class("container")).R(
			b.Span("class", FooterStyles.Class("text")).T("&copy; Starter Kit"),
		),
	)
	return nil
}
