package shared

import (
	_ "embed"

	"starterkit/styles"

	"github.com/rohanthewiz/element"
)

//go:embed css/banner.css
var bannerCSS string

// BannerStyles is the compiled banner sheet
var BannerStyles = styles.MustCompile("banner", bannerCSS)

// Banner is the site header shown above every page body
type Banner struct {
	Title    string
	Inserter styles.Inserter
}

// Render registers the banner sheet and writes the header
func (b Banner) Render(builder *element.Builder) any {
	if b.Inserter != nil {
		b.Inserter.Insert(BannerStyles)
	}

	builder.Header("class", BannerStyles.Class("root")).R(
		builder.Div("class", BannerStyles.Class("container")).R(
			builder.A("class", BannerStyles.Class("brand"), "href", "/").T(b.Title),
		),
	)
	return nil
}
