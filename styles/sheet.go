// Package styles compiles component style sheets into scoped class names
// and collects the sheets a render actually used.
package styles

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/rohanthewiz/serr"
	"github.com/zeebo/xxh3"
)

// hashLen is the number of hex digits appended to a generated class name
const hashLen = 6

// classSelector matches a class token inside a selector, e.g. ".root" in "div.root > a"
var classSelector = regexp.MustCompile(`\.(-?[_a-zA-Z][_a-zA-Z0-9-]*)`)

// Sheet is a compiled style sheet: its CSS text plus the mapping from the
// logical class names used in source to the generated names used in markup.
// A Sheet is read-only once built.
type Sheet struct {
	id      string
	css     string
	classes map[string]string
}

// NewSheet builds a sheet from an already compiled mapping.
// The mapping is copied so later changes by the caller do not leak in.
func NewSheet(id string, classes map[string]string, cssText string) *Sheet {
	cp := make(map[string]string, len(classes))
	for k, v := range classes {
		cp[k] = v
	}
	return &Sheet{id: id, css: cssText, classes: cp}
}

// ID identifies the sheet for de-duplication
func (s *Sheet) ID() string { return s.id }

// CSS returns the compiled CSS text
func (s *Sheet) CSS() string { return s.css }

// Class returns the generated class name for a logical name.
// Names the sheet never declared come back unchanged.
func (s *Sheet) Class(logical string) string {
	if generated, ok := s.classes[logical]; ok {
		return generated
	}
	return logical
}

// Classes returns a copy of the logical -> generated mapping
func (s *Sheet) Classes() map[string]string {
	cp := make(map[string]string, len(s.classes))
	for k, v := range s.classes {
		cp[k] = v
	}
	return cp
}

// Compile parses source and scopes each class selector to the sheet name,
// the same way a CSS-modules loader does at build time.
func Compile(name, source string) (*Sheet, error) {
	if name == "" {
		return nil, serr.New("sheet name is required")
	}

	sheet, err := parser.Parse(source)
	if err != nil {
		return nil, serr.Wrap(err, "failed to parse style sheet "+name)
	}

	classes := make(map[string]string)
	scopeRules(name, sheet.Rules, classes)

	return &Sheet{id: name, css: sheet.String(), classes: classes}, nil
}

// MustCompile is Compile for sheets embedded at build time
func MustCompile(name, source string) *Sheet {
	s, err := Compile(name, source)
	if err != nil {
		panic(fmt.Sprintf("styles: compile %s: %v", name, err))
	}
	return s
}

// scopeRules rewrites class selectors in place, descending into at-rule blocks
func scopeRules(name string, rules []*css.Rule, classes map[string]string) {
	for _, rule := range rules {
		if rule.Kind == css.AtRule {
			// @keyframes steps are not selectors
			if rule.Name != "@keyframes" {
				scopeRules(name, rule.Rules, classes)
			}
			continue
		}

		for i, sel := range rule.Selectors {
			rule.Selectors[i] = classSelector.ReplaceAllStringFunc(sel, func(tok string) string {
				local := strings.TrimPrefix(tok, ".")
				generated, ok := classes[local]
				if !ok {
					generated = GenerateName(name, local)
					classes[local] = generated
				}
				return "." + generated
			})
		}
		rule.Prelude = strings.Join(rule.Selectors, ", ")
	}
}

// GenerateName derives the scoped class name for a local class in a sheet
func GenerateName(sheetName, local string) string {
	sum := fmt.Sprintf("%016x", xxh3.HashString(sheetName+"."+local))
	return local + "_" + sum[:hashLen]
}
