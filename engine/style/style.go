/*
Package style makes sure a document carries the CSS rules for emoji images.

Replacement images have to flow with the text like the characters they
replace. EnsureStyles scans the style sheets of a document and adds an
inline style sheet for images of the emoji class if no rule for them
exists yet.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package style

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/aymerick/douceur/css"
	"github.com/aymerick/douceur/parser"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core"
	"github.com/npillmayer/wemoji/engine/dom"
	"golang.org/x/net/html"
)

// tracer traces with key 'wemoji.style'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.style")
}

// ElementID is the id of the style element added by EnsureStyles.
const ElementID = "wp-emoji-styles-inline-css"

const emojiDeclarations = `
	display: inline !important;
	border: none !important;
	box-shadow: none !important;
	height: 1em !important;
	width: 1em !important;
	margin: 0 0.07em !important;
	vertical-align: -0.1em !important;
	background: none !important;
	padding: 0 !important;`

var styleElements = cascadia.MustCompile("style")

// Stylesheet creates the style sheet for emoji images of class className.
func Stylesheet(className string) (*css.Stylesheet, error) {
	decls, err := parser.ParseDeclarations(emojiDeclarations)
	if err != nil {
		return nil, core.WrapError(err, core.EINTERNAL, "emoji style declarations broken")
	}
	rule := css.NewRule(css.QualifiedRule)
	rule.Selectors = []string{"img.wp-smiley"}
	if className != "wp-smiley" {
		rule.Selectors = append(rule.Selectors, "img."+className)
	}
	rule.Prelude = strings.Join(rule.Selectors, ", ")
	rule.Declarations = decls
	sheet := css.NewStylesheet()
	sheet.Rules = append(sheet.Rules, rule)
	return sheet, nil
}

// HasEmojiRule checks if any style element of the document contains a
// rule for images of class className.
func HasEmojiRule(doc *dom.Document, className string) bool {
	if doc == nil || doc.Root() == nil {
		return false
	}
	want := "img." + strings.ToLower(className)
	for _, el := range styleElements.MatchAll(doc.Root()) {
		sheet, err := parser.Parse(textContent(el))
		if err != nil {
			tracer().Infof("ignoring broken style sheet: %v", err)
			continue
		}
		if hasSelector(sheet.Rules, want) {
			return true
		}
	}
	return false
}

func hasSelector(rules []*css.Rule, want string) bool {
	for _, rule := range rules {
		for _, sel := range rule.Selectors {
			if normalize(sel) == want {
				return true
			}
		}
		if hasSelector(rule.Rules, want) {
			return true
		}
	}
	return false
}

func normalize(selector string) string {
	return strings.ToLower(strings.Join(strings.Fields(selector), ""))
}

func textContent(el *html.Node) string {
	var b strings.Builder
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}

// EnsureStyles adds the emoji style sheet to the head of doc, unless the
// document already has a rule for images of class className. It returns
// true if a style element has been added.
func EnsureStyles(doc *dom.Document, className string) (bool, error) {
	if doc == nil {
		return false, core.Error(core.EMISSING, "no document to style")
	}
	if className == "" {
		className = "emoji"
	}
	if HasEmojiRule(doc, className) {
		tracer().Debugf("document already styles img.%s", className)
		return false, nil
	}
	head := doc.Head()
	if head == nil {
		return false, core.Error(core.EMISSING, "document has no head for emoji styles")
	}
	sheet, err := Stylesheet(className)
	if err != nil {
		return false, err
	}
	el := dom.CreateElement("style")
	el.Attr = append(el.Attr, html.Attribute{Key: "id", Val: ElementID})
	el.AppendChild(dom.CreateTextNode("\n" + sheet.String()))
	if err := doc.AppendChild(head, el); err != nil {
		return false, err
	}
	tracer().Infof("added emoji styles for img.%s", className)
	return true, nil
}
