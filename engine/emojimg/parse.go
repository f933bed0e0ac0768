package emojimg

import (
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/emirpasic/gods/sets/hashset"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Callback decides about the image source for an icon. If it returns false,
// the emoji is left in place.
type Callback func(icon string, o Options) (string, bool)

// Options control a parse run.
type Options struct {
	Base      string   // prefix of image sources
	Ext       string   // image file extension, including the dot
	ClassName string   // class attribute of generated images
	Callback  Callback // computes image sources; DefaultCallback if nil
}

// Defaults for empty option fields.
const (
	DefaultClassName = "emoji"
	DefaultExt       = ".png"
)

// DefaultCallback returns Base + icon + Ext.
func DefaultCallback(icon string, o Options) (string, bool) {
	return o.Base + icon + o.Ext, true
}

func (o Options) withDefaults() Options {
	if o.ClassName == "" {
		o.ClassName = DefaultClassName
	}
	if o.Ext == "" {
		o.Ext = DefaultExt
	}
	if o.Callback == nil {
		o.Callback = DefaultCallback
	}
	return o
}

// Elements whose text content is never parsed.
var skippedElements = []string{
	"iframe", "noframes", "noscript", "script", "select", "style", "textarea",
}

var skipSelector = cascadia.MustCompile(strings.Join(skippedElements, ","))

var skippedTags = func() *hashset.Set {
	set := hashset.New()
	for _, name := range skippedElements {
		set.Add(name)
	}
	return set
}()

// ParseNode replaces emoji in all text nodes below n by image elements.
// Text nodes are replaced in place; n itself is returned.
func ParseNode(n *html.Node, o Options) *html.Node {
	if n == nil {
		return n
	}
	o = o.withDefaults()
	var texts []*html.Node
	collectTextNodes(n, &texts)
	count := 0
	for _, t := range texts {
		count += replaceTextNode(t, o)
	}
	if count > 0 {
		tracer().Debugf("replaced %d emoji below <%s>", count, n.Data)
	}
	return n
}

func collectTextNodes(n *html.Node, texts *[]*html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			*texts = append(*texts, c)
		case html.ElementNode:
			if skipSelector.Match(c) {
				continue
			}
			collectTextNodes(c, texts)
		}
	}
}

// replaceTextNode splits t into text nodes and images. It returns the
// number of emoji replaced.
func replaceTextNode(t *html.Node, o Options) int {
	matches := Find(t.Data)
	if len(matches) == 0 || t.Parent == nil {
		return 0
	}
	var nodes []*html.Node
	last, count := 0, 0
	for _, m := range matches {
		src, ok := o.Callback(m.Icon, o)
		if !ok || src == "" {
			continue
		}
		if gap := t.Data[last:m.Start]; gap != "" {
			nodes = append(nodes, &html.Node{Type: html.TextNode, Data: gap})
		}
		nodes = append(nodes, imageNode(m.Text, src, o.ClassName))
		last = m.End
		count++
	}
	if count == 0 {
		return 0
	}
	if last < len(t.Data) {
		nodes = append(nodes, &html.Node{Type: html.TextNode, Data: t.Data[last:]})
	}
	parent := t.Parent
	for _, node := range nodes {
		parent.InsertBefore(node, t)
	}
	parent.RemoveChild(t)
	return count
}

func imageNode(alt, src, class string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Img,
		Data:     "img",
		Attr: []html.Attribute{
			{Key: "class", Val: class},
			{Key: "draggable", Val: "false"},
			{Key: "alt", Val: alt},
			{Key: "src", Val: src},
		},
	}
}

// ParseString replaces emoji in an HTML string by image tags.
// Only text outside of tags and outside of skipped elements is changed;
// everything else is copied unchanged. If no emoji are replaced, s is
// returned as is.
func ParseString(s string, o Options) string {
	if s == "" {
		return s
	}
	o = o.withDefaults()
	var out strings.Builder
	z := html.NewTokenizer(strings.NewReader(s))
	skipDepth, count := 0, 0
	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			if z.Err() != io.EOF {
				tracer().Errorf("cannot tokenize HTML: %v", z.Err())
				return s
			}
			break
		}
		raw := z.Raw()
		if tt == html.TextToken && skipDepth == 0 {
			if text, n := replaceInText(string(raw), o); n > 0 {
				out.WriteString(text)
				count += n
				continue
			}
		}
		out.Write(raw) // before TagName, which lower-cases the buffer
		switch tt {
		case html.StartTagToken:
			if skippedTags.Contains(tagName(z)) {
				skipDepth++
			}
		case html.EndTagToken:
			if skipDepth > 0 && skippedTags.Contains(tagName(z)) {
				skipDepth--
			}
		}
	}
	if count == 0 {
		return s
	}
	tracer().Debugf("replaced %d emoji in string", count)
	return out.String()
}

func tagName(z *html.Tokenizer) string {
	name, _ := z.TagName()
	return string(name)
}

func replaceInText(text string, o Options) (string, int) {
	matches := Find(text)
	if len(matches) == 0 {
		return text, 0
	}
	var b strings.Builder
	last, count := 0, 0
	for _, m := range matches {
		src, ok := o.Callback(m.Icon, o)
		if !ok || src == "" {
			continue
		}
		b.WriteString(text[last:m.Start])
		b.WriteString(`<img class="`)
		b.WriteString(html.EscapeString(o.ClassName))
		b.WriteString(`" draggable="false" alt="`)
		b.WriteString(html.EscapeString(m.Text))
		b.WriteString(`" src="`)
		b.WriteString(html.EscapeString(src))
		b.WriteString(`"/>`)
		last = m.End
		count++
	}
	b.WriteString(text[last:])
	return b.String(), count
}
