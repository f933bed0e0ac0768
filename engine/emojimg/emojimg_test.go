package emojimg

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestIcon(t *testing.T) {
	assert.Equal(t, "1f600", Icon("\U0001F600"))
	assert.Equal(t, "2764", Icon("\u2764\uFE0F"))
	assert.Equal(t, "1f1ec-1f1e7", Icon("\U0001F1EC\U0001F1E7"))
	assert.Equal(t, "1f468-200d-1f469-200d-1f467", Icon("\U0001F468\u200D\U0001F469\u200D\U0001F467"))
	assert.Equal(t, "1f3f3-fe0f-200d-1f308", Icon("\U0001F3F3\uFE0F\u200D\U0001F308"))
	assert.Equal(t, "", Icon(""))
}

func TestFind(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.emojimg")
	defer teardown()
	//
	m := Find("Hi \U0001F600!")
	require.Len(t, m, 1)
	assert.Equal(t, Match{Start: 3, End: 7, Text: "\U0001F600", Icon: "1f600"}, m[0])
	//
	m = Find("tea \U0001F1EC\U0001F1E7 and © and \u2764\uFE0F")
	require.Len(t, m, 3)
	assert.Equal(t, "1f1ec-1f1e7", m[0].Icon)
	assert.Equal(t, "a9", m[1].Icon)
	assert.Equal(t, "2764", m[2].Icon)
	assert.Equal(t, "\u2764\uFE0F", m[2].Text)
	//
	m = Find("#\uFE0F\u20E3 but not # or 42")
	require.Len(t, m, 1)
	assert.Equal(t, "23-20e3", m[0].Icon)
	//
	m = Find("\U0001F468\u200D\U0001F469\u200D\U0001F467")
	require.Len(t, m, 1)
	assert.Equal(t, "1f468-200d-1f469-200d-1f467", m[0].Icon)
	//
	m = Find("\u231A\uFE0F o'clock")
	require.Len(t, m, 1)
	assert.Equal(t, "231a", m[0].Icon)
}

func TestFindNothing(t *testing.T) {
	assert.Empty(t, Find(""))
	assert.Empty(t, Find("plain text, no pictures"))
	assert.Empty(t, Find("spades as text: \u2660\uFE0E"), "text presentation must be respected")
}

func TestParseNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.emojimg")
	defer teardown()
	//
	body := parseBody(t, `<p>Hi `+"\U0001F600"+` <script>var s="`+"\U0001F600"+`";</script>`+
		`<textarea>`+"\U0001F600"+`</textarea><b>`+"\U0001F1EC\U0001F1E7"+`</b></p>`)
	opts := Options{Base: "https://cdn.test/72x72/", Ext: ".png"}
	assert.Same(t, body, ParseNode(body, opts))
	expected := `<body><p>Hi <img class="emoji" draggable="false" alt="` + "\U0001F600" +
		`" src="https://cdn.test/72x72/1f600.png"/> <script>var s="` + "\U0001F600" + `";</script>` +
		`<textarea>` + "\U0001F600" + `</textarea><b><img class="emoji" draggable="false" alt="` +
		"\U0001F1EC\U0001F1E7" + `" src="https://cdn.test/72x72/1f1ec-1f1e7.png"/></b></p></body>`
	assert.Equal(t, expected, render(t, body))
	// a second run does not change anything
	ParseNode(body, opts)
	assert.Equal(t, expected, render(t, body))
}

func TestParseNodeWithVeto(t *testing.T) {
	body := parseBody(t, "<p>© 2015 \U0001F600</p>")
	opts := Options{
		Base:      "/img",
		ClassName: "wp-smiley",
		Callback: func(icon string, o Options) (string, bool) {
			if icon == "a9" {
				return "", false
			}
			return o.Base + "/" + icon + o.Ext, true
		},
	}
	ParseNode(body, opts)
	assert.Equal(t, `<body><p>`+"©"+` 2015 <img class="wp-smiley" draggable="false" alt="`+
		"\U0001F600"+`" src="/img/1f600.png"/></p></body>`, render(t, body))
}

func TestParseString(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.emojimg")
	defer teardown()
	//
	opts := Options{Base: "b/"}
	out := ParseString("I \u2764\uFE0F Go", opts)
	assert.Equal(t, `I <img class="emoji" draggable="false" alt="`+"\u2764\uFE0F"+`" src="b/2764.png"/> Go`, out)
	//
	in := `<DIV Class=x>` + "\U0001F600" + `</DIV><SCRIPT>x="` + "\U0001F600" + `"</SCRIPT>`
	out = ParseString(in, opts)
	assert.Equal(t, `<DIV Class=x><img class="emoji" draggable="false" alt="`+"\U0001F600"+
		`" src="b/1f600.png"/></DIV><SCRIPT>x="`+"\U0001F600"+`"</SCRIPT>`, out)
	// idempotent
	assert.Equal(t, out, ParseString(out, opts))
}

func TestParseStringUnchanged(t *testing.T) {
	in := `<P CLASS='a'>no emoji &amp; <!-- comment --> here</P><style>p::after{content:"` + "\U0001F600" + `"}</style>`
	assert.Equal(t, in, ParseString(in, Options{}))
	assert.Equal(t, "", ParseString("", Options{}))
	veto := Options{Callback: func(string, Options) (string, bool) { return "", false }}
	assert.Equal(t, "\U0001F600", ParseString("\U0001F600", veto))
}

// --- Helpers ---------------------------------------------------------------

func parseBody(t *testing.T, fragment string) *html.Node {
	doc, err := html.Parse(strings.NewReader("<html><head></head><body>" + fragment + "</body></html>"))
	require.NoError(t, err)
	body := cascadia.MustCompile("body").MatchFirst(doc)
	require.NotNil(t, body)
	return body
}

func render(t *testing.T, n *html.Node) string {
	var b strings.Builder
	require.NoError(t, html.Render(&b, n))
	return b.String()
}

func TestFindSkipsTextSymbols(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.emojimg")
	defer teardown()
	//
	// star, outlined star, note, check mark, asterisk, ballot box, arrow,
	// pointing hand, pencil, quotation mark, white flag
	for _, s := range []string{"★", "☆", "♪", "✓", "✱", "☐",
		"➔", "☛", "✎", "❝", "⚐"} {
		assert.Empty(t, Find("rated "+s), "U+%04X is not an emoji", []rune(s)[0])
	}
	m := Find("✓ ✔ ☺")
	require.Len(t, m, 2)
	assert.Equal(t, "2714", m[0].Icon)
	assert.Equal(t, "263a", m[1].Icon)
}

func TestFindKeepsCombiningMarksAsText(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.emojimg")
	defer teardown()
	//
	m := Find("\U0001F600\u0301")
	require.Len(t, m, 1)
	assert.Equal(t, Match{Start: 0, End: 4, Text: "\U0001F600", Icon: "1f600"}, m[0])
	out := ParseString("\U0001F600\u0301", Options{Base: "b/"})
	assert.Equal(t, `<img class="emoji" draggable="false" alt="`+"\U0001F600"+`" src="b/1f600.png"/>`+"\u0301", out)
	//
	m = Find("\U0001F44D\U0001F3FD")
	require.Len(t, m, 1)
	assert.Equal(t, "1f44d-1f3fd", m[0].Icon)
}
