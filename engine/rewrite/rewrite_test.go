package rewrite

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wemoji/core/settings"
	"github.com/npillmayer/wemoji/engine/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const (
	grinning = "\U0001F600"
	gbFlag   = "\U0001F1EC\U0001F1E7"
)

var (
	noEmoji      = probe.Capabilities{}
	emojiNoFlags = probe.Capabilities{SupportsEmoji: true}
	everything   = probe.Capabilities{SupportsEmoji: true, SupportsFlagEmoji: true}
)

func testSettings(t *testing.T) *settings.Settings {
	s, err := settings.New("https://s.w.org/images/core/emoji/72x72/", ".png")
	require.NoError(t, err)
	return s
}

func TestFilterExempt(t *testing.T) {
	for _, caps := range []probe.Capabilities{noEmoji, emojiNoFlags, everything} {
		f := Filter(caps)
		for _, icon := range []string{"a9", "ae", "2122", "2194", "2660", "2663", "2665", "2666"} {
			_, ok := f(icon, "base", ".png")
			assert.False(t, ok, "icon %s must never be replaced (%s)", icon, caps)
		}
	}
}

func TestFilterFlagsOnly(t *testing.T) {
	f := Filter(emojiNoFlags)
	src, ok := f("1f1ec-1f1e7", "https://x/", ".svg")
	assert.True(t, ok)
	assert.Equal(t, "https://x/1f1ec-1f1e7.svg", src)
	_, ok = f("1f600", "https://x/", ".svg")
	assert.False(t, ok)
	_, ok = f("1f1ec", "https://x/", ".svg")
	assert.False(t, ok, "a single regional indicator is not a flag")
}

func TestFilterNoEmoji(t *testing.T) {
	f := Filter(noEmoji)
	for _, icon := range []string{"1f600", "1f1ec-1f1e7", "2764", "1f468-200d-1f469-200d-1f467"} {
		src, ok := f(icon, "base", ".png")
		assert.True(t, ok)
		assert.Equal(t, "base/"+icon+".png", src)
	}
}

func TestIsFlag(t *testing.T) {
	assert.True(t, IsFlag("1f1e6-1f1ff"))
	assert.True(t, IsFlag("1f1f0-1f1f7"))
	assert.False(t, IsFlag("1f1e5-1f1e6"))
	assert.False(t, IsFlag("1f1ec-1f1e7-1f1eb"))
	assert.False(t, IsFlag("1f600"))
}

func TestRewriteStringCases(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.rewrite")
	defer teardown()
	//
	s := testSettings(t)
	rw := New(Twemoji, emojiNoFlags, s)
	require.True(t, rw.Active())
	out := rw.String("Hi " + grinning + " from " + gbFlag)
	assert.Contains(t, out, "Hi "+grinning+" from ")
	assert.Contains(t, out, `src="https://s.w.org/images/core/emoji/72x72/1f1ec-1f1e7.png"`)
	assert.NotContains(t, out, "1f600.png")
	//
	rw = New(Twemoji, noEmoji, s)
	out = rw.String("Hi " + grinning + " from " + gbFlag + " ©")
	assert.Contains(t, out, `alt="`+grinning+`" src="https://s.w.org/images/core/emoji/72x72/1f600.png"`)
	assert.Contains(t, out, "1f1ec-1f1e7.png")
	assert.True(t, strings.HasSuffix(out, " ©"))
	assert.Equal(t, out, rw.String(out), "rewriting must be idempotent")
	//
	plain := "<p>No emoji in here, &amp; none will appear.</p>"
	assert.Equal(t, plain, rw.String(plain))
}

func TestRewriteClassName(t *testing.T) {
	rw := New(Twemoji, noEmoji, testSettings(t))
	out := rw.String(grinning, WithClassName("wp-smiley"))
	assert.True(t, strings.HasPrefix(out, `<img class="wp-smiley" draggable="false"`), out)
	out = rw.String(grinning, WithClassName(""))
	assert.True(t, strings.HasPrefix(out, `<img class="emoji"`), out)
}

func TestRewriteNode(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.rewrite")
	defer teardown()
	//
	doc, err := html.Parse(strings.NewReader("<p>" + grinning + " ♥ " + gbFlag + "</p>"))
	require.NoError(t, err)
	rw := New(Twemoji, noEmoji, testSettings(t))
	assert.Same(t, doc, rw.Node(doc))
	first := render(t, doc)
	assert.Equal(t, 2, strings.Count(first, "<img "))
	assert.Contains(t, first, " ♥ ")
	rw.Node(doc)
	assert.Equal(t, first, render(t, doc))
}

func TestInactiveRewriterIsNoOp(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.rewrite")
	defer teardown()
	//
	doc, err := html.Parse(strings.NewReader("<p>" + grinning + "</p>"))
	require.NoError(t, err)
	before := render(t, doc)
	s := testSettings(t)
	for _, rw := range []*Rewriter{
		New(Twemoji, everything, s),
		New(nil, noEmoji, s),
		New(Twemoji, noEmoji, nil),
		nil,
	} {
		assert.False(t, rw.Active())
		assert.Same(t, doc, rw.Node(doc))
		assert.Equal(t, before, render(t, doc))
		assert.Equal(t, grinning, rw.String(grinning))
	}
}

func render(t *testing.T, n *html.Node) string {
	var b strings.Builder
	require.NoError(t, html.Render(&b, n))
	return b.String()
}

func TestStringLeavesTextSymbolsAlone(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.rewrite")
	defer teardown()
	//
	rw := New(Twemoji, noEmoji, testSettings(t))
	require.True(t, rw.Active())
	symbols := "★★★☆ ♪ ✓ done ➔ next"
	assert.Equal(t, symbols, rw.String(symbols))
	//
	out := rw.String("✓ ✔ ❤")
	assert.Contains(t, out, "✓ <img ")
	assert.Contains(t, out, `src="https://s.w.org/images/core/emoji/72x72/2714.png"`)
	assert.Contains(t, out, `src="https://s.w.org/images/core/emoji/72x72/2764.png"`)
	assert.NotContains(t, out, "2713.png")
}
