package watch

import (
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wemoji/core/settings"
	"github.com/npillmayer/wemoji/engine/dom"
	"github.com/npillmayer/wemoji/engine/probe"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const grinning = "\U0001F600"

func noCanvas(w, h int) (probe.Surface, error) {
	return nil, probe.ErrNoContext
}

func newPage(t *testing.T, opts ...dom.PageOption) *dom.Page {
	doc, err := dom.Parse(strings.NewReader("<html><head></head><body><p>Hi " + grinning + "</p></body></html>"))
	require.NoError(t, err)
	return dom.NewPage(doc, opts...)
}

func emojiSettings(t *testing.T) *settings.Settings {
	s, err := settings.New("https://cdn.test/emoji/", ".svg")
	require.NoError(t, err)
	return s
}

func bodyHTML(t *testing.T, pg *dom.Page) string {
	var b strings.Builder
	require.NoError(t, html.Render(&b, pg.Document().Body()))
	return b.String()
}

func TestWatcherReplacesOnLoadAndOnInsert(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.watch")
	defer teardown()
	//
	pg := newPage(t)
	w := Init(pg, emojiSettings(t), WithCanvas(noCanvas))
	require.Equal(t, Active, w.State())
	assert.False(t, w.Capabilities().SupportsEmoji)
	assert.False(t, w.Capabilities().SupportsFlagEmoji)
	assert.True(t, w.Rewriter().Active())
	//
	pg.Load()
	pg.RunUntilIdle()
	assert.True(t, w.Observing())
	assert.Contains(t, bodyHTML(t, pg), `src="https://cdn.test/emoji/1f600.svg"`)
	// element inserted later
	pg.Post(func() {
		doc := pg.Document()
		div := dom.CreateElement("div")
		div.AppendChild(dom.CreateTextNode("flag " + "\U0001F1EC\U0001F1E7"))
		require.NoError(t, doc.AppendChild(doc.Body(), div))
	})
	pg.RunUntilIdle()
	assert.Contains(t, bodyHTML(t, pg), `src="https://cdn.test/emoji/1f1ec-1f1e7.svg"`)
	// text node inserted later: its parent gets rewritten
	pg.Post(func() {
		doc := pg.Document()
		require.NoError(t, doc.AppendChild(doc.Body().FirstChild, dom.CreateTextNode(" and "+"\U0001F680")))
	})
	pg.RunUntilIdle()
	out := bodyHTML(t, pg)
	assert.Contains(t, out, `src="https://cdn.test/emoji/1f680.svg"`)
	assert.Equal(t, 3, strings.Count(out, "<img "))
}

func TestWatcherWithoutMutationObserver(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.watch")
	defer teardown()
	//
	pg := newPage(t, dom.WithoutMutationObserver())
	w := Init(pg, emojiSettings(t), WithCapabilities(probe.Capabilities{}))
	require.Equal(t, Active, w.State())
	pg.Load()
	pg.RunUntilIdle()
	assert.False(t, w.Observing())
	assert.Contains(t, bodyHTML(t, pg), "1f600.svg")
	pg.Post(func() {
		doc := pg.Document()
		require.NoError(t, doc.SetInnerHTML(doc.Body().FirstChild, "late "+"\U0001F680"))
	})
	pg.RunUntilIdle()
	out := bodyHTML(t, pg)
	assert.Contains(t, out, "late "+"\U0001F680")
	assert.NotContains(t, out, "1f680.svg")
}

func TestWatcherSkippedWithoutSettingsOrLibrary(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.watch")
	defer teardown()
	//
	for _, w := range []*Watcher{
		Init(newPage(t), nil, WithCanvas(noCanvas)),
		Init(newPage(t), emojiSettings(t), WithLibrary(nil), WithCanvas(noCanvas)),
		Init(nil, emojiSettings(t), WithCanvas(noCanvas)),
	} {
		assert.Equal(t, Inactive, w.State())
		assert.False(t, w.Capabilities().SupportsEmoji)
		assert.False(t, w.Capabilities().SupportsFlagEmoji)
		assert.False(t, w.Rewriter().Active())
		assert.Equal(t, grinning, w.Rewriter().String(grinning))
	}
	pg := newPage(t)
	before := bodyHTML(t, pg)
	Init(pg, nil)
	pg.Load()
	pg.RunUntilIdle()
	assert.Equal(t, before, bodyHTML(t, pg), "no listeners may have been registered")
}

func TestWatcherOnCapableHost(t *testing.T) {
	pg := newPage(t)
	caps := probe.Capabilities{SupportsEmoji: true, SupportsFlagEmoji: true}
	w := Init(pg, emojiSettings(t), WithCapabilities(caps))
	assert.Equal(t, Active, w.State())
	before := bodyHTML(t, pg)
	pg.Load()
	pg.RunUntilIdle()
	assert.Equal(t, before, bodyHTML(t, pg))
}

func TestStateNames(t *testing.T) {
	assert.Equal(t, "uninitialized", Uninitialized.String())
	assert.Equal(t, "active", Active.String())
	assert.Equal(t, "inactive", Inactive.String())
}

func TestWatcherClassName(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.watch")
	defer teardown()
	//
	pg := newPage(t)
	w := Init(pg, emojiSettings(t), WithCapabilities(probe.Capabilities{}), WithClassName("wp-smiley"))
	require.Equal(t, Active, w.State())
	pg.Load()
	pg.RunUntilIdle()
	assert.Contains(t, bodyHTML(t, pg), `class="wp-smiley"`)
}
