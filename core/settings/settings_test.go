package settings

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/npillmayer/wemoji/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestValidate(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.settings")
	defer teardown()
	//
	_, err := New("", ".png")
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = New("https://example.com/emoji", "")
	assert.Equal(t, core.EMISSING, core.Code(err))
	_, err = New("https://example.com/emoji", "png")
	assert.Equal(t, core.EINVALID, core.Code(err))
	s, err := New(" https://example.com/emoji/ ", ".svg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/emoji/", s.BaseURL)
	assert.Equal(t, ".svg", s.Ext)
}

func TestFromConfig(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.settings")
	defer teardown()
	//
	conf := testconfig.Conf{
		KeyBaseURL: "https://example.com/images/emoji/",
		KeyExt:     ".png",
	}
	s, err := FromConfig(conf)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/images/emoji/", s.BaseURL)
	//
	_, err = FromConfig(testconfig.Conf{})
	assert.Equal(t, core.EMISSING, core.Code(err))
}

func TestLoadFile(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.settings")
	defer teardown()
	//
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := "baseUrl: https://example.com/images/emoji/\next: .png\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	s, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, ".png", s.Ext)
	assert.Equal(t, path, FindFile(path))
	//
	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Equal(t, core.EMISSING, core.Code(err))
	assert.Equal(t, "", FindFile(filepath.Join(dir, "missing.yaml")))
}

func TestFromPage(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.settings")
	defer teardown()
	//
	page := `<html><head>
<script>var x = 1;</script>
<script type="text/javascript">
window._wpemojiSettings = {"baseUrl":"https:\/\/s.w.org\/images\/core\/emoji\/72x72\/","ext":".png","source":{"concatemoji":"x.js?a={b}"}};
</script></head><body><p>hi</p></body></html>`
	root, err := html.Parse(strings.NewReader(page))
	require.NoError(t, err)
	s, err := FromPage(root)
	require.NoError(t, err)
	assert.Equal(t, "https://s.w.org/images/core/emoji/72x72/", s.BaseURL)
	assert.Equal(t, ".png", s.Ext)
}

func TestFromPageWithoutSettings(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "wemoji.settings")
	defer teardown()
	//
	root, err := html.Parse(strings.NewReader(`<p>no scripts</p>`))
	require.NoError(t, err)
	_, err = FromPage(root)
	assert.Equal(t, core.EMISSING, core.Code(err))
	//
	_, ok := settingsObject(`var _wpemojiSettingsX = {"a":1}`)
	assert.False(t, ok)
	obj, ok := settingsObject(`_wpemojiSettings={"a":"}"}; foo()`)
	assert.True(t, ok)
	assert.Equal(t, `{"a":"}"}`, obj)
}
