/*
Package settings holds the replacement-image settings a host page supplies:
the base URL replacement images are fetched from and the file extension to use.

Settings may come from an application configuration (package schuko), from a
YAML settings file, or from the inline script a page carries, i.e.

	window._wpemojiSettings = {"baseUrl":"https://…/72x72/","ext":".png"};

Settings are immutable after they have been created.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package settings

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/schuko"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core"
	"golang.org/x/net/html"
	"gopkg.in/yaml.v3"
)

// tracer traces with key 'wemoji.settings'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.settings")
}

// Configuration keys used by FromConfig.
const (
	KeyBaseURL = "emoji.baseurl"
	KeyExt     = "emoji.ext"
)

// AppName is the sub-directory of the XDG config home we search for settings files.
const AppName = "wemoji"

// DefaultFile is the name of the settings file searched for by FindFile.
const DefaultFile = "config.yaml"

// PageVariable is the name of the global a host page uses to hand over settings.
const PageVariable = "_wpemojiSettings"

// ErrNoSettings is returned if a source does not carry any settings.
var ErrNoSettings = errors.New("no emoji settings")

// Settings tell where replacement images are fetched from.
type Settings struct {
	BaseURL string `yaml:"baseUrl" json:"baseUrl"`
	Ext     string `yaml:"ext" json:"ext"`
}

// New creates validated settings.
func New(baseURL, ext string) (*Settings, error) {
	s := &Settings{
		BaseURL: strings.TrimSpace(baseURL),
		Ext:     strings.TrimSpace(ext),
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks that a base URL is present and that the extension looks
// like a file extension.
func (s *Settings) Validate() error {
	if s == nil || s.BaseURL == "" {
		return core.WrapError(ErrNoSettings, core.EMISSING, "emoji settings: base URL missing")
	}
	if s.Ext == "" {
		return core.WrapError(ErrNoSettings, core.EMISSING, "emoji settings: extension missing")
	}
	if !strings.HasPrefix(s.Ext, ".") || strings.ContainsAny(s.Ext, "/?#") {
		return core.Error(core.EINVALID, "emoji settings: invalid extension %q", s.Ext)
	}
	return nil
}

func (s *Settings) String() string {
	if s == nil {
		return "<no settings>"
	}
	return s.BaseURL + "{icon}" + s.Ext
}

// FromConfig reads settings from an application configuration, using keys
// KeyBaseURL and KeyExt.
func FromConfig(conf schuko.Configuration) (*Settings, error) {
	if conf == nil || !conf.IsSet(KeyBaseURL) {
		return nil, core.WrapError(ErrNoSettings, core.EMISSING,
			"configuration does not contain key %s", KeyBaseURL)
	}
	return New(conf.GetString(KeyBaseURL), conf.GetString(KeyExt))
}

// LoadFile reads settings from a YAML file.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.WrapError(err, core.EMISSING, "settings file not found: %s", path)
		}
		return nil, err
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, core.WrapError(err, core.EINVALID, "settings file cannot be parsed: %s", path)
	}
	tracer().Debugf("loaded settings %s from %s", s.String(), path)
	return New(s.BaseURL, s.Ext)
}

// FindFile searches for a settings file. An explicitly given path wins, then
// the XDG config home, then the current working directory.
// Returns the empty string if no file can be found.
func FindFile(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}
	if p, err := xdg.SearchConfigFile(filepath.Join(AppName, DefaultFile)); err == nil {
		return p
	}
	if cwd, err := os.Getwd(); err == nil {
		p := filepath.Join(cwd, "."+AppName+".yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var scripts = cascadia.MustCompile("script")

// FromPage extracts the settings a page hands over in an inline script.
func FromPage(root *html.Node) (*Settings, error) {
	if root == nil {
		return nil, core.WrapError(ErrNoSettings, core.EMISSING, "no document")
	}
	for _, script := range scripts.MatchAll(root) {
		if script.FirstChild == nil || script.FirstChild.Type != html.TextNode {
			continue
		}
		obj, ok := settingsObject(script.FirstChild.Data)
		if !ok {
			continue
		}
		var s Settings
		if err := json.Unmarshal([]byte(obj), &s); err != nil {
			tracer().Errorf("inline emoji settings cannot be decoded: %v", err)
			return nil, core.WrapError(err, core.EINVALID, "inline emoji settings cannot be decoded")
		}
		return New(s.BaseURL, s.Ext)
	}
	return nil, core.WrapError(ErrNoSettings, core.EMISSING, "page does not define %s", PageVariable)
}

// settingsObject locates the object literal assigned to PageVariable.
func settingsObject(js string) (string, bool) {
	at := strings.Index(js, PageVariable)
	if at < 0 {
		return "", false
	}
	rest := js[at+len(PageVariable):]
	eq := strings.IndexByte(rest, '=')
	if eq < 0 || strings.TrimSpace(rest[:eq]) != "" {
		return "", false
	}
	rest = strings.TrimLeft(rest[eq+1:], " \t\r\n")
	if !strings.HasPrefix(rest, "{") {
		return "", false
	}
	depth, inString, escaped := 0, false, false
	for i, c := range rest {
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth == 0 {
				return rest[:i+1], true
			}
		}
	}
	return "", false
}
