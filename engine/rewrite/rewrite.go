/*
Package rewrite replaces emoji by images if the host cannot render them.

A Rewriter is created from the capabilities found by a probe and from the
emoji settings of a page. It delegates the work to an emoji image library
(package emojimg by default), but consults a filter for every emoji found:
some symbols are never replaced, and if a host renders emoji but no flags,
only flags are replaced.

If replacement is not necessary, or if the rewriter lacks a library or
settings, every call returns its input untouched.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package rewrite

import (
	"regexp"
	"strings"

	"github.com/emirpasic/gods/sets/hashset"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core/settings"
	"github.com/npillmayer/wemoji/engine/emojimg"
	"github.com/npillmayer/wemoji/engine/probe"
	"golang.org/x/net/html"
)

// tracer traces with key 'wemoji.rewrite'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.rewrite")
}

// DefaultClassName is the class attribute of replacement images.
const DefaultClassName = "emoji"

// Library is an emoji to image replacement library.
type Library interface {
	ParseNode(n *html.Node, o emojimg.Options) *html.Node
	ParseString(s string, o emojimg.Options) string
}

type twemoji struct{}

func (twemoji) ParseNode(n *html.Node, o emojimg.Options) *html.Node {
	return emojimg.ParseNode(n, o)
}

func (twemoji) ParseString(s string, o emojimg.Options) string {
	return emojimg.ParseString(s, o)
}

// Twemoji is the library implemented by package emojimg.
var Twemoji Library = twemoji{}

// Rewriter replaces emoji in nodes or HTML strings.
// A Rewriter is immutable and may be shared.
type Rewriter struct {
	lib      Library
	caps     probe.Capabilities
	settings *settings.Settings
	filter   FilterFunc
}

// New creates a rewriter. lib or s may be nil, resulting in a rewriter
// which never changes anything.
func New(lib Library, caps probe.Capabilities, s *settings.Settings) *Rewriter {
	rw := &Rewriter{
		lib:      lib,
		caps:     caps,
		settings: s,
		filter:   Filter(caps),
	}
	tracer().Debugf("rewriter created: %s, settings %s, active=%v", caps, s, rw.Active())
	return rw
}

// Active is true if the rewriter has a library and settings and the host
// needs replacement images.
func (rw *Rewriter) Active() bool {
	return rw != nil && rw.lib != nil && rw.settings != nil && rw.caps.ReplaceEmoji()
}

// Capabilities returns the capabilities the rewriter has been created with.
func (rw *Rewriter) Capabilities() probe.Capabilities {
	return rw.caps
}

// Option changes a single rewrite call.
type Option func(*emojimg.Options)

// WithClassName sets the class attribute of replacement images.
// An empty name keeps the default.
func WithClassName(name string) Option {
	return func(o *emojimg.Options) {
		if name != "" {
			o.ClassName = name
		}
	}
}

// Node replaces emoji below n in place and returns n.
func (rw *Rewriter) Node(n *html.Node, opts ...Option) *html.Node {
	if n == nil || !rw.Active() {
		return n
	}
	return rw.lib.ParseNode(n, rw.options(opts))
}

// String replaces emoji in an HTML string. If nothing is replaced, s is
// returned unchanged.
func (rw *Rewriter) String(s string, opts ...Option) string {
	if s == "" || !rw.Active() {
		return s
	}
	return rw.lib.ParseString(s, rw.options(opts))
}

func (rw *Rewriter) options(opts []Option) emojimg.Options {
	o := emojimg.Options{
		Base:      rw.settings.BaseURL,
		Ext:       rw.settings.Ext,
		ClassName: DefaultClassName,
	}
	for _, opt := range opts {
		opt(&o)
	}
	o.Callback = func(icon string, lo emojimg.Options) (string, bool) {
		return rw.filter(icon, lo.Base, lo.Ext)
	}
	return o
}

// --- Filter ----------------------------------------------------------------

// FilterFunc decides about replacing an emoji. It returns the image source
// for icon, or false to leave the emoji alone.
type FilterFunc func(icon, base, ext string) (string, bool)

// Symbols commonly entered as characters in rich text editors:
// ©, ®, ™, ↔ and the card suits ♠ ♣ ♥ ♦.
var exempt = hashset.New("a9", "ae", "2122", "2194", "2660", "2663", "2665", "2666")

var regionalIndicatorPair = regexp.MustCompile(`^1f1(?:e[6-9a-f]|f[0-9a-f])-1f1(?:e[6-9a-f]|f[0-9a-f])$`)

// IsExempt is true for icons which are never replaced.
func IsExempt(icon string) bool {
	return exempt.Contains(icon)
}

// IsFlag is true for icons of regional indicator pairs.
func IsFlag(icon string) bool {
	return regionalIndicatorPair.MatchString(icon)
}

// Filter returns the filter for a host with capabilities caps.
// Image sources are built as base + "/" + icon + ext, with exactly one
// slash between base and icon.
func Filter(caps probe.Capabilities) FilterFunc {
	return func(icon, base, ext string) (string, bool) {
		if IsExempt(icon) {
			return "", false
		}
		if !caps.SupportsFlagEmoji && caps.SupportsEmoji && !IsFlag(icon) {
			return "", false
		}
		return strings.TrimRight(base, "/") + "/" + icon + ext, true
	}
}
