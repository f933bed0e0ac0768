/*
Package watch keeps the emoji of a page replaced while the page changes.

Init probes the host once and freezes the resulting capabilities. It then
registers a handler for the page's load event, which rewrites the body of
the document and subscribes to nodes added to it later on. Added text
nodes are handled by rewriting their parent element.

Pages without mutation observation get the load-time pass only. Without
settings, or without an emoji image library, nothing is registered at all.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package watch

import (
	"fmt"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core/settings"
	"github.com/npillmayer/wemoji/engine/dom"
	"github.com/npillmayer/wemoji/engine/probe"
	"github.com/npillmayer/wemoji/engine/rewrite"
	"golang.org/x/net/html"
)

// tracer traces with key 'wemoji.watch'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.watch")
}

// State is the lifecycle state of a watcher.
type State int

// A watcher is Uninitialized only during Init. Afterwards it is either
// Active, or Inactive if initialization has been skipped.
const (
	Uninitialized State = iota
	Active
	Inactive
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Active:
		return "active"
	case Inactive:
		return "inactive"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Watcher replaces emoji of a page on load and whenever nodes are added.
type Watcher struct {
	page      *dom.Page
	state     State
	caps      probe.Capabilities
	rewriter  *rewrite.Rewriter
	rwopts    []rewrite.Option
	observing bool
}

// Option configures Init.
type Option func(*config)

type config struct {
	canvas probe.CanvasFactory
	lib    rewrite.Library
	caps   *probe.Capabilities
	class  string
}

// WithCanvas sets the canvas factory used for probing.
func WithCanvas(canvas probe.CanvasFactory) Option {
	return func(c *config) {
		c.canvas = canvas
	}
}

// WithCapabilities skips probing and uses caps instead.
func WithCapabilities(caps probe.Capabilities) Option {
	return func(c *config) {
		c.caps = &caps
	}
}

// WithLibrary sets the emoji image library. A nil library makes Init skip
// initialization.
func WithLibrary(lib rewrite.Library) Option {
	return func(c *config) {
		c.lib = lib
	}
}

// WithClassName sets the class attribute of replacement images.
func WithClassName(name string) Option {
	return func(c *config) {
		c.class = name
	}
}

// Init sets up emoji replacement for page host. If host, s or the library
// is missing, the returned watcher is inactive and its capability flags
// are all false.
func Init(host *dom.Page, s *settings.Settings, opts ...Option) *Watcher {
	c := config{lib: rewrite.Twemoji}
	for _, opt := range opts {
		opt(&c)
	}
	w := &Watcher{page: host, state: Uninitialized}
	if host == nil || s == nil || c.lib == nil {
		tracer().Infof("emoji replacement skipped: page=%v, settings=%v, library=%v",
			host != nil, s != nil, c.lib != nil)
		w.rewriter = rewrite.New(nil, w.caps, nil)
		w.state = Inactive
		return w
	}
	if c.caps != nil {
		w.caps = *c.caps
	} else {
		if c.canvas == nil {
			c.canvas = probe.NewCanvas()
		}
		w.caps = probe.NewProber(c.canvas).Probe()
	}
	w.rewriter = rewrite.New(c.lib, w.caps, s)
	if c.class != "" {
		w.rwopts = append(w.rwopts, rewrite.WithClassName(c.class))
	}
	host.AddEventListener(dom.EventLoad, w.load)
	w.state = Active
	tracer().Infof("emoji watcher active: %s", w.caps)
	return w
}

// State returns the lifecycle state.
func (w *Watcher) State() State {
	return w.state
}

// Capabilities returns the frozen capability flags.
func (w *Watcher) Capabilities() probe.Capabilities {
	return w.caps
}

// Rewriter returns the rewriter, usable for content outside of the page.
func (w *Watcher) Rewriter() *rewrite.Rewriter {
	return w.rewriter
}

// Observing is true once the watcher has subscribed to added nodes.
func (w *Watcher) Observing() bool {
	return w.observing
}

func (w *Watcher) load() {
	body := w.page.Document().Body()
	if body == nil {
		tracer().Errorf("document has no body, nothing to watch")
		return
	}
	if err := w.page.OnNodesAdded(body, w.nodesAdded); err != nil {
		tracer().Infof("emoji replaced on load only: %v", err)
	} else {
		w.observing = true
	}
	w.rewriter.Node(body, w.rwopts...)
}

func (w *Watcher) nodesAdded(nodes []*html.Node) {
	seen := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		if n.Type == html.TextNode {
			n = n.Parent
		}
		if n == nil || n.Type != html.ElementNode || seen[n] {
			continue
		}
		seen[n] = true
		w.rewriter.Node(n, w.rwopts...)
	}
}
