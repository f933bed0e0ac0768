package dom

import (
	"context"
	"errors"
	"sync"

	"github.com/npillmayer/wemoji/core"
	"golang.org/x/net/html"
)

// ErrNoMutationObserver is returned by pages without mutation observation.
var ErrNoMutationObserver = errors.New("mutation observation not available")

// EventLoad is the name of the event dispatched once a page has loaded.
const EventLoad = "load"

// Page runs the event loop for a document.
type Page struct {
	doc        *Document
	observing  bool
	mu         sync.Mutex // guards tasks
	tasks      []func()
	wake       chan struct{}
	listeners  map[string][]func()
	loaded     bool
	checkpoint bool // mutation records wait for delivery
}

// PageOption configures a page.
type PageOption func(*Page)

// WithoutMutationObserver creates a page lacking mutation observation.
// Changes to the document will then go unnoticed.
func WithoutMutationObserver() PageOption {
	return func(p *Page) {
		p.observing = false
	}
}

// NewPage creates a page for document doc. A nil doc is replaced by an
// empty document.
func NewPage(doc *Document, opts ...PageOption) *Page {
	if doc == nil {
		doc = NewDocument(nil)
	}
	p := &Page{
		doc:       doc,
		observing: true,
		wake:      make(chan struct{}, 1),
		listeners: make(map[string][]func()),
	}
	for _, opt := range opts {
		opt(p)
	}
	doc.schedule = func() {
		p.checkpoint = true
	}
	return p
}

// Document returns the page's document.
func (p *Page) Document() *Document {
	return p.doc
}

// HasMutationObserver tells if mutations of the page's document may be
// observed.
func (p *Page) HasMutationObserver() bool {
	return p.observing
}

// Post queues a task for execution on the page loop. Post may be called
// from any goroutine.
func (p *Page) Post(task func()) {
	if task == nil {
		return
	}
	p.mu.Lock()
	p.tasks = append(p.tasks, task)
	p.mu.Unlock()
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// AddEventListener registers fn for an event. Listeners for the load event
// registered after the page has loaded are never called.
func (p *Page) AddEventListener(event string, fn func()) {
	if fn == nil {
		return
	}
	p.listeners[event] = append(p.listeners[event], fn)
}

// Load queues dispatching of the load event. The event fires only once,
// no matter how often Load is called.
func (p *Page) Load() {
	p.Post(func() {
		if p.loaded {
			return
		}
		p.loaded = true
		tracer().Debugf("page loaded, dispatching to %d listeners", len(p.listeners[EventLoad]))
		p.dispatch(EventLoad)
	})
}

// Loaded is true after the load event has been dispatched.
func (p *Page) Loaded() bool {
	return p.loaded
}

func (p *Page) dispatch(event string) {
	for _, fn := range p.listeners[event] {
		fn()
		p.microtaskCheckpoint()
	}
}

// NewMutationObserver creates an observer for the page's document.
func (p *Page) NewMutationObserver(callback MutationCallback) (*MutationObserver, error) {
	if !p.observing {
		return nil, core.WrapError(ErrNoMutationObserver, core.ENOTSUPPORTED,
			"page does not support mutation observers")
	}
	return p.doc.NewMutationObserver(callback), nil
}

// OnNodesAdded subscribes handler to nodes added anywhere below target.
// Handler receives the added nodes of a batch of mutation records.
func (p *Page) OnNodesAdded(target *html.Node, handler func(nodes []*html.Node)) error {
	obs, err := p.NewMutationObserver(func(records []MutationRecord, _ *MutationObserver) {
		var added []*html.Node
		for _, rec := range records {
			added = append(added, rec.AddedNodes...)
		}
		if len(added) > 0 {
			handler(added)
		}
	})
	if err != nil {
		return err
	}
	return obs.Observe(target, ObserveOptions{ChildList: true, Subtree: true})
}

// RunUntilIdle executes tasks until no task is left. It returns the number
// of tasks executed.
func (p *Page) RunUntilIdle() int {
	n := 0
	for {
		task, ok := p.next()
		if !ok {
			return n
		}
		p.runTask(task)
		n++
	}
}

// Run executes tasks as they arrive, until ctx is done.
func (p *Page) Run(ctx context.Context) error {
	for {
		p.RunUntilIdle()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.wake:
		}
	}
}

func (p *Page) next() (func(), bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.tasks) == 0 {
		return nil, false
	}
	task := p.tasks[0]
	p.tasks[0] = nil
	p.tasks = p.tasks[1:]
	return task, true
}

func (p *Page) runTask(task func()) {
	task()
	p.microtaskCheckpoint()
}

func (p *Page) microtaskCheckpoint() {
	if !p.checkpoint {
		return
	}
	p.checkpoint = false
	p.doc.FlushMutations()
}
