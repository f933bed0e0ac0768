package dom

import (
	"io"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/npillmayer/wemoji/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an HTML document which reports changes to observers.
type Document struct {
	root      *html.Node
	observers []*MutationObserver
	pending   bool   // records are waiting for delivery
	schedule  func() // asks the host for a microtask checkpoint
}

// NewDocument wraps a parsed HTML tree.
func NewDocument(root *html.Node) *Document {
	return &Document{root: root}
}

// Parse reads an HTML document.
func Parse(r io.Reader) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "cannot parse HTML document")
	}
	return NewDocument(root), nil
}

var (
	bodySelector = cascadia.MustCompile("body")
	headSelector = cascadia.MustCompile("head")
)

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Body returns the body element, or nil.
func (d *Document) Body() *html.Node {
	if d.root == nil {
		return nil
	}
	return bodySelector.MatchFirst(d.root)
}

// Head returns the head element, or nil.
func (d *Document) Head() *html.Node {
	if d.root == nil {
		return nil
	}
	return headSelector.MatchFirst(d.root)
}

// CreateElement creates a detached element node.
func CreateElement(tag string) *html.Node {
	tag = strings.ToLower(tag)
	return &html.Node{
		Type:     html.ElementNode,
		DataAtom: atom.Lookup([]byte(tag)),
		Data:     tag,
	}
}

// CreateTextNode creates a detached text node.
func CreateTextNode(text string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: text}
}

// AppendChild adds child as the last child of parent. If child is
// attached somewhere else, it is moved.
func (d *Document) AppendChild(parent, child *html.Node) error {
	return d.InsertBefore(parent, child, nil)
}

// InsertBefore inserts child into parent, before ref. If ref is nil, child
// is appended.
func (d *Document) InsertBefore(parent, child, ref *html.Node) error {
	if parent == nil || child == nil {
		return core.Error(core.EINVALID, "cannot insert null node")
	}
	if ref != nil && ref.Parent != parent {
		return core.Error(core.EINVALID, "reference node is not a child of <%s>", parent.Data)
	}
	if child == parent || isAncestor(child, parent) {
		return core.Error(core.EINVALID, "cannot insert a node into its own subtree")
	}
	if child.Parent != nil {
		if err := d.RemoveChild(child.Parent, child); err != nil {
			return err
		}
	}
	parent.InsertBefore(child, ref)
	d.record(MutationRecord{
		Type:       ChildList,
		Target:     parent,
		AddedNodes: []*html.Node{child},
	})
	return nil
}

// RemoveChild detaches child from parent.
func (d *Document) RemoveChild(parent, child *html.Node) error {
	if parent == nil || child == nil || child.Parent != parent {
		return core.Error(core.EINVALID, "node to remove is not a child")
	}
	parent.RemoveChild(child)
	d.record(MutationRecord{
		Type:         ChildList,
		Target:       parent,
		RemovedNodes: []*html.Node{child},
	})
	return nil
}

// SetInnerHTML replaces the children of el by the nodes of an HTML fragment.
func (d *Document) SetInnerHTML(el *html.Node, fragment string) error {
	if el == nil || el.Type != html.ElementNode {
		return core.Error(core.EINVALID, "inner HTML can only be set for elements")
	}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), el)
	if err != nil {
		return core.WrapError(err, core.EINVALID, "cannot parse HTML fragment")
	}
	rec := MutationRecord{Type: ChildList, Target: el}
	for c := el.FirstChild; c != nil; c = el.FirstChild {
		el.RemoveChild(c)
		rec.RemovedNodes = append(rec.RemovedNodes, c)
	}
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
		el.AppendChild(n)
		rec.AddedNodes = append(rec.AddedNodes, n)
	}
	if len(rec.AddedNodes) > 0 || len(rec.RemovedNodes) > 0 {
		d.record(rec)
	}
	return nil
}

// isAncestor checks if a is a proper ancestor of n.
func isAncestor(a, n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// record queues a mutation record with every interested observer.
func (d *Document) record(rec MutationRecord) {
	queued := false
	for _, obs := range d.observers {
		if obs.interestedIn(rec.Target) {
			obs.records = append(obs.records, rec)
			queued = true
		}
	}
	if queued && !d.pending {
		d.pending = true
		if d.schedule != nil {
			d.schedule()
		}
	}
}

// FlushMutations delivers pending mutation records to the observers'
// callbacks. Observer callbacks may cause further mutations; these are
// delivered in the same flush. Pages call FlushMutations after every task.
func (d *Document) FlushMutations() {
	for d.pending {
		d.pending = false
		for _, obs := range append([]*MutationObserver(nil), d.observers...) {
			if len(obs.records) == 0 {
				continue
			}
			records := obs.TakeRecords()
			tracer().Debugf("delivering %d mutation records", len(records))
			obs.callback(records, obs)
		}
	}
}
