package dom

import (
	"github.com/npillmayer/wemoji/core"
	"golang.org/x/net/html"
)

// MutationType is the kind of a mutation record. Only changes to the list
// of children are observed.
type MutationType int

// ChildList records additions and removals of child nodes.
const ChildList MutationType = 1

func (mt MutationType) String() string {
	if mt == ChildList {
		return "childList"
	}
	return "unknown"
}

// MutationRecord describes a change to the children of Target.
type MutationRecord struct {
	Type         MutationType
	Target       *html.Node
	AddedNodes   []*html.Node
	RemovedNodes []*html.Node
}

// ObserveOptions select the mutations an observer is interested in.
type ObserveOptions struct {
	ChildList bool // changes of the target's children
	Subtree   bool // extend to all descendants of the target
}

// MutationCallback receives a batch of mutation records.
type MutationCallback func(records []MutationRecord, observer *MutationObserver)

// MutationObserver collects mutation records for a set of observed nodes.
type MutationObserver struct {
	doc          *Document
	callback     MutationCallback
	observations []observation
	records      []MutationRecord
}

type observation struct {
	target *html.Node
	opts   ObserveOptions
}

// NewMutationObserver creates an observer for nodes of document d.
// It does not observe anything before Observe is called.
func (d *Document) NewMutationObserver(callback MutationCallback) *MutationObserver {
	if callback == nil {
		callback = func([]MutationRecord, *MutationObserver) {}
	}
	return &MutationObserver{doc: d, callback: callback}
}

// Observe registers target for observation. Observing a target a second
// time replaces its options.
func (obs *MutationObserver) Observe(target *html.Node, opts ObserveOptions) error {
	if target == nil {
		return core.Error(core.EINVALID, "cannot observe null node")
	}
	if !opts.ChildList {
		return core.Error(core.EINVALID, "observe requires childList")
	}
	for i, o := range obs.observations {
		if o.target == target {
			obs.observations[i].opts = opts
			return nil
		}
	}
	if len(obs.observations) == 0 {
		obs.doc.observers = append(obs.doc.observers, obs)
	}
	obs.observations = append(obs.observations, observation{target: target, opts: opts})
	tracer().Debugf("observing <%s>, subtree=%v", target.Data, opts.Subtree)
	return nil
}

// TakeRecords returns and clears the pending records.
func (obs *MutationObserver) TakeRecords() []MutationRecord {
	records := obs.records
	obs.records = nil
	return records
}

// Disconnect stops all observations and drops pending records.
func (obs *MutationObserver) Disconnect() {
	obs.observations = nil
	obs.records = nil
	observers := obs.doc.observers[:0]
	for _, o := range obs.doc.observers {
		if o != obs {
			observers = append(observers, o)
		}
	}
	obs.doc.observers = observers
}

func (obs *MutationObserver) interestedIn(target *html.Node) bool {
	for _, o := range obs.observations {
		if o.target == target || (o.opts.Subtree && isAncestor(o.target, target)) {
			return true
		}
	}
	return false
}
