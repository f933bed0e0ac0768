/*
Package dom hosts HTML documents the way a browser page does, as far as
emoji replacement is concerned.

A Document wraps a tree of golang.org/x/net/html nodes. Changes made
through the Document's methods create mutation records, which are handed
to MutationObservers in batches. A Page runs a single-threaded event loop
for a document: tasks are executed one after another, and after every task
pending mutation records are delivered (the "microtask checkpoint").
Pages dispatch a load event once.

All access to a document has to happen on the goroutine running the page
loop. Page.Post is the only method safe for concurrent use.

Changes made to nodes directly, bypassing the Document, are not observed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package dom

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'wemoji.dom'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.dom")
}
