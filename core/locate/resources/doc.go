/*
Package resources resolves fonts for the capability probe.

As font loading may be a time-consuming task, functions in this package
work in an async/await fashion by returning a promise.
Functions named

   Resolve…(…)

will return a resource-specific promise type, which the client will call later
to receive the loaded resource. The call to the promise-function will then block
until loading has completed.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package resources

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces to tracing key 'wemoji.resources'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.resources")
}
