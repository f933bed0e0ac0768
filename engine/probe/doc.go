/*
Package probe detects whether the rendering host can draw emoji natively.

A probe renders a sample character onto an offscreen 2D surface and
inspects the result, the same way a browser script would use a canvas
element. Two kinds of probes exist: a simple one, drawing a smiling face
and testing a single pixel, and a flag probe, drawing the regional
indicator pair for the British flag and measuring the size of the encoded
image. Two empty boxes or two letter boxes encode small, a real flag
encodes large.

Surfaces are created by a CanvasFactory. NewCanvas returns a factory for
surfaces backed by github.com/gogpu/gg, drawing with the fonts found on
the machine and falling back to the Go fonts.

Probing never fails loudly: any problem with a surface, including a
panic, counts as "not supported".

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package probe

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'wemoji.probe'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.probe")
}
