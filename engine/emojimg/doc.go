/*
Package emojimg replaces emoji characters in HTML by image references.

It implements the contract of the twemoji parser: emoji in text nodes
(or in an HTML string) are replaced by

	<img class="emoji" draggable="false" alt="😀" src="…/1f600.png">

where the image name (the "icon") is the lower-case hexadecimal code point
sequence of the emoji, joined by dashes. A callback decides about the
image source for every icon and may veto a replacement.

Text within iframe, noframes, noscript, script, select, style and textarea
elements is never touched. Replaced emoji end up in alt attributes, which
are never scanned, so parsing a tree a second time does not change it.

Emoji sequences are recognized with github.com/gogpu/gg/text/emoji.
Grapheme clusters, as found by github.com/npillmayer/uax, keep modifiers
and variation selectors together with their emoji.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package emojimg

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'wemoji.emojimg'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.emojimg")
}
