/*
Command wemoji probes a machine for emoji rendering support and replaces
emoji in HTML files by images.

Usage:

	wemoji probe
	wemoji rewrite --base https://s.w.org/images/core/emoji/15.0.3/72x72/ page.html
	wemoji rewrite --force-replace --out dist/ *.html

Settings for the image location are taken from command line flags, a
settings file, or the page itself (in this order).

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package main

func main() {
	Execute()
}
