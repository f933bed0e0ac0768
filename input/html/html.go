/*
Package html reads and writes HTML documents for emoji processing.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package html

import (
	"bufio"
	"bytes"
	"io"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core"
	"github.com/npillmayer/wemoji/engine/dom"
	xhtml "golang.org/x/net/html"
)

// tracer traces with key 'wemoji.html'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.html")
}

// Read parses an HTML document from r.
func Read(r io.Reader) (*dom.Document, error) {
	doc, err := dom.Parse(bufio.NewReader(r))
	if err != nil {
		tracer().Errorf("unable to parse HTML: %v", err)
		return nil, err
	}
	return doc, nil
}

// ReadFile parses an HTML file.
func ReadFile(path string) (*dom.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "cannot open HTML file %s", path)
	}
	defer f.Close()
	tracer().Debugf("reading HTML file %s", path)
	return Read(f)
}

// Write renders doc to w.
func Write(w io.Writer, doc *dom.Document) error {
	if doc == nil || doc.Root() == nil {
		return core.Error(core.EINVALID, "cannot render empty document")
	}
	bw := bufio.NewWriter(w)
	if err := xhtml.Render(bw, doc.Root()); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot render HTML")
	}
	return bw.Flush()
}

// WriteFile renders doc into a file, replacing an existing one.
func WriteFile(path string, doc *dom.Document) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return core.WrapError(err, core.EINTERNAL, "cannot write HTML file %s", path)
	}
	return nil
}

// String renders doc as a string. Errors render as an empty string.
func String(doc *dom.Document) string {
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		tracer().Errorf("%v", err)
		return ""
	}
	return buf.String()
}
