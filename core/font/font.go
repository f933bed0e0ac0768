/*
Package font is for typeface and font handling of the capability probe.

We stick to the following definitions:

* A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Noto Emoji bold".

* A "typecase" is a scaled font, i.e. a font in a certain size.
The name is reminiscent of the wooden boxes of typesetters in the era of
metal type. An example is "Noto Emoji bold 32px".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

Rendering is delegated to package github.com/gogpu/gg/text; this package
keeps a registry of loaded fonts and provides the Go fonts as a fallback
which is always present.

License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

*/
package font

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/gogpu/gg/text"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/wemoji/core"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

// tracer traces with key 'wemoji.fonts'.
func tracer() tracing.Trace {
	return tracing.Select("wemoji.fonts")
}

// ScalableFont is a loaded font file.
type ScalableFont struct {
	Fontname string
	Filepath string // file path or "internal"
	Weight   xfont.Weight
	source   *text.FontSource
}

// TypeCase is a scalable font at a given size.
type TypeCase struct {
	scalableFontParent *ScalableFont
	face               text.Face // Go uses 'face' and 'font' in an inverse manner
	size               float64
}

// LoadOpenTypeFont loads a TrueType or OpenType font file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, core.WrapError(err, core.EMISSING, "font file not readable: %s", fontfile)
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	f.Weight = GuessWeight(fontfile)
	return f, nil
}

// ParseOpenTypeFont creates a scalable font from font data.
func ParseOpenTypeFont(fbytes []byte) (*ScalableFont, error) {
	src, err := text.NewFontSource(fbytes)
	if err != nil {
		return nil, core.WrapError(err, core.EINVALID, "font data cannot be parsed")
	}
	return &ScalableFont{
		Fontname: src.Name(),
		Weight:   xfont.WeightNormal,
		source:   src,
	}, nil
}

// PrepareCase creates a typecase of size fontsize (in pixels).
func (sf *ScalableFont) PrepareCase(fontsize float64) (*TypeCase, error) {
	if sf == nil || sf.source == nil {
		return nil, core.Error(core.EINTERNAL, "cannot prepare case for null font")
	}
	if fontsize < 5.0 || fontsize > 500.0 {
		tracer().Infof("font size must be 5 < size < 500, is %g (set to 10)", fontsize)
		fontsize = 10.0
	}
	return &TypeCase{
		scalableFontParent: sf,
		face:               sf.source.Face(fontsize),
		size:               fontsize,
	}, nil
}

// ScalableFontParent returns the font this typecase has been created from.
func (tc *TypeCase) ScalableFontParent() *ScalableFont {
	return tc.scalableFontParent
}

// Face returns the renderable face.
func (tc *TypeCase) Face() text.Face {
	return tc.face
}

// Size is the size of the typecase in pixels.
func (tc *TypeCase) Size() float64 {
	return tc.size
}

// HasGlyph checks if the typecase covers rune r.
func (tc *TypeCase) HasGlyph(r rune) bool {
	return tc.face != nil && tc.face.HasGlyph(r)
}

// --- Fallback font ---------------------------------------------------------

// FallbackFont returns a font to be used if everything else fails. It is
// always present. We use Go Sans, in bold for weights from semi-bold upwards.
func FallbackFont(weight xfont.Weight) *ScalableFont {
	fallbackFontLoading.Do(func() {
		fallbackRegular = loadFallbackFont("Go Sans", goregular.TTF, xfont.WeightNormal)
		fallbackBold = loadFallbackFont("Go Sans Bold", gobold.TTF, xfont.WeightBold)
	})
	if weight >= xfont.WeightSemiBold {
		return fallbackBold
	}
	return fallbackRegular
}

var fallbackFontLoading sync.Once

var fallbackRegular, fallbackBold *ScalableFont

func loadFallbackFont(name string, data []byte, weight xfont.Weight) *ScalableFont {
	f, err := ParseOpenTypeFont(data)
	if err != nil {
		panic("cannot load default font") // this cannot happen
	}
	f.Fontname = name
	f.Filepath = "internal"
	f.Weight = weight
	return f
}

// --- Font Registry ---------------------------------------------------------

// Registry caches loaded fonts and typecases. It is safe for concurrent use.
type Registry struct {
	sync.Mutex
	fonts     map[string]*ScalableFont
	typecases map[string]*TypeCase
}

var globalFontRegistry *Registry

var globalRegistryCreation sync.Once

// GlobalRegistry is the application wide font registry.
func GlobalRegistry() *Registry {
	globalRegistryCreation.Do(func() {
		globalFontRegistry = NewRegistry()
	})
	return globalFontRegistry
}

// NewRegistry creates an empty font registry.
func NewRegistry() *Registry {
	return &Registry{
		fonts:     make(map[string]*ScalableFont),
		typecases: make(map[string]*TypeCase),
	}
}

// StoreFont puts f into the registry, using its normalized name and weight.
func (fr *Registry) StoreFont(f *ScalableFont) {
	if f == nil {
		tracer().Errorf("registry cannot store null font")
		return
	}
	fr.Lock()
	defer fr.Unlock()
	fname := NormalizeFontname(f.Fontname, f.Weight)
	tracer().Debugf("registry stores font %s as %s", f.Fontname, fname)
	fr.fonts[fname] = f
}

// HasFont checks if a font with the given name and weight has been stored.
func (fr *Registry) HasFont(name string, weight xfont.Weight) bool {
	fr.Lock()
	defer fr.Unlock()
	_, ok := fr.fonts[NormalizeFontname(name, weight)]
	return ok
}

// TypeCase returns a typecase for a stored font. If the font has not been
// stored, a typecase for the fallback font is returned together with an
// error of code EMISSING.
func (fr *Registry) TypeCase(name string, weight xfont.Weight, size float64) (*TypeCase, error) {
	tracer().Debugf("registry searches for font %s at %.2f", name, size)
	fname := NormalizeFontname(name, weight)
	tname := NormalizeTypeCaseName(name, weight, size)
	fr.Lock()
	defer fr.Unlock()
	if t, ok := fr.typecases[tname]; ok {
		return t, nil
	}
	if f, ok := fr.fonts[fname]; ok {
		t, err := f.PrepareCase(size)
		if err != nil {
			return nil, err
		}
		tracer().Infof("font registry has font %s, caches at %.2f", fname, size)
		fr.typecases[tname] = t
		return t, nil
	}
	err := core.Error(core.EMISSING, "font %s not found in registry", name)
	tname = NormalizeTypeCaseName("fallback", weight, size)
	if t, ok := fr.typecases[tname]; ok {
		return t, err
	}
	t, _ := FallbackFont(weight).PrepareCase(size)
	tracer().Infof("font registry caches fallback font at %.2f", size)
	fr.typecases[tname] = t
	return t, err
}

// NormalizeFontname creates a registry key from a font name (or file name)
// and a weight, e.g. "Noto Emoji.ttf" ⇒ "noto_emoji-700".
func NormalizeFontname(fname string, weight xfont.Weight) string {
	fname = strings.TrimSpace(fname)
	if slash := strings.LastIndexAny(fname, `/\`); slash >= 0 {
		fname = fname[slash+1:]
	}
	fname = strings.ReplaceAll(fname, " ", "_")
	if dot := strings.LastIndex(fname, "."); dot > 0 {
		fname = fname[:dot]
	}
	fname = strings.ToLower(fname)
	return fmt.Sprintf("%s-%d", fname, CSSWeight(weight))
}

// NormalizeTypeCaseName creates a registry key for a typecase.
func NormalizeTypeCaseName(fname string, weight xfont.Weight, size float64) string {
	return fmt.Sprintf("%s-%.2f", NormalizeFontname(fname, weight), size)
}

// ---------------------------------------------------------------------------

/* from https://pkg.go.dev/golang.org/x/image/font
WeightThin       Weight = -3 // CSS font-weight value 100.
WeightExtraLight Weight = -2 // CSS font-weight value 200.
WeightLight      Weight = -1 // CSS font-weight value 300.
WeightNormal     Weight = +0 // CSS font-weight value 400.
WeightMedium     Weight = +1 // CSS font-weight value 500.
WeightSemiBold   Weight = +2 // CSS font-weight value 600.
WeightBold       Weight = +3 // CSS font-weight value 700.
WeightExtraBold  Weight = +4 // CSS font-weight value 800.
WeightBlack      Weight = +5 // CSS font-weight value 900.
*/

// WeightFromCSS converts a CSS numeric font weight to a font weight.
// Values are rounded to the nearest hundred and clipped to 100…900.
func WeightFromCSS(w int) xfont.Weight {
	w = (w + 50) / 100 * 100
	if w < 100 {
		w = 100
	} else if w > 900 {
		w = 900
	}
	return xfont.Weight(w/100 - 4)
}

// CSSWeight converts a font weight to its CSS numeric value.
func CSSWeight(w xfont.Weight) int {
	return (int(w) + 4) * 100
}

// GuessWeight guesses a font's weight from its file name.
func GuessWeight(fontfile string) xfont.Weight {
	name := strings.ToLower(fontfile)
	switch {
	case strings.Contains(name, "black"), strings.Contains(name, "heavy"):
		return xfont.WeightBlack
	case strings.Contains(name, "extrabold"):
		return xfont.WeightExtraBold
	case strings.Contains(name, "semibold"):
		return xfont.WeightSemiBold
	case strings.Contains(name, "bold"):
		return xfont.WeightBold
	case strings.Contains(name, "light"):
		return xfont.WeightLight
	}
	return xfont.WeightNormal
}
