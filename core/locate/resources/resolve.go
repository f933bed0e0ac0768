package resources

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/flopp/go-findfont"
	"github.com/npillmayer/wemoji/core"
	"github.com/npillmayer/wemoji/core/font"
	xfont "golang.org/x/image/font"
)

// NotFound returns an application error for a missing font.
func NotFound(name string) error {
	e := fmt.Errorf("resource missing: %v", name)
	return core.WrapError(e, core.EMISSING, "font not found: %s", name)
}

// EmojiFontFiles lists font files of well-known emoji fonts, in order of
// preference. Color fonts come first, as a browser would prefer them.
// TTC collections are not supported by the font loader and therefore not listed.
var EmojiFontFiles = []string{
	"NotoColorEmoji.ttf",
	"seguiemj.ttf",
	"TwemojiMozilla.ttf",
	"OpenMoji-color-glyf_colr_0.ttf",
	"NotoEmoji-Regular.ttf",
	"NotoEmoji-Bold.ttf",
	"Symbola.ttf",
}

// Finder locates a font file by (partial) file name. It is a variable to
// let tests substitute the platform search.
var Finder = findfont.Find

// --- Fonts -----------------------------------------------------------------

type fontPlusErr struct {
	font *font.TypeCase
	err  error
}

// TypeCasePromise is a typecase which may still be loading.
type TypeCasePromise interface {
	TypeCase() (*font.TypeCase, error)
	TypeCaseContext(context.Context) (*font.TypeCase, error)
}

type fontLoader struct {
	await func(ctx context.Context) (*font.TypeCase, error)
}

func (loader fontLoader) TypeCase() (*font.TypeCase, error) {
	return loader.await(context.Background())
}

func (loader fontLoader) TypeCaseContext(ctx context.Context) (*font.TypeCase, error) {
	return loader.await(ctx)
}

// ResolveTypeCase resolves a font typecase with a given weight and size
// (in pixels). It first asks the global font registry, then searches
// the platform's font directories. If nothing can be found, the promise
// delivers the fallback font together with an error.
func ResolveTypeCase(name string, weight xfont.Weight, size float64) TypeCasePromise {
	ch := make(chan fontPlusErr, 1)
	finder := Finder
	go func(ch chan<- fontPlusErr) {
		defer close(ch)
		result := fontPlusErr{}
		registry := font.GlobalRegistry()
		if registry.HasFont(name, weight) {
			result.font, result.err = registry.TypeCase(name, weight, size)
			ch <- result
			return
		}
		f, err := findSystemFont(finder, fileCandidates(name, weight))
		if err == nil {
			f.Fontname = name
			f.Weight = weight
			registry.StoreFont(f)
			result.font, result.err = registry.TypeCase(name, weight, size)
		} else {
			tracer().Infof("font %s not available, using fallback", name)
			result.font, _ = registry.TypeCase(name, weight, size)
			result.err = err
		}
		ch <- result
	}(ch)
	return fontLoader{
		await: func(ctx context.Context) (*font.TypeCase, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case r := <-ch:
				return r.font, r.err
			}
		},
	}
}

// EmojiTypeCases returns typecases for all emoji fonts of EmojiFontFiles
// which are installed on this machine. Lookup is done once per process.
func EmojiTypeCases(size float64) []*font.TypeCase {
	emojiFontsLoading.Do(func() {
		for _, fname := range EmojiFontFiles {
			f, err := findSystemFont(Finder, []string{fname})
			if err != nil {
				continue
			}
			tracer().Infof("found emoji font %s at %s", f.Fontname, f.Filepath)
			emojiFonts = append(emojiFonts, f)
		}
		if len(emojiFonts) == 0 {
			tracer().Infof("no emoji font installed")
		}
	})
	cases := make([]*font.TypeCase, 0, len(emojiFonts))
	for _, f := range emojiFonts {
		if tc, err := f.PrepareCase(size); err == nil {
			cases = append(cases, tc)
		}
	}
	return cases
}

var emojiFontsLoading sync.Once

var emojiFonts []*font.ScalableFont

func findSystemFont(finder func(string) (string, error), candidates []string) (*font.ScalableFont, error) {
	for _, c := range candidates {
		fpath, err := finder(c)
		if err != nil || fpath == "" {
			continue
		}
		if strings.EqualFold(filepath.Ext(fpath), ".ttc") {
			tracer().Infof("skipping font collection %s: TTC not supported", fpath)
			continue
		}
		tracer().Debugf("%s is a system font at %s", c, fpath)
		f, err := font.LoadOpenTypeFont(fpath)
		if err != nil {
			tracer().Errorf("cannot load font %s: %v", fpath, err)
			continue
		}
		return f, nil
	}
	if len(candidates) == 0 {
		return nil, NotFound("<none>")
	}
	return nil, NotFound(candidates[0])
}

// fileCandidates creates file names to search for, given a family name.
func fileCandidates(name string, weight xfont.Weight) []string {
	name = strings.TrimSpace(name)
	if filepath.Ext(name) != "" {
		return []string{name}
	}
	squeezed := strings.ReplaceAll(name, " ", "")
	var c []string
	if weight >= xfont.WeightSemiBold {
		c = append(c,
			name+" Bold.ttf",
			squeezed+"-Bold.ttf",
			strings.ToLower(squeezed)+"bd.ttf",
		)
	}
	return append(c, name+".ttf", squeezed+"-Regular.ttf", squeezed+".ttf")
}
