package probe

import (
	"errors"
	"strconv"
	"strings"

	"github.com/npillmayer/wemoji/core"
)

// ErrNoContext is returned by a CanvasFactory if it cannot create a 2D
// drawing context.
var ErrNoContext = errors.New("no 2D drawing context available")

// ErrNoTextRendering is returned by surfaces which are not able to draw text.
var ErrNoTextRendering = errors.New("surface cannot render text")

// Baseline is the vertical anchor of text drawn with FillText.
type Baseline int

// Baselines as known from the canvas API.
const (
	BaselineAlphabetic Baseline = iota
	BaselineTop
	BaselineMiddle
	BaselineBottom
)

func (b Baseline) String() string {
	switch b {
	case BaselineAlphabetic:
		return "alphabetic"
	case BaselineTop:
		return "top"
	case BaselineMiddle:
		return "middle"
	case BaselineBottom:
		return "bottom"
	}
	return "baseline(" + strconv.Itoa(int(b)) + ")"
}

// Surface is a 2D drawing context, the subset of a canvas needed to probe.
//
// ImageData returns RGBA values, 4 bytes per pixel in row order, not alpha
// premultiplied. Pixels outside of the surface are transparent black.
// DataURL returns the content as a PNG encoded data URL.
//
// Surfaces which hold resources may implement io.Closer.
type Surface interface {
	SetFont(FontSpec) error
	SetTextBaseline(Baseline)
	FillText(s string, x, y float64) error
	ImageData(x, y, w, h int) ([]uint8, error)
	DataURL() (string, error)
}

// CanvasFactory creates a surface of a given size in pixels.
type CanvasFactory func(width, height int) (Surface, error)

// FontSpec is a parsed CSS font shorthand, restricted to what a probe needs.
type FontSpec struct {
	Weight int     // CSS numeric weight, 100…900
	Size   float64 // in pixels
	Family string  // first family of the family list
}

func (fs FontSpec) String() string {
	return strconv.Itoa(fs.Weight) + " " + strconv.FormatFloat(fs.Size, 'f', -1, 64) + "px " + fs.Family
}

// ParseFont parses a CSS font shorthand like "600 32px Arial".
// Font style and variant keywords are accepted and ignored; line heights
// ("32px/1.2") are dropped. Only pixel sizes are supported.
func ParseFont(css string) (FontSpec, error) {
	spec := FontSpec{Weight: 400}
	fields := strings.Fields(css)
	for i, f := range fields {
		switch lf := strings.ToLower(f); lf {
		case "normal", "italic", "oblique", "small-caps":
			continue
		case "bold":
			spec.Weight = 700
			continue
		case "bolder":
			spec.Weight = 900
			continue
		case "lighter":
			spec.Weight = 100
			continue
		default:
			if w, err := strconv.Atoi(lf); err == nil {
				spec.Weight = w
				continue
			}
			if slash := strings.IndexByte(lf, '/'); slash > 0 {
				lf = lf[:slash]
			}
			if !strings.HasSuffix(lf, "px") {
				return spec, core.Error(core.EINVALID, "cannot parse font size in %q", css)
			}
			size, err := strconv.ParseFloat(strings.TrimSuffix(lf, "px"), 64)
			if err != nil || size <= 0 {
				return spec, core.Error(core.EINVALID, "cannot parse font size in %q", css)
			}
			spec.Size = size
			family := strings.Join(fields[i+1:], " ")
			if comma := strings.IndexByte(family, ','); comma >= 0 {
				family = family[:comma]
			}
			spec.Family = strings.Trim(strings.TrimSpace(family), `"'`)
			if spec.Family == "" {
				return spec, core.Error(core.EINVALID, "font family missing in %q", css)
			}
			return spec, nil
		}
	}
	return spec, core.Error(core.EINVALID, "font size missing in %q", css)
}
