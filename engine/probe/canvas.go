package probe

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/color"
	"time"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"github.com/npillmayer/wemoji/core"
	"github.com/npillmayer/wemoji/core/font"
	"github.com/npillmayer/wemoji/core/locate/resources"
)

// CanvasOption configures surfaces created by NewCanvas.
type CanvasOption func(*canvasConfig)

type canvasConfig struct {
	systemFonts bool
	timeout     time.Duration
}

// WithoutSystemFonts restricts surfaces to the built-in Go fonts.
// Probing will then report that emoji are not supported.
func WithoutSystemFonts() CanvasOption {
	return func(cc *canvasConfig) {
		cc.systemFonts = false
	}
}

// WithFontTimeout limits the time spent resolving a font family.
func WithFontTimeout(d time.Duration) CanvasOption {
	return func(cc *canvasConfig) {
		if d > 0 {
			cc.timeout = d
		}
	}
}

// NewCanvas returns a factory for offscreen surfaces backed by gg.
//
// Text is drawn with the requested font family, followed by every emoji
// font installed on the machine. Glyphs missing from the family are taken
// from the first emoji font having them, comparable to the font fallback
// of a browser.
func NewCanvas(opts ...CanvasOption) CanvasFactory {
	cc := canvasConfig{systemFonts: true, timeout: 5 * time.Second}
	for _, opt := range opts {
		opt(&cc)
	}
	return func(width, height int) (Surface, error) {
		if width <= 0 || height <= 0 {
			return nil, core.WrapError(ErrNoContext, core.EINVALID,
				"canvas size %dx%d is invalid", width, height)
		}
		dc := gg.NewContext(width, height)
		dc.SetColor(color.Black) // default fill style
		return &canvas{dc: dc, config: cc}, nil
	}
}

type canvas struct {
	dc       *gg.Context
	face     text.Face
	baseline Baseline
	config   canvasConfig
}

var _ Surface = (*canvas)(nil)

func (c *canvas) SetTextBaseline(b Baseline) {
	c.baseline = b
}

func (c *canvas) SetFont(spec FontSpec) error {
	weight := font.WeightFromCSS(spec.Weight)
	var tc *font.TypeCase
	if c.config.systemFonts {
		ctx, cancel := context.WithTimeout(context.Background(), c.config.timeout)
		defer cancel()
		var err error
		tc, err = resources.ResolveTypeCase(spec.Family, weight, spec.Size).TypeCaseContext(ctx)
		if err != nil {
			tracer().Debugf("font %s resolved with fallback: %v", spec, err)
		}
	}
	if tc == nil {
		tc, _ = font.FallbackFont(weight).PrepareCase(spec.Size)
	}
	if tc == nil || tc.Face() == nil {
		return ErrNoTextRendering
	}
	faces := []text.Face{tc.Face()}
	if c.config.systemFonts {
		for _, ec := range resources.EmojiTypeCases(spec.Size) {
			faces = append(faces, ec.Face())
		}
	}
	if len(faces) == 1 {
		c.face = faces[0]
	} else {
		mf, err := text.NewMultiFace(faces...)
		if err != nil {
			tracer().Errorf("cannot combine emoji fonts: %v", err)
			c.face = faces[0]
		} else {
			c.face = mf
		}
	}
	c.dc.SetFont(c.face)
	return nil
}

func (c *canvas) FillText(s string, x, y float64) error {
	if c.face == nil {
		return ErrNoTextRendering
	}
	m := c.face.Metrics()
	switch c.baseline {
	case BaselineTop:
		y += m.Ascent
	case BaselineMiddle:
		y += (m.Ascent - m.Descent) / 2
	case BaselineBottom:
		y -= m.Descent
	}
	c.dc.DrawString(s, x, y)
	return nil
}

func (c *canvas) ImageData(x, y, w, h int) ([]uint8, error) {
	if w <= 0 || h <= 0 {
		return nil, core.Error(core.EINVALID, "image data size %dx%d is invalid", w, h)
	}
	img := c.dc.Image()
	bounds := img.Bounds()
	data := make([]uint8, 0, w*h*4)
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if px < bounds.Min.X || px >= bounds.Max.X || py < bounds.Min.Y || py >= bounds.Max.Y {
				data = append(data, 0, 0, 0, 0)
				continue
			}
			nc := color.NRGBAModel.Convert(img.At(px, py)).(color.NRGBA)
			data = append(data, nc.R, nc.G, nc.B, nc.A)
		}
	}
	return data, nil
}

func (c *canvas) DataURL() (string, error) {
	var buf bytes.Buffer
	if err := c.dc.EncodePNG(&buf); err != nil {
		return "", core.WrapError(err, core.EINTERNAL, "cannot encode canvas as PNG")
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c *canvas) Close() error {
	return c.dc.Close()
}
