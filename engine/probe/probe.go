package probe

import (
	"fmt"
	"io"
)

// Kind selects the probe to run.
type Kind int

// Simple is the default probe kind, testing for emoji in general.
// Flag tests for two-character flag glyphs.
const (
	Simple Kind = iota
	Flag
)

func (k Kind) String() string {
	switch k {
	case Simple:
		return "simple"
	case Flag:
		return "flag"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Probe parameters. The canvas size is the default size of an HTML canvas
// element. Bold weight is probed on purpose: some renderers draw emoji at
// regular weight only.
const (
	CanvasWidth          = 300
	CanvasHeight         = 150
	ProbeFont            = "600 32px Arial"
	FlagDataURLThreshold = 3000
)

// Sample texts. U+1F1EC U+1F1E7 is the regional indicator pair "GB",
// U+1F603 is a smiling face with open mouth.
const (
	flagSample   = "\U0001F1EC\U0001F1E7"
	simpleSample = "\U0001F603"
)

// Sample returns the text drawn by probes of kind k.
func (k Kind) Sample() string {
	if k == Flag {
		return flagSample
	}
	return simpleSample
}

// pixel position for the simple probe
const sampleX, sampleY = 16, 16

// Capabilities holds the outcome of probing a host. Capabilities are
// computed once and are immutable afterwards.
type Capabilities struct {
	SupportsEmoji     bool // host renders simple emoji
	SupportsFlagEmoji bool // host renders flag emoji from regional indicator pairs
}

// ReplaceEmoji is true if emoji characters should be replaced by images.
func (c Capabilities) ReplaceEmoji() bool {
	return !c.SupportsEmoji || !c.SupportsFlagEmoji
}

func (c Capabilities) String() string {
	return fmt.Sprintf("caps{emoji=%v, flags=%v, replace=%v}",
		c.SupportsEmoji, c.SupportsFlagEmoji, c.ReplaceEmoji())
}

// Prober runs capability probes on surfaces created by a canvas factory.
type Prober struct {
	canvas CanvasFactory
}

// NewProber creates a prober drawing onto surfaces of factory canvas.
// A nil factory is allowed; every probe will then report false.
func NewProber(canvas CanvasFactory) *Prober {
	return &Prober{canvas: canvas}
}

// Probe runs the simple probe, then the flag probe.
func (p *Prober) Probe() Capabilities {
	caps := Capabilities{
		SupportsEmoji:     p.Detect(Simple),
		SupportsFlagEmoji: p.Detect(Flag),
	}
	tracer().Infof("probed host: %s", caps)
	return caps
}

// Detect checks if the host can render emoji of a given kind.
// Detect does not return errors: if no surface can be created or the
// surface cannot draw text, the result is false.
func (p *Prober) Detect(kind Kind) (supported bool) {
	defer func() {
		if r := recover(); r != nil {
			tracer().Errorf("%s probe aborted: %v", kind, r)
			supported = false
		}
	}()
	if p == nil || p.canvas == nil {
		tracer().Infof("no canvas available, %s probe fails", kind)
		return false
	}
	surface, err := p.canvas(CanvasWidth, CanvasHeight)
	if err != nil || surface == nil {
		tracer().Infof("cannot create canvas for %s probe: %v", kind, err)
		return false
	}
	if c, ok := surface.(io.Closer); ok {
		defer c.Close()
	}
	fontspec, _ := ParseFont(ProbeFont)
	surface.SetTextBaseline(BaselineTop)
	if err = surface.SetFont(fontspec); err != nil {
		tracer().Infof("canvas cannot set font %s: %v", fontspec, err)
		return false
	}
	switch kind {
	case Flag:
		if err = surface.FillText(flagSample, 0, 0); err != nil {
			tracer().Infof("canvas cannot draw text: %v", err)
			return false
		}
		url, err := surface.DataURL()
		if err != nil {
			tracer().Errorf("canvas cannot encode image: %v", err)
			return false
		}
		tracer().Debugf("flag probe: data URL has %d bytes", len(url))
		return len(url) > FlagDataURLThreshold
	default:
		if err = surface.FillText(simpleSample, 0, 0); err != nil {
			tracer().Infof("canvas cannot draw text: %v", err)
			return false
		}
		px, err := surface.ImageData(sampleX, sampleY, 1, 1)
		if err != nil || len(px) < 4 {
			tracer().Errorf("canvas cannot read pixel: %v", err)
			return false
		}
		tracer().Debugf("simple probe: pixel at (%d,%d) = %v", sampleX, sampleY, px[:4])
		return px[0] != 0 || px[3] != 0
	}
}
