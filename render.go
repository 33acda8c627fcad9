package sapling

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
)

// FaceSource hands out text faces by family name.
type FaceSource interface {
	Face(name string, size float64) *text.GoTextFace
}

// RenderContext is what deferred resolvers get to measure content with. It
// is shared by every clone of one engine.
type RenderContext struct {
	// Canvas is an optional offscreen surface resolvers may draw into, for
	// example to pre-render a layer. May be nil.
	Canvas *ebiten.Image

	// Fonts resolves font families loaded from the document settings. Nil
	// means only the fallback face is available.
	Fonts FaceSource
}

// Face returns a face for the named family, falling back to Go Regular.
func (rc *RenderContext) Face(name string, size float64) *text.GoTextFace {
	if rc != nil && rc.Fonts != nil {
		if f := rc.Fonts.Face(name, size); f != nil {
			return f
		}
	}
	return FallbackFace(size)
}

// MeasureText returns the width and height of s set in the named family.
func (rc *RenderContext) MeasureText(s, fontName string, size float64) (width, height float64) {
	face := rc.Face(fontName, size)
	if face == nil {
		return 0, 0
	}
	m := face.Metrics()
	return text.Measure(s, face, m.HAscent+m.HDescent+m.HLineGap)
}
