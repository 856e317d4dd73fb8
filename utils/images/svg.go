package images

import (
	"bytes"
	"math"

	"github.com/srwiley/oksvg"
)

// Browsers use 300x150 for replaced elements without intrinsic size.
const (
	defaultSVGWidth  = 300
	defaultSVGHeight = 150
)

// SVGSize returns size of SVG image from its viewBox.
func SVGSize(data []byte) (Size, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(data), oksvg.IgnoreErrorMode)
	if err != nil {
		return Size{}, err
	}
	s := Size{W: int(math.Ceil(icon.ViewBox.W)), H: int(math.Ceil(icon.ViewBox.H))}
	if s.W <= 0 {
		s.W = defaultSVGWidth
	}
	if s.H <= 0 {
		s.H = defaultSVGHeight
	}
	return s, nil
}
