package surface

import "image/color"

const (
	NoSelection = -1

	// HandleSize is both the drawn size of a resize handle and the hit
	// tolerance around a corner, in pixels, on each axis.
	HandleSize = 6.0

	// MinSize floors both dimensions of a resized box.
	MinSize = 10.0

	// GuideThreshold is the strict distance under which a selected element's
	// center snaps a guideline onto the surface's center axis.
	GuideThreshold = 5.0
)

var (
	backgroundColor = color.White
	outlineColor    = color.NRGBA{R: 0x3b, G: 0x82, B: 0xf6, A: 0xff}
	handleFill      = color.White
	guideColor      = color.NRGBA{R: 0xff, G: 0x00, B: 0xff, A: 0xff}
)
