package annotate

import (
	"math"
	"unicode/utf8"
)

// Layout constants in CSS pixels
const (
	labelMinDistance = 38.0 // emotion label to need label
	labelTextOffset  = 15.0 // emotion text sits above its star

	bridgeRatio       = 0.35
	bridgeRatioStep   = 0.05
	bridgeOffset      = 40.0
	singleOffset      = 30.0
	singleMaxRatio    = 0.45
	singleRatioReach  = 55.0
	farThreadDistance = 200.0
	farThreadRatio    = 0.28
	staggerStep       = 18.0

	viewportPad       = 20.0
	viewportBottomPad = 130.0
	nearBottomBand    = 200.0

	descriptionGap  = 70.0
	descriptionStep = 35.0
	descriptionPad  = 8.0
	inquiryPad      = 6.0
	fallbackPush    = 180.0

	charWidth  = 7.0
	lineHeight = 18.0
)

var escapeSteps = []float64{35, 55, 80, 110, 150}

// Rect is an axis-aligned box
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Overlaps reports whether two boxes intersect
func (r Rect) Overlaps(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left && r.Top < o.Bottom && r.Bottom > o.Top
}

func overlapsAny(r Rect, rects []Rect) bool {
	for _, o := range rects {
		if r.Overlaps(o) {
			return true
		}
	}
	return false
}

// centeredBox is a box of half extents hw, hh around (x, y)
func centeredBox(x, y, hw, hh float64) Rect {
	return Rect{Left: x - hw, Top: y - hh, Right: x + hw, Bottom: y + hh}
}

// textExtents estimates the half extents of a single line of text
func textExtents(text string, pad float64) (hw, hh float64) {
	return float64(utf8.RuneCountInString(text))*charWidth/2 + pad, lineHeight/2 + pad
}

// pushLabel moves an emotion label away from every need label closer than
// labelMinDistance, measured from the text position above the star.
func pushLabel(x, y float64, needs [][2]float64) (float64, float64) {
	textY := y - labelTextOffset
	for _, n := range needs {
		dx, dy := x-n[0], textY-n[1]
		d := math.Hypot(dx, dy)
		if d < labelMinDistance && d > 0 {
			push := labelMinDistance - d
			x += dx / d * push
			y += dy / d * push
		}
	}
	return x, y
}

// inquiryPosition places inquiry index of total along the thread from the
// emotion to its need, offset perpendicular on alternating sides.
func inquiryPosition(ex, ey, nx, ny float64, index, total int) (float64, float64) {
	vx, vy := nx-ex, ny-ey
	dist := math.Hypot(vx, vy)
	if dist == 0 {
		dist = 1
	}

	var ratio, offset float64
	if total > 1 {
		ratio = bridgeRatio + float64(index)*bridgeRatioStep
		offset = bridgeOffset
	} else {
		ratio = math.Min(singleMaxRatio, singleRatioReach/dist)
		if dist > farThreadDistance {
			ratio = farThreadRatio
		}
		offset = singleOffset
	}
	offset += math.Floor(float64(index)/2) * staggerStep

	side := sideOf(index)
	px := ex + ratio*vx + (-vy/dist)*offset*side
	py := ey + ratio*vy + (vx/dist)*offset*side
	return px, py
}

func sideOf(index int) float64 {
	if index%2 == 0 {
		return 1
	}
	return -1
}

// clampToViewport keeps a point inside the padded viewport, leaving room at
// the bottom for the HUD.
func clampToViewport(x, y, width, height float64) (float64, float64) {
	x = math.Max(viewportPad, math.Min(x, width-viewportPad))
	y = math.Max(viewportPad, math.Min(y, height-viewportBottomPad))
	return x, y
}

type direction struct{ dx, dy float64 }

// resolveOverlap nudges a box centered at (cx, cy) off the obstacles,
// trying escape directions at growing steps. It reports whether the result
// moved away from the thread and needs a leader line.
func resolveOverlap(cx, cy, hw, hh, ex, ey, nx, ny float64, index int, obstacles []Rect, width, height float64) (float64, float64, bool) {
	if !overlapsAny(centeredBox(cx, cy, hw, hh), obstacles) {
		return cx, cy, false
	}

	vx, vy := nx-ex, ny-ey
	dist := math.Hypot(vx, vy)
	if dist == 0 {
		dist = 1
	}
	perpX, perpY := -vy/dist, vx/dist
	alongX, alongY := vx/dist, vy/dist
	side := sideOf(index)

	var dirs []direction
	if cy > height-nearBottomBand {
		dirs = []direction{
			{0, -1},
			{0.5, -0.866},
			{-0.5, -0.866},
			{0.707, -0.707},
			{-0.707, -0.707},
			{perpX * side, perpY * side},
			{-perpX * side, -perpY * side},
		}
	} else {
		dirs = []direction{
			{perpX * side, perpY * side},
			{-perpX * side, -perpY * side},
			{alongX, alongY},
			{(perpX + alongX) * 0.707, (perpY + alongY) * 0.707},
			{(-perpX + alongX) * 0.707, (-perpY + alongY) * 0.707},
			{(perpX - alongX) * 0.707, (perpY - alongY) * 0.707},
			{(-perpX - alongX) * 0.707, (-perpY - alongY) * 0.707},
		}
	}

	for _, step := range escapeSteps {
		for _, d := range dirs {
			x, y := clampToViewport(cx+d.dx*step, cy+d.dy*step, width, height)
			if !overlapsAny(centeredBox(x, y, hw, hh), obstacles) {
				return x, y, true
			}
		}
	}

	x, y := clampToViewport(cx+perpX*side*fallbackPush, cy+perpY*side*fallbackPush, width, height)
	return x, y, true
}
