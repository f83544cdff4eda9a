package estimate

import "github.com/Simplici0/paint.works/internal/floorplan"

// WallPaintableArea returns the wall surface minus its openings, in square feet.
// The result is clamped at zero when openings exceed the wall.
func WallPaintableArea(w floorplan.Wall) float64 {
	area, _ := wallArea(w)
	return area
}

// wallArea also reports whether the clamp kicked in.
func wallArea(w floorplan.Wall) (float64, bool) {
	gross := w.Length * w.Height
	openings := 0.0
	for _, o := range w.Openings {
		openings += o.Area()
	}
	net := gross - openings
	if net < 0 {
		return 0, true
	}
	return net, false
}

// PaintableAreaForProduct sums the paintable area of the walls assigned to paintID.
func PaintableAreaForProduct(walls []floorplan.Wall, paintID string) float64 {
	total := 0.0
	for _, w := range walls {
		if w.PaintID == paintID {
			total += WallPaintableArea(w)
		}
	}
	return total
}

// UsedPaints returns the distinct paint ids assigned in the layout, in the order
// they first appear in layout.Walls().
func UsedPaints(layout floorplan.Layout) []string {
	seen := make(map[string]bool)
	ids := make([]string, 0)
	for _, w := range layout.Walls() {
		if !w.Painted() || seen[w.PaintID] {
			continue
		}
		seen[w.PaintID] = true
		ids = append(ids, w.PaintID)
	}
	return ids
}
