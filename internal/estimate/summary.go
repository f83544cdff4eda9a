package estimate

import (
	"go.uber.org/zap"

	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/floorplan"
)

// PaintEstimate is the purchase line for one paint product.
type PaintEstimate struct {
	PaintID        string          `json:"paintId"`
	PaintProduct   catalog.Product `json:"paintProduct"`
	TotalArea      float64         `json:"totalArea"`
	LitersRequired float64         `json:"litersRequired"`
	TotalCost      float64         `json:"totalCost"`
}

// Summary is the estimate for a whole layout.
type Summary struct {
	Estimates  []PaintEstimate `json:"estimates"`
	GrandTotal float64         `json:"grandTotal"`
}

type options struct {
	logger *zap.Logger
}

// Option configures Summarize.
type Option func(*options)

// WithLogger reports non-fatal data problems (clamped walls, orphan paint ids)
// at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// Summarize estimates every paint used in layout that exists in cat. Paint ids
// missing from the catalog are skipped. Errors are a referenced product with
// malformed numbers, or dimensions too large to produce finite quantities.
func Summarize(layout floorplan.Layout, cat *catalog.Catalog, opts ...Option) (Summary, error) {
	o := options{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.logger.Named("estimate")

	walls := layout.Walls()
	for _, w := range walls {
		if _, clamped := wallArea(w); clamped && w.Painted() {
			log.Debug("openings exceed wall area, clamping to zero",
				zap.String("wall_id", w.ID),
				zap.String("room_id", w.RoomID))
		}
	}

	summary := Summary{Estimates: make([]PaintEstimate, 0)}
	for _, paintID := range UsedPaints(layout) {
		product, ok := cat.Lookup(paintID)
		if !ok {
			log.Debug("paint not in catalog, skipping", zap.String("paint_id", paintID))
			continue
		}

		area := PaintableAreaForProduct(walls, paintID)
		qty, err := Quote(area, product)
		if err != nil {
			return Summary{}, err
		}

		summary.Estimates = append(summary.Estimates, PaintEstimate{
			PaintID:        paintID,
			PaintProduct:   product,
			TotalArea:      area,
			LitersRequired: qty.Liters,
			TotalCost:      qty.Cost,
		})
	}
	summary.GrandTotal = GrandTotal(summary.Estimates)
	if !finite(summary.GrandTotal) {
		return Summary{}, NewErrQuantityOutOfRange("", "grand total", 0)
	}

	return summary, nil
}

// GrandTotal sums the cost of every estimate, in order.
func GrandTotal(estimates []PaintEstimate) float64 {
	total := 0.0
	for _, e := range estimates {
		total += e.TotalCost
	}
	return total
}
