package estimate

import (
	"math"

	"github.com/Simplici0/paint.works/internal/catalog"
)

const (
	// Coats applied to every painted wall.
	Coats = 2
	// litersPerIncrement is the inverse of the 0.1 L purchase granularity.
	litersPerIncrement = 10
)

// Quantity is the amount of one paint to buy and what it costs.
type Quantity struct {
	Liters float64
	Cost   float64
}

// Liters returns the paint needed to cover area with Coats coats, rounded up to
// the next 0.1 L.
func Liters(area, coveragePerLiter float64) float64 {
	needed := area * Coats / coveragePerLiter
	return math.Ceil(needed*litersPerIncrement) / litersPerIncrement
}

// Quote converts an area into liters and cost for product.
func Quote(area float64, product catalog.Product) (Quantity, error) {
	coverage := product.CoveragePerLiter
	if !(coverage > 0) || math.IsInf(coverage, 1) {
		return Quantity{}, NewErrMalformedCatalogEntry(product.ID, "coveragePerLiter", coverage)
	}
	if math.IsNaN(product.PricePerLiter) || math.IsInf(product.PricePerLiter, 0) || product.PricePerLiter < 0 {
		return Quantity{}, NewErrMalformedCatalogEntry(product.ID, "pricePerLiter", product.PricePerLiter)
	}
	if !finite(area) {
		return Quantity{}, NewErrQuantityOutOfRange(product.ID, "paintable area", area)
	}
	if area <= 0 {
		return Quantity{}, nil
	}

	liters := Liters(area, coverage)
	if !finite(liters) {
		return Quantity{}, NewErrQuantityOutOfRange(product.ID, "liters required", area)
	}
	cost := liters * product.PricePerLiter
	if !finite(cost) {
		return Quantity{}, NewErrQuantityOutOfRange(product.ID, "cost", area)
	}
	return Quantity{Liters: liters, Cost: cost}, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
