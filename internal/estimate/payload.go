package estimate

// PlannerPaint is one paint entry of the message sent to the assistant.
type PlannerPaint struct {
	ProductID        string  `json:"productId"`
	Brand            string  `json:"brand"`
	Name             string  `json:"name"`
	Color            string  `json:"color"`
	PricePerLiter    float64 `json:"pricePerLiter"`
	CoveragePerLiter float64 `json:"coveragePerLiter"`
	PaintableAreaSum float64 `json:"paintableArea_sum"`
}

// PlannerPayload is the completed-plan description handed to the assistant.
type PlannerPayload struct {
	Paints []PlannerPaint `json:"paints"`
}

// NewPlannerPayload derives the assistant payload from a summary.
func NewPlannerPayload(s Summary) PlannerPayload {
	p := PlannerPayload{Paints: make([]PlannerPaint, 0, len(s.Estimates))}
	for _, e := range s.Estimates {
		p.Paints = append(p.Paints, PlannerPaint{
			ProductID:        e.PaintProduct.ID,
			Brand:            e.PaintProduct.Brand,
			Name:             e.PaintProduct.Name,
			Color:            e.PaintProduct.Color,
			PricePerLiter:    e.PaintProduct.PricePerLiter,
			CoveragePerLiter: e.PaintProduct.CoveragePerLiter,
			PaintableAreaSum: e.TotalArea,
		})
	}
	return p
}
