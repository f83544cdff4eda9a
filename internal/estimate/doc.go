// Package estimate turns a floor plan into paint quantities and costs.
//
// The pipeline is one pass and holds no state: each wall's paintable area is
// computed, areas are grouped by assigned paint, each group is converted into
// liters (two coats, rounded up to 0.1 L) and cost, and costs are summed into a
// grand total. Every function is safe for concurrent use and never modifies its
// input.
package estimate
