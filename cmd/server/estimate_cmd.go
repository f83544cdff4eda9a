package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"github.com/Simplici0/paint.works/internal/catalog"
	"github.com/Simplici0/paint.works/internal/estimate"
	"github.com/Simplici0/paint.works/internal/floorplan"
)

func newEstimateCmd(a *app) *cobra.Command {
	var (
		layoutPath  string
		catalogPath string
		strict      bool
	)

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Print the paint needed for a layout file (JSON or YAML)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if catalogPath == "" {
				catalogPath = a.cfg.CatalogPath
			}
			layout, err := readLayout(layoutPath)
			if err != nil {
				return err
			}
			if strict {
				if err := floorplan.Validate(layout); err != nil {
					return err
				}
			}
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}

			summary, err := estimate.Summarize(layout, cat, estimate.WithLogger(a.logger))
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().StringVarP(&layoutPath, "layout", "l", "", "layout file")
	cmd.Flags().StringVarP(&catalogPath, "catalog", "c", "", "paint catalog file (defaults to PAINT_CATALOG_PATH, then the built-in catalog)")
	cmd.Flags().BoolVar(&strict, "validate", false, "reject layouts that break room invariants")
	_ = cmd.MarkFlagRequired("layout")
	return cmd
}

func readLayout(path string) (floorplan.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return floorplan.Layout{}, fmt.Errorf("read layout: %w", err)
	}
	var layout floorplan.Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return floorplan.Layout{}, fmt.Errorf("parse layout %s: %w", path, err)
	}
	return layout, nil
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	products := catalog.Default()
	if path != "" {
		var err error
		if products, err = catalog.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return catalog.New(products)
}

func printSummary(w io.Writer, s estimate.Summary) {
	header := color.New(color.Bold, color.Underline)
	name := color.New(color.FgCyan)
	total := color.New(color.Bold, color.FgGreen)

	if len(s.Estimates) == 0 {
		fmt.Fprintln(w, color.YellowString("No painted walls."))
		return
	}

	header.Fprintf(w, "%-12s %-36s %10s %8s %10s\n", "PAINT", "PRODUCT", "AREA", "LITERS", "COST")
	for _, e := range s.Estimates {
		product := e.PaintProduct.Brand + " " + e.PaintProduct.Name
		fmt.Fprintf(w, "%-12s %s %10.2f %8.1f %10.2f\n",
			e.PaintID, name.Sprintf("%-36s", product), e.TotalArea, e.LitersRequired, e.TotalCost)
	}
	total.Fprintf(w, "%-12s %-36s %10s %8s %10.2f\n", "TOTAL", "", "", "", s.GrandTotal)
}
