// Package catalog holds the paint products walls can be assigned to.
package catalog

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Product is one paint product. Coverage is square feet per liter for a single coat.
type Product struct {
	ID               string  `json:"id" validate:"required"`
	Brand            string  `json:"brand" validate:"required"`
	Name             string  `json:"name" validate:"required"`
	Color            string  `json:"color" validate:"required"`
	Description      string  `json:"description,omitempty"`
	PricePerLiter    float64 `json:"pricePerLiter" validate:"gt=0"`
	CoveragePerLiter float64 `json:"coveragePerLiter" validate:"gt=0"`
	ThumbnailURL     string  `json:"thumbnailUrl,omitempty"`
}

// Validate checks the product fields.
func (p Product) Validate() error {
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("validate product: %w", err)
		}
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
		}
		return fmt.Errorf("product %q: %s", p.ID, strings.Join(fields, ", "))
	}
	return nil
}

// Catalog is an ordered, read-only set of products with unique ids.
type Catalog struct {
	products []Product
	byID     map[string]int
}

// New builds a catalog. Products are not validated here: a malformed entry is
// only an error once a wall references it.
func New(products []Product) (*Catalog, error) {
	c := &Catalog{
		products: append([]Product(nil), products...),
		byID:     make(map[string]int, len(products)),
	}
	for i, p := range c.products {
		if p.ID == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := c.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate catalog id %q", p.ID)
		}
		c.byID[p.ID] = i
	}
	return c, nil
}

// Lookup returns the product with the given id.
func (c *Catalog) Lookup(id string) (Product, bool) {
	if c == nil {
		return Product{}, false
	}
	i, ok := c.byID[id]
	if !ok {
		return Product{}, false
	}
	return c.products[i], true
}

// Products returns a copy of the products in catalog order.
func (c *Catalog) Products() []Product {
	if c == nil {
		return nil
	}
	return append([]Product(nil), c.products...)
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.products)
}
