package estimate

import (
	"errors"
	"fmt"
)

// ErrMalformedCatalogEntry reports a referenced product whose numbers cannot
// produce an estimate, such as a non-positive coverage.
type ErrMalformedCatalogEntry struct {
	error
	ProductID string
	Field     string
	Value     float64
}

func NewErrMalformedCatalogEntry(productID, field string, value float64) *ErrMalformedCatalogEntry {
	return &ErrMalformedCatalogEntry{
		error:     fmt.Errorf("paint %s has invalid %s %v", productID, field, value),
		ProductID: productID,
		Field:     field,
		Value:     value,
	}
}

// ErrQuantityOutOfRange reports dimensions so large that the paint quantity
// or its cost cannot be represented as a finite number. ProductID is empty
// when only the grand total overflows.
type ErrQuantityOutOfRange struct {
	error
	ProductID string
	Area      float64
}

func NewErrQuantityOutOfRange(productID, what string, area float64) *ErrQuantityOutOfRange {
	msg := fmt.Sprintf("%s is out of range", what)
	if productID != "" {
		msg = fmt.Sprintf("%s for paint %s is out of range (paintable area %v)", what, productID, area)
	}
	return &ErrQuantityOutOfRange{
		error:     errors.New(msg),
		ProductID: productID,
		Area:      area,
	}
}
