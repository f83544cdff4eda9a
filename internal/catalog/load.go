package catalog

import (
	_ "embed"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

//go:embed default.yaml
var defaultCatalog []byte

type document struct {
	Paints []Product `json:"paints"`
}

// Parse decodes a YAML or JSON catalog document of the form {paints: [...]}.
// Every product must pass Validate.
func Parse(data []byte) ([]Product, error) {
	var doc document
	if err := yaml.UnmarshalStrict(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	for _, p := range doc.Paints {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}
	return doc.Paints, nil
}

// LoadFile reads a catalog document from path.
func LoadFile(path string) ([]Product, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	return Parse(data)
}

// Default returns the catalog shipped with the binary.
func Default() []Product {
	products, err := Parse(defaultCatalog)
	if err != nil {
		panic(fmt.Sprintf("catalog: embedded default catalog is invalid: %v", err))
	}
	return products
}
