package rules

import (
	_ "embed"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

//go:embed catalog.toml
var catalogData []byte

type catalogFile struct {
	Rules []Rule `toml:"rule"`
}

// Catalog decodes the embedded base catalog.
func Catalog() ([]Rule, error) {
	return ParseCatalog(catalogData)
}

// ParseCatalog decodes a TOML catalog made of [[rule]] tables.
func ParseCatalog(data []byte) ([]Rule, error) {
	var f catalogFile
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return f.Rules, nil
}

// BuildCatalog builds a registry from the embedded catalog plus extra.
func BuildCatalog(extra []Rule) (*Registry, error) {
	base, err := Catalog()
	if err != nil {
		return nil, err
	}
	return Build(base, extra)
}
