package recipe

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

//go:embed data/recipes.json
var defaultCatalogJSON []byte

type recipeFile struct {
	Recipes []recipeRecord `json:"recipes"`
}

type recipeRecord struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Inputs []struct {
		ID  string  `json:"id"`
		Qty float64 `json:"qty"`
	} `json:"inputs"`
	WorkPoints float64 `json:"work_points"`
	IsBase     bool    `json:"is_base"`
}

// DefaultCatalog returns the catalog bundled with the binary
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogJSON)
}

// LoadCatalogFile reads a catalog from a JSON file on disk
func LoadCatalogFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog %s: %w", path, err)
	}
	defer f.Close()
	return LoadCatalog(f)
}

// LoadCatalog decodes a catalog from r
func LoadCatalog(r io.Reader) (*Catalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes `{"recipes": [...]}` and validates every record
func ParseCatalog(data []byte) (*Catalog, error) {
	var file recipeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	recipes := make([]*Recipe, 0, len(file.Recipes))
	for _, rec := range file.Recipes {
		inputs := make([]Input, len(rec.Inputs))
		for i, in := range rec.Inputs {
			inputs[i] = Input{ItemID: in.ID, Quantity: in.Qty}
		}
		r, err := NewRecipe(rec.ID, rec.Name, inputs, rec.WorkPoints, rec.IsBase)
		if err != nil {
			return nil, fmt.Errorf("invalid recipe %q: %w", rec.ID, err)
		}
		recipes = append(recipes, r)
	}

	return NewCatalog(recipes)
}
