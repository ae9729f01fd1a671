package recipe

import (
	"fmt"
	"strings"
)

// CyclicRecipeError indicates that an item transitively requires itself
type CyclicRecipeError struct {
	Item  string
	Chain []string
}

func (e *CyclicRecipeError) Error() string {
	return fmt.Sprintf("cyclic recipe detected for %s: %s", e.Item, strings.Join(e.Chain, " -> "))
}

// UnknownItemError indicates a recipe input that is not defined in the catalog
type UnknownItemError struct {
	Item         string
	ReferencedBy string
}

func (e *UnknownItemError) Error() string {
	return fmt.Sprintf("unknown item %s (input of %s)", e.Item, e.ReferencedBy)
}

// DuplicateRecipeError indicates two recipes with the same case-insensitive id
type DuplicateRecipeError struct {
	Item string
}

func (e *DuplicateRecipeError) Error() string {
	return fmt.Sprintf("duplicate recipe: %s", e.Item)
}
