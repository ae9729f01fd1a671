package recipe

// Catalog is the ordered, read-only table of recipes loaded once at startup.
// Lookups are case-insensitive. Catalog order is the ranking tie-break order.
type Catalog struct {
	recipes []*Recipe
	index   map[string]int
}

// NewCatalog builds a catalog and checks that ids are unique and that every
// input references a recipe in the catalog. Cycles are not rejected here; the
// cost resolver reports them when it walks a cyclic chain.
func NewCatalog(recipes []*Recipe) (*Catalog, error) {
	c := &Catalog{
		recipes: make([]*Recipe, 0, len(recipes)),
		index:   make(map[string]int, len(recipes)),
	}

	for _, r := range recipes {
		key := NormalizeID(r.ID())
		if _, exists := c.index[key]; exists {
			return nil, &DuplicateRecipeError{Item: r.ID()}
		}
		c.index[key] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}

	for _, r := range c.recipes {
		for _, in := range r.inputs {
			if _, ok := c.index[NormalizeID(in.ItemID)]; !ok {
				return nil, &UnknownItemError{Item: in.ItemID, ReferencedBy: r.ID()}
			}
		}
	}

	return c, nil
}

// MustNewCatalog panics when the recipes are inconsistent
func MustNewCatalog(recipes ...*Recipe) *Catalog {
	c, err := NewCatalog(recipes)
	if err != nil {
		panic(err)
	}
	return c
}

// Get looks a recipe up by id, ignoring case. A nil catalog has no recipes.
func (c *Catalog) Get(itemID string) (*Recipe, bool) {
	if c == nil {
		return nil, false
	}
	i, ok := c.index[NormalizeID(itemID)]
	if !ok {
		return nil, false
	}
	return c.recipes[i], true
}

// All returns the recipes in catalog order
func (c *Catalog) All() []*Recipe {
	if c == nil {
		return nil
	}
	out := make([]*Recipe, len(c.recipes))
	copy(out, c.recipes)
	return out
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.recipes)
}

// ItemIDs returns every item id in catalog order. Inputs always reference
// catalog entries, so this is also the full set of items a price feed must cover.
func (c *Catalog) ItemIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, len(c.recipes))
	for i, r := range c.recipes {
		ids[i] = r.ID()
	}
	return ids
}

// CanonicalID returns the catalog spelling of an item id, or the normalized id when unknown
func (c *Catalog) CanonicalID(itemID string) string {
	if r, ok := c.Get(itemID); ok {
		return r.ID()
	}
	return NormalizeID(itemID)
}
