package network

import (
	"sort"

	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

// group aggregates every facility producing the same item
type group struct {
	key           string
	itemID        string
	facilityCount int
	output        float64
	labor         float64
	inputs        []recipe.Input
}

// ledger is the result of the first pass: system-wide production and
// consumption per item, with items in first-seen order
type ledger struct {
	groups   []*group
	produced map[string]float64
	consumed map[string]float64
	order    []string
	names    map[string]string
}

func (l *ledger) see(key, itemID string) {
	if _, ok := l.names[key]; ok {
		return
	}
	l.names[key] = itemID
	l.order = append(l.order, key)
}

func buildLedger(outputs []FacilityOutput, catalog *recipe.Catalog) *ledger {
	l := &ledger{
		produced: make(map[string]float64),
		consumed: make(map[string]float64),
		names:    make(map[string]string),
	}

	byKey := make(map[string]*group)
	for _, o := range outputs {
		key := recipe.NormalizeID(o.ItemID)
		if key == "" {
			key = "unknown"
		}
		g, ok := byKey[key]
		if !ok {
			g = &group{key: key, itemID: key}
			if key != "unknown" {
				g.itemID = catalog.CanonicalID(o.ItemID)
			}
			if rec, found := catalog.Get(o.ItemID); found {
				g.inputs = rec.Inputs()
			}
			byKey[key] = g
			l.groups = append(l.groups, g)
			l.see(key, g.itemID)
		}
		g.facilityCount++
		g.output += o.OutputRate
		g.labor += o.LaborCost
		l.produced[key] += o.OutputRate
	}

	for _, g := range l.groups {
		for _, in := range g.inputs {
			key := recipe.NormalizeID(in.ItemID)
			l.see(key, catalog.CanonicalID(in.ItemID))
			l.consumed[key] += in.Quantity * g.output
		}
	}

	return l
}

func (l *ledger) flows() []NetworkFlowEntry {
	entries := make([]NetworkFlowEntry, 0, len(l.order))
	for _, key := range l.order {
		produced := l.produced[key]
		consumed := l.consumed[key]
		entries = append(entries, NetworkFlowEntry{
			ItemID:   l.names[key],
			Produced: produced,
			Consumed: consumed,
			Net:      produced - consumed,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Produced > entries[j].Produced
	})
	return entries
}

// Flows computes the per-item produced/consumed/net balance over every item
// that appears as an output or an input, ordered by production, highest first
func Flows(outputs []FacilityOutput, catalog *recipe.Catalog) []NetworkFlowEntry {
	return buildLedger(outputs, catalog).flows()
}
