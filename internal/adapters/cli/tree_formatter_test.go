package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
)

func sampleTree() *costing.CostNode {
	return &costing.CostNode{
		ItemID: "steel", Method: costing.AcquisitionCraft, Quantity: 1, LaborCost: 1, UnitCost: 5.5, Total: 5.5,
		Children: []*costing.CostNode{
			{ItemID: "iron", Method: costing.AcquisitionCraft, Quantity: 2, LaborCost: 0.5, UnitCost: 2, Total: 4,
				Children: []*costing.CostNode{
					{ItemID: "ore", Method: costing.AcquisitionBuy, Quantity: 1.5, UnitPrice: 1, UnitCost: 1, Total: 1.5},
				},
			},
			{ItemID: "coal", Method: costing.AcquisitionUnknown, Quantity: 0.25},
		},
	}
}

func TestFormatTree_Layout(t *testing.T) {
	got := NewTreeFormatter(false).FormatTree(sampleTree())

	want := strings.Join([]string{
		"steel [CRAFT] labor 1.000 = 5.500",
		"├── iron x2 [CRAFT] labor 0.500 = 4.000",
		"│   └── ore x1.5 [BUY] @ 1.000 = 1.500",
		"└── coal x0.25 [UNKNOWN] = 0.000",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestFormatTree_Colors(t *testing.T) {
	got := NewTreeFormatter(true).FormatTree(sampleTree())

	assert.Contains(t, got, "[\033[33mCRAFT\033[0m]")
	assert.Contains(t, got, "[\033[32mBUY\033[0m]")
	assert.Contains(t, got, "[\033[31mUNKNOWN\033[0m]")
}

func TestFormatTree_Nil(t *testing.T) {
	f := NewTreeFormatter(false)

	assert.Equal(t, "(empty tree)", f.FormatTree(nil))
	assert.Equal(t, "No cost tree", f.FormatTreeSummary(nil))
}

func TestFormatTreeSummary(t *testing.T) {
	got := NewTreeFormatter(false).FormatTreeSummary(sampleTree())

	assert.Equal(t, "Tree: 4 nodes (1 BUY, 2 CRAFT), depth=3, 1 without price or recipe", got)
}

func TestTrimFloat(t *testing.T) {
	assert.Equal(t, "2", trimFloat(2))
	assert.Equal(t, "0.25", trimFloat(0.25))
	assert.Equal(t, "1.333", trimFloat(4.0/3))
}
