package cli

import (
	"fmt"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
)

// TreeFormatter renders cost breakdown trees
type TreeFormatter struct {
	useColors bool
}

// NewTreeFormatter creates a new tree formatter
func NewTreeFormatter(useColors bool) *TreeFormatter {
	return &TreeFormatter{useColors: useColors}
}

// FormatTree renders a cost breakdown, one node per line
func (f *TreeFormatter) FormatTree(root *costing.CostNode) string {
	if root == nil {
		return "(empty tree)"
	}

	var builder strings.Builder
	f.formatNode(&builder, root, "", true, true)
	return builder.String()
}

// formatNode recursively formats a node and its children
func (f *TreeFormatter) formatNode(builder *strings.Builder, node *costing.CostNode, prefix string, isLast bool, isRoot bool) {
	var linePrefix string
	if isRoot {
		linePrefix = ""
	} else if isLast {
		linePrefix = prefix + "└── "
	} else {
		linePrefix = prefix + "├── "
	}

	quantityText := ""
	if !isRoot {
		quantityText = fmt.Sprintf(" x%s", trimFloat(node.Quantity))
	}

	detail := ""
	switch node.Method {
	case costing.AcquisitionBuy:
		detail = fmt.Sprintf(" @ %.3f", node.UnitPrice)
	case costing.AcquisitionCraft:
		detail = fmt.Sprintf(" labor %.3f", node.LaborCost)
	}

	fmt.Fprintf(builder, "%s%s%s [%s%s%s]%s = %.3f\n",
		linePrefix,
		node.ItemID,
		quantityText,
		f.methodColor(node.Method),
		node.Method,
		f.colorReset(),
		detail,
		node.Total,
	)

	var childPrefix string
	if isRoot {
		childPrefix = ""
	} else if isLast {
		childPrefix = prefix + "    "
	} else {
		childPrefix = prefix + "│   "
	}

	for i, child := range node.Children {
		f.formatNode(builder, child, childPrefix, i == len(node.Children)-1, false)
	}
}

// methodColor returns the ANSI color for an acquisition method
func (f *TreeFormatter) methodColor(method costing.AcquisitionMethod) string {
	if !f.useColors {
		return ""
	}

	switch method {
	case costing.AcquisitionBuy:
		return "\033[32m" // Green
	case costing.AcquisitionCraft:
		return "\033[33m" // Yellow
	case costing.AcquisitionUnknown:
		return "\033[31m" // Red
	default:
		return ""
	}
}

func (f *TreeFormatter) colorReset() string {
	if !f.useColors {
		return ""
	}
	return "\033[0m"
}

// FormatTreeSummary counts nodes per acquisition method
func (f *TreeFormatter) FormatTreeSummary(root *costing.CostNode) string {
	if root == nil {
		return "No cost tree"
	}

	counts := map[costing.AcquisitionMethod]int{}
	depth := 0
	var walk func(n *costing.CostNode, level int)
	walk = func(n *costing.CostNode, level int) {
		counts[n.Method]++
		if level > depth {
			depth = level
		}
		for _, c := range n.Children {
			walk(c, level+1)
		}
	}
	walk(root, 1)

	total := counts[costing.AcquisitionBuy] + counts[costing.AcquisitionCraft] + counts[costing.AcquisitionUnknown]
	summary := fmt.Sprintf("Tree: %d nodes (%d BUY, %d CRAFT), depth=%d",
		total, counts[costing.AcquisitionBuy], counts[costing.AcquisitionCraft], depth)
	if n := counts[costing.AcquisitionUnknown]; n > 0 {
		summary += fmt.Sprintf(", %d without price or recipe", n)
	}
	return summary
}

// trimFloat prints quantities without trailing zeros
func trimFloat(v float64) string {
	s := fmt.Sprintf("%.3f", v)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
