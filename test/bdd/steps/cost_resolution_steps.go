package steps

import (
	"errors"
	"fmt"
	"strings"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
	"github.com/andrescamacho/warera-economy-go/internal/domain/recipe"
)

func (ctx *economyContext) iResolveTheProductionCostOf(itemID string) error {
	resolver, err := costing.NewResolver(ctx.catalog, ctx.prices, ctx.salary, ctx.defaults)
	if err != nil {
		ctx.costErr = err
		return nil
	}
	ctx.breakdown, ctx.costErr = resolver.Explain(itemID)
	return nil
}

func (ctx *economyContext) theProductionCostShouldBe(expected float64) error {
	if ctx.costErr != nil {
		return fmt.Errorf("expected a cost, got error: %w", ctx.costErr)
	}
	return expectFloat("production cost", expected, ctx.breakdown.UnitCost)
}

func (ctx *economyContext) theBreakdownRootShouldBeWithMethod(itemID, method string) error {
	if ctx.breakdown == nil {
		return fmt.Errorf("no breakdown (error: %v)", ctx.costErr)
	}
	if ctx.breakdown.ItemID != itemID {
		return fmt.Errorf("expected root %s, got %s", itemID, ctx.breakdown.ItemID)
	}
	if string(ctx.breakdown.Method) != method {
		return fmt.Errorf("expected root method %s, got %s", method, ctx.breakdown.Method)
	}
	return nil
}

func (ctx *economyContext) theBreakdownShouldContainWithMethod(itemID, method string) error {
	found := false
	walkBreakdown(ctx.breakdown, func(n *costing.CostNode) {
		if n.ItemID == itemID && string(n.Method) == method {
			found = true
		}
	})
	if !found {
		return fmt.Errorf("breakdown has no %s node with method %s", itemID, method)
	}
	return nil
}

func (ctx *economyContext) theBreakdownShouldHaveNodes(expected int) error {
	count := 0
	walkBreakdown(ctx.breakdown, func(*costing.CostNode) { count++ })
	if count != expected {
		return fmt.Errorf("expected %d nodes, got %d", expected, count)
	}
	return nil
}

func (ctx *economyContext) resolutionShouldFailWithACyclicRecipeErrorNaming(chain string) error {
	var cyclic *recipe.CyclicRecipeError
	if !errors.As(ctx.costErr, &cyclic) {
		return fmt.Errorf("expected a cyclic recipe error, got %v", ctx.costErr)
	}
	if got := strings.Join(cyclic.Chain, " -> "); got != chain {
		return fmt.Errorf("expected chain %q, got %q", chain, got)
	}
	return nil
}

func walkBreakdown(node *costing.CostNode, visit func(*costing.CostNode)) {
	if node == nil {
		return
	}
	visit(node)
	for _, child := range node.Children {
		walkBreakdown(child, visit)
	}
}
