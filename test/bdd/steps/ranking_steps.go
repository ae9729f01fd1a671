package steps

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/warera-economy-go/internal/domain/costing"
)

func (ctx *economyContext) iRankTheCatalogByProfitability() error {
	ctx.ranking, ctx.rankErr = costing.Rank(ctx.catalog, ctx.salary, ctx.prices, ctx.defaults)
	return nil
}

func (ctx *economyContext) theRankingShouldBe(table *godog.Table) error {
	if ctx.rankErr != nil {
		return fmt.Errorf("ranking failed: %w", ctx.rankErr)
	}
	if len(ctx.ranking) != len(table.Rows)-1 {
		return fmt.Errorf("expected %d ranked items, got %d", len(table.Rows)-1, len(ctx.ranking))
	}

	for _, row := range table.Rows[1:] {
		rank, err := strconv.Atoi(getCellValueFromTable(table, row, "rank"))
		if err != nil {
			return err
		}
		record := ctx.ranking[rank-1]

		if item := getCellValueFromTable(table, row, "item"); record.Recipe.ID() != item {
			return fmt.Errorf("rank %d: expected %s, got %s", rank, item, record.Recipe.ID())
		}

		checks := []struct {
			column string
			got    float64
		}{
			{"price", record.MarketPrice},
			{"cost", record.ProductionCost},
			{"net", record.NetProfit},
		}
		for _, c := range checks {
			want, err := strconv.ParseFloat(getCellValueFromTable(table, row, c.column), 64)
			if err != nil {
				return err
			}
			if err := expectFloat(fmt.Sprintf("rank %d %s", rank, c.column), want, c.got); err != nil {
				return err
			}
		}

		// margins are written to one decimal
		margin, err := strconv.ParseFloat(getCellValueFromTable(table, row, "margin"), 64)
		if err != nil {
			return err
		}
		if math.Abs(margin-record.ProfitMargin) > 0.05 {
			return fmt.Errorf("rank %d: expected margin %v, got %v", rank, margin, record.ProfitMargin)
		}
	}
	return nil
}

func (ctx *economyContext) itemShouldHaveNetProfitAndMargin(itemID string, net, margin float64) error {
	if ctx.rankErr != nil {
		return fmt.Errorf("ranking failed: %w", ctx.rankErr)
	}
	for _, r := range ctx.ranking {
		if r.Recipe.ID() != itemID {
			continue
		}
		if err := expectFloat("net profit", net, r.NetProfit); err != nil {
			return err
		}
		return expectFloat("margin", margin, r.ProfitMargin)
	}
	return fmt.Errorf("item %s not ranked", itemID)
}

func (ctx *economyContext) theRankedItemsShouldBe(expected string) error {
	if ctx.rankErr != nil {
		return fmt.Errorf("ranking failed: %w", ctx.rankErr)
	}
	ids := make([]string, len(ctx.ranking))
	for i, r := range ctx.ranking {
		ids[i] = r.Recipe.ID()
	}
	if got := strings.Join(ids, ", "); got != expected {
		return fmt.Errorf("expected order %q, got %q", expected, got)
	}
	return nil
}

func (ctx *economyContext) rankingShouldFailMentioning(fragment string) error {
	if ctx.rankErr == nil {
		return fmt.Errorf("expected ranking to fail")
	}
	if !strings.Contains(ctx.rankErr.Error(), fragment) {
		return fmt.Errorf("expected error mentioning %q, got %q", fragment, ctx.rankErr.Error())
	}
	return nil
}
