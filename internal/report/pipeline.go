// Package report ranks revenue aggregates for the fixed sales reports.
package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/egannguyen/sales-orders/internal/entity"
)

// TopSellersLimit is the number of sellers in the top sellers report.
const TopSellersLimit = 3

// Pipeline selects how the top sellers report is ranked.
type Pipeline string

const (
	// SortThenLimit ranks every seller and keeps the best. It always
	// returns the true top sellers.
	SortThenLimit Pipeline = "sort-then-limit"
	// LimitThenSort keeps the first sellers in group order and then ranks
	// them. It reproduces the legacy report and can miss higher totals.
	LimitThenSort Pipeline = "limit-then-sort"
)

// ParsePipeline maps a query value to a Pipeline. Empty selects SortThenLimit.
func ParsePipeline(s string) (Pipeline, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "default", string(SortThenLimit):
		return SortThenLimit, nil
	case "legacy", string(LimitThenSort):
		return LimitThenSort, nil
	}
	return "", fmt.Errorf("%w: unknown report pipeline %q", entity.ErrInvalidInput, s)
}

// TopSellers ranks groups, given in group key order, by total.
func TopSellers(groups []entity.SellerRevenue, limit int, p Pipeline) []entity.SellerRevenue {
	out := make([]entity.SellerRevenue, len(groups))
	copy(out, groups)

	if p == LimitThenSort {
		out = truncate(out, limit)
		sortByTotal(out)
		return out
	}
	sortByTotal(out)
	return truncate(out, limit)
}

func sortByTotal(rows []entity.SellerRevenue) {
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
}

func truncate(rows []entity.SellerRevenue, limit int) []entity.SellerRevenue {
	if limit >= 0 && len(rows) > limit {
		return rows[:limit]
	}
	return rows
}
