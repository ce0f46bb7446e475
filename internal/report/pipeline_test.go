package report_test

import (
	"testing"

	"github.com/egannguyen/sales-orders/internal/entity"
	"github.com/egannguyen/sales-orders/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Five sellers in group key order; the two best come last.
var groups = []entity.SellerRevenue{
	{Seller: entity.User{ID: "s-1"}, Total: 100},
	{Seller: entity.User{ID: "s-2"}, Total: 300},
	{Seller: entity.User{ID: "s-3"}, Total: 200},
	{Seller: entity.User{ID: "s-4"}, Total: 500},
	{Seller: entity.User{ID: "s-5"}, Total: 400},
}

func ids(rows []entity.SellerRevenue) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Seller.ID)
	}
	return out
}

func TestTopSellers_SortThenLimitReturnsTrueTopThree(t *testing.T) {
	got := report.TopSellers(groups, report.TopSellersLimit, report.SortThenLimit)
	assert.Equal(t, []string{"s-4", "s-5", "s-2"}, ids(got))
}

func TestTopSellers_LimitThenSortKeepsLegacyOrdering(t *testing.T) {
	got := report.TopSellers(groups, report.TopSellersLimit, report.LimitThenSort)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"s-2", "s-3", "s-1"}, ids(got))
}

func TestTopSellers_DoesNotMutateInput(t *testing.T) {
	report.TopSellers(groups, report.TopSellersLimit, report.SortThenLimit)
	assert.Equal(t, "s-1", groups[0].Seller.ID)
}

func TestTopSellers_FewerThanLimit(t *testing.T) {
	got := report.TopSellers(groups[:2], report.TopSellersLimit, report.SortThenLimit)
	assert.Equal(t, []string{"s-2", "s-1"}, ids(got))
}

func TestParsePipeline(t *testing.T) {
	p, err := report.ParsePipeline("")
	require.NoError(t, err)
	assert.Equal(t, report.SortThenLimit, p)

	p, err = report.ParsePipeline("legacy")
	require.NoError(t, err)
	assert.Equal(t, report.LimitThenSort, p)

	_, err = report.ParsePipeline("random")
	assert.ErrorIs(t, err, entity.ErrInvalidInput)
}
