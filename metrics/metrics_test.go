package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferreirogomes/nftmarket/metrics"
)

func TestCounters(t *testing.T) {
	m, err := metrics.New()
	require.NoError(t, err)

	m.Minted()
	m.Minted()
	m.Listed()
	m.Sold(10)
	m.Failed("purchaseItem", "AlreadySold")

	n, err := testutil.GatherAndCount(m.Gatherer(),
		"nftmarket_tokens_minted_total",
		"nftmarket_items_listed_total",
		"nftmarket_items_sold_total",
		"nftmarket_fees_collected_total",
		"nftmarket_operations_failed_total",
	)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
}
