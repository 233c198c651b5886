package fund

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func evenHolding(amount uint64, weight uint32) AssetHolding {
	return AssetHolding{
		VaultAmount:  amount,
		AssetReserve: 1_000_000,
		BasicReserve: 1_000_000,
		Weight:       weight,
	}
}

func TestPlanRebalance_Balanced(t *testing.T) {
	plan, err := PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(70, 7), evenHolding(30, 3)},
		SlippageDivider: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{70, 30}, plan.Values)
	assert.Equal(t, []uint64{70, 30}, plan.Targets)
	assert.EqualValues(t, 100, plan.TotalValue)
	assert.Empty(t, plan.Orders())
}

func TestPlanRebalance_Tolerance(t *testing.T) {
	plan, err := PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(1000, 99), evenHolding(1000, 101)},
		SlippageDivider: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{990, 1010}, plan.Targets)
	assert.Empty(t, plan.Orders())

	plan, err = PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(1000, 989), evenHolding(1000, 1011)},
		SlippageDivider: 100,
	})
	require.NoError(t, err)

	assert.Equal(t, []Order{
		{Asset: 0, Side: SideSell, Delta: 11, AmountIn: 11, MinimumAmountOut: 11},
		{Asset: 1, Side: SideBuy, Delta: 11, AmountIn: 11, MinimumAmountOut: 11},
	}, plan.Orders())
}

func TestPlanRebalance_SellsBeforeBuys(t *testing.T) {
	// The buy is computed for an earlier asset than the sell.
	plan, err := PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(1000, 1011), evenHolding(1000, 989)},
		SlippageDivider: 100,
	})
	require.NoError(t, err)

	orders := plan.Orders()
	require.Len(t, orders, 2)
	assert.Equal(t, SideSell, orders[0].Side)
	assert.Equal(t, 1, orders[0].Asset)
	assert.Equal(t, SideBuy, orders[1].Side)
	assert.Equal(t, 0, orders[1].Asset)
}

func TestPlanRebalance_Prices(t *testing.T) {
	plan, err := PlanRebalance(&RebalanceInput{
		Assets: []AssetHolding{
			evenHolding(30_000, 4),
			{VaultAmount: 50_000, AssetReserve: 1_000, BasicReserve: 2_000, Weight: 21},
			evenHolding(100_000, 21),
		},
		SlippageDivider: 10,
	})
	require.NoError(t, err)

	assert.Equal(t, []uint64{30_000, 100_000, 100_000}, plan.Values)
	assert.Equal(t, []uint64{20_000, 105_000, 105_000}, plan.Targets)
	assert.EqualValues(t, 230_000, plan.TotalValue)
	assert.Equal(t, []Order{
		{Asset: 0, Side: SideSell, Delta: 10_000, AmountIn: 10_000, MinimumAmountOut: 9_000},
	}, plan.Orders())

	// Buys are priced in reference units and bounded in asset units.
	plan, err = PlanRebalance(&RebalanceInput{
		Assets: []AssetHolding{
			{VaultAmount: 50_000, AssetReserve: 1_000, BasicReserve: 2_000, Weight: 1},
		},
		BasicAmount:     100_000,
		SlippageDivider: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, []Order{
		{Asset: 0, Side: SideBuy, Delta: 100_000, AmountIn: 100_000, MinimumAmountOut: 49_500},
	}, plan.Orders())
}

func TestPlanRebalance_DropsEmptySells(t *testing.T) {
	plan, err := PlanRebalance(&RebalanceInput{
		Assets: []AssetHolding{
			{VaultAmount: 1, AssetReserve: 1, BasicReserve: 1_000, Weight: 1},
			evenHolding(1_000, 2),
		},
		SlippageDivider: 100,
	})
	require.NoError(t, err)

	assert.Empty(t, plan.Sells)
	require.Len(t, plan.Buys, 1)
	assert.Equal(t, 1, plan.Buys[0].Asset)
	assert.EqualValues(t, 333, plan.Buys[0].Delta)
}

func TestPlanRebalance_Errors(t *testing.T) {
	_, err := PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(1, 1)},
		SlippageDivider: 0,
	})
	assert.Equal(t, ErrorDivisionByZero, err)

	_, err = PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{{VaultAmount: 1, BasicReserve: 1, Weight: 1}},
		SlippageDivider: 100,
	})
	assert.Equal(t, ErrorDivisionByZero, err)

	_, err = PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{evenHolding(1, 0), evenHolding(1, 0)},
		SlippageDivider: 100,
	})
	assert.Equal(t, ErrorDivisionByZero, err)

	_, err = PlanRebalance(&RebalanceInput{
		Assets:          []AssetHolding{{VaultAmount: math.MaxUint64, AssetReserve: 1, BasicReserve: 2, Weight: 1}},
		SlippageDivider: 100,
	})
	assert.Equal(t, ErrorOperationOverflow, err)

	_, err = PlanRebalance(&RebalanceInput{
		Assets: []AssetHolding{
			{VaultAmount: math.MaxUint64, AssetReserve: 1, BasicReserve: 1, Weight: 1},
			{VaultAmount: 1, AssetReserve: 1, BasicReserve: 1, Weight: 1},
		},
		SlippageDivider: 100,
	})
	assert.Equal(t, ErrorOperationOverflow, err)

	// Intermediate products wider than 64 bits are fine.
	plan, err := PlanRebalance(&RebalanceInput{
		Assets: []AssetHolding{
			{VaultAmount: math.MaxUint64 / 4, AssetReserve: math.MaxUint64, BasicReserve: math.MaxUint64, Weight: math.MaxUint32},
		},
		SlippageDivider: 100,
	})
	require.NoError(t, err)
	assert.EqualValues(t, uint64(math.MaxUint64/4), plan.TotalValue)
	assert.Empty(t, plan.Orders())
}
