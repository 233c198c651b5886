package fund

import (
	"github.com/holiman/uint256"
)

type Side uint8

const (
	SideSell Side = iota
	SideBuy
)

func (s Side) String() string {
	if s == SideSell {
		return "sell"
	}
	return "buy"
}

// AssetHolding is the position in a single pool asset, priced by the AMM
// reserves that trade it against the reference asset.
type AssetHolding struct {
	VaultAmount  uint64
	AssetReserve uint64
	BasicReserve uint64
	Weight       uint32
}

type RebalanceInput struct {
	Assets          []AssetHolding
	BasicAmount     uint64
	SlippageDivider uint64
}

// Order is a single swap against the reference asset. AmountIn is in asset
// units for sells and reference units for buys, and MinimumAmountOut is in
// the other one.
type Order struct {
	Asset            int
	Side             Side
	Delta            uint64
	AmountIn         uint64
	MinimumAmountOut uint64
}

type RebalancePlan struct {
	// Value and target value of each asset, in reference units.
	Values  []uint64
	Targets []uint64

	TotalValue uint64

	Sells []Order
	Buys  []Order
}

// Orders returns the orders in execution order: every sell, then every buy,
// each in asset order.
func (p *RebalancePlan) Orders() []Order {
	return append(append([]Order{}, p.Sells...), p.Buys...)
}

// PlanRebalance computes the swaps that move every asset towards its
// weighted share of the fund's value.
//
// Assets within value/slippage_divider of their target are left alone. Orders
// that would swap nothing are dropped.
func PlanRebalance(in *RebalanceInput) (*RebalancePlan, error) {
	if in.SlippageDivider == 0 {
		return nil, ErrorDivisionByZero
	}

	plan := &RebalancePlan{
		Values:  make([]uint64, len(in.Assets)),
		Targets: make([]uint64, len(in.Assets)),
	}

	total := uint256.NewInt(in.BasicAmount)
	totalWeight := new(uint256.Int)
	for i, asset := range in.Assets {
		value, err := mulDiv(asset.VaultAmount, asset.BasicReserve, asset.AssetReserve)
		if err != nil {
			return nil, err
		}
		plan.Values[i] = value

		total.Add(total, uint256.NewInt(value))
		totalWeight.Add(totalWeight, uint256.NewInt(uint64(asset.Weight)))
	}
	if !total.IsUint64() {
		return nil, ErrorOperationOverflow
	}
	plan.TotalValue = total.Uint64()

	if totalWeight.IsZero() {
		return nil, ErrorDivisionByZero
	}

	for i, asset := range in.Assets {
		target, err := mulDiv(uint64(asset.Weight), plan.TotalValue, totalWeight.Uint64())
		if err != nil {
			return nil, err
		}
		plan.Targets[i] = target

		value := plan.Values[i]
		tolerance := value / in.SlippageDivider

		switch {
		case target < value-tolerance:
			delta := value - target
			amountIn, err := mulDiv(delta, asset.VaultAmount, value)
			if err != nil {
				return nil, err
			}
			if amountIn == 0 {
				continue
			}

			plan.Sells = append(plan.Sells, Order{
				Asset:            i,
				Side:             SideSell,
				Delta:            delta,
				AmountIn:         amountIn,
				MinimumAmountOut: delta - delta/in.SlippageDivider,
			})
		case uint256.NewInt(target).Gt(new(uint256.Int).Add(uint256.NewInt(value), uint256.NewInt(tolerance))):
			delta := target - value
			assetDelta, err := mulDiv(delta, asset.VaultAmount, value)
			if err != nil {
				return nil, err
			}

			plan.Buys = append(plan.Buys, Order{
				Asset:            i,
				Side:             SideBuy,
				Delta:            delta,
				AmountIn:         delta,
				MinimumAmountOut: assetDelta - assetDelta/in.SlippageDivider,
			})
		}
	}

	return plan, nil
}

// mulDiv returns a*b/c computed in 256 bits.
func mulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrorDivisionByZero
	}

	result := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	result.Div(result, uint256.NewInt(c))
	if !result.IsUint64() {
		return 0, ErrorOperationOverflow
	}
	return result.Uint64(), nil
}
