package tokenswap

import (
	"github.com/holiman/uint256"
)

// TradingFees returns the trade and owner fees charged on amountIn.
//
// Fees round down, except that a positive fee rate never rounds to zero.
func (f *Fees) TradingFees(amountIn uint64) (uint64, bool) {
	trade, ok := calculateFee(amountIn, f.TradeFeeNumerator, f.TradeFeeDenominator)
	if !ok {
		return 0, false
	}
	owner, ok := calculateFee(amountIn, f.OwnerTradeFeeNumerator, f.OwnerTradeFeeDenominator)
	if !ok {
		return 0, false
	}

	total := trade + owner
	if total < trade || total > amountIn {
		return 0, false
	}
	return total, true
}

func calculateFee(amount, numerator, denominator uint64) (uint64, bool) {
	if numerator == 0 || amount == 0 {
		return 0, true
	}
	if denominator == 0 {
		return 0, false
	}

	fee := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(numerator))
	fee.Div(fee, uint256.NewInt(denominator))
	if fee.IsZero() {
		return 1, true
	}
	if !fee.IsUint64() {
		return 0, false
	}
	return fee.Uint64(), true
}

// ConstantProductOut quotes the destination amount for swapping amountIn
// into a constant product pool, after fees. The invariant is preserved by
// rounding the new destination reserve up.
func ConstantProductOut(reserveIn, reserveOut, amountIn uint64, fees Fees) (uint64, bool) {
	if reserveIn == 0 || reserveOut == 0 {
		return 0, false
	}

	feeTotal, ok := fees.TradingFees(amountIn)
	if !ok {
		return 0, false
	}
	lessFees := amountIn - feeTotal

	invariant := new(uint256.Int).Mul(uint256.NewInt(reserveIn), uint256.NewInt(reserveOut))
	newReserveIn := new(uint256.Int).Add(uint256.NewInt(reserveIn), uint256.NewInt(lessFees))

	// ceil(invariant / newReserveIn)
	newReserveOut := new(uint256.Int).Add(invariant, newReserveIn)
	newReserveOut.Sub(newReserveOut, uint256.NewInt(1))
	newReserveOut.Div(newReserveOut, newReserveIn)

	if newReserveOut.Gt(uint256.NewInt(reserveOut)) {
		return 0, false
	}
	return reserveOut - newReserveOut.Uint64(), true
}
