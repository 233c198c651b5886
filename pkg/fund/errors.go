package fund

import (
	"github.com/code-payments/index-fund/pkg/pool"
	"github.com/code-payments/index-fund/pkg/solana"
)

const (
	// A checked arithmetic result does not fit in 64 bits.
	ErrorOperationOverflow = pool.ErrorOperationOverflow
	// A reserve, value, weight sum or slippage divider used as a divisor is zero.
	ErrorDivisionByZero solana.CustomError = 1
)
