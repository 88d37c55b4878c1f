package engine

import (
	"github.com/shopspring/decimal"

	"matchcore/internal/common"
)

// validateSubmission checks admission rules before an order ever
// touches the book. A non-nil *Error here means the order is rejected:
// stored with Status Rejected and returned to the caller, no book
// mutation, no events.
func validateSubmission(side common.Side, kind common.OrderKind, quantity decimal.Decimal, price, stopPrice *decimal.Decimal) *Error {
	if side != common.Buy && side != common.Sell {
		return newError(Validation, "unknown side %v", side)
	}
	if kind != common.Limit && kind != common.Market && kind != common.Stop {
		return newError(Validation, "unknown order kind %v", kind)
	}
	if !common.IsPositive(quantity) {
		return newError(Validation, "quantity must be positive, got %s", quantity)
	}
	if kind == common.Limit {
		if price == nil || !common.IsPositive(*price) {
			return newError(Validation, "limit orders require a positive price")
		}
	}
	if kind == common.Stop {
		if stopPrice == nil || !common.IsPositive(*stopPrice) {
			return newError(Validation, "stop orders require a positive stop price")
		}
		if price != nil && !common.IsPositive(*price) {
			return newError(Validation, "stop-limit trigger price must be positive")
		}
	}
	return nil
}
