// Package tradeerrs defines the typed error taxonomy returned across
// the OMS/TMS boundary, mirroring the teacher's fmt.Errorf("...: %w", err)
// wrapping style with sentinel-comparable error types instead of raw
// strings.
package tradeerrs

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// RuleViolationError is returned when an order or instruction fails a
// compliance rule (direction not allowed, symbol restricted, position
// or single-trade percentage exceeded).
type RuleViolationError struct {
	Rule    string
	Symbol  string
	Message string
}

func (e *RuleViolationError) Error() string {
	return fmt.Sprintf("rule violation [%s] on %s: %s", e.Rule, e.Symbol, e.Message)
}

func NewRuleViolation(rule, symbol, message string) *RuleViolationError {
	return &RuleViolationError{Rule: rule, Symbol: symbol, Message: message}
}

// InsufficientFundsError is returned when the OMS cash sufficiency
// check fails for a BUY-side instruction.
type InsufficientFundsError struct {
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: required %s, available %s", e.Required.String(), e.Available.String())
}

func NewInsufficientFunds(required, available decimal.Decimal) *InsufficientFundsError {
	return &InsufficientFundsError{Required: required, Available: available}
}

// BadArgumentError is returned for malformed caller input (unknown
// action, non-positive quantity or price) and when the OMS submission
// rate limit is exceeded.
type BadArgumentError struct {
	Field   string
	Message string
}

func (e *BadArgumentError) Error() string {
	return fmt.Sprintf("bad argument [%s]: %s", e.Field, e.Message)
}

func (e *BadArgumentError) Unwrap() error { return nil }

func NewBadArgument(field, message string) *BadArgumentError {
	return &BadArgumentError{Field: field, Message: message}
}
