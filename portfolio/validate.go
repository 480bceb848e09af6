package portfolio

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidInput is wrapped by every ValidationError.
var ErrInvalidInput = errors.New("invalid input")

// ValidationError rejects user input before any state is touched.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ParseAmount parses a user supplied decimal for the named field.
func ParseAmount(field, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, invalid(field, fmt.Sprintf("%q is not a number", s))
	}
	return d, nil
}

// TradeInput holds the user editable fields of a trade.
type TradeInput struct {
	AssetName       string
	EntryPrice      decimal.Decimal
	TradeValue      decimal.Decimal
	TakeProfitPrice decimal.Decimal
	StopLossPrice   decimal.Decimal
	Notes           string
}

// NormalizeAsset trims and uppercases an asset label.
func NormalizeAsset(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Validate checks the input in the order a form reports errors: asset,
// entry, value, take profit, stop loss, then the price ordering.
func (in TradeInput) Validate() error {
	if NormalizeAsset(in.AssetName) == "" {
		return invalid("asset", "name is required")
	}
	if !in.EntryPrice.IsPositive() {
		return invalid("entry_price", "must be positive")
	}
	if !in.TradeValue.IsPositive() {
		return invalid("trade_value", "must be positive")
	}
	if !in.TakeProfitPrice.IsPositive() {
		return invalid("take_profit_price", "must be positive")
	}
	if !in.StopLossPrice.IsPositive() {
		return invalid("stop_loss_price", "must be positive")
	}
	if !in.TakeProfitPrice.GreaterThan(in.EntryPrice) {
		return invalid("take_profit_price", "must be above the entry price")
	}
	if !in.StopLossPrice.LessThan(in.EntryPrice) {
		return invalid("stop_loss_price", "must be below the entry price")
	}
	return nil
}

// ValidateName rejects blank names.
func ValidateName(field, name string) error {
	if strings.TrimSpace(name) == "" {
		return invalid(field, "is required")
	}
	return nil
}

// ValidateCapital rejects non-positive capital amounts.
func ValidateCapital(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return invalid("initial_capital", "must be positive")
	}
	return nil
}

// ValidateCurrency accepts three letter ISO 4217 style codes.
func ValidateCurrency(code string) error {
	if len(code) != 3 {
		return invalid("currency", fmt.Sprintf("%q is not a 3 letter code", code))
	}
	for _, r := range code {
		if r < 'A' || r > 'Z' {
			return invalid("currency", fmt.Sprintf("%q is not a 3 letter code", code))
		}
	}
	return nil
}
