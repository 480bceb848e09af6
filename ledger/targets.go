package ledger

import (
	"fmt"
	"slices"
	"strings"

	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/rustyeddy/tracker/portfolio"
	"github.com/rustyeddy/tracker/progress"
	"github.com/shopspring/decimal"
)

var (
	suggestStep   = decimal.NewFromInt(1000)
	suggestGrowth = decimal.RequireFromString("1.25")
)

// CleanTargets drops rungs with a blank name or a non-positive amount,
// trims names, fills missing IDs and sorts ascending.
func CleanTargets(targets []portfolio.Target) []portfolio.Target {
	out := make([]portfolio.Target, 0, len(targets))
	for _, t := range targets {
		t.Name = strings.TrimSpace(t.Name)
		if t.Name == "" || !t.Amount.IsPositive() {
			continue
		}
		if t.ID == "" {
			t.ID = id.New()
		}
		out = append(out, t)
	}
	return progress.SortTargets(out)
}

// ReplaceTargets swaps the whole ladder. A list with no valid rung is
// rejected so a portfolio always keeps at least one target.
func ReplaceTargets(targets []portfolio.Target) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		clean := CleanTargets(targets)
		if len(clean) == 0 {
			return p, fmt.Errorf("replace targets: %w", ErrEmptyLadder)
		}
		p = p.Clone()
		p.Targets = clean
		return p, nil
	}
}

// AddTarget appends a rung. A zero amount takes the suggested next amount
// and a blank name becomes "Target N".
func AddTarget(name string, amount decimal.Decimal) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		amount, name := amount, name
		if amount.IsZero() {
			amount = SuggestNextTarget(p.Targets)
		}
		if strings.TrimSpace(name) == "" {
			name = fmt.Sprintf("Target %d", len(p.Targets)+1)
		}
		if !amount.IsPositive() {
			return p, fmt.Errorf("add target: %w",
				&portfolio.ValidationError{Field: "amount", Reason: "must be positive"})
		}
		next := append(slices.Clone(p.Targets), portfolio.Target{Name: name, Amount: amount})
		return ReplaceTargets(next)(p)
	}
}

// DeleteTarget removes one rung. The last rung cannot be removed.
func DeleteTarget(targetID string) Updater {
	return func(p portfolio.Portfolio) (portfolio.Portfolio, error) {
		i := slices.IndexFunc(p.Targets, func(t portfolio.Target) bool { return t.ID == targetID })
		if i < 0 {
			return p, fmt.Errorf("delete target: %w: %q", ErrTargetNotFound, targetID)
		}
		if len(p.Targets) <= 1 {
			return p, fmt.Errorf("delete target: %w", ErrLastTarget)
		}
		p = p.Clone()
		p.Targets = slices.Delete(p.Targets, i, i+1)
		return p, nil
	}
}

// SuggestNextTarget proposes 25% above the highest rung, rounded up to the
// next thousand. An empty ladder suggests 1000.
func SuggestNextTarget(targets []portfolio.Target) decimal.Decimal {
	highest := decimal.Zero
	for _, t := range targets {
		highest = decimal.Max(highest, t.Amount)
	}
	if !highest.IsPositive() {
		return suggestStep
	}
	return highest.Mul(suggestGrowth).Div(suggestStep).Ceil().Mul(suggestStep)
}
