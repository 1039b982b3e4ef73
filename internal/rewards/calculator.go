// Package rewards computes the INR value a card returns on a spend and picks
// the best card for each transaction in a statement.
package rewards

import (
	"fmt"
	"math"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// Status describes how a reward value was obtained.
type Status string

const (
	// StatusComputed means the formula was applied normally.
	StatusComputed Status = "computed"
	// StatusZeroRate means the card has no positive spends-per-unit rate.
	StatusZeroRate Status = "zero_rate"
	// StatusMalformed means the card row could not be used.
	StatusMalformed Status = "malformed"
	// StatusInvalidAmount means the spend amount was negative or not finite.
	StatusInvalidAmount Status = "invalid_amount"
)

// Result is the outcome of one reward calculation.
// Value is always 0 unless Status is StatusComputed.
type Result struct {
	Value  float64 `json:"value"`
	Status Status  `json:"status"`
	Reason string  `json:"reason,omitempty"`
}

// OK reports whether the result came from the reward formula.
func (r Result) OK() bool {
	return r.Status == StatusComputed
}

// LookupMultiplier finds the multiplier for a category on a card.
// The category is lower-cased and trimmed; the first key (lower-cased) that
// is a substring of it wins. found is false when the default 1.0 applies.
func LookupMultiplier(category string, card domain.CardRecord) (m domain.Multiplier, found bool) {
	catKey := strings.ToLower(strings.TrimSpace(category))
	for _, mult := range card.Multipliers {
		if strings.Contains(catKey, strings.ToLower(mult.Key)) {
			return mult, true
		}
	}
	return domain.Multiplier{Key: "", Value: domain.DefaultMultiplier, Valid: true}, false
}

// Calculate returns the INR value of spending amount in category on card:
//
//	(amount / spends_per_reward_unit) * multiplier * unified_reward_value_inr
//
// It never panics; unusable inputs produce a zero Value with a non-computed Status.
func Calculate(amount float64, category string, card domain.CardRecord) Result {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return Result{Status: StatusInvalidAmount, Reason: fmt.Sprintf("amount %v is not a finite non-negative number", amount)}
	}
	if card.DecodeErr != nil {
		return Result{Status: StatusMalformed, Reason: card.DecodeErr.Error()}
	}

	unit := card.SpendsPerRewardUnit
	value := card.UnifiedRewardValueINR
	if math.IsNaN(unit) || math.IsInf(unit, 0) || math.IsNaN(value) || math.IsInf(value, 0) {
		return Result{Status: StatusMalformed, Reason: "reward rate is not a finite number"}
	}

	m, _ := LookupMultiplier(category, card)
	if !m.Valid {
		return Result{Status: StatusMalformed, Reason: fmt.Sprintf("multiplier %q is not numeric", m.Key)}
	}
	if math.IsNaN(m.Value) || math.IsInf(m.Value, 0) {
		return Result{Status: StatusMalformed, Reason: fmt.Sprintf("multiplier %q is not finite", m.Key)}
	}

	if unit <= 0 {
		return Result{Status: StatusZeroRate}
	}

	reward := (amount / unit) * m.Value * value
	if math.IsNaN(reward) || math.IsInf(reward, 0) {
		return Result{Status: StatusMalformed, Reason: "reward is not finite"}
	}
	if reward < 0 {
		return Result{Status: StatusMalformed, Reason: "negative reward"}
	}
	return Result{Value: reward, Status: StatusComputed}
}

// Reward is Calculate reduced to its value.
func Reward(amount float64, category string, card domain.CardRecord) float64 {
	return Calculate(amount, category, card).Value
}
