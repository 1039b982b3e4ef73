package rewards

import (
	"errors"
	"fmt"
	"math"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// ErrInvalidAmount is returned when a transaction amount is negative or not finite.
var ErrInvalidAmount = errors.New("invalid transaction amount")

// Recommendation is the best card for one transaction.
type Recommendation struct {
	Transaction     domain.Transaction `json:"transaction"`
	RecommendedCard string             `json:"recommended_card"`
	CardIndex       int                `json:"card_index"` // -1 when no card earns a reward
	SavedINR        float64            `json:"saved_inr"`
}

// Recommended reports whether a card was chosen.
func (r Recommendation) Recommended() bool {
	return r.CardIndex >= 0
}

// Report is the result of optimizing a statement against a catalog.
type Report struct {
	Recommendations []Recommendation `json:"recommendations"`
	TotalSavings    float64          `json:"total_savings"`
}

// Best returns the index and reward of the card that earns the most on a
// single spend. Cards are scanned in order and a later card must be strictly
// better to win, so ties go to the earlier card. Index is -1 when no card
// earns a positive reward.
func Best(amount float64, category string, cards []domain.CardRecord) (int, float64) {
	bestIdx, bestVal := -1, 0.0
	for i := range cards {
		r := Calculate(amount, category, cards[i])
		if r.OK() && r.Value > bestVal {
			bestIdx, bestVal = i, r.Value
		}
	}
	return bestIdx, bestVal
}

// Optimize evaluates every transaction against every card and returns, in
// input order, the card that would have earned the most on each spend.
// An empty catalog yields "No Recommendation" with zero savings throughout.
func Optimize(txs []domain.Transaction, cards []domain.CardRecord) (*Report, error) {
	for i, tx := range txs {
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount < 0 {
			return nil, fmt.Errorf("Optimize: transaction %d: %w: %v", i, ErrInvalidAmount, tx.Amount)
		}
	}

	report := &Report{Recommendations: make([]Recommendation, 0, len(txs))}
	for _, tx := range txs {
		idx, saved := Best(tx.Amount, string(tx.Category), cards)
		rec := Recommendation{
			Transaction:     tx,
			RecommendedCard: domain.NoRecommendation,
			CardIndex:       idx,
			SavedINR:        saved,
		}
		if idx >= 0 {
			rec.RecommendedCard = cards[idx].DisplayName()
		}
		report.Recommendations = append(report.Recommendations, rec)
		report.TotalSavings += saved
	}
	return report, nil
}
