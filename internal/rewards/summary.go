package rewards

import (
	"sort"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// CategorySummary aggregates a report's recommendations for one category.
type CategorySummary struct {
	Category     domain.Category `json:"category"`
	Transactions int             `json:"transactions"`
	TotalSpend   float64         `json:"total_spend"`
	TotalSavings float64         `json:"total_savings"`
	TopCard      string          `json:"top_card"`
}

// SummarizeByCategory groups recommendations by category, sorted by savings
// (highest first, then by category name). TopCard is the card recommended
// most often in the category; ties go to the card seen first.
func SummarizeByCategory(recs []Recommendation) []CategorySummary {
	type acc struct {
		summary CategorySummary
		counts  map[string]int
		order   []string
	}

	byCat := make(map[domain.Category]*acc)
	var cats []domain.Category
	for _, r := range recs {
		cat := r.Transaction.Category
		a, ok := byCat[cat]
		if !ok {
			a = &acc{summary: CategorySummary{Category: cat}, counts: make(map[string]int)}
			byCat[cat] = a
			cats = append(cats, cat)
		}
		a.summary.Transactions++
		a.summary.TotalSpend += r.Transaction.Amount
		a.summary.TotalSavings += r.SavedINR
		if _, seen := a.counts[r.RecommendedCard]; !seen {
			a.order = append(a.order, r.RecommendedCard)
		}
		a.counts[r.RecommendedCard]++
	}

	out := make([]CategorySummary, 0, len(cats))
	for _, cat := range cats {
		a := byCat[cat]
		best := 0
		for _, card := range a.order {
			if a.counts[card] > best {
				best = a.counts[card]
				a.summary.TopCard = card
			}
		}
		out = append(out, a.summary)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].TotalSavings != out[j].TotalSavings {
			return out[i].TotalSavings > out[j].TotalSavings
		}
		return out[i].Category < out[j].Category
	})
	return out
}

// MostRecommendedCard returns the card recommended most often for spends in
// category, along with the number of such spends. The card is empty when
// there are none.
func MostRecommendedCard(recs []Recommendation, category domain.Category) (string, int) {
	for _, s := range SummarizeByCategory(recs) {
		if s.Category == category {
			return s.TopCard, s.Transactions
		}
	}
	return "", 0
}

// TopBySavings returns up to n recommendations with the highest savings.
// Equal savings keep their input order.
func TopBySavings(recs []Recommendation, n int) []Recommendation {
	sorted := make([]Recommendation, len(recs))
	copy(sorted, recs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SavedINR > sorted[j].SavedINR
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
