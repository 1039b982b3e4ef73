package catalog

import (
	"context"
	"testing"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/rewards"
)

func TestSeedCards(t *testing.T) {
	cards := SeedCards()
	if len(cards) != 10 {
		t.Fatalf("SeedCards() returned %d cards, want 10", len(cards))
	}

	for i, c := range cards {
		if c.DecodeErr != nil {
			t.Errorf("card %d (%s) is malformed: %v", i, c.DisplayName(), c.DecodeErr)
		}
		if c.ID != int64(i+1) {
			t.Errorf("card %d has ID %d", i, c.ID)
		}
	}

	first := cards[0]
	if first.DisplayName() != "HDFC Infinia Metal" {
		t.Errorf("first card = %q, want HDFC Infinia Metal", first.DisplayName())
	}
	wantKeys := []string{"travel", "dining", "shopping"}
	for i, k := range wantKeys {
		if first.Multipliers[i].Key != k {
			t.Errorf("multiplier[%d] = %q, want %q", i, first.Multipliers[i].Key, k)
		}
	}
}

func TestBuiltinSource(t *testing.T) {
	src := Builtin()
	if src.Name() != "builtin" {
		t.Errorf("Name() = %q", src.Name())
	}

	cards, err := src.Cards(context.Background())
	if err != nil {
		t.Fatalf("Cards() error = %v", err)
	}

	// Mutating the result must not leak into later loads.
	cards[0].BankName = "changed"
	again, _ := src.Cards(context.Background())
	if again[0].BankName != "HDFC" {
		t.Error("Cards() shares state between calls")
	}
}

func TestSeedCards_Recommendations(t *testing.T) {
	cards := SeedCards()

	tests := []struct {
		name     string
		amount   float64
		category domain.Category
		wantCard string
		wantINR  float64
	}{
		// Infinia: 1500/150 * 10 * 1.0 = 100
		{"travel goes to Infinia", 1500, domain.CategoryTravel, "HDFC Infinia Metal", 100},
		// Infinia: 1000/150 * 5 * 1.0 = 33.33; Amazon Pay: 1000/100 * 2 * 1.0 = 20
		{"dining goes to Infinia", 1000, domain.CategoryDining, "HDFC Infinia Metal", 1000.0 / 150.0 * 5},
		// SBI Cashback utilities multiplier is 0; Amazon Pay and Ace pay 1.0 per 100, Amazon Pay first
		{"utilities goes to first 1 percent card", 1000, domain.CategoryUtilities, "ICICI Amazon Pay", 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := rewards.Optimize([]domain.Transaction{{Amount: tt.amount, Category: tt.category}}, cards)
			if err != nil {
				t.Fatalf("Optimize() error = %v", err)
			}
			rec := report.Recommendations[0]
			if rec.RecommendedCard != tt.wantCard {
				t.Errorf("RecommendedCard = %q, want %q", rec.RecommendedCard, tt.wantCard)
			}
			if diff := rec.SavedINR - tt.wantINR; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("SavedINR = %v, want %v", rec.SavedINR, tt.wantINR)
			}
		})
	}
}
