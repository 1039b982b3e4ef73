package rewards

import (
	"errors"
	"math"
	"testing"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

func card(unit, value float64, mults ...domain.Multiplier) domain.CardRecord {
	return domain.CardRecord{
		BankName:              "Test",
		CardName:              "Card",
		SpendsPerRewardUnit:   unit,
		UnifiedRewardValueINR: value,
		Multipliers:           mults,
	}
}

func mult(key string, v float64) domain.Multiplier {
	return domain.Multiplier{Key: key, Value: v, Valid: true}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name       string
		amount     float64
		category   string
		card       domain.CardRecord
		wantValue  float64
		wantStatus Status
	}{
		{
			name:       "matching multiplier",
			amount:     1000,
			category:   "Dining",
			card:       card(100, 0.25, mult("dining", 5)),
			wantValue:  12.5,
			wantStatus: StatusComputed,
		},
		{
			name:       "missing multiplier defaults to one",
			amount:     1000,
			category:   "Fuel",
			card:       card(100, 1, mult("dining", 5)),
			wantValue:  10,
			wantStatus: StatusComputed,
		},
		{
			name:       "no multipliers at all",
			amount:     1500,
			category:   "Travel",
			card:       card(150, 1),
			wantValue:  10,
			wantStatus: StatusComputed,
		},
		{
			name:       "first matching key wins",
			amount:     100,
			category:   "Travel",
			card:       card(100, 1, mult("vel", 3), mult("travel", 10)),
			wantValue:  3,
			wantStatus: StatusComputed,
		},
		{
			name:       "key is substring of category",
			amount:     100,
			category:   "Retail/Others",
			card:       card(100, 1, mult("retail", 2)),
			wantValue:  2,
			wantStatus: StatusComputed,
		},
		{
			name:       "key longer than category does not match",
			amount:     100,
			category:   "Dining",
			card:       card(100, 1, mult("dining_out", 4)),
			wantValue:  1,
			wantStatus: StatusComputed,
		},
		{
			name:       "mixed case key matches",
			amount:     100,
			category:   " dining ",
			card:       card(100, 1, mult("Dining", 4)),
			wantValue:  4,
			wantStatus: StatusComputed,
		},
		{
			name:       "zero multiplier",
			amount:     100,
			category:   "Utilities",
			card:       card(100, 1, mult("utilities", 0)),
			wantValue:  0,
			wantStatus: StatusComputed,
		},
		{
			name:       "zero amount",
			amount:     0,
			category:   "Dining",
			card:       card(100, 1),
			wantValue:  0,
			wantStatus: StatusComputed,
		},
		{
			name:       "zero spends unit",
			amount:     1000,
			category:   "Dining",
			card:       card(0, 1),
			wantStatus: StatusZeroRate,
		},
		{
			name:       "negative spends unit",
			amount:     1000,
			category:   "Dining",
			card:       card(-10, 1),
			wantStatus: StatusZeroRate,
		},
		{
			name:       "decode error",
			amount:     1000,
			category:   "Dining",
			card:       domain.CardRecord{SpendsPerRewardUnit: 100, UnifiedRewardValueINR: 1, DecodeErr: errors.New("bad json")},
			wantStatus: StatusMalformed,
		},
		{
			name:       "matched multiplier not numeric",
			amount:     1000,
			category:   "Dining",
			card:       card(100, 1, domain.Multiplier{Key: "dining", Valid: false}),
			wantStatus: StatusMalformed,
		},
		{
			name:       "unmatched invalid multiplier is ignored",
			amount:     1000,
			category:   "Fuel",
			card:       card(100, 1, domain.Multiplier{Key: "dining", Valid: false}),
			wantValue:  10,
			wantStatus: StatusComputed,
		},
		{
			name:       "NaN reward value",
			amount:     1000,
			category:   "Dining",
			card:       card(100, math.NaN()),
			wantStatus: StatusMalformed,
		},
		{
			name:       "negative reward value",
			amount:     1000,
			category:   "Dining",
			card:       card(100, -1),
			wantStatus: StatusMalformed,
		},
		{
			name:       "negative amount",
			amount:     -5,
			category:   "Dining",
			card:       card(100, 1),
			wantStatus: StatusInvalidAmount,
		},
		{
			name:       "infinite amount",
			amount:     math.Inf(1),
			category:   "Dining",
			card:       card(100, 1),
			wantStatus: StatusInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.amount, tt.category, tt.card)
			if got.Status != tt.wantStatus {
				t.Fatalf("Calculate() status = %q, want %q (reason %q)", got.Status, tt.wantStatus, got.Reason)
			}
			if !almostEqual(got.Value, tt.wantValue) {
				t.Errorf("Calculate() value = %v, want %v", got.Value, tt.wantValue)
			}
			if got.Status != StatusComputed && got.Value != 0 {
				t.Errorf("non-computed result carries value %v", got.Value)
			}
		})
	}
}

func TestReward(t *testing.T) {
	got := Reward(1000, "Dining", card(150, 1))
	if !almostEqual(got, 1000.0/150.0) {
		t.Errorf("Reward() = %v, want %v", got, 1000.0/150.0)
	}
}

func TestLookupMultiplier(t *testing.T) {
	c := card(100, 1, mult("online", 5), mult("offline", 1))

	m, found := LookupMultiplier("Shopping", c)
	if found || m.Value != domain.DefaultMultiplier {
		t.Errorf("LookupMultiplier(Shopping) = %+v, %v; want default", m, found)
	}

	m, found = LookupMultiplier("offline", c)
	if !found || m.Key != "offline" {
		t.Errorf("LookupMultiplier(offline) = %+v, %v; want offline", m, found)
	}
}
