package domain

import (
	"errors"
	"testing"
)

func TestCardRecord_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		card CardRecord
		want string
	}{
		{"bank and card", CardRecord{BankName: "HDFC", CardName: "Infinia Metal"}, "HDFC Infinia Metal"},
		{"missing bank", CardRecord{CardName: "Ace"}, "Ace"},
		{"empty", CardRecord{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.card.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCardRecord_Multiplier(t *testing.T) {
	card := CardRecord{Multipliers: []Multiplier{
		{Key: "Travel", Value: 10, Valid: true},
		{Key: "dining", Value: 5, Valid: true},
	}}

	m, ok := card.Multiplier(" TRAVEL ")
	if !ok || m.Value != 10 {
		t.Errorf("Multiplier(TRAVEL) = %+v, %v; want value 10", m, ok)
	}

	if _, ok := card.Multiplier("fuel"); ok {
		t.Error("Multiplier(fuel) should not be found")
	}
}

func TestCardRecord_Malformed(t *testing.T) {
	if (CardRecord{}).Malformed() {
		t.Error("zero card should not be malformed")
	}
	if !(CardRecord{DecodeErr: errors.New("bad json")}).Malformed() {
		t.Error("card with DecodeErr should be malformed")
	}
}
