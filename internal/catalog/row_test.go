package catalog

import (
	"strings"
	"testing"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

func TestDecodeMultipliers(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []domain.Multiplier
		wantErr bool
	}{
		{
			name: "declared order kept",
			raw:  `{"travel": 10.0, "dining": 5.0, "shopping": 3.0}`,
			want: []domain.Multiplier{
				{Key: "travel", Value: 10, Valid: true},
				{Key: "dining", Value: 5, Valid: true},
				{Key: "shopping", Value: 3, Valid: true},
			},
		},
		{
			name: "reverse alphabetical order kept",
			raw:  `{"zomato": 4, "swiggy": 4, "ola": 4}`,
			want: []domain.Multiplier{
				{Key: "zomato", Value: 4, Valid: true},
				{Key: "swiggy", Value: 4, Valid: true},
				{Key: "ola", Value: 4, Valid: true},
			},
		},
		{
			name: "numeric string accepted",
			raw:  `{"dining": " 2.5 "}`,
			want: []domain.Multiplier{{Key: "dining", Value: 2.5, Valid: true}},
		},
		{
			name: "non numeric values marked invalid",
			raw:  `{"dining": "lots", "travel": true, "fuel": null, "bill": [1]}`,
			want: []domain.Multiplier{
				{Key: "dining"},
				{Key: "travel"},
				{Key: "fuel"},
				{Key: "bill"},
			},
		},
		{
			name: "duplicate key keeps first position and last value",
			raw:  `{"a": 1, "b": 2, "a": 3}`,
			want: []domain.Multiplier{
				{Key: "a", Value: 3, Valid: true},
				{Key: "b", Value: 2, Valid: true},
			},
		},
		{name: "empty object", raw: `{}`, want: nil},
		{name: "empty string", raw: ``, wantErr: true},
		{name: "null", raw: `null`, wantErr: true},
		{name: "array", raw: `[1, 2]`, wantErr: true},
		{name: "truncated", raw: `{"dining": 5`, wantErr: true},
		{name: "trailing data", raw: `{"dining": 5} {}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMultipliers(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeMultipliers() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if len(got) != len(tt.want) {
				t.Fatalf("DecodeMultipliers() = %+v, want %+v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("multiplier[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEncodeMultipliers(t *testing.T) {
	mults := []domain.Multiplier{
		{Key: "travel", Value: 10, Valid: true},
		{Key: "dining", Value: 2.5, Valid: true},
		{Key: "bad"},
	}
	got := EncodeMultipliers(mults)
	want := `{"travel": 10, "dining": 2.5, "bad": null}`
	if got != want {
		t.Errorf("EncodeMultipliers() = %s, want %s", got, want)
	}

	back, err := DecodeMultipliers(got)
	if err != nil {
		t.Fatalf("DecodeMultipliers() error = %v", err)
	}
	if back[0].Key != "travel" || back[1].Key != "dining" || back[2].Valid {
		t.Errorf("decoded %+v does not match encoded order", back)
	}
}

func TestRow_Record(t *testing.T) {
	good := Row{
		BankName:              "Test",
		CardName:              "Card",
		SpendsPerRewardUnit:   ptr(100),
		UnifiedRewardValueINR: ptr(0.25),
		MultipliersJSON:       `{"dining": 5}`,
	}

	card := good.Record()
	if card.DecodeErr != nil {
		t.Fatalf("Record() DecodeErr = %v", card.DecodeErr)
	}
	if card.SpendsPerRewardUnit != 100 || card.UnifiedRewardValueINR != 0.25 {
		t.Errorf("Record() rates = %v, %v", card.SpendsPerRewardUnit, card.UnifiedRewardValueINR)
	}
	if card.JoiningFee != 0 {
		t.Errorf("null joining fee should read as 0, got %v", card.JoiningFee)
	}

	tests := []struct {
		name    string
		mutate  func(r *Row)
		errText string
	}{
		{"bad multipliers", func(r *Row) { r.MultipliersJSON = "not json" }, "multipliers_json"},
		{"null spends unit", func(r *Row) { r.SpendsPerRewardUnit = nil }, "spends_per_reward_unit"},
		{"null reward value", func(r *Row) { r.UnifiedRewardValueINR = nil }, "unified_reward_value_inr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := good
			tt.mutate(&r)
			c := r.Record()
			if c.DecodeErr == nil {
				t.Fatal("Record() DecodeErr = nil, want error")
			}
			if !strings.Contains(c.DecodeErr.Error(), tt.errText) {
				t.Errorf("DecodeErr = %v, want mention of %q", c.DecodeErr, tt.errText)
			}
			if c.DisplayName() != "Test Card" {
				t.Errorf("malformed card lost its name: %q", c.DisplayName())
			}
		})
	}
}

func TestFromRecord(t *testing.T) {
	card := SeedCards()[0]
	row := FromRecord(card)
	back := row.Record()

	if back.DisplayName() != card.DisplayName() {
		t.Errorf("DisplayName = %q, want %q", back.DisplayName(), card.DisplayName())
	}
	if len(back.Multipliers) != len(card.Multipliers) {
		t.Fatalf("multipliers = %+v, want %+v", back.Multipliers, card.Multipliers)
	}
	for i := range card.Multipliers {
		if back.Multipliers[i] != card.Multipliers[i] {
			t.Errorf("multiplier[%d] = %+v, want %+v", i, back.Multipliers[i], card.Multipliers[i])
		}
	}
}
