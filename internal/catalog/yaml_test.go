package catalog

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
cards:
  - bank_name: Axis
    card_name: Ace
    spends_per_reward_unit: 100
    unified_reward_value_inr: 1.0
    joining_fee: 499
    multipliers:
      swiggy: 4
      zomato: "4.0"
      ola: 4
  - bank_name: Broken
    card_name: Null Multipliers
    spends_per_reward_unit: 100
    unified_reward_value_inr: 1
    multipliers: null
  - bank_name: Plain
    card_name: No Bonus
    spends_per_reward_unit: 150
    unified_reward_value_inr: 0.5
  - bank_name: Missing
    card_name: Rate
    multipliers:
      dining: 5
`

func TestDecodeYAML(t *testing.T) {
	cards, err := DecodeYAML(strings.NewReader(sampleYAML))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	if len(cards) != 4 {
		t.Fatalf("got %d cards, want 4", len(cards))
	}

	ace := cards[0]
	if ace.DecodeErr != nil {
		t.Fatalf("ace DecodeErr = %v", ace.DecodeErr)
	}
	wantKeys := []string{"swiggy", "zomato", "ola"}
	if len(ace.Multipliers) != len(wantKeys) {
		t.Fatalf("ace multipliers = %+v", ace.Multipliers)
	}
	for i, k := range wantKeys {
		m := ace.Multipliers[i]
		if m.Key != k || m.Value != 4 || !m.Valid {
			t.Errorf("multiplier[%d] = %+v, want %s=4", i, m, k)
		}
	}
	if ace.JoiningFee != 499 {
		t.Errorf("JoiningFee = %v, want 499", ace.JoiningFee)
	}

	if cards[1].DecodeErr == nil {
		t.Error("null multipliers should mark the card malformed")
	}
	if cards[2].DecodeErr != nil || len(cards[2].Multipliers) != 0 {
		t.Errorf("card without multipliers: err=%v mults=%+v", cards[2].DecodeErr, cards[2].Multipliers)
	}
	if cards[3].DecodeErr == nil {
		t.Error("card without rates should be malformed")
	}
}

func TestDecodeYAML_Empty(t *testing.T) {
	cards, err := DecodeYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}
	if len(cards) != 0 {
		t.Errorf("got %d cards, want 0", len(cards))
	}
}

func TestEncodeYAML_SeedCatalog(t *testing.T) {
	var buf bytes.Buffer
	if err := EncodeYAML(&buf, SeedCards()); err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}

	cards, err := DecodeYAML(&buf)
	if err != nil {
		t.Fatalf("DecodeYAML() error = %v", err)
	}

	seed := SeedCards()
	if len(cards) != len(seed) {
		t.Fatalf("got %d cards, want %d", len(cards), len(seed))
	}
	ace := cards[7]
	if ace.DisplayName() != "Axis Ace" {
		t.Fatalf("cards[7] = %q, want Axis Ace", ace.DisplayName())
	}
	for i, m := range seed[7].Multipliers {
		if ace.Multipliers[i] != m {
			t.Errorf("multiplier[%d] = %+v, want %+v", i, ace.Multipliers[i], m)
		}
	}
	if ace.PerkMovies != "No" {
		t.Errorf("PerkMovies = %q, want No", ace.PerkMovies)
	}
}

func TestYAMLSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	src := NewYAMLSource(path)
	cards, err := src.Cards(context.Background())
	if err != nil {
		t.Fatalf("Cards() error = %v", err)
	}
	if len(cards) != 4 {
		t.Errorf("got %d cards, want 4", len(cards))
	}

	if _, err := NewYAMLSource(filepath.Join(t.TempDir(), "missing.yaml")).Cards(context.Background()); err == nil {
		t.Error("Cards() on missing file should fail")
	}
}
