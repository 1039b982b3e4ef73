// Package catalog loads the reference credit card catalog from its stores
// and decodes raw rows into domain.CardRecord values.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// TableName is the catalog table in every SQL-like store.
const TableName = "credit_cards"

// Row is one record of the credit_cards table as stored, before decoding.
// Numeric columns are nullable; multipliers are kept as JSON object text.
type Row struct {
	ID       int64
	BankName string
	CardName string

	Network         string
	PrimaryCategory string

	JoiningFee       *float64
	RenewalFee       *float64
	WaiverSpendLimit *float64

	RewardType            string
	SpendsPerRewardUnit   *float64
	MultipliersJSON       string
	UnifiedRewardValueINR *float64
	RewardExpiryMonths    string

	LoungeDomestic      string
	LoungeInternational string
	PerkMovies          string
	PerkGolf            string
	PerkOthers          string

	BenefitWelcome       string
	BenefitMilestones    string
	BenefitSpecialTieups string
}

// Record decodes the row. Decoding problems never fail the load; they are
// recorded on the card's DecodeErr so the card earns nothing.
func (r Row) Record() domain.CardRecord {
	mults, err := DecodeMultipliers(r.MultipliersJSON)
	return r.record(mults, err)
}

func (r Row) record(mults []domain.Multiplier, multErr error) domain.CardRecord {
	card := domain.CardRecord{
		ID:                    r.ID,
		BankName:              r.BankName,
		CardName:              r.CardName,
		Network:               r.Network,
		PrimaryCategory:       r.PrimaryCategory,
		JoiningFee:            deref(r.JoiningFee),
		RenewalFee:            deref(r.RenewalFee),
		WaiverSpendLimit:      deref(r.WaiverSpendLimit),
		RewardType:            r.RewardType,
		SpendsPerRewardUnit:   deref(r.SpendsPerRewardUnit),
		Multipliers:           mults,
		UnifiedRewardValueINR: deref(r.UnifiedRewardValueINR),
		RewardExpiry:          r.RewardExpiryMonths,
		LoungeDomestic:        r.LoungeDomestic,
		LoungeInternational:   r.LoungeInternational,
		PerkMovies:            r.PerkMovies,
		PerkGolf:              r.PerkGolf,
		PerkOthers:            r.PerkOthers,
		BenefitWelcome:        r.BenefitWelcome,
		BenefitMilestones:     r.BenefitMilestones,
		BenefitSpecialTieups:  r.BenefitSpecialTieups,
	}

	var errs []error
	if multErr != nil {
		errs = append(errs, fmt.Errorf("multipliers_json: %w", multErr))
	}
	if r.SpendsPerRewardUnit == nil {
		errs = append(errs, errors.New("spends_per_reward_unit is null"))
	}
	if r.UnifiedRewardValueINR == nil {
		errs = append(errs, errors.New("unified_reward_value_inr is null"))
	}
	if len(errs) > 0 {
		card.DecodeErr = fmt.Errorf("card %q: %w", card.DisplayName(), errors.Join(errs...))
	}
	return card
}

// FromRecord converts a card back into its stored form.
func FromRecord(c domain.CardRecord) Row {
	return Row{
		ID:                    c.ID,
		BankName:              c.BankName,
		CardName:              c.CardName,
		Network:               c.Network,
		PrimaryCategory:       c.PrimaryCategory,
		JoiningFee:            ptr(c.JoiningFee),
		RenewalFee:            ptr(c.RenewalFee),
		WaiverSpendLimit:      ptr(c.WaiverSpendLimit),
		RewardType:            c.RewardType,
		SpendsPerRewardUnit:   ptr(c.SpendsPerRewardUnit),
		MultipliersJSON:       EncodeMultipliers(c.Multipliers),
		UnifiedRewardValueINR: ptr(c.UnifiedRewardValueINR),
		RewardExpiryMonths:    c.RewardExpiry,
		LoungeDomestic:        c.LoungeDomestic,
		LoungeInternational:   c.LoungeInternational,
		PerkMovies:            c.PerkMovies,
		PerkGolf:              c.PerkGolf,
		PerkOthers:            c.PerkOthers,
		BenefitWelcome:        c.BenefitWelcome,
		BenefitMilestones:     c.BenefitMilestones,
		BenefitSpecialTieups:  c.BenefitSpecialTieups,
	}
}

// DecodeMultipliers parses a JSON object of category key to rate, keeping
// the keys in document order. Values may be numbers or numeric strings;
// anything else is kept with Valid=false. A repeated key keeps its first
// position and takes the last value.
func DecodeMultipliers(raw string) ([]domain.Multiplier, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("empty value")
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("reading object start: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected JSON object, got %v", tok)
	}

	var out []domain.Multiplier
	index := make(map[string]int)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("reading key: %w", err)
		}
		key, _ := keyTok.(string)

		var val json.RawMessage
		if err := dec.Decode(&val); err != nil {
			return nil, fmt.Errorf("reading value for %q: %w", key, err)
		}

		m := parseMultiplierValue(key, val)
		if i, dup := index[key]; dup {
			out[i] = m
			continue
		}
		index[key] = len(out)
		out = append(out, m)
	}

	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("reading object end: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after object")
	}
	return out, nil
}

func parseMultiplierValue(key string, val json.RawMessage) domain.Multiplier {
	m := domain.Multiplier{Key: key}

	var num json.Number
	if err := json.Unmarshal(val, &num); err == nil {
		if f, err := num.Float64(); err == nil {
			m.Value, m.Valid = f, true
		}
		return m
	}

	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			m.Value, m.Valid = f, true
		}
	}
	return m
}

// EncodeMultipliers renders multipliers as a JSON object in their order.
// Invalid entries are written as null.
func EncodeMultipliers(mults []domain.Multiplier) string {
	var b strings.Builder
	b.WriteByte('{')
	for i, m := range mults {
		if i > 0 {
			b.WriteString(", ")
		}
		key, _ := json.Marshal(m.Key)
		b.Write(key)
		b.WriteString(": ")
		if m.Valid {
			b.WriteString(strconv.FormatFloat(m.Value, 'f', -1, 64))
		} else {
			b.WriteString("null")
		}
	}
	b.WriteByte('}')
	return b.String()
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func ptr(f float64) *float64 {
	return &f
}
