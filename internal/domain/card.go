package domain

import "strings"

// NoRecommendation is the card name reported when no card yields a positive reward.
const NoRecommendation = "No Recommendation"

// DefaultMultiplier applies when no multiplier key matches a category.
const DefaultMultiplier = 1.0

// Multiplier is one category-keyed bonus rate from a card's reward rules.
// Valid is false when the stored value could not be read as a number.
type Multiplier struct {
	Key   string  `json:"key" yaml:"key"`
	Value float64 `json:"value" yaml:"value"`
	Valid bool    `json:"valid" yaml:"-"`
}

// CardRecord is a single credit card from the reference catalog.
// Multipliers keep the order they were declared in, since lookup is first-match.
type CardRecord struct {
	ID       int64  `json:"id"`
	BankName string `json:"bank_name"`
	CardName string `json:"card_name"`

	Network         string `json:"network"`
	PrimaryCategory string `json:"primary_category"`

	JoiningFee       float64 `json:"joining_fee"`
	RenewalFee       float64 `json:"renewal_fee"`
	WaiverSpendLimit float64 `json:"waiver_spend_limit"`

	RewardType            string       `json:"reward_type"`
	SpendsPerRewardUnit   float64      `json:"spends_per_reward_unit"`
	Multipliers           []Multiplier `json:"multipliers"`
	UnifiedRewardValueINR float64      `json:"unified_reward_value_inr"`
	RewardExpiry          string       `json:"reward_expiry_months"`

	LoungeDomestic      string `json:"lounge_domestic"`
	LoungeInternational string `json:"lounge_international"`
	PerkMovies          string `json:"perk_movies"`
	PerkGolf            string `json:"perk_golf"`
	PerkOthers          string `json:"perk_others"`

	BenefitWelcome       string `json:"benefit_welcome"`
	BenefitMilestones    string `json:"benefit_milestones"`
	BenefitSpecialTieups string `json:"benefit_special_tieups"`

	// DecodeErr is set when the stored row could not be decoded cleanly.
	// Such a card still appears in the catalog but never earns a reward.
	DecodeErr error `json:"-"`
}

// DisplayName returns "<bank> <card>", the name used in recommendations.
func (c CardRecord) DisplayName() string {
	return strings.TrimSpace(c.BankName + " " + c.CardName)
}

// Malformed reports whether the card's row failed to decode.
func (c CardRecord) Malformed() bool {
	return c.DecodeErr != nil
}

// Multiplier returns the value stored under key (case-insensitive exact match).
func (c CardRecord) Multiplier(key string) (Multiplier, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, m := range c.Multipliers {
		if strings.ToLower(m.Key) == key {
			return m, true
		}
	}
	return Multiplier{}, false
}
