package catalog

import (
	"context"

	"github.com/dvloznov/card-optimizer/internal/domain"
)

// SeedRows is the built-in catalog: current cards from the five largest
// Indian card issuers. It is used as the default source and to seed stores.
var SeedRows = []Row{
	// HDFC
	{
		BankName: "HDFC", CardName: "Infinia Metal", Network: "Visa Infinite/Mastercard World", PrimaryCategory: "Rewards",
		JoiningFee: ptr(12500), RenewalFee: ptr(12500), WaiverSpendLimit: ptr(1000000),
		RewardType: "Points", SpendsPerRewardUnit: ptr(150), MultipliersJSON: `{"travel": 10.0, "dining": 5.0, "shopping": 3.0}`,
		UnifiedRewardValueINR: ptr(1.0), RewardExpiryMonths: "36 Months",
		LoungeDomestic: "Unlimited", LoungeInternational: "Unlimited", PerkMovies: "BOGO up to Rs 1000",
		PerkGolf: "Unlimited at select courses", PerkOthers: "Premium Concierge",
		BenefitWelcome: "12500 Reward Points", BenefitMilestones: "No specific milestone", BenefitSpecialTieups: "Marriott, ITC Hotels",
	},
	{
		BankName: "HDFC", CardName: "Regalia Gold", Network: "Visa/Mastercard", PrimaryCategory: "Travel/Rewards",
		JoiningFee: ptr(2500), RenewalFee: ptr(2500), WaiverSpendLimit: ptr(400000),
		RewardType: "Points", SpendsPerRewardUnit: ptr(150), MultipliersJSON: `{"myntra": 5.0, "nykaa": 5.0, "reliance": 5.0}`,
		UnifiedRewardValueINR: ptr(0.5), RewardExpiryMonths: "24 Months",
		LoungeDomestic: "12 per year", LoungeInternational: "6 per year", PerkMovies: "No",
		PerkGolf: "No", PerkOthers: "Flight Vouchers on spend",
		BenefitWelcome: "Rs 2500 voucher on fee payment", BenefitMilestones: "Rs 1500 voucher on 1.5L spend", BenefitSpecialTieups: "Vistara Silver Tier",
	},
	// SBI
	{
		BankName: "SBI", CardName: "Elite", Network: "Visa Signature/Mastercard/Amex", PrimaryCategory: "Premium/Lifestyle",
		JoiningFee: ptr(4999), RenewalFee: ptr(4999), WaiverSpendLimit: ptr(1000000),
		RewardType: "Points", SpendsPerRewardUnit: ptr(100), MultipliersJSON: `{"dining": 5.0, "groceries": 5.0, "departmental": 5.0}`,
		UnifiedRewardValueINR: ptr(0.25), RewardExpiryMonths: "24 Months",
		LoungeDomestic: "6 per year", LoungeInternational: "6 per year", PerkMovies: "2 Free Tickets/month (Max Rs 500)",
		PerkGolf: "No", PerkOthers: "Club Vistara Silver",
		BenefitWelcome: "Rs 5000 Welcome e-Gift Voucher", BenefitMilestones: "Up to 50000 Bonus Points (Rs 12500 value)", BenefitSpecialTieups: "Trident Privilege Red Tier",
	},
	{
		BankName: "SBI", CardName: "Cashback Card", Network: "Visa", PrimaryCategory: "Cashback",
		JoiningFee: ptr(999), RenewalFee: ptr(999), WaiverSpendLimit: ptr(200000),
		RewardType: "Cashback", SpendsPerRewardUnit: ptr(100), MultipliersJSON: `{"online": 5.0, "offline": 1.0, "utilities": 0.0}`,
		UnifiedRewardValueINR: ptr(1.0), RewardExpiryMonths: "Never (Direct Credit)",
		LoungeDomestic: "4 per year", LoungeInternational: "No", PerkMovies: "No",
		PerkGolf: "No", PerkOthers: "1% Fuel Surcharge Waiver",
		BenefitWelcome: "None", BenefitMilestones: "None", BenefitSpecialTieups: "None",
	},
	// ICICI
	{
		BankName: "ICICI", CardName: "Sapphiro", Network: "Visa/Mastercard", PrimaryCategory: "Travel/Lifestyle",
		JoiningFee: ptr(6500), RenewalFee: ptr(3500), WaiverSpendLimit: ptr(600000),
		RewardType: "Points", SpendsPerRewardUnit: ptr(100), MultipliersJSON: `{"international": 2.0, "domestic": 1.0, "utilities": 0.5}`,
		UnifiedRewardValueINR: ptr(0.25), RewardExpiryMonths: "36 Months",
		LoungeDomestic: "4 per quarter", LoungeInternational: "2 per year", PerkMovies: "BOGO up to Rs 500 on BookMyShow",
		PerkGolf: "4 rounds per month", PerkOthers: "Dreamfolks Membership",
		BenefitWelcome: "Vouchers worth Rs 13000", BenefitMilestones: "None", BenefitSpecialTieups: "Tata Cliq, EazyDiner",
	},
	{
		BankName: "ICICI", CardName: "Amazon Pay", Network: "Visa", PrimaryCategory: "Cashback",
		JoiningFee: ptr(0), RenewalFee: ptr(0), WaiverSpendLimit: ptr(0),
		RewardType: "Cashback", SpendsPerRewardUnit: ptr(100), MultipliersJSON: `{"amazon_prime": 5.0, "amazon_non_prime": 3.0, "dining": 2.0}`,
		UnifiedRewardValueINR: ptr(1.0), RewardExpiryMonths: "Never",
		LoungeDomestic: "No", LoungeInternational: "No", PerkMovies: "No",
		PerkGolf: "No", PerkOthers: "1% Fuel Surcharge Waiver",
		BenefitWelcome: "Amazon Pay Cashback", BenefitMilestones: "None", BenefitSpecialTieups: "Amazon Prime (for max benefits)",
	},
	// Axis
	{
		BankName: "Axis", CardName: "Magnus", Network: "Visa Infinite/Mastercard", PrimaryCategory: "Premium Travel",
		JoiningFee: ptr(12500), RenewalFee: ptr(12500), WaiverSpendLimit: ptr(2500000),
		RewardType: "EDGE Points", SpendsPerRewardUnit: ptr(200), MultipliersJSON: `{"travel": 5.0, "shopping": 2.0}`,
		UnifiedRewardValueINR: ptr(0.4), RewardExpiryMonths: "36 Months",
		LoungeDomestic: "Unlimited", LoungeInternational: "Unlimited", PerkMovies: "BOGO up to Rs 500",
		PerkGolf: "Unlimited", PerkOthers: "Airport Meet & Greet",
		BenefitWelcome: "Luxury Brand Voucher", BenefitMilestones: "25000 EDGE Points on Rs 1 Lakh spend", BenefitSpecialTieups: "Burgundy, EazyDiner Prime",
	},
	{
		BankName: "Axis", CardName: "Ace", Network: "Visa", PrimaryCategory: "Cashback",
		JoiningFee: ptr(499), RenewalFee: ptr(499), WaiverSpendLimit: ptr(200000),
		RewardType: "Cashback", SpendsPerRewardUnit: ptr(100), MultipliersJSON: `{"google_pay_bills": 5.0, "swiggy": 4.0, "zomato": 4.0, "ola": 4.0}`,
		UnifiedRewardValueINR: ptr(1.0), RewardExpiryMonths: "Never",
		LoungeDomestic: "4 per year", LoungeInternational: "No", PerkMovies: "No",
		PerkGolf: "No", PerkOthers: "Dining Delights",
		BenefitWelcome: "None", BenefitMilestones: "None", BenefitSpecialTieups: "Google Pay Partnership",
	},
	// Kotak
	{
		BankName: "Kotak", CardName: "Zenith", Network: "Visa Signature", PrimaryCategory: "Premium Rewards",
		JoiningFee: ptr(10000), RenewalFee: ptr(10000), WaiverSpendLimit: ptr(0),
		RewardType: "Points", SpendsPerRewardUnit: ptr(150), MultipliersJSON: `{"shopping": 2.0, "travel": 2.0}`,
		UnifiedRewardValueINR: ptr(0.25), RewardExpiryMonths: "24 Months",
		LoungeDomestic: "4 per quarter", LoungeInternational: "4 per year", PerkMovies: "No",
		PerkGolf: "No", PerkOthers: "Priority Pass",
		BenefitWelcome: "Vouchers worth Rs 10000", BenefitMilestones: "Bonus Points on milestones", BenefitSpecialTieups: "Taj Experiences",
	},
	{
		BankName: "Kotak", CardName: "League", Network: "Visa", PrimaryCategory: "Rewards",
		JoiningFee: ptr(499), RenewalFee: ptr(499), WaiverSpendLimit: ptr(50000),
		RewardType: "Points", SpendsPerRewardUnit: ptr(150), MultipliersJSON: `{"travel": 2.0, "dining": 2.0}`,
		UnifiedRewardValueINR: ptr(0.25), RewardExpiryMonths: "24 Months",
		LoungeDomestic: "No", LoungeInternational: "No", PerkMovies: "4 PVR Tickets on Rs 1.25L spend",
		PerkGolf: "No", PerkOthers: "Railway Surcharge Waiver",
		BenefitWelcome: "None", BenefitMilestones: "10000 Bonus Points on Rs 1.25L spend", BenefitSpecialTieups: "PVR Cinemas",
	},
}

// SeedCards decodes SeedRows with sequential IDs starting at 1.
func SeedCards() []domain.CardRecord {
	cards := make([]domain.CardRecord, len(SeedRows))
	for i, r := range SeedRows {
		r.ID = int64(i + 1)
		cards[i] = r.Record()
	}
	return cards
}

type builtinSource struct{}

// Builtin returns a Source serving the seed catalog.
func Builtin() Source {
	return builtinSource{}
}

func (builtinSource) Name() string { return "builtin" }

func (builtinSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	return SeedCards(), nil
}
