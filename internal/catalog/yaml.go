package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"gopkg.in/yaml.v3"
)

// yamlFile is the on-disk layout of a YAML catalog:
//
//	cards:
//	  - bank_name: HDFC
//	    card_name: Infinia Metal
//	    spends_per_reward_unit: 150
//	    unified_reward_value_inr: 1.0
//	    multipliers:
//	      travel: 10
//	      dining: 5
type yamlFile struct {
	Cards []yamlCard `yaml:"cards"`
}

type yamlCard struct {
	BankName        string `yaml:"bank_name"`
	CardName        string `yaml:"card_name"`
	Network         string `yaml:"network"`
	PrimaryCategory string `yaml:"primary_category"`

	JoiningFee       *float64 `yaml:"joining_fee"`
	RenewalFee       *float64 `yaml:"renewal_fee"`
	WaiverSpendLimit *float64 `yaml:"waiver_spend_limit"`

	RewardType            string    `yaml:"reward_type"`
	SpendsPerRewardUnit   *float64  `yaml:"spends_per_reward_unit"`
	Multipliers           yaml.Node `yaml:"multipliers"`
	UnifiedRewardValueINR *float64  `yaml:"unified_reward_value_inr"`
	RewardExpiryMonths    string    `yaml:"reward_expiry_months"`

	LoungeDomestic      string `yaml:"lounge_domestic"`
	LoungeInternational string `yaml:"lounge_international"`
	PerkMovies          string `yaml:"perk_movies"`
	PerkGolf            string `yaml:"perk_golf"`
	PerkOthers          string `yaml:"perk_others"`

	BenefitWelcome       string `yaml:"benefit_welcome"`
	BenefitMilestones    string `yaml:"benefit_milestones"`
	BenefitSpecialTieups string `yaml:"benefit_special_tieups"`
}

// YAMLSource reads the catalog from a YAML file.
type YAMLSource struct {
	path string
}

// NewYAMLSource creates a source for the YAML file at path.
func NewYAMLSource(path string) *YAMLSource {
	return &YAMLSource{path: path}
}

// Name implements Source.
func (s *YAMLSource) Name() string { return "yaml" }

// Cards implements Source.
func (s *YAMLSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("YAMLSource.Cards: open %q: %w", s.path, err)
	}
	defer f.Close()

	cards, err := DecodeYAML(f)
	if err != nil {
		return nil, fmt.Errorf("YAMLSource.Cards: %w", err)
	}
	return cards, nil
}

// DecodeYAML reads a YAML catalog document. Multiplier keys keep the order
// they are written in.
func DecodeYAML(r io.Reader) ([]domain.CardRecord, error) {
	var doc yamlFile
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	cards := make([]domain.CardRecord, 0, len(doc.Cards))
	for i, yc := range doc.Cards {
		row := Row{
			ID:                    int64(i + 1),
			BankName:              yc.BankName,
			CardName:              yc.CardName,
			Network:               yc.Network,
			PrimaryCategory:       yc.PrimaryCategory,
			JoiningFee:            yc.JoiningFee,
			RenewalFee:            yc.RenewalFee,
			WaiverSpendLimit:      yc.WaiverSpendLimit,
			RewardType:            yc.RewardType,
			SpendsPerRewardUnit:   yc.SpendsPerRewardUnit,
			UnifiedRewardValueINR: yc.UnifiedRewardValueINR,
			RewardExpiryMonths:    yc.RewardExpiryMonths,
			LoungeDomestic:        yc.LoungeDomestic,
			LoungeInternational:   yc.LoungeInternational,
			PerkMovies:            yc.PerkMovies,
			PerkGolf:              yc.PerkGolf,
			PerkOthers:            yc.PerkOthers,
			BenefitWelcome:        yc.BenefitWelcome,
			BenefitMilestones:     yc.BenefitMilestones,
			BenefitSpecialTieups:  yc.BenefitSpecialTieups,
		}
		mults, err := decodeYAMLMultipliers(&yc.Multipliers)
		cards = append(cards, row.record(mults, err))
	}
	return cards, nil
}

// decodeYAMLMultipliers walks a mapping node pair by pair so key order survives.
// An absent multipliers field means no bonus categories.
func decodeYAMLMultipliers(n *yaml.Node) ([]domain.Multiplier, error) {
	if n.Kind == 0 {
		return nil, nil
	}
	if n.Kind == yaml.ScalarNode && n.Tag == "!!null" {
		return nil, errors.New("null value")
	}
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected mapping at line %d", n.Line)
	}

	var out []domain.Multiplier
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		m := domain.Multiplier{Key: key.Value}
		if val.Kind == yaml.ScalarNode && (val.Tag == "!!int" || val.Tag == "!!float" || val.Tag == "!!str") {
			if f, err := strconv.ParseFloat(strings.TrimSpace(val.Value), 64); err == nil {
				m.Value, m.Valid = f, true
			}
		}
		out = append(out, m)
	}
	return out, nil
}

// EncodeYAML writes cards as a YAML catalog document.
func EncodeYAML(w io.Writer, cards []domain.CardRecord) error {
	doc := yaml.Node{Kind: yaml.DocumentNode}
	root := &yaml.Node{Kind: yaml.MappingNode}
	list := &yaml.Node{Kind: yaml.SequenceNode}
	root.Content = append(root.Content, scalar("cards"), list)
	doc.Content = append(doc.Content, root)

	for _, c := range cards {
		item := &yaml.Node{Kind: yaml.MappingNode}
		add := func(k string, v *yaml.Node) {
			item.Content = append(item.Content, scalar(k), v)
		}
		add("bank_name", scalar(c.BankName))
		add("card_name", scalar(c.CardName))
		add("network", scalar(c.Network))
		add("primary_category", scalar(c.PrimaryCategory))
		add("joining_fee", number(c.JoiningFee))
		add("renewal_fee", number(c.RenewalFee))
		add("waiver_spend_limit", number(c.WaiverSpendLimit))
		add("reward_type", scalar(c.RewardType))
		add("spends_per_reward_unit", number(c.SpendsPerRewardUnit))

		mults := &yaml.Node{Kind: yaml.MappingNode}
		for _, m := range c.Multipliers {
			v := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}
			if m.Valid {
				v = number(m.Value)
			}
			mults.Content = append(mults.Content, scalar(m.Key), v)
		}
		add("multipliers", mults)

		add("unified_reward_value_inr", number(c.UnifiedRewardValueINR))
		add("reward_expiry_months", scalar(c.RewardExpiry))
		add("lounge_domestic", scalar(c.LoungeDomestic))
		add("lounge_international", scalar(c.LoungeInternational))
		add("perk_movies", scalar(c.PerkMovies))
		add("perk_golf", scalar(c.PerkGolf))
		add("perk_others", scalar(c.PerkOthers))
		add("benefit_welcome", scalar(c.BenefitWelcome))
		add("benefit_milestones", scalar(c.BenefitMilestones))
		add("benefit_special_tieups", scalar(c.BenefitSpecialTieups))
		list.Content = append(list.Content, item)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("EncodeYAML: %w", err)
	}
	return enc.Close()
}

func scalar(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
}

func number(f float64) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: strconv.FormatFloat(f, 'f', -1, 64)}
}
