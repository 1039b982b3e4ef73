package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/jomei/notionapi"
)

// Notion property names of the card database. "Card" is the title column;
// "Multipliers" holds the same JSON object text as multipliers_json.
const (
	notionPropCard                 = "Card"
	notionPropBank                 = "Bank"
	notionPropNetwork              = "Network"
	notionPropPrimaryCategory      = "Primary Category"
	notionPropJoiningFee           = "Joining Fee"
	notionPropRenewalFee           = "Renewal Fee"
	notionPropWaiverSpendLimit     = "Waiver Spend Limit"
	notionPropRewardType           = "Reward Type"
	notionPropSpendsPerRewardUnit  = "Spends Per Reward Unit"
	notionPropMultipliers          = "Multipliers"
	notionPropRewardValueINR       = "Reward Value INR"
	notionPropRewardExpiry         = "Reward Expiry"
	notionPropLoungeDomestic       = "Lounge Domestic"
	notionPropLoungeInternational  = "Lounge International"
	notionPropPerkMovies           = "Movies"
	notionPropPerkGolf             = "Golf"
	notionPropPerkOthers           = "Other Perks"
	notionPropBenefitWelcome       = "Welcome Benefit"
	notionPropBenefitMilestones    = "Milestones"
	notionPropBenefitSpecialTieups = "Tie-ups"
)

// NotionService is the subset of the Notion API the catalog needs.
type NotionService interface {
	QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error)
	CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error)
}

// NotionClient implements NotionService with the Notion SDK.
type NotionClient struct {
	client *notionapi.Client
}

// NewNotionClient creates a NotionClient with the provided integration token.
func NewNotionClient(token string) *NotionClient {
	return &NotionClient{
		client: notionapi.NewClient(notionapi.Token(token)),
	}
}

// QueryDatabase queries a Notion database.
func (n *NotionClient) QueryDatabase(ctx context.Context, databaseID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	resp, err := n.client.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
	if err != nil {
		return nil, fmt.Errorf("QueryDatabase: %w", err)
	}
	return resp, nil
}

// CreatePage creates a page in a Notion database.
func (n *NotionClient) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	req := &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: properties,
	}

	page, err := n.client.Page.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("CreatePage: %w", err)
	}
	return page, nil
}

// NotionSource reads the catalog from a Notion database, one page per card.
type NotionSource struct {
	svc        NotionService
	databaseID string
}

// NewNotionSource creates a source over the Notion database databaseID.
func NewNotionSource(svc NotionService, databaseID string) *NotionSource {
	return &NotionSource{svc: svc, databaseID: databaseID}
}

// Name implements Source.
func (s *NotionSource) Name() string { return "notion" }

// Cards implements Source. Pages are read in ascending creation order so the
// catalog order matches the order cards were added.
func (s *NotionSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	var cards []domain.CardRecord
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize: 100,
			Sorts: []notionapi.SortObject{
				{Timestamp: notionapi.TimestampCreated, Direction: notionapi.SortOrderASC},
			},
		}
		if cursor != "" {
			req.StartCursor = cursor
		}

		resp, err := s.svc.QueryDatabase(ctx, s.databaseID, req)
		if err != nil {
			return nil, fmt.Errorf("NotionSource.Cards: %w", err)
		}

		for _, page := range resp.Results {
			row := pageToRow(page)
			row.ID = int64(len(cards) + 1)
			cards = append(cards, row.Record())
		}

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return cards, nil
}

// SeedNotion creates one page per row in the database.
func SeedNotion(ctx context.Context, svc NotionService, databaseID string, rows []Row) error {
	for _, r := range rows {
		if _, err := svc.CreatePage(ctx, databaseID, RowToNotionProperties(r)); err != nil {
			return fmt.Errorf("SeedNotion: card %q %q: %w", r.BankName, r.CardName, err)
		}
	}
	return nil
}

func pageToRow(page notionapi.Page) Row {
	p := page.Properties
	return Row{
		BankName:              notionText(p, notionPropBank),
		CardName:              notionText(p, notionPropCard),
		Network:               notionText(p, notionPropNetwork),
		PrimaryCategory:       notionText(p, notionPropPrimaryCategory),
		JoiningFee:            notionNumber(p, notionPropJoiningFee),
		RenewalFee:            notionNumber(p, notionPropRenewalFee),
		WaiverSpendLimit:      notionNumber(p, notionPropWaiverSpendLimit),
		RewardType:            notionText(p, notionPropRewardType),
		SpendsPerRewardUnit:   notionNumber(p, notionPropSpendsPerRewardUnit),
		MultipliersJSON:       notionText(p, notionPropMultipliers),
		UnifiedRewardValueINR: notionNumber(p, notionPropRewardValueINR),
		RewardExpiryMonths:    notionText(p, notionPropRewardExpiry),
		LoungeDomestic:        notionText(p, notionPropLoungeDomestic),
		LoungeInternational:   notionText(p, notionPropLoungeInternational),
		PerkMovies:            notionText(p, notionPropPerkMovies),
		PerkGolf:              notionText(p, notionPropPerkGolf),
		PerkOthers:            notionText(p, notionPropPerkOthers),
		BenefitWelcome:        notionText(p, notionPropBenefitWelcome),
		BenefitMilestones:     notionText(p, notionPropBenefitMilestones),
		BenefitSpecialTieups:  notionText(p, notionPropBenefitSpecialTieups),
	}
}

// notionText reads title, rich text or select properties as plain text.
func notionText(props notionapi.Properties, name string) string {
	prop, ok := props[name]
	if !ok {
		return ""
	}
	switch v := prop.(type) {
	case *notionapi.TitleProperty:
		return joinRichText(v.Title)
	case *notionapi.RichTextProperty:
		return joinRichText(v.RichText)
	case *notionapi.SelectProperty:
		return v.Select.Name
	}
	return ""
}

func joinRichText(parts []notionapi.RichText) string {
	var b strings.Builder
	for _, rt := range parts {
		b.WriteString(rt.PlainText)
	}
	return b.String()
}

// notionNumber returns nil for missing or non-number properties.
// An empty Notion number cell decodes as 0.
func notionNumber(props notionapi.Properties, name string) *float64 {
	prop, ok := props[name]
	if !ok {
		return nil
	}
	if n, ok := prop.(*notionapi.NumberProperty); ok {
		v := n.Number
		return &v
	}
	return nil
}

// RowToNotionProperties converts a row to Notion page properties.
func RowToNotionProperties(r Row) notionapi.Properties {
	props := notionapi.Properties{
		notionPropCard: notionapi.TitleProperty{
			Title: []notionapi.RichText{textRun(r.CardName)},
		},
	}

	if r.BankName != "" {
		props[notionPropBank] = notionapi.SelectProperty{Select: notionapi.Option{Name: r.BankName}}
	}
	if r.RewardType != "" {
		props[notionPropRewardType] = notionapi.SelectProperty{Select: notionapi.Option{Name: r.RewardType}}
	}

	texts := map[string]string{
		notionPropNetwork:              r.Network,
		notionPropPrimaryCategory:      r.PrimaryCategory,
		notionPropMultipliers:          compactJSON(r.MultipliersJSON),
		notionPropRewardExpiry:         r.RewardExpiryMonths,
		notionPropLoungeDomestic:       r.LoungeDomestic,
		notionPropLoungeInternational:  r.LoungeInternational,
		notionPropPerkMovies:           r.PerkMovies,
		notionPropPerkGolf:             r.PerkGolf,
		notionPropPerkOthers:           r.PerkOthers,
		notionPropBenefitWelcome:       r.BenefitWelcome,
		notionPropBenefitMilestones:    r.BenefitMilestones,
		notionPropBenefitSpecialTieups: r.BenefitSpecialTieups,
	}
	for name, val := range texts {
		if val != "" {
			props[name] = notionapi.RichTextProperty{RichText: []notionapi.RichText{textRun(val)}}
		}
	}

	numbers := map[string]*float64{
		notionPropJoiningFee:          r.JoiningFee,
		notionPropRenewalFee:          r.RenewalFee,
		notionPropWaiverSpendLimit:    r.WaiverSpendLimit,
		notionPropSpendsPerRewardUnit: r.SpendsPerRewardUnit,
		notionPropRewardValueINR:      r.UnifiedRewardValueINR,
	}
	for name, val := range numbers {
		if val != nil {
			props[name] = notionapi.NumberProperty{Number: *val}
		}
	}

	return props
}

func textRun(s string) notionapi.RichText {
	return notionapi.RichText{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}
}

// compactJSON strips insignificant whitespace while keeping key order.
func compactJSON(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
