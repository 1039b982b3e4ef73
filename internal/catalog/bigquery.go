package catalog

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/card-optimizer/internal/domain"
	"google.golang.org/api/iterator"
)

// BigQueryCardRow mirrors the credit_cards table in BigQuery.
type BigQueryCardRow struct {
	ID                    int64                `bigquery:"id"`
	BankName              string               `bigquery:"bank_name"`
	CardName              string               `bigquery:"card_name"`
	Network               bigquery.NullString  `bigquery:"network"`
	PrimaryCategory       bigquery.NullString  `bigquery:"primary_category"`
	JoiningFee            bigquery.NullFloat64 `bigquery:"joining_fee"`
	RenewalFee            bigquery.NullFloat64 `bigquery:"renewal_fee"`
	WaiverSpendLimit      bigquery.NullFloat64 `bigquery:"waiver_spend_limit"`
	RewardType            bigquery.NullString  `bigquery:"reward_type"`
	SpendsPerRewardUnit   bigquery.NullFloat64 `bigquery:"spends_per_reward_unit"`
	MultipliersJSON       bigquery.NullString  `bigquery:"multipliers_json"`
	UnifiedRewardValueINR bigquery.NullFloat64 `bigquery:"unified_reward_value_inr"`
	RewardExpiryMonths    bigquery.NullString  `bigquery:"reward_expiry_months"`
	LoungeDomestic        bigquery.NullString  `bigquery:"lounge_domestic"`
	LoungeInternational   bigquery.NullString  `bigquery:"lounge_international"`
	PerkMovies            bigquery.NullString  `bigquery:"perk_movies"`
	PerkGolf              bigquery.NullString  `bigquery:"perk_golf"`
	PerkOthers            bigquery.NullString  `bigquery:"perk_others"`
	BenefitWelcome        bigquery.NullString  `bigquery:"benefit_welcome"`
	BenefitMilestones     bigquery.NullString  `bigquery:"benefit_milestones"`
	BenefitSpecialTieups  bigquery.NullString  `bigquery:"benefit_special_tieups"`
}

// Row converts the BigQuery row to the neutral form.
func (b BigQueryCardRow) Row() Row {
	return Row{
		ID:                    b.ID,
		BankName:              b.BankName,
		CardName:              b.CardName,
		Network:               b.Network.StringVal,
		PrimaryCategory:       b.PrimaryCategory.StringVal,
		JoiningFee:            nullFloat(b.JoiningFee),
		RenewalFee:            nullFloat(b.RenewalFee),
		WaiverSpendLimit:      nullFloat(b.WaiverSpendLimit),
		RewardType:            b.RewardType.StringVal,
		SpendsPerRewardUnit:   nullFloat(b.SpendsPerRewardUnit),
		MultipliersJSON:       b.MultipliersJSON.StringVal,
		UnifiedRewardValueINR: nullFloat(b.UnifiedRewardValueINR),
		RewardExpiryMonths:    b.RewardExpiryMonths.StringVal,
		LoungeDomestic:        b.LoungeDomestic.StringVal,
		LoungeInternational:   b.LoungeInternational.StringVal,
		PerkMovies:            b.PerkMovies.StringVal,
		PerkGolf:              b.PerkGolf.StringVal,
		PerkOthers:            b.PerkOthers.StringVal,
		BenefitWelcome:        b.BenefitWelcome.StringVal,
		BenefitMilestones:     b.BenefitMilestones.StringVal,
		BenefitSpecialTieups:  b.BenefitSpecialTieups.StringVal,
	}
}

// ToBigQueryRow converts a neutral row for insertion.
func ToBigQueryRow(r Row) *BigQueryCardRow {
	return &BigQueryCardRow{
		ID:                    r.ID,
		BankName:              r.BankName,
		CardName:              r.CardName,
		Network:               nullString(r.Network),
		PrimaryCategory:       nullString(r.PrimaryCategory),
		JoiningFee:            toNullFloat(r.JoiningFee),
		RenewalFee:            toNullFloat(r.RenewalFee),
		WaiverSpendLimit:      toNullFloat(r.WaiverSpendLimit),
		RewardType:            nullString(r.RewardType),
		SpendsPerRewardUnit:   toNullFloat(r.SpendsPerRewardUnit),
		MultipliersJSON:       nullString(r.MultipliersJSON),
		UnifiedRewardValueINR: toNullFloat(r.UnifiedRewardValueINR),
		RewardExpiryMonths:    nullString(r.RewardExpiryMonths),
		LoungeDomestic:        nullString(r.LoungeDomestic),
		LoungeInternational:   nullString(r.LoungeInternational),
		PerkMovies:            nullString(r.PerkMovies),
		PerkGolf:              nullString(r.PerkGolf),
		PerkOthers:            nullString(r.PerkOthers),
		BenefitWelcome:        nullString(r.BenefitWelcome),
		BenefitMilestones:     nullString(r.BenefitMilestones),
		BenefitSpecialTieups:  nullString(r.BenefitSpecialTieups),
	}
}

// BigQuerySource reads the catalog from a BigQuery table.
type BigQuerySource struct {
	client  *bigquery.Client
	dataset string
	table   string
}

// NewBigQuerySource creates a source over project.dataset.table using client.
// The caller owns the client.
func NewBigQuerySource(client *bigquery.Client, dataset, table string) *BigQuerySource {
	if table == "" {
		table = TableName
	}
	return &BigQuerySource{client: client, dataset: dataset, table: table}
}

// Name implements Source.
func (s *BigQuerySource) Name() string { return "bigquery" }

// Cards implements Source.
func (s *BigQuerySource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	rows, err := ListCardsWithClient(ctx, s.client, s.dataset, s.table)
	if err != nil {
		return nil, err
	}
	cards := make([]domain.CardRecord, len(rows))
	for i, r := range rows {
		cards[i] = r.Row().Record()
	}
	return cards, nil
}

// ListCardsWithClient reads every row of the card table ordered by id.
func ListCardsWithClient(ctx context.Context, client *bigquery.Client, dataset, table string) ([]*BigQueryCardRow, error) {
	query := fmt.Sprintf(`
		SELECT
			id,
			bank_name,
			card_name,
			network,
			primary_category,
			joining_fee,
			renewal_fee,
			waiver_spend_limit,
			reward_type,
			spends_per_reward_unit,
			multipliers_json,
			unified_reward_value_inr,
			reward_expiry_months,
			lounge_domestic,
			lounge_international,
			perk_movies,
			perk_golf,
			perk_others,
			benefit_welcome,
			benefit_milestones,
			benefit_special_tieups
		FROM `+"`%s.%s.%s`"+`
		ORDER BY id
	`, client.Project(), dataset, table)

	q := client.Query(query)
	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListCardsWithClient: reading query: %w", err)
	}

	var rows []*BigQueryCardRow
	for {
		var row BigQueryCardRow
		err := it.Next(&row)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("ListCardsWithClient: iterating: %w", err)
		}
		rows = append(rows, &row)
	}

	return rows, nil
}

// BigQuerySchema is the credit_cards table schema.
var BigQuerySchema = bigquery.Schema{
	{Name: "id", Type: bigquery.IntegerFieldType, Required: true},
	{Name: "bank_name", Type: bigquery.StringFieldType, Required: true},
	{Name: "card_name", Type: bigquery.StringFieldType, Required: true},
	{Name: "network", Type: bigquery.StringFieldType},
	{Name: "primary_category", Type: bigquery.StringFieldType},
	{Name: "joining_fee", Type: bigquery.FloatFieldType},
	{Name: "renewal_fee", Type: bigquery.FloatFieldType},
	{Name: "waiver_spend_limit", Type: bigquery.FloatFieldType},
	{Name: "reward_type", Type: bigquery.StringFieldType},
	{Name: "spends_per_reward_unit", Type: bigquery.FloatFieldType},
	{Name: "multipliers_json", Type: bigquery.StringFieldType},
	{Name: "unified_reward_value_inr", Type: bigquery.FloatFieldType},
	{Name: "reward_expiry_months", Type: bigquery.StringFieldType},
	{Name: "lounge_domestic", Type: bigquery.StringFieldType},
	{Name: "lounge_international", Type: bigquery.StringFieldType},
	{Name: "perk_movies", Type: bigquery.StringFieldType},
	{Name: "perk_golf", Type: bigquery.StringFieldType},
	{Name: "perk_others", Type: bigquery.StringFieldType},
	{Name: "benefit_welcome", Type: bigquery.StringFieldType},
	{Name: "benefit_milestones", Type: bigquery.StringFieldType},
	{Name: "benefit_special_tieups", Type: bigquery.StringFieldType},
}

// SeedBigQuery creates the card table if needed, clears it and inserts rows
// with ids assigned in order. Multipliers are stored as written so their
// order survives.
func SeedBigQuery(ctx context.Context, client *bigquery.Client, dataset, table string, rows []Row) error {
	if table == "" {
		table = TableName
	}
	t := client.Dataset(dataset).Table(table)

	if _, err := t.Metadata(ctx); err != nil {
		if err := t.Create(ctx, &bigquery.TableMetadata{Schema: BigQuerySchema}); err != nil {
			return fmt.Errorf("SeedBigQuery: creating table: %w", err)
		}
	} else {
		q := client.Query(fmt.Sprintf("DELETE FROM `%s.%s.%s` WHERE TRUE", client.Project(), dataset, table))
		job, err := q.Run(ctx)
		if err != nil {
			return fmt.Errorf("SeedBigQuery: clearing table: %w", err)
		}
		status, err := job.Wait(ctx)
		if err != nil {
			return fmt.Errorf("SeedBigQuery: waiting for clear: %w", err)
		}
		if status.Err() != nil {
			return fmt.Errorf("SeedBigQuery: clear job failed: %w", status.Err())
		}
	}

	bqRows := make([]*BigQueryCardRow, len(rows))
	for i, r := range rows {
		r.ID = int64(i + 1)
		bqRows[i] = ToBigQueryRow(r)
	}

	if err := t.Inserter().Put(ctx, bqRows); err != nil {
		return fmt.Errorf("SeedBigQuery: inserting rows: %w", err)
	}
	return nil
}

func nullFloat(n bigquery.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}

func toNullFloat(f *float64) bigquery.NullFloat64 {
	if f == nil {
		return bigquery.NullFloat64{}
	}
	return bigquery.NullFloat64{Float64: *f, Valid: true}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}
