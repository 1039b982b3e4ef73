package catalog

import (
	"context"
	"fmt"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS credit_cards (
	id                       BIGSERIAL PRIMARY KEY,
	bank_name                TEXT NOT NULL,
	card_name                TEXT NOT NULL,
	network                  TEXT,
	primary_category         TEXT,
	joining_fee              DOUBLE PRECISION,
	renewal_fee              DOUBLE PRECISION,
	waiver_spend_limit       DOUBLE PRECISION,
	reward_type              TEXT,
	spends_per_reward_unit   DOUBLE PRECISION,
	multipliers_json         TEXT,
	unified_reward_value_inr DOUBLE PRECISION,
	reward_expiry_months     TEXT,
	lounge_domestic          TEXT,
	lounge_international     TEXT,
	perk_movies              TEXT,
	perk_golf                TEXT,
	perk_others              TEXT,
	benefit_welcome          TEXT,
	benefit_milestones       TEXT,
	benefit_special_tieups   TEXT
)`

const postgresSelect = `
SELECT
	id,
	bank_name,
	card_name,
	COALESCE(network, ''),
	COALESCE(primary_category, ''),
	joining_fee,
	renewal_fee,
	waiver_spend_limit,
	COALESCE(reward_type, ''),
	spends_per_reward_unit,
	COALESCE(multipliers_json, ''),
	unified_reward_value_inr,
	COALESCE(reward_expiry_months, ''),
	COALESCE(lounge_domestic, ''),
	COALESCE(lounge_international, ''),
	COALESCE(perk_movies, ''),
	COALESCE(perk_golf, ''),
	COALESCE(perk_others, ''),
	COALESCE(benefit_welcome, ''),
	COALESCE(benefit_milestones, ''),
	COALESCE(benefit_special_tieups, '')
FROM credit_cards
ORDER BY id`

const postgresInsert = `
INSERT INTO credit_cards (
	bank_name, card_name, network, primary_category, joining_fee, renewal_fee,
	waiver_spend_limit, reward_type, spends_per_reward_unit, multipliers_json,
	unified_reward_value_inr, reward_expiry_months, lounge_domestic, lounge_international,
	perk_movies, perk_golf, perk_others, benefit_welcome, benefit_milestones, benefit_special_tieups
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`

// PostgresSource reads the catalog from a Postgres credit_cards table.
type PostgresSource struct {
	pool *pgxpool.Pool
}

// NewPostgresSource creates a source over pool. The caller owns the pool.
func NewPostgresSource(pool *pgxpool.Pool) *PostgresSource {
	return &PostgresSource{pool: pool}
}

// Name implements Source.
func (s *PostgresSource) Name() string { return "postgres" }

// Cards implements Source.
func (s *PostgresSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	rows, err := s.pool.Query(ctx, postgresSelect)
	if err != nil {
		return nil, fmt.Errorf("PostgresSource.Cards: query: %w", err)
	}

	list, err := pgx.CollectRows(rows, scanPostgresRow)
	if err != nil {
		return nil, fmt.Errorf("PostgresSource.Cards: scanning: %w", err)
	}

	cards := make([]domain.CardRecord, len(list))
	for i, r := range list {
		cards[i] = r.Record()
	}
	return cards, nil
}

func scanPostgresRow(row pgx.CollectableRow) (Row, error) {
	var r Row
	err := row.Scan(
		&r.ID,
		&r.BankName,
		&r.CardName,
		&r.Network,
		&r.PrimaryCategory,
		&r.JoiningFee,
		&r.RenewalFee,
		&r.WaiverSpendLimit,
		&r.RewardType,
		&r.SpendsPerRewardUnit,
		&r.MultipliersJSON,
		&r.UnifiedRewardValueINR,
		&r.RewardExpiryMonths,
		&r.LoungeDomestic,
		&r.LoungeInternational,
		&r.PerkMovies,
		&r.PerkGolf,
		&r.PerkOthers,
		&r.BenefitWelcome,
		&r.BenefitMilestones,
		&r.BenefitSpecialTieups,
	)
	return r, err
}

// SeedPostgres recreates the credit_cards table and inserts rows in one
// transaction.
func SeedPostgres(ctx context.Context, pool *pgxpool.Pool, rows []Row) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("SeedPostgres: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DROP TABLE IF EXISTS credit_cards"); err != nil {
		return fmt.Errorf("SeedPostgres: drop table: %w", err)
	}
	if _, err := tx.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("SeedPostgres: create table: %w", err)
	}

	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(postgresInsert,
			r.BankName, r.CardName, r.Network, r.PrimaryCategory,
			r.JoiningFee, r.RenewalFee, r.WaiverSpendLimit,
			r.RewardType, r.SpendsPerRewardUnit, r.MultipliersJSON,
			r.UnifiedRewardValueINR, r.RewardExpiryMonths,
			r.LoungeDomestic, r.LoungeInternational,
			r.PerkMovies, r.PerkGolf, r.PerkOthers,
			r.BenefitWelcome, r.BenefitMilestones, r.BenefitSpecialTieups,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("SeedPostgres: insert rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("SeedPostgres: commit: %w", err)
	}
	return nil
}
