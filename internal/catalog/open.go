package catalog

import (
	"context"
	"fmt"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/card-optimizer/internal/config"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Open builds the Source selected by cfg. The returned close function
// releases any client the source holds and is never nil.
func Open(ctx context.Context, cfg *config.Config) (Source, func(), error) {
	noop := func() {}

	switch cfg.Catalog.Source {
	case config.SourceBuiltin, "":
		return Builtin(), noop, nil

	case config.SourceYAML:
		return NewYAMLSource(cfg.Catalog.Path), noop, nil

	case config.SourceBigQuery:
		client, err := bigquery.NewClient(ctx, cfg.BigQuery.ProjectID)
		if err != nil {
			return nil, noop, fmt.Errorf("Open: creating bigquery client: %w", err)
		}
		src := NewBigQuerySource(client, cfg.BigQuery.Dataset, cfg.BigQuery.Table)
		return src, func() { client.Close() }, nil

	case config.SourcePostgres:
		pool, err := pgxpool.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, noop, fmt.Errorf("Open: connecting to postgres: %w", err)
		}
		return NewPostgresSource(pool), pool.Close, nil

	case config.SourceNotion:
		return NewNotionSource(NewNotionClient(cfg.Notion.Token), cfg.Notion.CardsDBID), noop, nil
	}

	return nil, noop, fmt.Errorf("Open: unknown catalog source %q", cfg.Catalog.Source)
}
