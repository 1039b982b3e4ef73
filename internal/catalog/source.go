package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/dvloznov/card-optimizer/internal/domain"
	"github.com/dvloznov/card-optimizer/internal/logger"
)

// Source reads the full card catalog from a store.
type Source interface {
	// Name identifies the store in logs and snapshots.
	Name() string

	// Cards returns every card in catalog order. Rows that fail to decode are
	// returned with DecodeErr set rather than as an error.
	Cards(ctx context.Context) ([]domain.CardRecord, error)
}

// Snapshot is a catalog loaded once and shared read-only for a run.
type Snapshot struct {
	Cards     []domain.CardRecord `json:"cards"`
	Source    string              `json:"source"`
	LoadedAt  time.Time           `json:"loaded_at"`
	Malformed int                 `json:"malformed"`
}

// Load reads src into a new Snapshot.
func Load(ctx context.Context, src Source) (*Snapshot, error) {
	log := logger.FromContext(ctx)

	cards, err := src.Cards(ctx)
	if err != nil {
		return nil, fmt.Errorf("Load: reading %s catalog: %w", src.Name(), err)
	}

	snap := &Snapshot{
		Cards:    make([]domain.CardRecord, len(cards)),
		Source:   src.Name(),
		LoadedAt: time.Now(),
	}
	copy(snap.Cards, cards)

	for _, c := range snap.Cards {
		if c.DecodeErr != nil {
			snap.Malformed++
			log.Warn().Err(c.DecodeErr).Str("card", c.DisplayName()).Msg("Catalog row is malformed and will earn no rewards")
		}
	}

	log.Info().
		Str("source", snap.Source).
		Int("cards", len(snap.Cards)).
		Int("malformed", snap.Malformed).
		Msg("Card catalog loaded")

	return snap, nil
}

// CardsCopy returns a copy of the snapshot's cards.
func (s *Snapshot) CardsCopy() []domain.CardRecord {
	out := make([]domain.CardRecord, len(s.Cards))
	copy(out, s.Cards)
	return out
}

// StaticSource serves a fixed list of cards. Useful in tests and for
// catalogs assembled in code.
type StaticSource struct {
	Label   string
	Records []domain.CardRecord
}

// Name implements Source.
func (s StaticSource) Name() string {
	if s.Label == "" {
		return "static"
	}
	return s.Label
}

// Cards implements Source.
func (s StaticSource) Cards(ctx context.Context) ([]domain.CardRecord, error) {
	out := make([]domain.CardRecord, len(s.Records))
	copy(out, s.Records)
	return out, nil
}
