package creator

import (
	"time"

	"github.com/gamewatch/notifier/internal/domain"
)

// Pair is one detection input: the previous and current snapshot of a single
// source. Previous is nil when the source has never resolved before. Now is
// assigned by the caller so detection stays deterministic for a given input.
type Pair struct {
	SourceType domain.SourceType
	Previous   domain.GameData
	Current    domain.GameData
	Now        time.Time
}

// Creator is one stateless detection strategy. Detect returns a nil payload
// when the pair holds no event for this strategy, including for store types
// the strategy does not understand. Creators never assign timestamps or IDs;
// given the same Pair they always return the same result.
type Creator interface {
	Type() domain.NotificationType
	Detect(p Pair) (any, error)
}

// Default returns the fixed creator list in its canonical order. The order
// carries no semantic weight: results are independent, and the one
// cross-strategy rule (game-released suppresses release-date-changed) is
// enforced by the notification service, not by ordering.
func Default() []Creator {
	return []Creator{
		GameReduced{},
		GameReleased{},
		NewMetacriticRating{},
		NewStoreEntry{},
		ReleaseDateChanged{},
	}
}

func formatDate(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}
