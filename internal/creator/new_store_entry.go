package creator

import "github.com/gamewatch/notifier/internal/domain"

// NewStoreEntry fires on the first resolved snapshot of a source, and when a
// previously disabled listing comes back. This is the one strategy for which
// a nil previous snapshot is an event rather than a blank slate.
type NewStoreEntry struct{}

func (NewStoreEntry) Type() domain.NotificationType { return domain.NotificationNewStoreEntry }

func (NewStoreEntry) Detect(p Pair) (any, error) {
	cur := p.Current.Common()
	if cur.Disabled {
		return nil, nil
	}

	if p.Previous != nil && !p.Previous.Common().Disabled {
		return nil, nil
	}

	return &domain.NewStoreEntryPayload{
		StoreURL:     cur.StoreURL,
		ThumbnailURL: cur.ThumbnailURL,
	}, nil
}
