package creator

import "github.com/gamewatch/notifier/internal/domain"

// ReleaseDateChanged fires when both snapshots carry a release date and the
// dates differ. A future-to-past transition also matches here; the
// notification service suppresses this result whenever GameReleased fired
// for the same pair, so a release is reported as a release and nothing else.
type ReleaseDateChanged struct{}

func (ReleaseDateChanged) Type() domain.NotificationType {
	return domain.NotificationReleaseDateChanged
}

func (ReleaseDateChanged) Detect(p Pair) (any, error) {
	if p.Previous == nil {
		return nil, nil
	}

	prev, ok := p.Previous.ReleaseInfo()
	if !ok || prev.Date.IsZero() {
		return nil, nil
	}
	cur, ok := p.Current.ReleaseInfo()
	if !ok || cur.Date.IsZero() {
		return nil, nil
	}
	if sameDay(prev.Date, cur.Date) {
		return nil, nil
	}

	return &domain.ReleaseDateChangedPayload{
		OldDate: formatDate(prev.Date),
		NewDate: formatDate(cur.Date),
	}, nil
}
