package creator

import "github.com/gamewatch/notifier/internal/domain"

// GameReleased fires when a title that previously counted as coming soon or
// future-dated now has a release date of today or earlier.
type GameReleased struct{}

func (GameReleased) Type() domain.NotificationType { return domain.NotificationGameReleased }

func (GameReleased) Detect(p Pair) (any, error) {
	if p.Previous == nil {
		return nil, nil
	}

	prev, ok := p.Previous.ReleaseInfo()
	if !ok || prev.Released(p.Now) {
		return nil, nil
	}
	cur, ok := p.Current.ReleaseInfo()
	if !ok || !cur.Released(p.Now) {
		return nil, nil
	}

	return &domain.GameReleasedPayload{ReleaseDate: formatDate(cur.Date)}, nil
}
