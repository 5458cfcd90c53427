package creator

import "github.com/gamewatch/notifier/internal/domain"

// NewMetacriticRating fires when the current snapshot carries a critic score
// that the previous one lacked or that differs from it. Only Steam exposes a
// critic score; the accessor returns ok=false for every other store.
type NewMetacriticRating struct{}

func (NewMetacriticRating) Type() domain.NotificationType {
	return domain.NotificationNewMetacriticRating
}

func (NewMetacriticRating) Detect(p Pair) (any, error) {
	if p.Previous == nil {
		return nil, nil
	}

	newScore, ok := p.Current.CriticScore()
	if !ok {
		return nil, nil
	}

	payload := &domain.NewMetacriticRatingPayload{NewScore: newScore}
	if oldScore, ok := p.Previous.CriticScore(); ok {
		if oldScore == newScore {
			return nil, nil
		}
		payload.OldScore = &oldScore
	}
	return payload, nil
}
