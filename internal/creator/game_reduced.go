package creator

import "github.com/gamewatch/notifier/internal/domain"

// GameReduced fires when both snapshots carry price information and the
// current final price is lower than the previous one.
type GameReduced struct{}

func (GameReduced) Type() domain.NotificationType { return domain.NotificationGameReduced }

func (GameReduced) Detect(p Pair) (any, error) {
	if p.Previous == nil {
		return nil, nil
	}

	oldPrice, ok := p.Previous.PriceCents()
	if !ok {
		return nil, nil
	}
	newPrice, ok := p.Current.PriceCents()
	if !ok || newPrice >= oldPrice {
		return nil, nil
	}

	return &domain.GameReducedPayload{
		OldPriceCents:      oldPrice,
		NewPriceCents:      newPrice,
		DiscountPercentage: (oldPrice - newPrice) * 100 / oldPrice,
	}, nil
}
