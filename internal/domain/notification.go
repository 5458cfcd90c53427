package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// NotificationType discriminates which detection strategy produced a record.
type NotificationType string

const (
	NotificationGameReduced         NotificationType = "game-reduced"
	NotificationGameReleased        NotificationType = "game-released"
	NotificationNewMetacriticRating NotificationType = "new-metacritic-rating"
	NotificationNewStoreEntry       NotificationType = "new-store-entry"
	NotificationReleaseDateChanged  NotificationType = "release-date-changed"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationGameReduced, NotificationGameReleased,
		NotificationNewMetacriticRating, NotificationNewStoreEntry,
		NotificationReleaseDateChanged:
		return true
	}
	return false
}

// Notification is the immutable output of one creator for one snapshot pair.
// Records are only ever created and read, never updated.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	SourceID  string           `json:"source_id"`
	GameID    string           `json:"game_id"`
	Payload   json.RawMessage  `json:"payload"`
	CreatedAt time.Time        `json:"created_at"`
}

// GameReducedPayload records a price drop. DiscountPercentage is
// floor-rounded.
type GameReducedPayload struct {
	OldPriceCents      int `json:"oldPriceCents"`
	NewPriceCents      int `json:"newPriceCents"`
	DiscountPercentage int `json:"discountPercentage"`
}

// GameReleasedPayload records a coming-soon title going live.
type GameReleasedPayload struct {
	ReleaseDate string `json:"releaseDate"`
}

// NewMetacriticRatingPayload records a critic score appearing or changing.
type NewMetacriticRatingPayload struct {
	OldScore *int `json:"oldScore,omitempty"`
	NewScore int  `json:"newScore"`
}

// NewStoreEntryPayload records a listing resolving for the first time or
// coming back after being disabled.
type NewStoreEntryPayload struct {
	StoreURL     string `json:"storeUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// ReleaseDateChangedPayload records a date shift that is not a release.
type ReleaseDateChangedPayload struct {
	OldDate string `json:"oldDate"`
	NewDate string `json:"newDate"`
}

// EncodePayload marshals a creator payload into its stored form. Struct
// field order is fixed, so equal payloads always produce equal bytes and
// EquivalentPayloads can compare without re-parsing.
func EncodePayload(payload any) (json.RawMessage, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

// EquivalentPayloads reports whether two stored payloads are semantically
// identical. Used to suppress duplicates on redelivered jobs.
func EquivalentPayloads(a, b json.RawMessage) bool {
	return bytes.Equal(a, b)
}
