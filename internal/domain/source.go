package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// SourceType identifies which storefront a snapshot came from.
type SourceType string

const (
	SourceSteam    SourceType = "steam"
	SourceNintendo SourceType = "nintendo"
	SourcePsStore  SourceType = "psStore"
)

func (t SourceType) IsValid() bool {
	switch t {
	case SourceSteam, SourceNintendo, SourcePsStore:
		return true
	}
	return false
}

// StoreGameData is the common envelope shared by every store snapshot.
// Disabled mirrors the listing state at resolve time so a snapshot pair can
// observe a delisted listing coming back without consulting mutable state.
type StoreGameData struct {
	ID           string `json:"id"`
	FullName     string `json:"fullName"`
	StoreURL     string `json:"storeUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Disabled     bool   `json:"disabled"`
}

// ReleaseInfo is the normalized view of a snapshot's release date.
// ComingSoon is only ever set explicitly by Steam; for the other stores the
// date alone decides whether a title counts as released at a given instant.
type ReleaseInfo struct {
	Date       time.Time
	ComingSoon bool
}

// Released reports whether the title counts as out at the given instant.
func (r ReleaseInfo) Released(now time.Time) bool {
	return !r.ComingSoon && !r.Date.After(now)
}

// GameData is the capability surface creators detect against. Each store
// variant exposes its fields through these normalized accessors; an accessor
// returns ok=false when the store does not carry that kind of information.
type GameData interface {
	Type() SourceType
	Common() StoreGameData
	PriceCents() (final int, ok bool)
	InitialPriceCents() (initial int, ok bool)
	ReleaseInfo() (ReleaseInfo, bool)
	CriticScore() (int, bool)
}

// SteamReleaseDate matches Steam's appdetails release_date object.
type SteamReleaseDate struct {
	ComingSoon bool      `json:"comingSoon"`
	Date       time.Time `json:"date"`
}

// SteamPriceInformation carries prices in cents, as Steam reports them.
type SteamPriceInformation struct {
	Initial            int `json:"initial"`
	Final              int `json:"final"`
	DiscountPercentage int `json:"discountPercentage"`
}

type SteamGameData struct {
	StoreGameData
	ReleaseDate       SteamReleaseDate       `json:"releaseDate"`
	PriceInformation  *SteamPriceInformation `json:"priceInformation,omitempty"`
	MetacriticScore   *int                   `json:"metacriticScore,omitempty"`
	Categories        []string               `json:"categories,omitempty"`
	Genres            []string               `json:"genres,omitempty"`
	ControllerSupport string                 `json:"controllerSupport,omitempty"`
}

func (d *SteamGameData) Type() SourceType      { return SourceSteam }
func (d *SteamGameData) Common() StoreGameData { return d.StoreGameData }

func (d *SteamGameData) PriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return d.PriceInformation.Final, true
}

func (d *SteamGameData) InitialPriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return d.PriceInformation.Initial, true
}

func (d *SteamGameData) ReleaseInfo() (ReleaseInfo, bool) {
	if d.ReleaseDate.Date.IsZero() && !d.ReleaseDate.ComingSoon {
		return ReleaseInfo{}, false
	}
	return ReleaseInfo{Date: d.ReleaseDate.Date, ComingSoon: d.ReleaseDate.ComingSoon}, true
}

func (d *SteamGameData) CriticScore() (int, bool) {
	if d.MetacriticScore == nil {
		return 0, false
	}
	return *d.MetacriticScore, true
}

// NintendoPriceInformation carries display strings as scraped from the eShop.
type NintendoPriceInformation struct {
	Initial string `json:"initial"`
	Final   string `json:"final"`
}

type NintendoGameData struct {
	StoreGameData
	PriceInformation *NintendoPriceInformation `json:"priceInformation,omitempty"`
	ReleaseDate      string                    `json:"releaseDate"`
}

func (d *NintendoGameData) Type() SourceType      { return SourceNintendo }
func (d *NintendoGameData) Common() StoreGameData { return d.StoreGameData }

func (d *NintendoGameData) PriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return ParsePriceCents(d.PriceInformation.Final)
}

func (d *NintendoGameData) InitialPriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return ParsePriceCents(d.PriceInformation.Initial)
}

func (d *NintendoGameData) ReleaseInfo() (ReleaseInfo, bool) {
	return parseReleaseDate(d.ReleaseDate)
}

func (d *NintendoGameData) CriticScore() (int, bool) { return 0, false }

// PsStorePriceInformation carries display strings from the PlayStation Store.
type PsStorePriceInformation struct {
	Initial             string `json:"initial"`
	Final               string `json:"final"`
	DiscountDescription string `json:"discountDescription,omitempty"`
}

type PsStoreGameData struct {
	StoreGameData
	PriceInformation *PsStorePriceInformation `json:"priceInformation,omitempty"`
	ReleaseDate      string                   `json:"releaseDate,omitempty"`
}

func (d *PsStoreGameData) Type() SourceType      { return SourcePsStore }
func (d *PsStoreGameData) Common() StoreGameData { return d.StoreGameData }

func (d *PsStoreGameData) PriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return ParsePriceCents(d.PriceInformation.Final)
}

func (d *PsStoreGameData) InitialPriceCents() (int, bool) {
	if d.PriceInformation == nil {
		return 0, false
	}
	return ParsePriceCents(d.PriceInformation.Initial)
}

func (d *PsStoreGameData) ReleaseInfo() (ReleaseInfo, bool) {
	return parseReleaseDate(d.ReleaseDate)
}

func (d *PsStoreGameData) CriticScore() (int, bool) { return 0, false }

// DecodeGameData unmarshals a raw snapshot into the variant matching the
// source type. The type always comes from the InfoSource record, never from
// the payload itself, so the two can never disagree.
func DecodeGameData(t SourceType, raw []byte) (GameData, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: empty snapshot", ErrMalformedGameData)
	}

	var target GameData
	switch t {
	case SourceSteam:
		target = &SteamGameData{}
	case SourceNintendo:
		target = &NintendoGameData{}
	case SourcePsStore:
		target = &PsStoreGameData{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSourceType, t)
	}

	if err := json.Unmarshal(raw, target); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGameData, err)
	}
	return target, nil
}

// ParsePriceCents normalizes a scraped display price ("59,99 €", "$19.99",
// "1.299,99") to cents. Separators reset the decimal counter, so thousands
// separators are absorbed and only the trailing group counts as decimals.
func ParsePriceCents(s string) (int, bool) {
	var digits []byte
	decimals := -1
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, byte(r))
			if decimals >= 0 {
				decimals++
			}
		case r == ',' || r == '.':
			decimals = 0
		}
	}
	if len(digits) == 0 {
		return 0, false
	}

	n, err := strconv.Atoi(string(digits))
	if err != nil {
		return 0, false
	}

	switch decimals {
	case 1:
		n *= 10
	case 2:
		// already cents
	default:
		// no decimal group, or a group of 3+ digits (thousands separator):
		// the whole number is a unit amount.
		n *= 100
	}
	return n, true
}

// releaseDateLayouts covers the formats the store scrapers emit.
var releaseDateLayouts = []string{
	time.RFC3339,
	"2006-01-02",
	"January 2, 2006",
	"2. January 2006",
}

func parseReleaseDate(s string) (ReleaseInfo, bool) {
	if s == "" {
		return ReleaseInfo{}, false
	}
	for _, layout := range releaseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return ReleaseInfo{Date: t}, true
		}
	}
	return ReleaseInfo{}, false
}
