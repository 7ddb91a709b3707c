package domain

import (
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ValueDimension selects which marketplace valuation of a game is used
// when summing library values and computing fairness scores.
type ValueDimension string

const (
	ValueDimensionSteam   ValueDimension = "steam"
	ValueDimensionKeyShop ValueDimension = "keyshop"
)

// Game represents a canonical catalog entry for one purchasable title.
//
// Valuations are tri-state: a nil pointer means "not yet resolved", a
// non-nil value (including zero) means "resolved" — zero stands for both
// free titles and titles whose lookup found no price. Sync only ever
// touches Name/IconHash; valuations are owned by the valuation resolver.
type Game struct {
	ID            uuid.UUID
	AppID         string // stable external store identifier, unique
	Name          string // display name, free text, not unique
	IconHash      string
	SteamValue    *decimal.Decimal
	KeyShopValue  *decimal.Decimal
	FamilySharing bool
}

// Validate ensures the game adheres to domain rules
func (g *Game) Validate() error {
	if g.AppID == "" {
		return errors.New("game app ID cannot be empty")
	}
	if g.Name == "" {
		return errors.New("game name cannot be empty")
	}
	if g.SteamValue != nil && g.SteamValue.IsNegative() {
		return errors.New("steam value cannot be negative")
	}
	if g.KeyShopValue != nil && g.KeyShopValue.IsNegative() {
		return errors.New("key shop value cannot be negative")
	}
	return nil
}

// ValueFor returns the game's resolved valuation for the given dimension,
// or zero when the valuation is still unresolved. Callers summing library
// values must never see a negative or missing number.
func (g *Game) ValueFor(dim ValueDimension) decimal.Decimal {
	var v *decimal.Decimal
	switch dim {
	case ValueDimensionKeyShop:
		v = g.KeyShopValue
	default:
		v = g.SteamValue
	}
	if v == nil {
		return decimal.Zero
	}
	return *v
}
