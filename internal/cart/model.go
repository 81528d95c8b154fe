package cart

import (
	"fmt"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
)

// StorageKey is the key under which carts are persisted; stores namespace it per session.
const StorageKey = "didi-ki-rasoi-cart"

const (
	defaultPrepMinutes = 10
	bufferMinutes      = 5
)

// Key identifies a cart line: the same item with a different variant is a different line.
type Key struct {
	ItemID  string
	Variant string
}

func (k Key) String() string {
	if k.Variant == "" {
		return k.ItemID
	}
	return fmt.Sprintf("%s (%s)", k.ItemID, k.Variant)
}

// Line snapshots the menu item as it was when first added. UnitPrice never follows later menu changes.
type Line struct {
	ItemID          string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Description     string  `json:"description,omitempty"`
	UnitPrice       int     `json:"price"`
	Variant         string  `json:"variant,omitempty"`
	Quantity        int     `json:"quantity"`
	IsPopular       bool    `json:"is_popular,omitempty"`
	Rating          float64 `json:"rating,omitempty"`
	IsAvailable     bool    `json:"is_available"`
	PrepTimeMinutes int     `json:"prep_time_minutes,omitempty"`
}

func (l Line) Key() Key {
	return Key{ItemID: l.ItemID, Variant: l.Variant}
}

func (l Line) Total() int {
	return l.UnitPrice * l.Quantity
}

// DisplayName is the item name followed by the variant in parentheses, if any.
func (l Line) DisplayName() string {
	if l.Variant == "" {
		return l.Name
	}
	return fmt.Sprintf("%s (%s)", l.Name, l.Variant)
}

func newLine(item menu.Item, variant *menu.Variant) Line {
	line := Line{
		ItemID:          item.ID,
		Name:            item.Name,
		Category:        item.Category,
		Description:     item.Description,
		UnitPrice:       item.Price,
		Quantity:        1,
		IsPopular:       item.IsPopular,
		Rating:          item.Rating,
		IsAvailable:     item.IsAvailable(),
		PrepTimeMinutes: item.PrepTimeMinutes,
	}
	if variant != nil {
		line.Variant = variant.Name
		line.UnitPrice = variant.Price
	}
	return line
}

// Summary is the cart together with its derived totals.
type Summary struct {
	Lines            []Line `json:"lines"`
	TotalPrice       int    `json:"total_price"`
	TotalItems       int    `json:"total_items"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}
