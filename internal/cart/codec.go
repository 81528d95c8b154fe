package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrCorrupt = errors.New("stored cart is corrupt")

// Encode serialises the lines in order as a JSON array.
func Encode(c Cart) ([]byte, error) {
	lines := c.lines
	if lines == nil {
		lines = []Line{}
	}
	data, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}
	return data, nil
}

// Decode parses a stored cart. Data that cannot be parsed, or lines that break the cart's
// invariants, yield an error wrapping ErrCorrupt.
func Decode(data []byte) (Cart, error) {
	var lines []Line
	if err := json.Unmarshal(data, &lines); err != nil {
		return Cart{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	seen := make(map[Key]bool, len(lines))
	for i, l := range lines {
		switch {
		case l.ItemID == "":
			return Cart{}, fmt.Errorf("%w: line %d has no item id", ErrCorrupt, i)
		case l.Quantity < 1:
			return Cart{}, fmt.Errorf("%w: line %d has quantity %d", ErrCorrupt, i, l.Quantity)
		case l.UnitPrice <= 0:
			return Cart{}, fmt.Errorf("%w: line %d has price %d", ErrCorrupt, i, l.UnitPrice)
		case seen[l.Key()]:
			return Cart{}, fmt.Errorf("%w: duplicate line %s", ErrCorrupt, l.Key())
		}
		seen[l.Key()] = true
	}

	return New(lines...), nil
}
