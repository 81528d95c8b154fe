package cart

import (
	"errors"

	"github.com/Roshan7869/Didi-ki-rasoi/internal/menu"
)

var ErrInvalidQuantity = errors.New("quantity must not be negative")

// Cart is an insertion-ordered list of lines with unique keys.
// The zero value is an empty cart.
type Cart struct {
	lines []Line
}

func New(lines ...Line) Cart {
	c := Cart{lines: make([]Line, 0, len(lines))}
	c.lines = append(c.lines, lines...)
	return c
}

// Add increments the matching line or appends a new one priced from the variant when given.
// Availability is not checked here.
func (c *Cart) Add(item menu.Item, variant *menu.Variant) Line {
	key := Key{ItemID: item.ID}
	if variant != nil {
		key.Variant = variant.Name
	}

	if idx := c.index(key); idx >= 0 {
		c.lines[idx].Quantity++
		return c.lines[idx]
	}

	line := newLine(item, variant)
	c.lines = append(c.lines, line)
	return line
}

// SetQuantity sets the line to exactly qty; zero removes it. A missing key is a no-op.
func (c *Cart) SetQuantity(key Key, qty int) (line Line, found bool, err error) {
	if qty < 0 {
		return Line{}, false, ErrInvalidQuantity
	}

	idx := c.index(key)
	if idx < 0 {
		return Line{}, false, nil
	}

	line = c.lines[idx]
	if qty == 0 {
		rest := make([]Line, 0, len(c.lines)-1)
		rest = append(rest, c.lines[:idx]...)
		c.lines = append(rest, c.lines[idx+1:]...)
		line.Quantity = 0
		return line, true, nil
	}

	c.lines[idx].Quantity = qty
	return c.lines[idx], true, nil
}

// Deduct takes the ordered quantities off the matching lines and drops lines that reach zero.
// Whatever was added after the order snapshot was taken stays in the cart.
func (c *Cart) Deduct(ordered []Line) {
	for _, o := range ordered {
		idx := c.index(o.Key())
		if idx < 0 {
			continue
		}
		if c.lines[idx].Quantity > o.Quantity {
			c.lines[idx].Quantity -= o.Quantity
			continue
		}
		rest := make([]Line, 0, len(c.lines)-1)
		rest = append(rest, c.lines[:idx]...)
		c.lines = append(rest, c.lines[idx+1:]...)
	}
}

func (c *Cart) Clear() {
	c.lines = nil
}

func (c Cart) Find(key Key) (Line, bool) {
	if idx := c.index(key); idx >= 0 {
		return c.lines[idx], true
	}
	return Line{}, false
}

func (c Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c Cart) Len() int {
	return len(c.lines)
}

func (c Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

func (c Cart) TotalPrice() int {
	total := 0
	for _, l := range c.lines {
		total += l.Total()
	}
	return total
}

func (c Cart) TotalItems() int {
	total := 0
	for _, l := range c.lines {
		total += l.Quantity
	}
	return total
}

// EstimatedMinutes assumes dishes are cooked in parallel: the slowest line plus a buffer.
func (c Cart) EstimatedMinutes() int {
	if len(c.lines) == 0 {
		return 0
	}

	slowest := 0
	for _, l := range c.lines {
		prep := l.PrepTimeMinutes
		if prep <= 0 {
			prep = defaultPrepMinutes
		}
		if prep > slowest {
			slowest = prep
		}
	}
	return slowest + bufferMinutes
}

func (c Cart) Summary() Summary {
	return Summary{
		Lines:            c.Lines(),
		TotalPrice:       c.TotalPrice(),
		TotalItems:       c.TotalItems(),
		EstimatedMinutes: c.EstimatedMinutes(),
	}
}

func (c Cart) index(key Key) int {
	for i, l := range c.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}
