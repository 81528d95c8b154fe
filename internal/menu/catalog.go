package menu

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

//go:embed menu.yaml
var defaultMenu []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// Catalog is the read-only menu for the lifetime of the process.
type Catalog struct {
	items      []Item
	byID       map[string]int
	categories []string
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// LoadDefault decodes the menu compiled into the binary.
func LoadDefault() (*Catalog, error) {
	return Load(bytes.NewReader(defaultMenu))
}

func Load(r io.Reader) (*Catalog, error) {
	var file catalogFile

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return NewCatalog(file.Items)
}

func NewCatalog(items []Item) (*Catalog, error) {
	c := &Catalog{
		items:      make([]Item, 0, len(items)),
		byID:       make(map[string]int, len(items)),
		categories: []string{AllCategories},
	}

	seenCategory := make(map[string]bool)

	for _, item := range items {
		if err := validateItem(item); err != nil {
			return nil, err
		}
		if _, dup := c.byID[item.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate item id %q", ErrInvalidCatalog, item.ID)
		}

		c.byID[item.ID] = len(c.items)
		c.items = append(c.items, item)

		if !seenCategory[item.Category] {
			seenCategory[item.Category] = true
			c.categories = append(c.categories, item.Category)
		}
	}

	return c, nil
}

func validateItem(item Item) error {
	switch {
	case item.ID == "":
		return fmt.Errorf("%w: item without id", ErrInvalidCatalog)
	case item.Name == "":
		return fmt.Errorf("%w: item %q has no name", ErrInvalidCatalog, item.ID)
	case item.Price <= 0:
		return fmt.Errorf("%w: item %q price must be positive, got %d", ErrInvalidCatalog, item.ID, item.Price)
	case item.Category == "" || item.Category == AllCategories:
		return fmt.Errorf("%w: item %q has invalid category %q", ErrInvalidCatalog, item.ID, item.Category)
	case item.Rating < 0 || item.Rating > 5:
		return fmt.Errorf("%w: item %q rating %.1f out of range", ErrInvalidCatalog, item.ID, item.Rating)
	case item.PrepTimeMinutes < 0:
		return fmt.Errorf("%w: item %q has negative prep time", ErrInvalidCatalog, item.ID)
	}

	names := make(map[string]bool, len(item.Variants))
	for _, v := range item.Variants {
		if v.Name == "" || v.Price <= 0 {
			return fmt.Errorf("%w: item %q has an invalid variant", ErrInvalidCatalog, item.ID)
		}
		if names[v.Name] {
			return fmt.Errorf("%w: item %q repeats variant %q", ErrInvalidCatalog, item.ID, v.Name)
		}
		names[v.Name] = true
	}
	return nil
}

// Items returns the catalog in its declared order.
func (c *Catalog) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Catalog) Lookup(id string) (Item, bool) {
	idx, ok := c.byID[id]
	if !ok {
		return Item{}, false
	}
	return c.items[idx], true
}

// Categories returns "All" followed by every category in first-seen order.
func (c *Catalog) Categories() []string {
	out := make([]string, len(c.categories))
	copy(out, c.categories)
	return out
}

func (c *Catalog) Search(search, category string) []Item {
	return Filter(c.items, search, category)
}
