package menu

// AllCategories is the pseudo-category that matches every item.
const AllCategories = "All"

const placeholderImage = "/placeholder.svg?height=200&width=300"

type Variant struct {
	Name  string `json:"name" yaml:"name"`
	Price int    `json:"price" yaml:"price"`
}

// Item is a single dish on the menu. Prices are whole rupees.
type Item struct {
	ID              string    `json:"id" yaml:"id"`
	Name            string    `json:"name" yaml:"name"`
	Price           int       `json:"price" yaml:"price"`
	Category        string    `json:"category" yaml:"category"`
	Description     string    `json:"description,omitempty" yaml:"description"`
	Image           string    `json:"image,omitempty" yaml:"image"`
	Variants        []Variant `json:"variants,omitempty" yaml:"variants"`
	IsPopular       bool      `json:"is_popular,omitempty" yaml:"popular"`
	Rating          float64   `json:"rating,omitempty" yaml:"rating"`
	Available       *bool     `json:"-" yaml:"available"`
	PrepTimeMinutes int       `json:"prep_time_minutes,omitempty" yaml:"prep_time"`
}

// IsAvailable reports whether the item can be ordered. Items without an explicit flag are available.
func (i Item) IsAvailable() bool {
	return i.Available == nil || *i.Available
}

// Variant returns the named variant of the item.
func (i Item) Variant(name string) (Variant, bool) {
	for _, v := range i.Variants {
		if v.Name == name {
			return v, true
		}
	}
	return Variant{}, false
}

// ImageURL falls back to the placeholder picture when the item has no image of its own.
func (i Item) ImageURL() string {
	if i.Image == "" {
		return placeholderImage
	}
	return i.Image
}
