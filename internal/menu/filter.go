package menu

import "strings"

// Filter keeps available items in the category whose name or description contains search,
// ignoring case. The text is matched as typed, spaces included. An empty search matches everything.
func Filter(items []Item, search, category string) []Item {
	needle := strings.ToLower(search)
	result := make([]Item, 0, len(items))

	for _, item := range items {
		if !item.IsAvailable() {
			continue
		}
		if category != AllCategories && category != "" && item.Category != category {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(item.Name), needle) &&
			!strings.Contains(strings.ToLower(item.Description), needle) {
			continue
		}
		result = append(result, item)
	}

	return result
}
