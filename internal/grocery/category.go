package grocery

import "mealplan/internal/core"

// Section is one category block of the list, in display order.
type Section struct {
	Category     core.Category      `json:"category"`
	Items        []core.GroceryItem `json:"items"`
	CheckedCount int                `json:"checkedCount"`
}

var categoryIndex = func() map[core.Category]int {
	m := make(map[core.Category]int)
	for i, c := range core.Categories() {
		m[c] = i
	}
	return m
}()

// CategoryOrder is the sort position of c. Unknown values sort with Other.
func CategoryOrder(c core.Category) int {
	if i, ok := categoryIndex[c]; ok {
		return i
	}
	return categoryIndex[core.OtherGoods]
}

// GroupByCategory buckets items by category, keeping input order inside each
// bucket. Categories with no items have no key.
func GroupByCategory(items []core.GroceryItem) map[core.Category][]core.GroceryItem {
	grouped := make(map[core.Category][]core.GroceryItem)
	for _, item := range items {
		grouped[item.Category] = append(grouped[item.Category], item)
	}
	return grouped
}

// Sections returns the non-empty buckets of GroupByCategory in display order.
// Items carrying a category outside the fixed set are shown under Other.
func Sections(items []core.GroceryItem) []Section {
	grouped := GroupByCategory(items)
	var stray []core.GroceryItem
	for _, item := range items {
		if !item.Category.IsValid() {
			stray = append(stray, item)
		}
	}

	out := make([]Section, 0, len(grouped))
	for _, c := range core.Categories() {
		bucket := grouped[c]
		if c == core.OtherGoods && len(stray) > 0 {
			bucket = append(append([]core.GroceryItem(nil), bucket...), stray...)
		}
		if len(bucket) == 0 {
			continue
		}
		out = append(out, Section{Category: c, Items: bucket, CheckedCount: countChecked(bucket)})
	}
	return out
}

// Progress returns how many items are checked out of the total.
func Progress(items []core.GroceryItem) (checked, total int) {
	return countChecked(items), len(items)
}

func countChecked(items []core.GroceryItem) int {
	n := 0
	for _, it := range items {
		if it.Checked {
			n++
		}
	}
	return n
}
