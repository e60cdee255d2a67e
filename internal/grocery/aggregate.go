// Package grocery turns planned meals into a deduplicated, categorized
// shopping list.
//
// Everything here is a pure function of its arguments: no package state is
// shared between calls, so callers may regenerate the list on every change.
package grocery

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"mealplan/internal/core"
)

// Normalize is the comparison form of an ingredient name.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Key identifies a grocery item across regenerations. Ingredients sharing a
// Key merge into one item; it is also the display key for list diffing.
func Key(name, unit string) string {
	return Normalize(name) + "-" + Normalize(unit)
}

// ItemKey returns Key for an aggregated item.
func ItemKey(item core.GroceryItem) string {
	return Key(item.Name, item.Unit)
}

// Aggregate merges the ingredients of meals into grocery items.
//
// Ingredients merge only when both normalized name and unit match; there is
// no unit conversion. The first occurrence fixes display name, unit casing
// and category. An item is checked when its normalized name is in checked,
// regardless of unit. The result is ordered by category and then by name.
func Aggregate(meals []core.Meal, checked CheckedSet) []core.GroceryItem {
	byKey := make(map[string]int)
	items := make([]core.GroceryItem, 0)

	for _, meal := range meals {
		for _, ing := range meal.Ingredients {
			key := Key(ing.Name, ing.Unit)
			if idx, ok := byKey[key]; ok {
				item := &items[idx]
				item.TotalQuantity += ing.Quantity
				if !containsExact(item.FromMeals, meal.Name) {
					item.FromMeals = append(item.FromMeals, meal.Name)
				}
				continue
			}

			byKey[key] = len(items)
			items = append(items, core.GroceryItem{
				ID:            core.NewID(),
				Name:          ing.Name,
				TotalQuantity: ing.Quantity,
				Unit:          ing.Unit,
				Category:      ing.Category.OrOther(),
				Checked:       checked.Has(ing.Name),
				FromMeals:     []string{meal.Name},
			})
		}
	}

	Sort(items)
	return items
}

// Sort orders items by category display order, then by locale-aware name.
// Items that compare equal keep their relative order.
func Sort(items []core.GroceryItem) {
	col := collate.New(language.English)
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := CategoryOrder(items[i].Category), CategoryOrder(items[j].Category)
		if oi != oj {
			return oi < oj
		}
		return col.CompareString(items[i].Name, items[j].Name) < 0
	})
}

func containsExact(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
