package importer

import (
	"strings"

	"mealplan/internal/core"
)

var dayAliases = map[string]core.DayOfWeek{
	"monday": core.Monday, "mon": core.Monday, "m": core.Monday,
	"tuesday": core.Tuesday, "tue": core.Tuesday, "tu": core.Tuesday,
	"wednesday": core.Wednesday, "wed": core.Wednesday, "w": core.Wednesday,
	"thursday": core.Thursday, "thu": core.Thursday, "th": core.Thursday,
	"friday": core.Friday, "fri": core.Friday, "f": core.Friday,
	"saturday": core.Saturday, "sat": core.Saturday, "sa": core.Saturday,
	"sunday": core.Sunday, "sun": core.Sunday, "su": core.Sunday,
}

var mealTypeAliases = map[string]core.MealType{
	"breakfast": core.Breakfast, "b": core.Breakfast, "bfast": core.Breakfast,
	"lunch": core.Lunch, "l": core.Lunch,
	"dinner": core.Dinner, "d": core.Dinner, "supper": core.Dinner,
	"snack": core.Snack, "s": core.Snack, "snacks": core.Snack,
}

var categoryAliases = map[string]core.Category{
	"produce": core.Produce, "vegetables": core.Produce, "fruits": core.Produce, "veggies": core.Produce,
	"dairy": core.DairyEggs, "dairy & eggs": core.DairyEggs, "dairy and eggs": core.DairyEggs, "eggs": core.DairyEggs,
	"meat": core.Meat, "meats": core.Meat, "poultry": core.Meat,
	"seafood": core.Seafood, "fish": core.Seafood,
	"pantry": core.Pantry, "dry goods": core.Pantry, "canned": core.Pantry,
	"frozen": core.Frozen, "freezer": core.Frozen,
	"bakery": core.Bakery, "bread": core.Bakery, "baked goods": core.Bakery,
	"spices": core.Spices, "seasonings": core.Spices, "herbs": core.Spices,
	"beverages": core.Beverages, "drinks": core.Beverages,
	"other": core.OtherGoods,
}

func lookupDay(s string) (core.DayOfWeek, bool) {
	d, ok := dayAliases[strings.ToLower(strings.TrimSpace(s))]
	return d, ok
}

func lookupMealType(s string) (core.MealType, bool) {
	t, ok := mealTypeAliases[strings.ToLower(strings.TrimSpace(s))]
	return t, ok
}

// lookupCategory resolves aliases; the bool is false when s was not
// recognised and Other was substituted.
func lookupCategory(s string) (core.Category, bool) {
	c, ok := categoryAliases[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return core.OtherGoods, false
	}
	return c, true
}
