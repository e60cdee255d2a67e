package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"mealplan/internal/core"
)

const (
	defaultMealName = "Unnamed Meal"
	defaultDay      = core.Monday
	defaultMealType = core.Dinner
)

var (
	jsonFence     = regexp.MustCompile("(?s)```json\\s*(.*?)\\s*```")
	anyFence      = regexp.MustCompile("(?s)```.*?```")
	jsonLikeLines = regexp.MustCompile(`(?ms)^\s*[\[{].*?[\]}]\s*$`)
	extraNewlines = regexp.MustCompile(`\n{3,}`)
)

// ChatResult is what a chat reply yields: the text to show the user, the
// meals carried in its JSON block, and the ingredients that were dropped.
type ChatResult struct {
	Message  string            `json:"message"`
	Meals    []core.Meal       `json:"meals"`
	Rejected []ValidationError `json:"rejected"`
	Found    bool              `json:"found"`
}

// ParseChatResponse extracts the first ```json block from text. Code blocks
// and raw JSON lines are stripped from the visible message whether or not
// the block parses.
func ParseChatResponse(text string, opts Options) ChatResult {
	res := ChatResult{Message: cleanMessage(text), Meals: []core.Meal{}, Rejected: []ValidationError{}}

	match := jsonFence.FindStringSubmatch(text)
	if match == nil {
		return res
	}
	raw := match[1]
	if !gjson.Valid(raw) {
		res.Rejected = append(res.Rejected, ValidationError{Field: "json", Message: "meal block is not valid JSON"})
		return res
	}
	res.Found = true

	meals := gjson.Get(raw, "meals")
	if !meals.IsArray() {
		return res
	}
	for i, m := range meals.Array() {
		meal := coerceMeal(m, opts)
		for j, ing := range m.Get("ingredients").Array() {
			coerced, err := CoerceIngredient(ing)
			if err != nil {
				res.Rejected = append(res.Rejected, ValidationError{
					Row:     i + 1,
					Field:   fmt.Sprintf("meals[%d].ingredients[%d]", i, j),
					Message: err.Error(),
				})
				continue
			}
			meal.Ingredients = append(meal.Ingredients, coerced)
		}
		res.Meals = append(res.Meals, meal)
	}
	return res
}

func coerceMeal(m gjson.Result, opts Options) core.Meal {
	name := strings.TrimSpace(m.Get("name").String())
	if name == "" {
		name = defaultMealName
	}
	day, err := core.ParseDayOfWeek(m.Get("day").String())
	if err != nil {
		day = defaultDay
	}
	mealType, err := core.ParseMealType(m.Get("mealType").String())
	if err != nil {
		mealType = defaultMealType
	}
	return core.Meal{
		ID:          core.NewID(),
		Name:        name,
		Day:         day,
		Date:        opts.dateFor(day),
		MealType:    mealType,
		Ingredients: []core.Ingredient{},
	}
}

// CoerceIngredient turns one loosely typed ingredient object into a valid
// Ingredient. A missing quantity defaults to 1, a missing unit to pcs and an
// unknown category to Other. A missing name or a quantity that is present
// but not a positive number is an error.
func CoerceIngredient(v gjson.Result) (core.Ingredient, error) {
	name := strings.TrimSpace(v.Get("name").String())
	if name == "" {
		return core.Ingredient{}, core.ErrEmptyName
	}

	qty := 1.0
	switch q := v.Get("quantity"); q.Type {
	case gjson.Null:
	case gjson.Number:
		qty = q.Float()
	case gjson.String:
		parsed, err := core.ParseQuantity(q.Str)
		if err != nil {
			return core.Ingredient{}, fmt.Errorf("%q: %w", name, err)
		}
		qty = parsed
	default:
		return core.Ingredient{}, fmt.Errorf("%q: %w", name, core.ErrInvalidQuantity)
	}
	if qty <= 0 {
		return core.Ingredient{}, fmt.Errorf("%q: %w", name, core.ErrInvalidQuantity)
	}

	unit := strings.TrimSpace(v.Get("unit").String())
	if unit == "" {
		unit = core.DefaultUnit
	}
	cat, err := core.ParseCategory(v.Get("category").String())
	if err != nil {
		cat = core.OtherGoods
	}

	return core.Ingredient{
		ID:       core.NewID(),
		Name:     name,
		Quantity: qty,
		Unit:     unit,
		Category: cat,
	}, nil
}

func cleanMessage(text string) string {
	msg := anyFence.ReplaceAllString(text, "")
	msg = jsonLikeLines.ReplaceAllString(msg, "")
	msg = extraNewlines.ReplaceAllString(msg, "\n\n")
	return strings.TrimSpace(msg)
}
