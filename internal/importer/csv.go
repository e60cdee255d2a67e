package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strings"

	"mealplan/internal/core"
)

var requiredColumns = []string{"meal_name", "day", "meal_type", "ingredient", "quantity", "unit", "category"}

var headerJunk = regexp.MustCompile(`[^a-z_]`)

// ParseCSV reads a meal plan with one ingredient per row. Rows sharing meal
// name, date and meal type become one meal. Invalid rows are reported in
// Errors and skipped; the rest are still returned.
func ParseCSV(r io.Reader, opts Options) ImportResult {
	res := ImportResult{Meals: []core.Meal{}, Errors: []ValidationError{}, Warnings: []string{}}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		res.Errors = append(res.Errors, ValidationError{Row: 0, Field: "file", Message: "CSV file is empty"})
		return res
	}
	if err != nil {
		res.Errors = append(res.Errors, ValidationError{Row: 1, Field: "file", Message: err.Error()})
		return res
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		name := headerJunk.ReplaceAllString(strings.ToLower(strings.TrimSpace(h)), "_")
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	var missing []string
	maxIdx := 0
	for _, c := range requiredColumns {
		idx, ok := cols[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		if idx > maxIdx {
			maxIdx = idx
		}
	}
	if len(missing) > 0 {
		res.Errors = append(res.Errors, ValidationError{
			Row:     1,
			Field:   "headers",
			Message: "Missing required columns: " + strings.Join(missing, ", "),
		})
		return res
	}

	index := make(map[string]int)
	rowNum := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		rowNum++
		if err != nil {
			res.Errors = append(res.Errors, ValidationError{Row: rowNum, Field: "row", Message: err.Error()})
			break
		}
		for i := range row {
			row[i] = strings.TrimSpace(row[i])
		}
		if allEmpty(row) {
			continue
		}
		if len(row) <= maxIdx {
			res.Errors = append(res.Errors, ValidationError{Row: rowNum, Field: "row", Message: "Row has missing columns"})
			continue
		}

		m, ing, warn, verr := parseRow(row, cols, rowNum, opts)
		if verr != nil {
			res.Errors = append(res.Errors, *verr)
			continue
		}
		res.Warnings = append(res.Warnings, warn...)

		key := m.Name + "-" + m.Date + "-" + string(m.MealType)
		if i, ok := index[key]; ok {
			res.Meals[i].Ingredients = append(res.Meals[i].Ingredients, ing)
			continue
		}
		m.Ingredients = []core.Ingredient{ing}
		index[key] = len(res.Meals)
		res.Meals = append(res.Meals, m)
	}

	res.Success = len(res.Errors) == 0 && len(res.Meals) > 0
	return res
}

func parseRow(row []string, cols map[string]int, rowNum int, opts Options) (core.Meal, core.Ingredient, []string, *ValidationError) {
	get := func(c string) string { return row[cols[c]] }
	fail := func(field, msg string) (core.Meal, core.Ingredient, []string, *ValidationError) {
		return core.Meal{}, core.Ingredient{}, nil, &ValidationError{Row: rowNum, Field: field, Message: msg}
	}

	mealName := get("meal_name")
	if mealName == "" {
		return fail("meal_name", "Meal name is required")
	}
	dayRaw := get("day")
	day, ok := lookupDay(dayRaw)
	if !ok {
		return fail("day", fmt.Sprintf("Invalid day: %q. Use %s", dayRaw, joinDays()))
	}
	typeRaw := get("meal_type")
	mealType, ok := lookupMealType(typeRaw)
	if !ok {
		return fail("meal_type", fmt.Sprintf("Invalid meal type: %q. Use %s", typeRaw, joinMealTypes()))
	}
	name := get("ingredient")
	if name == "" {
		return fail("ingredient", "Ingredient name is required")
	}
	qtyRaw := get("quantity")
	qty, err := core.ParseQuantity(qtyRaw)
	if err != nil {
		return fail("quantity", fmt.Sprintf("Invalid quantity: %q. Must be a positive number", qtyRaw))
	}

	var warnings []string
	unit := get("unit")
	if unit == "" {
		warnings = append(warnings, fmt.Sprintf("Row %d: Unit is empty for ingredient %q", rowNum, name))
		unit = core.DefaultUnit
	}
	catRaw := get("category")
	cat, known := lookupCategory(catRaw)
	if !known && catRaw != "" {
		warnings = append(warnings, fmt.Sprintf("Row %d: Unknown category %q mapped to %q", rowNum, catRaw, core.OtherGoods))
	}

	meal := core.Meal{
		ID:       core.NewID(),
		Name:     mealName,
		Day:      day,
		Date:     opts.dateFor(day),
		MealType: mealType,
	}
	ing := core.Ingredient{
		ID:       core.NewID(),
		Name:     name,
		Quantity: qty,
		Unit:     unit,
		Category: cat,
	}
	return meal, ing, warnings, nil
}

func allEmpty(row []string) bool {
	for _, c := range row {
		if c != "" {
			return false
		}
	}
	return true
}

func joinDays() string {
	var parts []string
	for _, d := range core.Days() {
		parts = append(parts, string(d))
	}
	return strings.Join(parts, ", ")
}

func joinMealTypes() string {
	var parts []string
	for _, t := range core.MealTypes() {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ", ")
}
