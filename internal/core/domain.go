package core

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Produce    Category = "Produce"
	DairyEggs  Category = "Dairy & Eggs"
	Meat       Category = "Meat"
	Seafood    Category = "Seafood"
	Bakery     Category = "Bakery"
	Frozen     Category = "Frozen"
	Pantry     Category = "Pantry"
	Spices     Category = "Spices"
	Beverages  Category = "Beverages"
	OtherGoods Category = "Other"
)

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
	Snack     MealType = "Snack"
)

const (
	Monday    DayOfWeek = "Monday"
	Tuesday   DayOfWeek = "Tuesday"
	Wednesday DayOfWeek = "Wednesday"
	Thursday  DayOfWeek = "Thursday"
	Friday    DayOfWeek = "Friday"
	Saturday  DayOfWeek = "Saturday"
	Sunday    DayOfWeek = "Sunday"
)

// DefaultUnit is applied when an import row leaves the unit empty.
const DefaultUnit = "pcs"

type (
	Category  string
	MealType  string
	DayOfWeek string

	Ingredient struct {
		ID       string   `json:"id"`
		Name     string   `json:"name"`
		Quantity float64  `json:"quantity"`
		Unit     string   `json:"unit"`
		Category Category `json:"category"`
	}

	Meal struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		Day         DayOfWeek    `json:"day"`
		Date        string       `json:"date"` // YYYY-MM-DD
		MealType    MealType     `json:"mealType"`
		Ingredients []Ingredient `json:"ingredients"`
	}

	// FavoriteMeal is a reusable meal template without a date.
	FavoriteMeal struct {
		ID          string       `json:"id"`
		Name        string       `json:"name"`
		MealType    MealType     `json:"mealType"`
		Ingredients []Ingredient `json:"ingredients"`
		CreatedAt   time.Time    `json:"createdAt"`
	}

	// GroceryItem is derived from meals on every aggregation. ID is fresh
	// each time; use Key for anything that must survive a regeneration.
	GroceryItem struct {
		ID            string   `json:"id"`
		Name          string   `json:"name"`
		TotalQuantity float64  `json:"totalQuantity"`
		Unit          string   `json:"unit"`
		Category      Category `json:"category"`
		Checked       bool     `json:"checked"`
		FromMeals     []string `json:"fromMeals"`
	}
)

var (
	ErrEmptyName        = errors.New("empty name")
	ErrInvalidQuantity  = errors.New("invalid quantity")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMealType  = errors.New("invalid meal type")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyIngredients = errors.New("meal has no ingredients")
	ErrUnknownWeekStart = errors.New("unknown week start")
)

var categories = []Category{
	Produce, DairyEggs, Meat, Seafood, Bakery, Frozen, Pantry, Spices, Beverages, OtherGoods,
}

var mealTypes = []MealType{Breakfast, Lunch, Dinner, Snack}

var days = []DayOfWeek{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Categories returns the display order of grocery categories.
func Categories() []Category {
	return append([]Category(nil), categories...)
}

// MealTypes returns the valid meal types in display order.
func MealTypes() []MealType {
	return append([]MealType(nil), mealTypes...)
}

// Days returns Monday through Sunday.
func Days() []DayOfWeek {
	return append([]DayOfWeek(nil), days...)
}

func (c Category) IsValid() bool {
	for _, v := range categories {
		if c == v {
			return true
		}
	}
	return false
}

// OrOther maps anything outside the fixed set to Other.
func (c Category) OrOther() Category {
	if c.IsValid() {
		return c
	}
	return OtherGoods
}

func (t MealType) IsValid() bool {
	for _, v := range mealTypes {
		if t == v {
			return true
		}
	}
	return false
}

func (d DayOfWeek) IsValid() bool {
	for _, v := range days {
		if d == v {
			return true
		}
	}
	return false
}

// NewID returns a fresh identifier for meals, ingredients and grocery items.
func NewID() string {
	return uuid.NewString()
}

func (i Ingredient) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyName
	}
	if math.IsNaN(i.Quantity) || math.IsInf(i.Quantity, 0) || i.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if !i.Category.IsValid() {
		return ErrInvalidCategory
	}
	return nil
}

func (m Meal) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if !m.Day.IsValid() {
		return ErrInvalidDay
	}
	if !m.MealType.IsValid() {
		return ErrInvalidMealType
	}
	if m.Date != "" {
		if _, err := ParseISODate(m.Date); err != nil {
			return ErrInvalidDate
		}
	}
	for _, ing := range m.Ingredients {
		if err := ing.Validate(); err != nil {
			return fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
	}
	return nil
}

func (f FavoriteMeal) Validate() error {
	if strings.TrimSpace(f.Name) == "" {
		return ErrEmptyName
	}
	if !f.MealType.IsValid() {
		return ErrInvalidMealType
	}
	if len(f.Ingredients) == 0 {
		return ErrEmptyIngredients
	}
	for _, ing := range f.Ingredients {
		if err := ing.Validate(); err != nil {
			return fmt.Errorf("ingredient %q: %w", ing.Name, err)
		}
	}
	return nil
}

// WithFreshIDs returns a copy of the meal with new meal and ingredient IDs.
func (m Meal) WithFreshIDs() Meal {
	out := m
	out.ID = NewID()
	out.Ingredients = make([]Ingredient, len(m.Ingredients))
	for i, ing := range m.Ingredients {
		ing.ID = NewID()
		out.Ingredients[i] = ing
	}
	return out
}

// ParseCategory matches s against the fixed categories ignoring case and
// surrounding space.
func ParseCategory(s string) (Category, error) {
	s = strings.TrimSpace(s)
	for _, c := range categories {
		if strings.EqualFold(s, string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
}

func ParseMealType(s string) (MealType, error) {
	s = strings.TrimSpace(s)
	for _, t := range mealTypes {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMealType, s)
}

func ParseDayOfWeek(s string) (DayOfWeek, error) {
	s = strings.TrimSpace(s)
	for _, d := range days {
		if strings.EqualFold(s, string(d)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDay, s)
}
