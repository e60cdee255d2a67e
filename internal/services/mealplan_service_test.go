package services

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"mealplan/internal/cache"
	"mealplan/internal/core"
	"mealplan/internal/grocery"
	applog "mealplan/internal/log"
	"mealplan/internal/store"
	"mealplan/internal/store/memory"
)

type fakePublisher struct {
	mu   sync.Mutex
	ops  []string
	revs []int64
	err  error
}

func (p *fakePublisher) PublishPlanChanged(_ context.Context, revision int64, op string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ops = append(p.ops, op)
	p.revs = append(p.revs, revision)
	return p.err
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func newTestService(t *testing.T) (*MealPlanService, *fakePublisher) {
	t.Helper()
	pub := &fakePublisher{}
	svc := NewMealPlanService(memory.New(), pub,
		cache.NewLRUCache[[]core.GroceryItem](8, time.Minute),
		quietLogger(), core.WeekStartsMonday)
	// Wednesday 2026-02-04; the Monday-start week runs 02-02..02-08.
	svc.now = func() time.Time { return time.Date(2026, 2, 4, 12, 0, 0, 0, time.UTC) }
	return svc, pub
}

func ing(name string, qty float64, unit string, cat core.Category) core.Ingredient {
	return core.Ingredient{Name: name, Quantity: qty, Unit: unit, Category: cat}
}

func findItem(t *testing.T, items []core.GroceryItem, name string) core.GroceryItem {
	t.Helper()
	for _, it := range items {
		if it.Name == name {
			return it
		}
	}
	t.Fatalf("no %q in %+v", name, items)
	return core.GroceryItem{}
}

func tacos(name, date string) core.Meal {
	return core.Meal{
		Name: name, Day: core.Monday, Date: date, MealType: core.Dinner,
		Ingredients: []core.Ingredient{
			ing("Tortilla", 4, "pcs", core.Bakery),
			ing("Ground Beef", 1, "lb", core.Meat),
		},
	}
}

func TestAddMealFillsIDsAndDate(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	m, err := svc.AddMeal(ctx, core.Meal{
		Name: "Omelette", Day: core.Friday, MealType: core.Breakfast,
		Ingredients: []core.Ingredient{ing("Eggs", 3, "pcs", core.DairyEggs)},
	})
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if m.ID == "" || m.Ingredients[0].ID == "" {
		t.Fatalf("ids not generated: %+v", m)
	}
	if m.Date != "2026-02-06" {
		t.Errorf("date = %q, want 2026-02-06", m.Date)
	}
	if len(pub.ops) != 1 || pub.ops[0] != applog.OpCreate || pub.revs[0] != 1 {
		t.Errorf("publish = %v %v", pub.ops, pub.revs)
	}
}

func TestAddMealDerivesDayFromDate(t *testing.T) {
	svc, _ := newTestService(t)
	m, err := svc.AddMeal(context.Background(), core.Meal{
		Name: "Stew", Date: "2026-02-08", MealType: core.Dinner,
		Ingredients: []core.Ingredient{ing("Carrot", 2, "pcs", core.Produce)},
	})
	if err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if m.Day != core.Sunday {
		t.Errorf("day = %q, want Sunday", m.Day)
	}
}

func TestAddMealRejectsInvalid(t *testing.T) {
	svc, pub := newTestService(t)
	_, err := svc.AddMeal(context.Background(), core.Meal{
		Name: "Bad", Day: core.Monday, MealType: core.Lunch,
		Ingredients: []core.Ingredient{ing("Salt", -1, "tsp", core.Spices)},
	})
	if !errors.Is(err, core.ErrInvalidQuantity) {
		t.Fatalf("expected ErrInvalidQuantity, got %v", err)
	}
	if len(pub.ops) != 0 {
		t.Errorf("rejected write must not publish: %v", pub.ops)
	}
}

func TestGroceryListAggregatesAndCaches(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	second := tacos("Tacos Again", "2026-02-03")
	second.Ingredients = []core.Ingredient{ing("tortilla", 2, "pcs", core.Bakery)}
	if err := svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-02"), second}, true); err != nil {
		t.Fatalf("import: %v", err)
	}

	list, err := svc.GroceryList(ctx)
	if err != nil {
		t.Fatalf("GroceryList: %v", err)
	}
	if len(list.Items) != 2 {
		t.Fatalf("expected 2 items, got %+v", list.Items)
	}
	if list.Items[0].Name != "Ground Beef" {
		t.Errorf("meat should sort before bakery: %+v", list.Items)
	}
	tortilla := findItem(t, list.Items, "Tortilla")
	if tortilla.TotalQuantity != 6 || len(tortilla.FromMeals) != 2 {
		t.Errorf("unexpected tortilla %+v", tortilla)
	}
	if svc.cache.Size() != 1 {
		t.Errorf("expected the list to be cached, size=%d", svc.cache.Size())
	}

	// A cached copy must not be affected by caller mutation.
	list.Items[1].FromMeals[0] = "changed"
	again, _ := svc.GroceryList(ctx)
	if got := findItem(t, again.Items, "Tortilla"); got.FromMeals[0] != "Tacos" {
		t.Errorf("cache leaked caller mutation: %+v", got)
	}
}

func TestGroceryListForWeek(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	meals := []core.Meal{tacos("This Week", "2026-02-08"), tacos("Next Week", "2026-02-09")}
	if err := svc.ImportMeals(ctx, meals, true); err != nil {
		t.Fatalf("import: %v", err)
	}

	list, err := svc.GroceryListForWeek(ctx, svc.now())
	if err != nil {
		t.Fatalf("GroceryListForWeek: %v", err)
	}
	for _, it := range list.Items {
		if len(it.FromMeals) != 1 || it.FromMeals[0] != "This Week" {
			t.Fatalf("item from another week: %+v", it)
		}
	}
	if got := findItem(t, list.Items, "Tortilla"); got.TotalQuantity != 4 {
		t.Errorf("tortilla = %v, want 4", got.TotalQuantity)
	}
}

func TestToggleGroceryItem(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)
	if err := svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-02")}, true); err != nil {
		t.Fatalf("import: %v", err)
	}
	list, _ := svc.GroceryList(ctx)
	key := grocery.ItemKey(list.Items[0])

	item, err := svc.ToggleGroceryItem(ctx, key)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !item.Checked {
		t.Fatalf("expected checked item, got %+v", item)
	}
	list, _ = svc.GroceryList(ctx)
	if !list.Items[0].Checked {
		t.Errorf("cached list not refreshed after toggle")
	}

	item, _ = svc.ToggleGroceryItem(ctx, key)
	if item.Checked {
		t.Errorf("second toggle should uncheck")
	}
	if last := pub.ops[len(pub.ops)-1]; last != applog.OpToggle {
		t.Errorf("last publish = %q", last)
	}

	if _, err := svc.ToggleGroceryItem(ctx, "nothing|pcs"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestToggleGroceryItemPaddedUnit(t *testing.T) {
	ctx := context.Background()
	padded := core.Meal{Name: "Porridge", Day: core.Monday, Date: "2026-02-02", MealType: core.Breakfast,
		Ingredients: []core.Ingredient{{ID: "i1", Name: "Milk ", Quantity: 1, Unit: "cup ", Category: core.DairyEggs}}}

	t.Run("added through the service", func(t *testing.T) {
		svc, _ := newTestService(t)
		if _, err := svc.AddMeal(ctx, padded); err != nil {
			t.Fatalf("add: %v", err)
		}
		list, _ := svc.GroceryList(ctx)
		if list.Items[0].Unit != "cup" || list.Items[0].Name != "Milk" {
			t.Errorf("ingredient not trimmed: %+v", list.Items[0])
		}
		if _, err := svc.ToggleGroceryItem(ctx, grocery.ItemKey(list.Items[0])); err != nil {
			t.Fatalf("toggle: %v", err)
		}
	})

	t.Run("already stored", func(t *testing.T) {
		svc := NewMealPlanService(memory.NewWithMeals([]core.Meal{padded}), nil, nil, quietLogger(), core.WeekStartsMonday)
		list, _ := svc.GroceryList(ctx)
		item, err := svc.ToggleGroceryItem(ctx, grocery.ItemKey(list.Items[0]))
		if err != nil {
			t.Fatalf("toggle: %v", err)
		}
		if !item.Checked {
			t.Errorf("expected checked, got %+v", item)
		}
	})
}

// checkedFailStore accepts every write except SetCheckedNames.
type checkedFailStore struct {
	*memory.Store
}

func (checkedFailStore) SetCheckedNames(context.Context, []string) error {
	return errors.New("disk full")
}

func TestReplaceIsSingleWrite(t *testing.T) {
	ctx := context.Background()
	st := memory.New()
	_ = st.SetCheckedNames(ctx, []string{"Tortilla"})
	pub := &fakePublisher{}
	svc := NewMealPlanService(checkedFailStore{st}, pub, nil, quietLogger(), core.WeekStartsMonday)

	if err := svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-02")}, true); err != nil {
		t.Fatalf("replace import: %v", err)
	}
	if err := svc.ClearAllMeals(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if names, _ := st.CheckedNames(ctx); len(names) != 0 {
		t.Errorf("checked names survived: %v", names)
	}
	if len(pub.revs) != 2 || pub.revs[0] != 2 || pub.revs[1] != 3 {
		t.Errorf("each replace should advance the revision once, got %v", pub.revs)
	}
}

func TestImportReplaceClearsChecked(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_ = svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-02")}, true)
	list, _ := svc.GroceryList(ctx)
	if _, err := svc.ToggleGroceryItem(ctx, grocery.ItemKey(list.Items[0])); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	if err := svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-03")}, false); err != nil {
		t.Fatalf("append: %v", err)
	}
	list, _ = svc.GroceryList(ctx)
	if !list.Items[0].Checked || len(list.Items[0].FromMeals) != 1 {
		t.Fatalf("append should keep checked state: %+v", list.Items[0])
	}

	if err := svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-04")}, true); err != nil {
		t.Fatalf("replace: %v", err)
	}
	list, _ = svc.GroceryList(ctx)
	if list.Items[0].Checked {
		t.Errorf("replace should clear checked items")
	}
}

func TestClearAllMealsAndCheckedItems(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	_ = svc.ImportMeals(ctx, []core.Meal{tacos("Tacos", "2026-02-02")}, true)
	list, _ := svc.GroceryList(ctx)
	_, _ = svc.ToggleGroceryItem(ctx, grocery.ItemKey(list.Items[1]))

	if err := svc.UncheckAllItems(ctx); err != nil {
		t.Fatalf("uncheck: %v", err)
	}
	list, _ = svc.GroceryList(ctx)
	for _, it := range list.Items {
		if it.Checked {
			t.Fatalf("item still checked: %+v", it)
		}
	}

	if err := svc.ClearAllMeals(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	meals, _ := svc.ListMeals(ctx)
	list, _ = svc.GroceryList(ctx)
	if len(meals) != 0 || len(list.Items) != 0 {
		t.Errorf("expected empty plan, got %d meals %d items", len(meals), len(list.Items))
	}
}

func TestUpdateAndDeleteMeal(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)
	m, _ := svc.AddMeal(ctx, tacos("Tacos", "2026-02-02"))

	m.Name = "Fish Tacos"
	if _, err := svc.UpdateMeal(ctx, m); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, _ := svc.GetMeal(ctx, m.ID)
	if got.Name != "Fish Tacos" {
		t.Errorf("name = %q", got.Name)
	}

	if _, err := svc.UpdateMeal(ctx, core.Meal{ID: "missing"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := svc.DeleteMeal(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.DeleteMeal(ctx, m.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	svc, pub := newTestService(t)
	pub.err = errors.New("circuit breaker is open")
	if _, err := svc.AddMeal(context.Background(), tacos("Tacos", "2026-02-02")); err != nil {
		t.Fatalf("AddMeal should succeed when publishing fails: %v", err)
	}
	meals, _ := svc.ListMeals(context.Background())
	if len(meals) != 1 {
		t.Fatalf("meal not stored")
	}
}

func TestNilPublisherAndCache(t *testing.T) {
	svc := NewMealPlanService(memory.New(), nil, nil, nil, "")
	if svc.WeekStart() != core.WeekStartsSunday {
		t.Errorf("default week start = %q", svc.WeekStart())
	}
	if _, err := svc.AddMeal(context.Background(), tacos("Tacos", "2026-02-02")); err != nil {
		t.Fatalf("AddMeal: %v", err)
	}
	if _, err := svc.GroceryList(context.Background()); err != nil {
		t.Fatalf("GroceryList: %v", err)
	}
}

func TestFavorites(t *testing.T) {
	ctx := context.Background()
	svc, pub := newTestService(t)

	fav, err := svc.AddFavorite(ctx, core.FavoriteMeal{
		Name: "Pancakes", MealType: core.Breakfast,
		Ingredients: []core.Ingredient{ing("Flour", 2, "cups", core.Pantry)},
	})
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	if fav.ID == "" || fav.CreatedAt.IsZero() || fav.Ingredients[0].ID == "" {
		t.Fatalf("favorite not initialised: %+v", fav)
	}
	if len(pub.ops) != 0 {
		t.Errorf("favorites must not publish plan changes: %v", pub.ops)
	}

	fav.Name = "Buttermilk Pancakes"
	if _, err := svc.UpdateFavorite(ctx, fav); err != nil {
		t.Fatalf("UpdateFavorite: %v", err)
	}

	meal, err := svc.AddFavoriteToMealPlan(ctx, fav.ID, "2026-02-07")
	if err != nil {
		t.Fatalf("AddFavoriteToMealPlan: %v", err)
	}
	if meal.Day != core.Saturday || meal.Name != "Buttermilk Pancakes" || meal.MealType != core.Breakfast {
		t.Errorf("unexpected meal %+v", meal)
	}
	if meal.Ingredients[0].ID == fav.Ingredients[0].ID {
		t.Errorf("planned meal must get fresh ingredient ids")
	}

	if _, err := svc.AddFavoriteToMealPlan(ctx, fav.ID, "07/02/2026"); !errors.Is(err, core.ErrInvalidDate) {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}

	copied, err := svc.SaveMealAsFavorite(ctx, meal.ID)
	if err != nil {
		t.Fatalf("SaveMealAsFavorite: %v", err)
	}
	favs, _ := svc.ListFavorites(ctx)
	if len(favs) != 2 || copied.ID == fav.ID {
		t.Errorf("expected two distinct favorites, got %+v", favs)
	}

	if err := svc.RemoveFavorite(ctx, fav.ID); err != nil {
		t.Fatalf("RemoveFavorite: %v", err)
	}
	if _, err := svc.AddFavoriteToMealPlan(ctx, fav.ID, "2026-02-07"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateFavoriteLeavesInputUntouched(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	fav, err := svc.AddFavorite(ctx, core.FavoriteMeal{
		Name: "Pancakes", MealType: core.Breakfast,
		Ingredients: []core.Ingredient{ing("Flour", 2, "cups", core.Pantry)},
	})
	if err != nil {
		t.Fatalf("AddFavorite: %v", err)
	}
	keptID := fav.Ingredients[0].ID

	input := []core.Ingredient{fav.Ingredients[0], ing("Eggs", 2, "pcs", core.DairyEggs)}
	fav.Ingredients = input
	updated, err := svc.UpdateFavorite(ctx, fav)
	if err != nil {
		t.Fatalf("UpdateFavorite: %v", err)
	}
	if input[1].ID != "" {
		t.Errorf("caller slice was modified: %+v", input[1])
	}
	if updated.Ingredients[0].ID != keptID || updated.Ingredients[1].ID == "" {
		t.Errorf("ids = %q, %q; want kept id and a generated one",
			updated.Ingredients[0].ID, updated.Ingredients[1].ID)
	}
}
