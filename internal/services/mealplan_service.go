package services

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"mealplan/internal/cache"
	"mealplan/internal/core"
	"mealplan/internal/grocery"
	applog "mealplan/internal/log"
	"mealplan/internal/store"
)

// ErrItemNotFound is returned when a grocery key matches no current item.
var ErrItemNotFound = fmt.Errorf("grocery item: %w", store.ErrNotFound)

// Publisher is notified after every change to the plan or its checked items.
type Publisher interface {
	PublishPlanChanged(ctx context.Context, revision int64, operation string) error
}

// GroceryList is an aggregated list together with the plan revision it was
// built from.
type GroceryList struct {
	Revision int64              `json:"revision"`
	Items    []core.GroceryItem `json:"items"`
}

// MealPlanService owns the meal plan, its checked grocery names and the
// favorites. The grocery list is always derived, never stored.
type MealPlanService struct {
	store     store.Store
	publisher Publisher
	cache     cache.Cache[[]core.GroceryItem]
	logger    *applog.Logger
	events    *applog.StructuredLogger
	weekStart core.WeekStart
	now       func() time.Time

	// mu serializes read-modify-write sequences such as toggling.
	mu sync.Mutex
}

// NewMealPlanService wires a store with optional publisher and cache; either
// may be nil.
func NewMealPlanService(st store.Store, publisher Publisher, c cache.Cache[[]core.GroceryItem], logger *applog.Logger, weekStart core.WeekStart) *MealPlanService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentGrocery)
	if weekStart == "" {
		weekStart = core.WeekStartsSunday
	}
	return &MealPlanService{
		store:     st,
		publisher: publisher,
		cache:     c,
		logger:    logger,
		events:    applog.NewStructuredLogger(logger),
		weekStart: weekStart,
		now:       time.Now,
	}
}

func (s *MealPlanService) WeekStart() core.WeekStart {
	return s.weekStart
}

// Ready reports whether the backing store answers.
func (s *MealPlanService) Ready(ctx context.Context) error {
	_, err := s.store.Revision(ctx)
	return err
}

// ImportMeals replaces the plan or appends to it. Replacing also clears
// every checked item, since the old names no longer refer to anything.
func (s *MealPlanService) ImportMeals(ctx context.Context, meals []core.Meal, replace bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prepared := make([]core.Meal, len(meals))
	for i, m := range meals {
		prepared[i] = s.prepareMeal(m)
	}

	if replace {
		if err := s.store.ReplaceMeals(ctx, prepared); err != nil {
			return fmt.Errorf("replace meals: %w", err)
		}
	} else if err := s.store.AppendMeals(ctx, prepared); err != nil {
		return fmt.Errorf("append meals: %w", err)
	}

	s.changed(ctx, applog.OpImport)
	return nil
}

func (s *MealPlanService) ListMeals(ctx context.Context) ([]core.Meal, error) {
	return s.store.ListMeals(ctx)
}

// ListMealsForWeek returns the meals dated inside the week containing ref.
func (s *MealPlanService) ListMealsForWeek(ctx context.Context, ref time.Time) ([]core.Meal, error) {
	meals, err := s.store.ListMeals(ctx)
	if err != nil {
		return nil, err
	}
	return filterWeek(meals, s.weekStart, ref), nil
}

func (s *MealPlanService) GetMeal(ctx context.Context, id string) (core.Meal, error) {
	return s.store.GetMeal(ctx, id)
}

// AddMeal stores m as a new meal. Missing ids are generated; a missing
// date is placed on m.Day of the current week and a missing day is taken
// from the date.
func (s *MealPlanService) AddMeal(ctx context.Context, m core.Meal) (core.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m = s.prepareMeal(m)
	if err := s.store.SaveMeal(ctx, m); err != nil {
		return core.Meal{}, fmt.Errorf("save meal: %w", err)
	}
	s.changed(ctx, applog.OpCreate)
	return m, nil
}

func (s *MealPlanService) UpdateMeal(ctx context.Context, m core.Meal) (core.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.store.GetMeal(ctx, m.ID); err != nil {
		return core.Meal{}, err
	}
	m = s.prepareMeal(m)
	if err := s.store.SaveMeal(ctx, m); err != nil {
		return core.Meal{}, fmt.Errorf("save meal: %w", err)
	}
	s.changed(ctx, applog.OpUpdate)
	return m, nil
}

func (s *MealPlanService) DeleteMeal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.DeleteMeal(ctx, id); err != nil {
		return err
	}
	s.changed(ctx, applog.OpDelete)
	return nil
}

// ClearAllMeals empties the plan and its checked items.
func (s *MealPlanService) ClearAllMeals(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.ReplaceMeals(ctx, nil); err != nil {
		return fmt.Errorf("clear meals: %w", err)
	}
	s.changed(ctx, applog.OpClear)
	return nil
}

// GroceryList aggregates every meal in the plan.
func (s *MealPlanService) GroceryList(ctx context.Context) (GroceryList, error) {
	return s.groceryList(ctx, "all", nil)
}

// GroceryListForWeek aggregates only the meals dated in the week of ref.
func (s *MealPlanService) GroceryListForWeek(ctx context.Context, ref time.Time) (GroceryList, error) {
	start := core.FormatISODate(core.WeekStartDate(s.weekStart, ref))
	return s.groceryList(ctx, "week:"+start, func(meals []core.Meal) []core.Meal {
		return filterWeek(meals, s.weekStart, ref)
	})
}

func (s *MealPlanService) groceryList(ctx context.Context, scope string, filter func([]core.Meal) []core.Meal) (GroceryList, error) {
	rev, err := s.store.Revision(ctx)
	if err != nil {
		return GroceryList{}, fmt.Errorf("read revision: %w", err)
	}
	key := scope + "@" + strconv.FormatInt(rev, 10)
	if s.cache != nil {
		if items, ok := s.cache.Get(key); ok {
			return GroceryList{Revision: rev, Items: cloneItems(items)}, nil
		}
	}

	meals, err := s.store.ListMeals(ctx)
	if err != nil {
		return GroceryList{}, fmt.Errorf("list meals: %w", err)
	}
	names, err := s.store.CheckedNames(ctx)
	if err != nil {
		return GroceryList{}, fmt.Errorf("list checked items: %w", err)
	}
	if filter != nil {
		meals = filter(meals)
	}

	items := grocery.Aggregate(meals, grocery.NewCheckedSet(names...))
	if s.cache != nil {
		s.cache.Set(key, items)
	}
	s.logger.DebugContext(ctx, "Grocery list generated",
		applog.FieldItemCount, len(items),
		applog.FieldMealCount, len(meals),
		applog.FieldRevision, rev)
	return GroceryList{Revision: rev, Items: cloneItems(items)}, nil
}

// ToggleGroceryItem flips the checked state of the item whose stable key is
// key. Unchecking removes every case variant of the name; checking stores
// the item's display name. The updated item is returned.
func (s *MealPlanService) ToggleGroceryItem(ctx context.Context, key string) (core.GroceryItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.GroceryList(ctx)
	if err != nil {
		return core.GroceryItem{}, err
	}
	var item core.GroceryItem
	found := false
	for _, it := range list.Items {
		if grocery.ItemKey(it) == strings.ToLower(strings.TrimSpace(key)) {
			item, found = it, true
			break
		}
	}
	if !found {
		return core.GroceryItem{}, fmt.Errorf("%w: %q", ErrItemNotFound, key)
	}

	names, err := s.store.CheckedNames(ctx)
	if err != nil {
		return core.GroceryItem{}, fmt.Errorf("list checked items: %w", err)
	}
	if err := s.store.SetCheckedNames(ctx, grocery.ToggleChecked(names, item.Name)); err != nil {
		return core.GroceryItem{}, fmt.Errorf("save checked items: %w", err)
	}
	item.Checked = !item.Checked

	s.changed(ctx, applog.OpToggle)
	return item, nil
}

// ClearCheckedItems forgets every checked name.
func (s *MealPlanService) ClearCheckedItems(ctx context.Context) error {
	return s.resetChecked(ctx, "clear_checked")
}

// UncheckAllItems has the same effect as ClearCheckedItems; both exist
// because the list offers them as separate actions.
func (s *MealPlanService) UncheckAllItems(ctx context.Context) error {
	return s.resetChecked(ctx, "uncheck_all")
}

func (s *MealPlanService) resetChecked(ctx context.Context, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetCheckedNames(ctx, nil); err != nil {
		return fmt.Errorf("clear checked items: %w", err)
	}
	s.changed(ctx, op)
	return nil
}

func (s *MealPlanService) ListFavorites(ctx context.Context) ([]core.FavoriteMeal, error) {
	return s.store.ListFavorites(ctx)
}

// AddFavorite stores a new favorite with fresh ids and creation time.
func (s *MealPlanService) AddFavorite(ctx context.Context, f core.FavoriteMeal) (core.FavoriteMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f.ID = core.NewID()
	f.CreatedAt = s.now().UTC()
	f.Ingredients = freshIngredients(f.Ingredients)
	if err := s.store.SaveFavorite(ctx, f); err != nil {
		return core.FavoriteMeal{}, fmt.Errorf("save favorite: %w", err)
	}
	s.logger.InfoContext(ctx, "Favorite added", applog.FieldMealName, f.Name)
	return f, nil
}

// SaveMealAsFavorite copies a planned meal into the favorites.
func (s *MealPlanService) SaveMealAsFavorite(ctx context.Context, mealID string) (core.FavoriteMeal, error) {
	m, err := s.store.GetMeal(ctx, mealID)
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	return s.AddFavorite(ctx, core.FavoriteMeal{Name: m.Name, MealType: m.MealType, Ingredients: m.Ingredients})
}

// UpdateFavorite rewrites name, meal type and ingredients; the creation
// time is kept.
func (s *MealPlanService) UpdateFavorite(ctx context.Context, f core.FavoriteMeal) (core.FavoriteMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.store.GetFavorite(ctx, f.ID)
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	f.CreatedAt = existing.CreatedAt
	f.Ingredients = ingredientsWithIDs(f.Ingredients)
	if err := s.store.SaveFavorite(ctx, f); err != nil {
		return core.FavoriteMeal{}, fmt.Errorf("save favorite: %w", err)
	}
	return f, nil
}

func (s *MealPlanService) RemoveFavorite(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.store.DeleteFavorite(ctx, id)
}

// AddFavoriteToMealPlan plans a copy of the favorite on date (YYYY-MM-DD).
// The day of week follows from the date and every id is fresh.
func (s *MealPlanService) AddFavoriteToMealPlan(ctx context.Context, id, date string) (core.Meal, error) {
	d, err := core.ParseISODate(date)
	if err != nil {
		return core.Meal{}, err
	}
	fav, err := s.store.GetFavorite(ctx, id)
	if err != nil {
		return core.Meal{}, err
	}
	return s.AddMeal(ctx, core.Meal{
		Name:        fav.Name,
		Day:         core.DayOfWeekFromDate(d),
		Date:        core.FormatISODate(d),
		MealType:    fav.MealType,
		Ingredients: freshIngredients(fav.Ingredients),
	})
}

// prepareMeal fills generated ids and reconciles day and date.
func (s *MealPlanService) prepareMeal(m core.Meal) core.Meal {
	if m.ID == "" {
		m.ID = core.NewID()
	}
	m.Ingredients = ingredientsWithIDs(m.Ingredients)

	switch {
	case m.Date == "" && m.Day.IsValid():
		m.Date = core.FormatISODate(core.DateForDay(m.Day, s.weekStart, s.now()))
	case m.Date != "" && m.Day == "":
		if d, err := core.ParseISODate(m.Date); err == nil {
			m.Day = core.DayOfWeekFromDate(d)
		}
	}
	return m
}

// changed runs after every successful plan mutation. Publishing is best
// effort: the change is already stored.
func (s *MealPlanService) changed(ctx context.Context, op string) {
	if s.cache != nil {
		s.cache.Clear()
	}
	rev, err := s.store.Revision(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to read plan revision", applog.FieldError, err)
		return
	}
	s.events.LogPlanChanged(ctx, op, rev)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishPlanChanged(ctx, rev, op); err != nil {
		s.events.LogError(ctx, "Failed to publish plan change", err, applog.OpPublish,
			applog.NewFields().WithRevision(rev))
	}
}

func filterWeek(meals []core.Meal, ws core.WeekStart, ref time.Time) []core.Meal {
	out := make([]core.Meal, 0, len(meals))
	for _, m := range meals {
		if core.IsDateInWeek(m.Date, ws, ref) {
			out = append(out, m)
		}
	}
	return out
}

// ingredientsWithIDs copies in, keeping existing ids, generating missing
// ones and trimming names and units.
func ingredientsWithIDs(in []core.Ingredient) []core.Ingredient {
	out := make([]core.Ingredient, len(in))
	for i, ing := range in {
		if ing.ID == "" {
			ing.ID = core.NewID()
		}
		ing.Name = strings.TrimSpace(ing.Name)
		ing.Unit = strings.TrimSpace(ing.Unit)
		out[i] = ing
	}
	return out
}

func freshIngredients(in []core.Ingredient) []core.Ingredient {
	out := make([]core.Ingredient, len(in))
	for i, ing := range in {
		ing.ID = core.NewID()
		out[i] = ing
	}
	return out
}

func cloneItems(items []core.GroceryItem) []core.GroceryItem {
	out := make([]core.GroceryItem, len(items))
	for i, it := range items {
		it.FromMeals = append([]string(nil), it.FromMeals...)
		out[i] = it
	}
	return out
}
