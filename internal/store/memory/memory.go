// Package memory is a process-local Store used for development and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"mealplan/internal/core"
	"mealplan/internal/store"
)

type Store struct {
	mu        sync.Mutex
	meals     []core.Meal
	checked   []string
	favorites []core.FavoriteMeal
	revision  int64
}

func New() *Store {
	return &Store{}
}

// NewWithMeals seeds the store, typically with the bundled sample plan.
func NewWithMeals(meals []core.Meal) *Store {
	s := New()
	s.meals = cloneMeals(meals)
	return s
}

func (s *Store) ListMeals(_ context.Context) ([]core.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneMeals(s.meals), nil
}

func (s *Store) GetMeal(_ context.Context, id string) (core.Meal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.mealIndex(id)
	if i < 0 {
		return core.Meal{}, store.ErrNotFound
	}
	return cloneMeal(s.meals[i]), nil
}

func (s *Store) SaveMeal(_ context.Context, m core.Meal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.mealIndex(m.ID); i >= 0 {
		s.meals[i] = cloneMeal(m)
	} else {
		s.meals = append(s.meals, cloneMeal(m))
	}
	s.revision++
	return nil
}

func (s *Store) DeleteMeal(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.mealIndex(id)
	if i < 0 {
		return store.ErrNotFound
	}
	s.meals = append(s.meals[:i], s.meals[i+1:]...)
	s.revision++
	return nil
}

func (s *Store) ReplaceMeals(_ context.Context, meals []core.Meal) error {
	if err := validateAll(meals); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meals = cloneMeals(meals)
	s.checked = []string{}
	s.revision++
	return nil
}

func (s *Store) AppendMeals(_ context.Context, meals []core.Meal) error {
	if err := validateAll(meals); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.meals = append(s.meals, cloneMeals(meals)...)
	s.revision++
	return nil
}

func (s *Store) CheckedNames(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.checked...), nil
}

func (s *Store) SetCheckedNames(_ context.Context, names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checked = append([]string{}, names...)
	s.revision++
	return nil
}

// ListFavorites returns favorites newest first.
func (s *Store) ListFavorites(_ context.Context) ([]core.FavoriteMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.FavoriteMeal, 0, len(s.favorites))
	for _, f := range s.favorites {
		out = append(out, cloneFavorite(f))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) GetFavorite(_ context.Context, id string) (core.FavoriteMeal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.favorites {
		if f.ID == id {
			return cloneFavorite(f), nil
		}
	}
	return core.FavoriteMeal{}, store.ErrNotFound
}

func (s *Store) SaveFavorite(_ context.Context, f core.FavoriteMeal) error {
	if err := f.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.favorites {
		if s.favorites[i].ID == f.ID {
			s.favorites[i] = cloneFavorite(f)
			return nil
		}
	}
	s.favorites = append(s.favorites, cloneFavorite(f))
	return nil
}

func (s *Store) DeleteFavorite(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.favorites {
		if s.favorites[i].ID == id {
			s.favorites = append(s.favorites[:i], s.favorites[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Revision(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision, nil
}

func (s *Store) mealIndex(id string) int {
	for i := range s.meals {
		if s.meals[i].ID == id {
			return i
		}
	}
	return -1
}

func validateAll(meals []core.Meal) error {
	for _, m := range meals {
		if err := m.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func cloneMeal(m core.Meal) core.Meal {
	m.Ingredients = append([]core.Ingredient{}, m.Ingredients...)
	return m
}

func cloneMeals(in []core.Meal) []core.Meal {
	out := make([]core.Meal, len(in))
	for i, m := range in {
		out[i] = cloneMeal(m)
	}
	return out
}

func cloneFavorite(f core.FavoriteMeal) core.FavoriteMeal {
	f.Ingredients = append([]core.Ingredient{}, f.Ingredients...)
	return f
}

var _ store.Store = (*Store)(nil)
