package store

import (
	"context"
	"errors"

	"mealplan/internal/core"
)

// ErrNotFound is returned when a meal or favorite id does not exist.
var ErrNotFound = errors.New("not found")

// Ports for persistence adapters. Every mutating call advances the
// revision reported by Revision.
type (
	MealStore interface {
		ListMeals(ctx context.Context) ([]core.Meal, error)
		GetMeal(ctx context.Context, id string) (core.Meal, error)
		// SaveMeal inserts the meal or replaces the one with the same id.
		SaveMeal(ctx context.Context, m core.Meal) error
		DeleteMeal(ctx context.Context, id string) error
		// ReplaceMeals starts a new plan: every meal and every checked name
		// is dropped and meals are stored in their place, as one write.
		ReplaceMeals(ctx context.Context, meals []core.Meal) error
		AppendMeals(ctx context.Context, meals []core.Meal) error
	}

	// CheckedStore holds the checked ingredient names as the user typed them.
	CheckedStore interface {
		CheckedNames(ctx context.Context) ([]string, error)
		SetCheckedNames(ctx context.Context, names []string) error
	}

	FavoriteStore interface {
		ListFavorites(ctx context.Context) ([]core.FavoriteMeal, error)
		GetFavorite(ctx context.Context, id string) (core.FavoriteMeal, error)
		SaveFavorite(ctx context.Context, f core.FavoriteMeal) error
		DeleteFavorite(ctx context.Context, id string) error
	}

	// RevisionReader exposes a counter that changes whenever the plan or
	// its checked names change.
	RevisionReader interface {
		Revision(ctx context.Context) (int64, error)
	}

	Store interface {
		MealStore
		CheckedStore
		FavoriteStore
		RevisionReader
	}
)
