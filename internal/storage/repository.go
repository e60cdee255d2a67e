package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"mealplan/internal/core"
	"mealplan/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListMeals(ctx context.Context) ([]core.Meal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, day, date, meal_type
		FROM meals
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query meals: %w", err)
	}
	defer rows.Close()

	meals := []core.Meal{}
	index := map[string]int{}
	for rows.Next() {
		var m core.Meal
		var day, mealType string
		if err := rows.Scan(&m.ID, &m.Name, &day, &m.Date, &mealType); err != nil {
			return nil, fmt.Errorf("scan meal: %w", err)
		}
		m.Day = core.DayOfWeek(day)
		m.MealType = core.MealType(mealType)
		m.Ingredients = []core.Ingredient{}
		index[m.ID] = len(meals)
		meals = append(meals, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate meals: %w", err)
	}

	ingRows, err := r.db.QueryContext(ctx, `
		SELECT meal_id, id, name, quantity, unit, category
		FROM meal_ingredients
		ORDER BY meal_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query ingredients: %w", err)
	}
	defer ingRows.Close()

	for ingRows.Next() {
		var mealID string
		ing, err := scanIngredient(ingRows, &mealID)
		if err != nil {
			return nil, err
		}
		if i, ok := index[mealID]; ok {
			meals[i].Ingredients = append(meals[i].Ingredients, ing)
		}
	}
	if err := ingRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ingredients: %w", err)
	}

	return meals, nil
}

func (r *SQLiteRepository) GetMeal(ctx context.Context, id string) (core.Meal, error) {
	var m core.Meal
	var day, mealType string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, day, date, meal_type FROM meals WHERE id = ?`, id).
		Scan(&m.ID, &m.Name, &day, &m.Date, &mealType)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Meal{}, store.ErrNotFound
	}
	if err != nil {
		return core.Meal{}, fmt.Errorf("get meal %s: %w", id, err)
	}
	m.Day = core.DayOfWeek(day)
	m.MealType = core.MealType(mealType)

	ings, err := r.loadIngredients(ctx, "meal_ingredients", "meal_id", id)
	if err != nil {
		return core.Meal{}, err
	}
	m.Ingredients = ings
	return m, nil
}

// SaveMeal inserts the meal at the end of the plan or rewrites it in place.
func (r *SQLiteRepository) SaveMeal(ctx context.Context, m core.Meal) error {
	if err := m.Validate(); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE meals SET name = ?, day = ?, date = ?, meal_type = ? WHERE id = ?`,
			m.Name, string(m.Day), m.Date, string(m.MealType), m.ID)
		if err != nil {
			return fmt.Errorf("update meal: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			if err := insertMeal(ctx, tx, m); err != nil {
				return err
			}
		} else {
			if _, err := tx.ExecContext(ctx, `DELETE FROM meal_ingredients WHERE meal_id = ?`, m.ID); err != nil {
				return fmt.Errorf("clear ingredients: %w", err)
			}
			if err := insertIngredients(ctx, tx, "meal_ingredients", "meal_id", m.ID, m.Ingredients); err != nil {
				return err
			}
		}
		return bumpRevision(ctx, tx)
	})
}

func (r *SQLiteRepository) DeleteMeal(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete meal: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_ingredients WHERE meal_id = ?`, id); err != nil {
			return fmt.Errorf("delete ingredients: %w", err)
		}
		return bumpRevision(ctx, tx)
	})
}

func (r *SQLiteRepository) ReplaceMeals(ctx context.Context, meals []core.Meal) error {
	if err := validateMeals(meals); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM meal_ingredients`); err != nil {
			return fmt.Errorf("clear ingredients: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM meals`); err != nil {
			return fmt.Errorf("clear meals: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM checked_items`); err != nil {
			return fmt.Errorf("clear checked items: %w", err)
		}
		for _, m := range meals {
			if err := insertMeal(ctx, tx, m); err != nil {
				return err
			}
		}
		return bumpRevision(ctx, tx)
	})
}

func (r *SQLiteRepository) AppendMeals(ctx context.Context, meals []core.Meal) error {
	if err := validateMeals(meals); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		for _, m := range meals {
			if err := insertMeal(ctx, tx, m); err != nil {
				return err
			}
		}
		return bumpRevision(ctx, tx)
	})
}

func (r *SQLiteRepository) CheckedNames(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT name FROM checked_items ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query checked items: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("scan checked item: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}

func (r *SQLiteRepository) SetCheckedNames(ctx context.Context, names []string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM checked_items`); err != nil {
			return fmt.Errorf("clear checked items: %w", err)
		}
		for i, n := range names {
			if _, err := tx.ExecContext(ctx, `INSERT INTO checked_items (position, name) VALUES (?, ?)`, i, n); err != nil {
				return fmt.Errorf("insert checked item: %w", err)
			}
		}
		return bumpRevision(ctx, tx)
	})
}

// ListFavorites returns favorites newest first.
func (r *SQLiteRepository) ListFavorites(ctx context.Context) ([]core.FavoriteMeal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, meal_type, created_at
		FROM favorites
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query favorites: %w", err)
	}
	defer rows.Close()

	favs := []core.FavoriteMeal{}
	for rows.Next() {
		f, err := scanFavorite(rows)
		if err != nil {
			return nil, err
		}
		favs = append(favs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	rows.Close()

	for i := range favs {
		ings, err := r.loadIngredients(ctx, "favorite_ingredients", "favorite_id", favs[i].ID)
		if err != nil {
			return nil, err
		}
		favs[i].Ingredients = ings
	}
	return favs, nil
}

func (r *SQLiteRepository) GetFavorite(ctx context.Context, id string) (core.FavoriteMeal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, meal_type, created_at FROM favorites WHERE id = ?`, id)
	f, err := scanFavorite(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.FavoriteMeal{}, store.ErrNotFound
	}
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	ings, err := r.loadIngredients(ctx, "favorite_ingredients", "favorite_id", id)
	if err != nil {
		return core.FavoriteMeal{}, err
	}
	f.Ingredients = ings
	return f, nil
}

func (r *SQLiteRepository) SaveFavorite(ctx context.Context, f core.FavoriteMeal) error {
	if err := f.Validate(); err != nil {
		return err
	}
	return r.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO favorites (id, name, meal_type, created_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				meal_type = excluded.meal_type`,
			f.ID, f.Name, string(f.MealType), f.CreatedAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("upsert favorite: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorite_ingredients WHERE favorite_id = ?`, f.ID); err != nil {
			return fmt.Errorf("clear favorite ingredients: %w", err)
		}
		return insertIngredients(ctx, tx, "favorite_ingredients", "favorite_id", f.ID, f.Ingredients)
	})
}

func (r *SQLiteRepository) DeleteFavorite(ctx context.Context, id string) error {
	return r.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM favorites WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete favorite: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return store.ErrNotFound
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM favorite_ingredients WHERE favorite_id = ?`, id); err != nil {
			return fmt.Errorf("delete favorite ingredients: %w", err)
		}
		return nil
	})
}

func (r *SQLiteRepository) Revision(ctx context.Context) (int64, error) {
	var rev int64
	if err := r.db.QueryRowContext(ctx, `SELECT revision FROM plan_meta WHERE id = 1`).Scan(&rev); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	return rev, nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) loadIngredients(ctx context.Context, table, ownerCol, ownerID string) ([]core.Ingredient, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %[2]s, id, name, quantity, unit, category
		FROM %[1]s
		WHERE %[2]s = ?
		ORDER BY position`, table, ownerCol), ownerID)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	out := []core.Ingredient{}
	for rows.Next() {
		var owner string
		ing, err := scanIngredient(rows, &owner)
		if err != nil {
			return nil, err
		}
		out = append(out, ing)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanIngredient(s scanner, owner *string) (core.Ingredient, error) {
	var ing core.Ingredient
	var category string
	if err := s.Scan(owner, &ing.ID, &ing.Name, &ing.Quantity, &ing.Unit, &category); err != nil {
		return core.Ingredient{}, fmt.Errorf("scan ingredient: %w", err)
	}
	ing.Category = core.Category(category)
	return ing, nil
}

func scanFavorite(s scanner) (core.FavoriteMeal, error) {
	var f core.FavoriteMeal
	var mealType, createdAt string
	if err := s.Scan(&f.ID, &f.Name, &mealType, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.FavoriteMeal{}, err
		}
		return core.FavoriteMeal{}, fmt.Errorf("scan favorite: %w", err)
	}
	f.MealType = core.MealType(mealType)
	t, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		slog.Warn("Invalid favorite timestamp", "id", f.ID, "created_at", createdAt, "error", err)
	}
	f.CreatedAt = t
	return f, nil
}

func insertMeal(ctx context.Context, tx *sql.Tx, m core.Meal) error {
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO meals (id, position, name, day, date, meal_type)
		VALUES (?, (SELECT COALESCE(MAX(position), 0) + 1 FROM meals), ?, ?, ?, ?)`,
		m.ID, m.Name, string(m.Day), m.Date, string(m.MealType)); err != nil {
		return fmt.Errorf("insert meal %s: %w", m.ID, err)
	}
	return insertIngredients(ctx, tx, "meal_ingredients", "meal_id", m.ID, m.Ingredients)
}

func insertIngredients(ctx context.Context, tx *sql.Tx, table, ownerCol, ownerID string, ings []core.Ingredient) error {
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, position, id, name, quantity, unit, category)
		VALUES (?, ?, ?, ?, ?, ?, ?)`, table, ownerCol))
	if err != nil {
		return fmt.Errorf("prepare %s insert: %w", table, err)
	}
	defer stmt.Close()

	for i, ing := range ings {
		if _, err := stmt.ExecContext(ctx, ownerID, i, ing.ID, ing.Name, ing.Quantity, ing.Unit, string(ing.Category)); err != nil {
			return fmt.Errorf("insert ingredient %q: %w", ing.Name, err)
		}
	}
	return nil
}

func bumpRevision(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `UPDATE plan_meta SET revision = revision + 1 WHERE id = 1`); err != nil {
		return fmt.Errorf("bump revision: %w", err)
	}
	return nil
}

func validateMeals(meals []core.Meal) error {
	for _, m := range meals {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("meal %q: %w", m.Name, err)
		}
	}
	return nil
}

var _ store.Store = (*SQLiteRepository)(nil)
