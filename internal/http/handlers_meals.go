package http

import (
	"net/http"

	"mealplan/internal/core"
	applog "mealplan/internal/log"
)

type mealsResponse struct {
	Meals     []core.Meal    `json:"meals"`
	WeekStart core.WeekStart `json:"weekStartsOn"`
	WeekRange string         `json:"weekRange,omitempty"`
}

func (s *Server) handleListMeals(w http.ResponseWriter, r *http.Request) {
	ref, weekly, err := ParseWeekParam(r.URL.Query())
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}

	resp := mealsResponse{WeekStart: s.service.WeekStart()}
	if weekly {
		resp.Meals, err = s.service.ListMealsForWeek(r.Context(), ref)
		resp.WeekRange = core.FormatWeekRange(resp.WeekStart, ref)
	} else {
		resp.Meals, err = s.service.ListMeals(r.Context())
	}
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	if resp.Meals == nil {
		resp.Meals = []core.Meal{}
	}
	NewJSONResponse().Body(resp).Write(w)
}

func (s *Server) handleGetMeal(w http.ResponseWriter, r *http.Request) {
	m, err := s.service.GetMeal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	NewJSONResponse().Body(m).Write(w)
}

func (s *Server) handleCreateMeal(w http.ResponseWriter, r *http.Request) {
	m, err := NewRequestBodyParser(w, r, s.maxBodyBytes).Meal()
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	m.ID = ""

	saved, err := s.service.AddMeal(r.Context(), m)
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Meal created",
		applog.FieldMealID, saved.ID,
		applog.FieldMealName, saved.Name,
		applog.FieldItemCount, len(saved.Ingredients))
	NewJSONResponse().Status(http.StatusCreated).Body(saved).Write(w)
}

func (s *Server) handleUpdateMeal(w http.ResponseWriter, r *http.Request) {
	m, err := NewRequestBodyParser(w, r, s.maxBodyBytes).Meal()
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	m.ID = r.PathValue("id")

	saved, err := s.service.UpdateMeal(r.Context(), m)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(saved).Write(w)
}

func (s *Server) handleDeleteMeal(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.service.DeleteMeal(r.Context(), id); err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	applog.FromContext(r.Context()).InfoContext(r.Context(), "Meal deleted", applog.FieldMealID, id)
	NoContent().Write(w)
}

func (s *Server) handleClearMeals(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearAllMeals(r.Context()); err != nil {
		writeError(w, r, err, applog.OpClear)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleSaveMealAsFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := s.service.SaveMealAsFavorite(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(fav).Write(w)
}
