package http

import (
	"fmt"
	"net/http"

	"mealplan/internal/core"
	applog "mealplan/internal/log"
)

func (s *Server) handleListFavorites(w http.ResponseWriter, r *http.Request) {
	favs, err := s.service.ListFavorites(r.Context())
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}
	if favs == nil {
		favs = []core.FavoriteMeal{}
	}
	NewJSONResponse().Body(map[string]any{"favorites": favs}).Write(w)
}

func (s *Server) handleCreateFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := NewRequestBodyParser(w, r, s.maxBodyBytes).Favorite()
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	saved, err := s.service.AddFavorite(r.Context(), fav)
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(saved).Write(w)
}

func (s *Server) handleUpdateFavorite(w http.ResponseWriter, r *http.Request) {
	fav, err := NewRequestBodyParser(w, r, s.maxBodyBytes).Favorite()
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	fav.ID = r.PathValue("id")

	saved, err := s.service.UpdateFavorite(r.Context(), fav)
	if err != nil {
		writeError(w, r, err, applog.OpUpdate)
		return
	}
	NewJSONResponse().Body(saved).Write(w)
}

func (s *Server) handleDeleteFavorite(w http.ResponseWriter, r *http.Request) {
	if err := s.service.RemoveFavorite(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err, applog.OpDelete)
		return
	}
	NoContent().Write(w)
}

// handleAddFavoriteToPlan takes {"date": "YYYY-MM-DD"}.
func (s *Server) handleAddFavoriteToPlan(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r, s.maxBodyBytes)
	if err := p.Parse(); err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	date := p.Get("date")
	if date == "" {
		writeError(w, r, fmt.Errorf("%w: date is required", ErrMalformedBody), applog.OpCreate)
		return
	}

	meal, err := s.service.AddFavoriteToMealPlan(r.Context(), r.PathValue("id"), date)
	if err != nil {
		writeError(w, r, err, applog.OpCreate)
		return
	}
	NewJSONResponse().Status(http.StatusCreated).Body(meal).Write(w)
}
