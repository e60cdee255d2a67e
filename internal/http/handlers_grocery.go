package http

import (
	"fmt"
	"net/http"

	"mealplan/internal/core"
	"mealplan/internal/grocery"
	applog "mealplan/internal/log"
	"mealplan/internal/services"
)

type groceryResponse struct {
	grocery.ListView
	WeekRange string `json:"weekRange,omitempty"`
}

func (s *Server) handleGroceryList(w http.ResponseWriter, r *http.Request) {
	ref, weekly, err := ParseWeekParam(r.URL.Query())
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}

	var list services.GroceryList
	if weekly {
		list, err = s.service.GroceryListForWeek(r.Context(), ref)
	} else {
		list, err = s.service.GroceryList(r.Context())
	}
	if err != nil {
		writeError(w, r, err, applog.OpList)
		return
	}

	resp := groceryResponse{ListView: grocery.NewListView(list.Revision, list.Items)}
	if weekly {
		resp.WeekRange = core.FormatWeekRange(s.service.WeekStart(), ref)
	}
	NewJSONResponse().Revision(list.Revision).Body(resp).Write(w)
}

func (s *Server) handleToggleGroceryItem(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(w, r, s.maxBodyBytes)
	if err := p.Parse(); err != nil {
		writeError(w, r, err, applog.OpToggle)
		return
	}
	key := p.Get("key")
	if key == "" {
		writeError(w, r, fmt.Errorf("%w: key is required", ErrMalformedBody), applog.OpToggle)
		return
	}

	item, err := s.service.ToggleGroceryItem(r.Context(), key)
	if err != nil {
		writeError(w, r, err, applog.OpToggle)
		return
	}
	applog.FromContext(r.Context()).DebugContext(r.Context(), "Grocery item toggled",
		applog.FieldItemKey, key,
		"checked", item.Checked)
	NewJSONResponse().Body(grocery.NewItemView(item)).Write(w)
}

func (s *Server) handleUncheckAll(w http.ResponseWriter, r *http.Request) {
	if err := s.service.UncheckAllItems(r.Context()); err != nil {
		writeError(w, r, err, applog.OpClear)
		return
	}
	NoContent().Write(w)
}

func (s *Server) handleClearChecked(w http.ResponseWriter, r *http.Request) {
	if err := s.service.ClearCheckedItems(r.Context()); err != nil {
		writeError(w, r, err, applog.OpClear)
		return
	}
	NoContent().Write(w)
}
