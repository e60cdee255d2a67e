package grocery

import "mealplan/internal/core"

// ItemView is a grocery item as clients render it: the stable key to toggle
// by and the quantity already formatted.
type ItemView struct {
	Key           string        `json:"key"`
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Quantity      float64       `json:"quantity"`
	QuantityLabel string        `json:"quantityLabel"`
	Unit          string        `json:"unit"`
	Category      core.Category `json:"category"`
	Checked       bool          `json:"checked"`
	FromMeals     []string      `json:"fromMeals"`
}

type SectionView struct {
	Category     core.Category `json:"category"`
	CheckedCount int           `json:"checkedCount"`
	Items        []ItemView    `json:"items"`
}

// ListView is the whole list grouped into sections in category order.
type ListView struct {
	Revision int64         `json:"revision"`
	Checked  int           `json:"checked"`
	Total    int           `json:"total"`
	Sections []SectionView `json:"sections"`
}

func NewItemView(item core.GroceryItem) ItemView {
	meals := item.FromMeals
	if meals == nil {
		meals = []string{}
	}
	return ItemView{
		Key:           ItemKey(item),
		ID:            item.ID,
		Name:          item.Name,
		Quantity:      item.TotalQuantity,
		QuantityLabel: FormatQuantity(item.TotalQuantity),
		Unit:          item.Unit,
		Category:      item.Category.OrOther(),
		Checked:       item.Checked,
		FromMeals:     meals,
	}
}

// NewListView groups items with Sections. Sections is never nil so an empty
// list encodes as [].
func NewListView(revision int64, items []core.GroceryItem) ListView {
	checked, total := Progress(items)
	view := ListView{Revision: revision, Checked: checked, Total: total, Sections: []SectionView{}}
	for _, sec := range Sections(items) {
		sv := SectionView{Category: sec.Category, CheckedCount: sec.CheckedCount, Items: make([]ItemView, 0, len(sec.Items))}
		for _, it := range sec.Items {
			sv.Items = append(sv.Items, NewItemView(it))
		}
		view.Sections = append(view.Sections, sv)
	}
	return view
}
