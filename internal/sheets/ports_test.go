package sheets

import (
	"reflect"
	"testing"
	"time"

	"mealplan/internal/core"
)

func TestRows(t *testing.T) {
	snap := Snapshot{
		Revision:    7,
		GeneratedAt: time.Date(2026, 2, 4, 9, 30, 0, 0, time.UTC),
		Items: []core.GroceryItem{
			{Name: "Milk", TotalQuantity: 1.5, Unit: "l", Category: core.DairyEggs, FromMeals: []string{"Porridge"}},
			{Name: "Apple", TotalQuantity: 3, Unit: "pcs", Category: core.Produce, Checked: true, FromMeals: []string{"Snack", "Pie"}},
			{Name: "Soap", TotalQuantity: 1, Unit: "bar", Category: "Household"},
		},
	}

	got := Rows(snap)
	want := [][]any{
		Header,
		{"Produce", "Apple", "3", "pcs", true, "Snack, Pie"},
		{"Dairy & Eggs", "Milk", "1.5", "l", false, "Porridge"},
		{"Other", "Soap", "1", "bar", false, ""},
		{},
		{"Revision", int64(7), "Updated", "2026-02-04T09:30:00Z", "Checked", "1/3"},
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if !reflect.DeepEqual(got[i], want[i]) {
			t.Errorf("row %d = %#v, want %#v", i, got[i], want[i])
		}
	}
}

func TestRowsEmptyList(t *testing.T) {
	got := Rows(Snapshot{})
	if len(got) != 3 || !reflect.DeepEqual(got[0], Header) {
		t.Fatalf("unexpected rows for empty list: %v", got)
	}
	if got[2][5] != "0/0" {
		t.Errorf("progress = %v", got[2][5])
	}
}
