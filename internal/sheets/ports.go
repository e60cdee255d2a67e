package sheets

import (
	"context"
	"strconv"
	"strings"
	"time"

	"mealplan/internal/core"
	"mealplan/internal/grocery"
)

// Ports for outbound adapters.
type (
	// GroceryExporter replaces the published grocery sheet with snapshot.
	GroceryExporter interface {
		ExportGroceryList(ctx context.Context, snapshot Snapshot) error
	}
)

// Snapshot is one grocery list as exported.
type Snapshot struct {
	Revision    int64
	GeneratedAt time.Time
	Items       []core.GroceryItem
}

// Header is the first row of every exported sheet.
var Header = []any{"Category", "Item", "Quantity", "Unit", "Checked", "Meals"}

// Rows lays out a snapshot as sheet rows: the header, one row per item in
// category section order, then a blank row and a footer naming the revision.
func Rows(s Snapshot) [][]any {
	rows := [][]any{Header}
	for _, sec := range grocery.Sections(s.Items) {
		for _, it := range sec.Items {
			rows = append(rows, []any{
				string(sec.Category),
				it.Name,
				grocery.FormatQuantity(it.TotalQuantity),
				it.Unit,
				it.Checked,
				strings.Join(it.FromMeals, ", "),
			})
		}
	}
	checked, total := grocery.Progress(s.Items)
	rows = append(rows,
		[]any{},
		[]any{"Revision", s.Revision, "Updated", s.GeneratedAt.UTC().Format(time.RFC3339), "Checked", strconv.Itoa(checked) + "/" + strconv.Itoa(total)},
	)
	return rows
}

