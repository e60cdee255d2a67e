package memory

import (
	"context"
	"testing"

	"mealplan/internal/core"
	"mealplan/internal/sheets"
)

func TestExporterKeepsLastSnapshot(t *testing.T) {
	e := New(nil)
	ctx := context.Background()

	for rev := int64(1); rev <= 2; rev++ {
		err := e.ExportGroceryList(ctx, sheets.Snapshot{
			Revision: rev,
			Items:    []core.GroceryItem{{Name: "Eggs", TotalQuantity: float64(rev), Unit: "pcs", Category: core.DairyEggs}},
		})
		if err != nil {
			t.Fatalf("export %d: %v", rev, err)
		}
	}

	n, last := e.Exports()
	if n != 2 || last != 2 {
		t.Fatalf("Exports() = %d, %d", n, last)
	}
	rows := e.Rows()
	if len(rows) != 4 || rows[1][2] != "2" {
		t.Fatalf("unexpected rows %v", rows)
	}
}

func TestExporterHonoursCancelledContext(t *testing.T) {
	e := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := e.ExportGroceryList(ctx, sheets.Snapshot{}); err == nil {
		t.Fatalf("expected context error")
	}
	if n, _ := e.Exports(); n != 0 {
		t.Fatalf("cancelled export must not be recorded")
	}
}
