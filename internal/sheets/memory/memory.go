// Package memory is an exporter that keeps the rendered sheet in process,
// used for dry runs and tests.
package memory

import (
	"context"
	"log/slog"
	"sync"

	"mealplan/internal/sheets"
)

type Exporter struct {
	mu      sync.Mutex
	rows    [][]any
	exports int
	last    int64
	logger  *slog.Logger
}

var _ sheets.GroceryExporter = (*Exporter)(nil)

// New returns an exporter; a non-nil logger gets one line per export.
func New(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

func (e *Exporter) ExportGroceryList(ctx context.Context, s sheets.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows := sheets.Rows(s)
	e.mu.Lock()
	e.rows = rows
	e.exports++
	e.last = s.Revision
	e.mu.Unlock()

	if e.logger != nil {
		e.logger.InfoContext(ctx, "Grocery list rendered (dry run)",
			"revision", s.Revision,
			"items", len(s.Items),
			"rows", len(rows))
	}
	return nil
}

// Rows returns the most recently exported rows.
func (e *Exporter) Rows() [][]any {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([][]any(nil), e.rows...)
}

// Exports returns how many exports happened and the last revision written.
func (e *Exporter) Exports() (int, int64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports, e.last
}
