package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"mealplan/internal/amqp"
	applog "mealplan/internal/log"
	"mealplan/internal/services"
	"mealplan/internal/sheets"
)

// GroceryLister produces the current aggregated grocery list.
type GroceryLister interface {
	GroceryList(ctx context.Context) (services.GroceryList, error)
}

// ExportWorker keeps the exported grocery sheet in step with the plan.
// It exports when a PlanChanged message arrives and, as a backup for lost
// messages, on a fixed interval. A revision is never exported twice unless
// forced.
type ExportWorker struct {
	lister   GroceryLister
	exporter sheets.GroceryExporter
	logger   *applog.Logger
	now      func() time.Time

	mu           sync.Mutex
	lastRevision int64
	exported     bool
}

func NewExportWorker(lister GroceryLister, exporter sheets.GroceryExporter, logger *applog.Logger) *ExportWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &ExportWorker{
		lister:   lister,
		exporter: exporter,
		logger:   logger.WithComponent(applog.ComponentWorker),
		now:      time.Now,
	}
}

// HandlePlanChanged processes one PlanChanged message from AMQP. Messages
// for revisions already exported are acknowledged without work.
func (w *ExportWorker) HandlePlanChanged(ctx context.Context, msg *amqp.PlanChangedMessage) error {
	w.logger.InfoContext(ctx, "Processing plan change",
		applog.FieldRevision, msg.Revision,
		applog.FieldOperation, msg.Operation)

	if rev, ok := w.last(); ok && msg.Revision <= rev {
		w.logger.DebugContext(ctx, "Revision already exported, skipping",
			applog.FieldRevision, msg.Revision,
			"last_exported", rev)
		return nil
	}
	if _, err := w.Export(ctx, false); err != nil {
		return fmt.Errorf("export after plan change: %w", err)
	}
	return nil
}

// StartupExport writes the sheet once at startup, regardless of what was
// exported before the worker restarted.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	_, err := w.Export(ctx, true)
	return err
}

// Export writes the current grocery list unless its revision was already
// exported and force is false. It reports whether a write happened.
func (w *ExportWorker) Export(ctx context.Context, force bool) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	list, err := w.lister.GroceryList(ctx)
	if err != nil {
		return false, fmt.Errorf("build grocery list: %w", err)
	}
	if !force && w.exported && list.Revision == w.lastRevision {
		return false, nil
	}

	snap := sheets.Snapshot{Revision: list.Revision, GeneratedAt: w.now(), Items: list.Items}
	if err := w.exporter.ExportGroceryList(ctx, snap); err != nil {
		w.logger.ErrorContext(ctx, "Failed to export grocery list",
			applog.FieldRevision, list.Revision,
			applog.FieldError, err)
		return false, fmt.Errorf("export grocery list: %w", err)
	}
	w.lastRevision, w.exported = list.Revision, true

	w.logger.InfoContext(ctx, "Grocery list exported",
		applog.FieldRevision, list.Revision,
		applog.FieldItemCount, len(list.Items))
	return true, nil
}

// RunPeriodic exports on every tick until ctx is done. Failures are logged
// and retried on the next tick.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.InfoContext(ctx, "Periodic export stopped")
			return nil
		case <-ticker.C:
			wrote, err := w.Export(ctx, false)
			if err != nil {
				w.logger.WarnContext(ctx, "Periodic export failed", applog.FieldError, err)
				continue
			}
			if wrote {
				w.logger.InfoContext(ctx, "Periodic export picked up a missed change")
			}
		}
	}
}

func (w *ExportWorker) last() (int64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastRevision, w.exported
}
