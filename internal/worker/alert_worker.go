package worker

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"compras/internal/amqp"
	"compras/internal/cache"
	"compras/internal/log"
)

// AlertWorker consumes alert notifications raised by dataset loads.
type AlertWorker struct {
	logger *log.Logger
	// seen drops redeliveries of messages already handled.
	seen *cache.LRUCache[time.Time]

	handled    int64
	duplicates int64
	dropped    int64
}

func NewAlertWorker(logger *log.Logger, dedupeSize int) *AlertWorker {
	if logger == nil {
		logger = log.Default(log.ComponentWorker)
	}
	if dedupeSize <= 0 {
		dedupeSize = 1024
	}
	return &AlertWorker{
		logger: logger,
		seen:   cache.NewLRUCache[time.Time](dedupeSize, 24*time.Hour),
	}
}

// HandleAlert logs msg at the level matching its severity. Malformed
// messages are dropped without error so they are not requeued.
func (w *AlertWorker) HandleAlert(ctx context.Context, msg *amqp.AlertMessage) error {
	if err := msg.Validate(); err != nil {
		atomic.AddInt64(&w.dropped, 1)
		w.logger.WarnContext(ctx, "Dropping alert", log.FieldError, err, "id", msg.ID, log.FieldDatasetID, msg.DatasetID)
		return nil
	}
	if _, dup := w.seen.Get(msg.ID); dup {
		atomic.AddInt64(&w.duplicates, 1)
		w.logger.DebugContext(ctx, "Ignoring redelivered alert", "id", msg.ID)
		return nil
	}
	w.seen.Set(msg.ID, msg.Timestamp)

	w.logger.Log(ctx, levelFor(msg.Severity), "Purchase alert received",
		"id", msg.ID,
		log.FieldDatasetID, msg.DatasetID,
		log.FieldSource, msg.Source,
		log.FieldSeverity, msg.Severity,
		"text", msg.Text,
		"raised_at", msg.Timestamp)
	atomic.AddInt64(&w.handled, 1)
	return nil
}

func levelFor(severity string) slog.Level {
	switch severity {
	case "critical":
		return slog.LevelError
	case "warning":
		return slog.LevelWarn
	case "debug":
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// Stats are the worker counters.
type Stats struct {
	Handled    int64
	Duplicates int64
	Dropped    int64
}

func (w *AlertWorker) Stats() Stats {
	return Stats{
		Handled:    atomic.LoadInt64(&w.handled),
		Duplicates: atomic.LoadInt64(&w.duplicates),
		Dropped:    atomic.LoadInt64(&w.dropped),
	}
}
