package worker

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"compras/internal/amqp"
	"compras/internal/log"
)

func newTestWorker(buf *bytes.Buffer) *AlertWorker {
	logger := log.New(log.Config{Level: slog.LevelDebug, Output: buf, Component: log.ComponentWorker})
	return NewAlertWorker(logger, 8)
}

func TestHandleAlertLevels(t *testing.T) {
	cases := []struct {
		severity string
		level    string
	}{
		{"critical", "level=ERROR"},
		{"warning", "level=WARN"},
		{"info", "level=INFO"},
		{"", "level=INFO"},
	}
	for _, tc := range cases {
		t.Run(tc.severity, func(t *testing.T) {
			var buf bytes.Buffer
			w := newTestWorker(&buf)
			msg := amqp.NewAlertMessage("ds-1", "compras.json", tc.severity, "🚨 gasto elevado")
			if err := w.HandleAlert(context.Background(), msg); err != nil {
				t.Fatalf("HandleAlert: %v", err)
			}
			if !strings.Contains(buf.String(), tc.level) {
				t.Fatalf("expected %s in %q", tc.level, buf.String())
			}
			if !strings.Contains(buf.String(), "dataset_id=ds-1") {
				t.Fatalf("dataset id not logged: %q", buf.String())
			}
		})
	}
}

func TestHandleAlertDedupesAndDrops(t *testing.T) {
	var buf bytes.Buffer
	w := newTestWorker(&buf)
	ctx := context.Background()

	msg := amqp.NewAlertMessage("ds-1", "compras.json", "warning", "repetido")
	for i := 0; i < 3; i++ {
		if err := w.HandleAlert(ctx, msg); err != nil {
			t.Fatalf("HandleAlert: %v", err)
		}
	}
	if err := w.HandleAlert(ctx, &amqp.AlertMessage{ID: "x"}); err != nil {
		t.Fatalf("malformed alert should not error: %v", err)
	}

	st := w.Stats()
	if st.Handled != 1 || st.Duplicates != 2 || st.Dropped != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
