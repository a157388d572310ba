package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"compras/internal/amqp"
	"compras/internal/charts"
	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/ingest"
	"compras/internal/insights"
	"compras/internal/storage"
)

type stubSource struct {
	table core.Table
	err   error
}

func (s *stubSource) Name() string { return "stub.json" }

func (s *stubSource) Load(context.Context) (core.Table, error) {
	return s.table, s.err
}

type memStore struct {
	mu    sync.Mutex
	saved *core.Dataset
	err   error
}

func (m *memStore) ReplaceDataset(_ context.Context, ds core.Dataset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.saved = &ds
	return nil
}

func (m *memStore) ActiveDataset(context.Context) (core.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		return core.Dataset{}, storage.ErrNoDataset
	}
	return *m.saved, nil
}

type recordingPublisher struct {
	msgs []*amqp.AlertMessage
	err  error
}

func (p *recordingPublisher) PublishAlert(_ context.Context, msg *amqp.AlertMessage) error {
	p.msgs = append(p.msgs, msg)
	return p.err
}

func purchase(date, platform, product, category string, qty int, price string) core.Purchase {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.NewPurchase(d, platform, product, category, qty, decimal.RequireFromString(price))
}

func sampleTable() core.Table {
	return core.NewTable([]core.Purchase{
		purchase("2024-01-10", "Amazon", "Cable USB", "Electrónica", 1, "5"),
		purchase("2024-02-12", "Temu", "Cable USB", "Electrónica", 2, "3"),
		purchase("2024-03-15", "Amazon", "Cable USB", "Electrónica", 1, "5"),
		purchase("2024-03-20", "Shein", "Vestido", "Ropa", 1, "25.50"),
	})
}

func newService(t *testing.T, src *stubSource, store *memStore, pub *recordingPublisher) *DashboardService {
	t.Helper()
	loader, err := ingest.NewLoader(ingest.LoaderConfig{})
	if err != nil {
		t.Fatalf("NewLoader: %v", err)
	}
	t.Cleanup(func() { _ = loader.Close() })
	opts := Options{Source: src, Loader: loader, TopN: 5}
	if store != nil {
		opts.Store = store
	}
	if pub != nil {
		opts.Publisher = pub
	}
	return NewDashboardService(opts)
}

func TestReloadInstallsPersistsAndPublishes(t *testing.T) {
	store := &memStore{}
	pub := &recordingPublisher{}
	svc := newService(t, &stubSource{table: sampleTable()}, store, pub)

	ds, err := svc.Reload(context.Background())
	if err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if ds.ID == "" || ds.Source != "stub.json" || ds.Table.Len() != 4 || ds.Warning != "" {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if got := svc.Dataset(); got.ID != ds.ID {
		t.Fatalf("dataset not active: %s != %s", got.ID, ds.ID)
	}
	if store.saved == nil || store.saved.ID != ds.ID {
		t.Fatal("dataset not persisted")
	}

	if len(pub.msgs) == 0 {
		t.Fatal("expected the repeated product alert to be published")
	}
	found := false
	for _, m := range pub.msgs {
		if m.Severity != string(insights.SeverityWarning) && m.Severity != string(insights.SeverityCritical) {
			t.Fatalf("published non-alert severity %q", m.Severity)
		}
		if m.DatasetID != ds.ID || m.Source != "stub.json" {
			t.Fatalf("alert not tied to dataset: %+v", m)
		}
		if strings.Contains(m.Text, "Cable USB") {
			found = true
		}
	}
	if !found {
		t.Fatalf("repeated product alert missing: %+v", pub.msgs)
	}
}

func TestReloadFailureInstallsEmptyDatasetWithWarning(t *testing.T) {
	store := &memStore{}
	pub := &recordingPublisher{}
	svc := newService(t, &stubSource{err: errors.New("open compras.json: no such file")}, store, pub)

	ds, err := svc.Reload(context.Background())
	if err == nil {
		t.Fatal("expected load error")
	}
	if !ds.IsEmpty() || !strings.Contains(ds.Warning, "no such file") {
		t.Fatalf("unexpected dataset %+v", ds)
	}
	if len(pub.msgs) != 0 {
		t.Fatalf("failed load must not publish, got %d", len(pub.msgs))
	}

	snap := svc.Snapshot(filter.Selection{})
	if !snap.Empty || snap.Dataset.Warning == "" || snap.Message == "" {
		t.Fatalf("snapshot should degrade: %+v", snap)
	}
	if len(snap.Charts) != 0 || snap.Summary.Count != 0 {
		t.Fatalf("empty dataset produced views: %+v", snap)
	}
}

func TestPersistAndPublishFailuresDoNotFailLoad(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	pub := &recordingPublisher{err: errors.New("circuit breaker is open")}
	svc := newService(t, &stubSource{table: sampleTable()}, store, pub)

	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload should succeed: %v", err)
	}
	if svc.Dataset().Table.Len() != 4 {
		t.Fatal("dataset not installed")
	}
}

func TestUpload(t *testing.T) {
	svc := newService(t, &stubSource{}, nil, nil)
	csv := "fecha,plataforma,producto,categoria,cantidad,precio\n2024-04-01,Amazon,Libro,Libros,2,12.5\n"

	ds, err := svc.Upload(context.Background(), "compras.csv", []byte(csv))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if ds.Source != "compras.csv" || ds.Table.Len() != 1 {
		t.Fatalf("unexpected dataset %+v", ds)
	}

	ds, err = svc.Upload(context.Background(), "notes.pdf", []byte("%PDF"))
	if !errors.Is(err, ingest.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !ds.IsEmpty() || ds.Warning == "" {
		t.Fatalf("bad upload should leave an empty dataset with a warning: %+v", ds)
	}
}

func TestRestore(t *testing.T) {
	store := &memStore{}
	svc := newService(t, &stubSource{}, store, nil)
	if ok, err := svc.Restore(context.Background()); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	saved := core.Dataset{ID: "saved", Source: "old.csv", Table: sampleTable()}
	store.saved = &saved
	ok, err := svc.Restore(context.Background())
	if !ok || err != nil {
		t.Fatalf("Restore: ok=%v err=%v", ok, err)
	}
	if svc.Dataset().ID != "saved" {
		t.Fatalf("restored dataset not active")
	}

	noStore := newService(t, &stubSource{}, nil, nil)
	if ok, err := noStore.Restore(context.Background()); ok || err != nil {
		t.Fatalf("nil store: ok=%v err=%v", ok, err)
	}
}

func TestSnapshot(t *testing.T) {
	svc := newService(t, &stubSource{table: sampleTable()}, nil, nil)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	all := svc.Snapshot(filter.Selection{})
	if all.Empty || all.NoMatches || all.Message != "" {
		t.Fatalf("unexpected flags %+v", all)
	}
	if all.Summary.Count != 4 || !all.Summary.Total.Equal(decimal.RequireFromString("41.5")) {
		t.Fatalf("summary: count=%d total=%s", all.Summary.Count, all.Summary.Total)
	}
	if len(all.Platforms) != 3 || len(all.Categories) != 2 {
		t.Fatalf("groups: %d platforms, %d categories", len(all.Platforms), len(all.Categories))
	}
	if len(all.Charts) != len(charts.Kinds) {
		t.Fatalf("expected %d charts, got %d", len(charts.Kinds), len(all.Charts))
	}
	if len(all.Options.Platforms) != 4 || all.Options.Platforms[0] != filter.All {
		t.Fatalf("options: %v", all.Options.Platforms)
	}

	amazon := svc.Snapshot(filter.Selection{Platform: "Amazon"})
	if amazon.Summary.Count != 2 || amazon.Table.Len() != 2 {
		t.Fatalf("filtered count = %d", amazon.Summary.Count)
	}
	// Options always describe the whole dataset.
	if len(amazon.Options.Platforms) != 4 {
		t.Fatalf("options narrowed by filter: %v", amazon.Options.Platforms)
	}

	none := svc.Snapshot(filter.Selection{Platform: "eBay"})
	if !none.NoMatches || none.Message == "" || len(none.Charts) != 0 {
		t.Fatalf("expected no-match snapshot, got %+v", none)
	}
}

func TestChartAndInsights(t *testing.T) {
	svc := newService(t, &stubSource{table: sampleTable()}, nil, nil)
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	c, err := svc.Chart(charts.KindTop, filter.Selection{})
	if err != nil || c == nil {
		t.Fatalf("Chart: %v %v", c, err)
	}
	if _, err := svc.Chart(charts.Kind("radar"), filter.Selection{}); !errors.Is(err, charts.ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}

	rep := svc.Insights(filter.Selection{})
	if len(rep.Alerts) == 0 || rep.Patterns.Purchases != 4 {
		t.Fatalf("unexpected report %+v", rep)
	}
}
