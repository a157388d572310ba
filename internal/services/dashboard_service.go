package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"compras/internal/amqp"
	"compras/internal/backend"
	"compras/internal/charts"
	"compras/internal/core"
	"compras/internal/filter"
	"compras/internal/ingest"
	"compras/internal/insights"
	"compras/internal/log"
	"compras/internal/metrics"
	"compras/internal/storage"
)

// Dataset is the table currently served, with its provenance.
type Dataset = core.Dataset

// DatasetStore persists the active dataset across restarts.
type DatasetStore interface {
	ReplaceDataset(ctx context.Context, ds core.Dataset) error
	ActiveDataset(ctx context.Context) (core.Dataset, error)
}

// AlertPublisher forwards warning and critical statements.
type AlertPublisher interface {
	PublishAlert(ctx context.Context, msg *amqp.AlertMessage) error
}

// Options wires a DashboardService. Store and Publisher are optional.
type Options struct {
	Source    backend.Source
	Loader    *ingest.Loader
	Store     DatasetStore
	Publisher AlertPublisher
	Settings  insights.Settings
	TopN      int
	Logger    *log.Logger
}

// DashboardService holds the active dataset and derives every dashboard
// view from it on demand. Loads swap the dataset atomically; readers see
// either the old or the new table, never a mix.
type DashboardService struct {
	source    backend.Source
	loader    *ingest.Loader
	store     DatasetStore
	publisher AlertPublisher
	engine    *insights.Engine
	chartOpts charts.Options
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time

	mu      sync.RWMutex
	dataset core.Dataset
}

func NewDashboardService(opts Options) *DashboardService {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default(log.ComponentApp)
	}
	settings := opts.Settings
	if settings.Currency == "" {
		settings = insights.DefaultSettings()
	}
	return &DashboardService{
		source:    opts.Source,
		loader:    opts.Loader,
		store:     opts.Store,
		publisher: opts.Publisher,
		engine:    insights.NewEngine(settings),
		chartOpts: charts.Options{
			Currency: settings.Currency,
			Locale:   settings.Locale,
			TopN:     opts.TopN,
		},
		logger: logger,
		events: log.NewStructuredLogger(logger),
		now:    time.Now,
	}
}

// Dataset returns the active dataset.
func (s *DashboardService) Dataset() core.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Settings returns the insight settings in effect.
func (s *DashboardService) Settings() insights.Settings {
	return s.engine.Settings
}

// SourceName names the configured source, empty when none is set.
func (s *DashboardService) SourceName() string {
	if s.source == nil {
		return ""
	}
	return s.source.Name()
}

// Restore installs the dataset saved by a previous run. It reports false
// when the store is absent or empty.
func (s *DashboardService) Restore(ctx context.Context) (bool, error) {
	if s.store == nil {
		return false, nil
	}
	ds, err := s.store.ActiveDataset(ctx)
	if errors.Is(err, storage.ErrNoDataset) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("restore dataset: %w", err)
	}
	s.swap(ds)
	s.logger.InfoContext(ctx, "Dataset restored",
		log.FieldDatasetID, ds.ID,
		log.FieldSource, ds.Source,
		log.FieldRows, ds.Table.Len())
	return true, nil
}

// Reload reads the configured source again. A failed read installs an
// empty dataset carrying the warning and returns the error.
func (s *DashboardService) Reload(ctx context.Context) (core.Dataset, error) {
	if s.source == nil {
		return s.Dataset(), errors.New("no data source configured")
	}
	table, err := s.source.Load(ctx)
	return s.install(ctx, s.source.Name(), table, err)
}

// Upload ingests a user-supplied document named name.
func (s *DashboardService) Upload(ctx context.Context, name string, data []byte) (core.Dataset, error) {
	if s.loader == nil {
		return s.Dataset(), errors.New("uploads are not enabled")
	}
	table, err := s.loader.LoadBytes(ctx, name, data)
	return s.install(ctx, name, table, err)
}

// install builds the dataset for a load outcome and makes it active.
func (s *DashboardService) install(ctx context.Context, source string, table core.Table, loadErr error) (core.Dataset, error) {
	ds := core.Dataset{
		ID:       uuid.NewString(),
		Source:   source,
		LoadedAt: s.now().UTC(),
		Table:    table,
	}
	if loadErr != nil {
		ds.Table = core.NewTable(nil)
		ds.Warning = s.loadWarning(loadErr)
		s.events.LogDatasetRejected(ctx, source, loadErr)
	} else {
		s.events.LogDatasetLoaded(ctx, ds.ID, source, table.Len())
	}

	s.swap(ds)
	s.persist(ctx, ds)
	if loadErr == nil {
		s.publishAlerts(ctx, ds)
	}
	return ds, loadErr
}

func (s *DashboardService) swap(ds core.Dataset) {
	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()
}

func (s *DashboardService) loadWarning(err error) string {
	if s.engine.Settings.Locale == core.LocaleEN {
		return fmt.Sprintf("Could not load the data: %v", err)
	}
	return fmt.Sprintf("No se pudieron cargar los datos: %v", err)
}

// persist saves ds; the in-memory dataset stays authoritative when the
// store fails.
func (s *DashboardService) persist(ctx context.Context, ds core.Dataset) {
	if s.store == nil {
		return
	}
	if err := s.store.ReplaceDataset(ctx, ds); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist dataset",
			log.FieldDatasetID, ds.ID,
			log.FieldError, err)
	}
}

// publishAlerts sends the warning and critical statements of a freshly
// loaded dataset. Publishing never fails the load.
func (s *DashboardService) publishAlerts(ctx context.Context, ds core.Dataset) {
	if s.publisher == nil {
		return
	}
	for _, st := range s.engine.Generate(ds.Table) {
		if st.Severity != insights.SeverityWarning && st.Severity != insights.SeverityCritical {
			continue
		}
		msg := amqp.NewAlertMessage(ds.ID, ds.Source, string(st.Severity), st.Text)
		if err := s.publisher.PublishAlert(ctx, msg); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish alert",
				log.FieldDatasetID, ds.ID,
				log.FieldSeverity, st.Severity,
				log.FieldError, err)
		}
	}
}

// Filtered returns the active table restricted to sel.
func (s *DashboardService) Filtered(sel filter.Selection) core.Table {
	return filter.Apply(s.Dataset().Table, sel)
}

// Options returns the selector choices for the whole dataset.
func (s *DashboardService) Options() filter.Options {
	return filter.OptionsFor(s.Dataset().Table)
}

// Chart builds one chart over the filtered table.
func (s *DashboardService) Chart(kind charts.Kind, sel filter.Selection) (*charts.Chart, error) {
	return charts.Build(kind, s.Filtered(sel), s.chartOpts)
}

// Insights returns the grouped statements for the filtered table.
func (s *DashboardService) Insights(sel filter.Selection) insights.Report {
	return s.engine.Report(s.Filtered(sel))
}

// DatasetInfo describes the active dataset without its rows.
type DatasetInfo struct {
	ID       string    `json:"id,omitempty"`
	Source   string    `json:"source,omitempty"`
	LoadedAt time.Time `json:"loaded_at"`
	Rows     int       `json:"rows"`
	Warning  string    `json:"warning,omitempty"`
}

func infoOf(ds core.Dataset) DatasetInfo {
	return DatasetInfo{
		ID:       ds.ID,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Rows:     ds.Table.Len(),
		Warning:  ds.Warning,
	}
}

// Snapshot is every dashboard view for one selection.
type Snapshot struct {
	Dataset    DatasetInfo      `json:"dataset"`
	Selection  filter.Selection `json:"-"`
	Options    filter.Options   `json:"-"`
	Table      core.Table       `json:"-"`
	Summary    metrics.Summary  `json:"summary"`
	Platforms  []metrics.Group  `json:"platforms"`
	Categories []metrics.Group  `json:"categories"`
	Charts     []*charts.Chart  `json:"charts"`
	Report     insights.Report  `json:"insights"`

	// Empty marks a dataset with no purchases; NoMatches a selection that
	// excluded every row of a non-empty dataset.
	Empty     bool   `json:"empty"`
	NoMatches bool   `json:"no_matches"`
	Message   string `json:"message,omitempty"`
}

// Snapshot recomputes all views for sel from the active dataset.
func (s *DashboardService) Snapshot(sel filter.Selection) Snapshot {
	ds := s.Dataset()
	table := filter.Apply(ds.Table, sel)
	renderer := s.engine.Renderer()

	snap := Snapshot{
		Dataset:    infoOf(ds),
		Selection:  sel,
		Options:    filter.OptionsFor(ds.Table),
		Table:      table,
		Summary:    metrics.Summarize(table),
		Platforms:  metrics.ByPlatform(table),
		Categories: metrics.ByCategory(table),
		Charts:     charts.BuildAll(table, s.chartOpts),
		Report:     s.engine.Report(table),
	}
	switch {
	case ds.IsEmpty():
		snap.Empty = true
		snap.Message = renderer.NoDataMessage()
	case table.IsEmpty():
		snap.NoMatches = true
		snap.Message = renderer.NoMatchesMessage()
	}
	return snap
}
