package backend

import (
	"context"
	"fmt"
	"path/filepath"

	"compras/internal/core"
	"compras/internal/ingest"
	"compras/internal/log"
	"compras/internal/sheets"
	gsheet "compras/internal/sheets/google"
	"compras/internal/sheets/memory"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	loader *ingest.Loader
	logger *log.Logger

	// newSheets builds the Sheets reader; replaced in tests.
	newSheets func(ctx context.Context, cfg gsheet.Config) (sheets.RowReader, error)
}

// NewFactory creates a source factory. File sources parse through loader
// so repeated loads share its memo.
func NewFactory(loader *ingest.Loader, logger *log.Logger) *DefaultFactory {
	if logger == nil {
		logger = log.Default(log.ComponentSource)
	}
	return &DefaultFactory{
		loader: loader,
		logger: logger,
		newSheets: func(ctx context.Context, cfg gsheet.Config) (sheets.RowReader, error) {
			return gsheet.New(ctx, cfg)
		},
	}
}

var _ Factory = (*DefaultFactory)(nil)

// CreateSource implements Factory.CreateSource
func (f *DefaultFactory) CreateSource(ctx context.Context, config Config) (Source, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileSource:
		return f.createFileSource(config)
	case SheetsSource:
		return f.createSheetsSource(ctx, config)
	case MemorySource:
		return f.createMemorySource(config), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileSource(config Config) (Source, error) {
	if f.loader == nil {
		return nil, fmt.Errorf("file source requires a loader")
	}
	f.logger.Info("Initialized file source", "path", config.DataFile)
	return &fileSource{path: config.DataFile, loader: f.loader}, nil
}

func (f *DefaultFactory) createSheetsSource(ctx context.Context, config Config) (Source, error) {
	cfg := gsheet.Config{
		SpreadsheetID:   config.GoogleSpreadsheetID,
		SheetName:       config.GoogleSheetName,
		CredentialsFile: config.GoogleServiceAccountFile,
		CredentialsJSON: config.GoogleServiceAccountJSON,
	}
	reader, err := f.newSheets(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}

	name := fmt.Sprintf("sheets:%s/%s", config.GoogleSpreadsheetID, config.GoogleSheetName)
	f.logger.Info("Initialized Google Sheets source", log.FieldSource, name)
	return &rowSource{name: name, reader: reader}, nil
}

func (f *DefaultFactory) createMemorySource(config Config) Source {
	dataDir := config.DataDirectory
	if dataDir == "" {
		dataDir = "data"
	}
	store := memory.NewFromFiles(dataDir)

	f.logger.Info("Initialized memory source", "data_directory", dataDir)
	return &rowSource{name: "memory:" + filepath.Join(dataDir, memory.SeedFile), reader: store}
}

type fileSource struct {
	path   string
	loader *ingest.Loader
}

func (s *fileSource) Name() string { return s.path }

// Load always reads the file as it is now. The memo still serves
// concurrent loads of the same path.
func (s *fileSource) Load(ctx context.Context) (core.Table, error) {
	s.loader.Invalidate(s.path)
	return s.loader.LoadFile(ctx, s.path)
}

// rowSource decodes any row reader with the shared column decoder.
type rowSource struct {
	name   string
	reader sheets.RowReader
}

func (s *rowSource) Name() string { return s.name }

func (s *rowSource) Load(ctx context.Context) (core.Table, error) {
	header, rows, err := s.reader.ReadRows(ctx)
	if err != nil {
		return core.Table{}, fmt.Errorf("read %s: %w", s.name, err)
	}
	return ingest.ParseRows(header, rows)
}
