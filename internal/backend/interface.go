package backend

import (
	"context"

	"compras/internal/core"
)

// Source produces the purchase table the dashboard loads.
type Source interface {
	// Name identifies the source in logs and dataset metadata.
	Name() string
	Load(ctx context.Context) (core.Table, error)
}

// Factory creates sources based on configuration
type Factory interface {
	CreateSource(ctx context.Context, config Config) (Source, error)
}

// Config holds configuration for source creation
type Config struct {
	Type SourceType

	// File specific
	DataFile string

	// Google Sheets specific
	GoogleSpreadsheetID      string
	GoogleSheetName          string
	GoogleServiceAccountFile string
	GoogleServiceAccountJSON string

	// Memory source seed directory
	DataDirectory string
}

// SourceType represents the type of source
type SourceType string

const (
	FileSource   SourceType = "file"
	SheetsSource SourceType = "sheets"
	MemorySource SourceType = "memory"
)

// String implements fmt.Stringer
func (st SourceType) String() string {
	return string(st)
}

// IsValid returns true if the source type is valid
func (st SourceType) IsValid() bool {
	switch st {
	case FileSource, SheetsSource, MemorySource:
		return true
	default:
		return false
	}
}
