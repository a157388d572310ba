package sheets

import "context"

// RowReader returns a purchase sheet as a header row plus data rows, the
// shape ingest.ParseRows decodes.
type RowReader interface {
	ReadRows(ctx context.Context) (header []string, rows [][]string, err error)
}
