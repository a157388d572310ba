package core

import "time"

// Dataset is the ingested table the dashboard currently serves, with
// where it came from. A failed load leaves an empty Table and a Warning.
type Dataset struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Table    Table
	Warning  string
}

// IsEmpty reports a dataset with no purchases.
func (d Dataset) IsEmpty() bool {
	return d.Table.IsEmpty()
}
