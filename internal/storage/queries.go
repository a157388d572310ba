package storage

import (
	"context"
	"database/sql"
	"time"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type Queries struct {
	db DBTX
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type DatasetRow struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Warning  string
	RowCount int64
}

type PurchaseRow struct {
	DatasetID string
	Position  int64
	Date      string
	Platform  string
	Product   string
	Category  string
	Quantity  int64
	UnitPrice string
}

const deletePurchases = `DELETE FROM purchases`

func (q *Queries) DeletePurchases(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deletePurchases)
	return err
}

const deleteDatasets = `DELETE FROM datasets`

func (q *Queries) DeleteDatasets(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteDatasets)
	return err
}

const createDataset = `INSERT INTO datasets (id, source, loaded_at, warning, row_count)
VALUES (?, ?, ?, ?, ?)`

func (q *Queries) CreateDataset(ctx context.Context, arg DatasetRow) error {
	_, err := q.db.ExecContext(ctx, createDataset,
		arg.ID, arg.Source, arg.LoadedAt.UTC(), arg.Warning, arg.RowCount)
	return err
}

const createPurchase = `INSERT INTO purchases
    (dataset_id, position, date, platform, product, category, quantity, unit_price)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreatePurchase(ctx context.Context, arg PurchaseRow) error {
	_, err := q.db.ExecContext(ctx, createPurchase,
		arg.DatasetID, arg.Position, arg.Date, arg.Platform,
		arg.Product, arg.Category, arg.Quantity, arg.UnitPrice)
	return err
}

const getActiveDataset = `SELECT id, source, loaded_at, warning, row_count
FROM datasets
ORDER BY loaded_at DESC
LIMIT 1`

func (q *Queries) GetActiveDataset(ctx context.Context) (DatasetRow, error) {
	row := q.db.QueryRowContext(ctx, getActiveDataset)
	var i DatasetRow
	err := row.Scan(&i.ID, &i.Source, &i.LoadedAt, &i.Warning, &i.RowCount)
	return i, err
}

const listPurchases = `SELECT dataset_id, position, date, platform, product, category, quantity, unit_price
FROM purchases
WHERE dataset_id = ?
ORDER BY position`

func (q *Queries) ListPurchases(ctx context.Context, datasetID string) ([]PurchaseRow, error) {
	rows, err := q.db.QueryContext(ctx, listPurchases, datasetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PurchaseRow
	for rows.Next() {
		var i PurchaseRow
		if err := rows.Scan(
			&i.DatasetID,
			&i.Position,
			&i.Date,
			&i.Platform,
			&i.Product,
			&i.Category,
			&i.Quantity,
			&i.UnitPrice,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
