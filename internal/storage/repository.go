package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"compras/internal/core"

	_ "modernc.org/sqlite"
)

// ErrNoDataset is returned when nothing has been stored yet.
var ErrNoDataset = errors.New("no active dataset")

// Store keeps the single active dataset of the dashboard session.
type Store struct {
	db      *sql.DB
	queries *Queries
	version uint
}

// NewStore opens dsn, creating the parent directory of file databases,
// and applies migrations.
func NewStore(dsn string) (*Store, error) {
	if dir, ok := fileDir(dsn); ok {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Shared-cache memory databases live as long as one connection does;
	// a single connection also serializes writers.
	db.SetMaxOpenConns(1)
	db.SetConnMaxIdleTime(0)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := migrateUp(dsn)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, queries: New(db), version: version}, nil
}

// SchemaVersion is the schema version applied when the store opened.
func (s *Store) SchemaVersion() uint {
	return s.version
}

// fileDir returns the directory of an on-disk database path.
func fileDir(dsn string) (string, bool) {
	if dsn == "" || strings.HasPrefix(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		return "", false
	}
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	dir := filepath.Dir(path)
	return dir, dir != "."
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ReplaceDataset swaps the stored dataset for ds in one transaction.
func (s *Store) ReplaceDataset(ctx context.Context, ds core.Dataset) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	q := s.queries.WithTx(tx)
	if err = q.DeletePurchases(ctx); err != nil {
		return fmt.Errorf("delete purchases: %w", err)
	}
	if err = q.DeleteDatasets(ctx); err != nil {
		return fmt.Errorf("delete datasets: %w", err)
	}
	if err = q.CreateDataset(ctx, DatasetRow{
		ID:       ds.ID,
		Source:   ds.Source,
		LoadedAt: ds.LoadedAt,
		Warning:  ds.Warning,
		RowCount: int64(ds.Table.Len()),
	}); err != nil {
		return fmt.Errorf("create dataset: %w", err)
	}
	for i, p := range ds.Table.Rows() {
		if err = q.CreatePurchase(ctx, PurchaseRow{
			DatasetID: ds.ID,
			Position:  int64(i),
			Date:      p.Date.String(),
			Platform:  p.Platform,
			Product:   p.Product,
			Category:  p.Category,
			Quantity:  int64(p.Quantity),
			UnitPrice: p.UnitPrice.String(),
		}); err != nil {
			return fmt.Errorf("create purchase %d: %w", i, err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit dataset: %w", err)
	}

	slog.InfoContext(ctx, "Dataset stored",
		"dataset_id", ds.ID,
		"source", ds.Source,
		"rows", ds.Table.Len())
	return nil
}

// ActiveDataset reloads the stored dataset, re-deriving every purchase.
func (s *Store) ActiveDataset(ctx context.Context) (core.Dataset, error) {
	row, err := s.queries.GetActiveDataset(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Dataset{}, ErrNoDataset
	}
	if err != nil {
		return core.Dataset{}, fmt.Errorf("get active dataset: %w", err)
	}

	items, err := s.queries.ListPurchases(ctx, row.ID)
	if err != nil {
		return core.Dataset{}, fmt.Errorf("list purchases: %w", err)
	}
	purchases := make([]core.Purchase, 0, len(items))
	for _, it := range items {
		date, err := core.ParseDate(it.Date)
		if err != nil {
			return core.Dataset{}, fmt.Errorf("stored purchase %d: %w", it.Position, err)
		}
		price, err := decimal.NewFromString(it.UnitPrice)
		if err != nil {
			return core.Dataset{}, fmt.Errorf("stored purchase %d price: %w", it.Position, err)
		}
		purchases = append(purchases, core.NewPurchase(date, it.Platform, it.Product, it.Category, int(it.Quantity), price))
	}

	return core.Dataset{
		ID:       row.ID,
		Source:   row.Source,
		LoadedAt: row.LoadedAt,
		Warning:  row.Warning,
		Table:    core.NewTable(purchases),
	}, nil
}

// Clear removes the stored dataset.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	q := s.queries.WithTx(tx)
	if err := q.DeletePurchases(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete purchases: %w", err)
	}
	if err := q.DeleteDatasets(ctx); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete datasets: %w", err)
	}
	return tx.Commit()
}
