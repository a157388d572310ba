package memory

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"sync"

	ports "compras/internal/sheets"
)

// SeedFile is the CSV read by NewFromFiles.
const SeedFile = "seed_purchases.csv"

var defaultHeader = []string{"fecha", "plataforma", "producto", "categoria", "cantidad", "precio"}

var defaultRows = [][]string{
	{"2024-01-08", "Amazon", "Audífonos inalámbricos", "Electrónica", "1", "59.99"},
	{"2024-01-20", "Mercado Libre", "Funda para laptop", "Accesorios", "1", "18.50"},
	{"2024-02-03", "Shein", "Chaqueta", "Ropa", "1", "32.00"},
	{"2024-02-17", "Temu", "Organizador de cajones", "Hogar", "3", "4.75"},
	{"2024-03-09", "Amazon", "Libro de cocina", "Libros", "2", "15.90"},
	{"2024-03-30", "AliExpress", "Cable USB-C", "Electrónica", "4", "2.99"},
}

// Store is an in-process row source, seeded from a CSV file or a small
// demo sheet.
type Store struct {
	mu     sync.Mutex
	header []string
	rows   [][]string
}

var _ ports.RowReader = (*Store)(nil)

func New(header []string, rows [][]string) *Store {
	s := &Store{}
	s.Set(header, rows)
	return s
}

// NewFromFiles seeds the store from base/seed_purchases.csv, falling back
// to the demo rows when the file is missing or unreadable.
func NewFromFiles(base string) *Store {
	header, rows := readCSV(filepath.Join(base, SeedFile))
	if header == nil {
		return New(defaultHeader, defaultRows)
	}
	return New(header, rows)
}

// Set replaces the stored sheet.
func (s *Store) Set(header []string, rows [][]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.header = append([]string(nil), header...)
	s.rows = copyRows(rows)
}

// ReadRows returns copies of the stored header and rows.
func (s *Store) ReadRows(_ context.Context) ([]string, [][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.header...), copyRows(s.rows), nil
}

func copyRows(in [][]string) [][]string {
	out := make([][]string, len(in))
	for i, r := range in {
		out[i] = append([]string(nil), r...)
	}
	return out
}

func readCSV(path string) ([]string, [][]string) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.Comment = '#'
	records, err := r.ReadAll()
	if err != nil || len(records) == 0 {
		return nil, nil
	}
	return records[0], records[1:]
}
