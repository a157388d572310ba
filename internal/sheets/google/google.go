package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"compras/internal/log"
	ports "compras/internal/sheets"
)

// DefaultSheetName is the tab read when none is configured.
const DefaultSheetName = "Compras"

// readColumns bounds the values range; purchase sheets use six columns
// plus whatever derived columns an export carried.
const readColumns = "A:Z"

// Client reads purchase rows from one tab of a spreadsheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
}

var _ ports.RowReader = (*Client)(nil)

// Config selects the spreadsheet and tab. Empty credentials fall back to
// the environment, see newSheetsService.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// NewFromEnv creates a client from GOOGLE_SPREADSHEET_ID and
// GOOGLE_SHEET_NAME (default "Compras").
func NewFromEnv(ctx context.Context) (*Client, error) {
	return New(ctx, Config{
		SpreadsheetID: os.Getenv("GOOGLE_SPREADSHEET_ID"),
		SheetName:     os.Getenv("GOOGLE_SHEET_NAME"),
	})
}

// New creates a read-only Sheets client for cfg.
func New(ctx context.Context, cfg Config) (*Client, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	return &Client{
		svc:           svc,
		spreadsheetID: cfg.SpreadsheetID,
		sheetName:     cfg.SheetName,
		logger:        log.Default(log.ComponentSheets),
	}
}

func (cfg Config) normalize() (Config, error) {
	cfg.SpreadsheetID = strings.TrimSpace(cfg.SpreadsheetID)
	cfg.SheetName = strings.TrimSpace(cfg.SheetName)
	if cfg.SpreadsheetID == "" {
		return cfg, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	return cfg, nil
}

// Name identifies the source in logs and dataset metadata.
func (c *Client) Name() string {
	return fmt.Sprintf("sheets:%s/%s", c.spreadsheetID, c.sheetName)
}

// newSheetsService initializes a read-only Sheets service using Service
// Account credentials from cfg, or else GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	logger := log.Default(log.ComponentSheets)
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountJSON = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	}
	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	switch {
	case serviceAccountJSON != "":
		logger.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		logger.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		b, err := os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsReadonlyScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	logger.InfoContext(ctx, "Google Sheets service created")
	return service, nil
}

// ReadRows fetches the configured tab. Cells are read with their
// formatted value so dates arrive as the user typed them.
func (c *Client) ReadRows(ctx context.Context) ([]string, [][]string, error) {
	if c.svc == nil {
		return nil, nil, errors.New("sheets service not initialized")
	}
	rng := sheetRange(c.sheetName, readColumns)
	start := time.Now()
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).Do()
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", rng, err)
	}
	header, rows := splitValues(resp.Values)
	if header == nil {
		return nil, nil, fmt.Errorf("read %s: sheet has no header row", rng)
	}
	c.logger.InfoContext(ctx, "Read purchase sheet",
		log.FieldSource, c.Name(),
		log.FieldRows, len(rows),
		log.FieldDuration, time.Since(start).Milliseconds())
	return header, rows, nil
}
