package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"compras/internal/config"
	"compras/internal/core"
	"compras/internal/export"
	"compras/internal/filter"
	"compras/internal/ingest"
	"compras/internal/insights"
	"compras/internal/log"
	"compras/internal/report"
)

func main() {
	var (
		file      = flag.String("file", "", "purchase file to analyse (.json, .csv or .xlsx); defaults to DATA_FILE")
		platform  = flag.String("platform", "", "only purchases from this platform")
		category  = flag.String("category", "", "only purchases in this category")
		start     = flag.String("start", "", "first day of the range (YYYY-MM-DD)")
		end       = flag.String("end", "", "last day of the range (YYYY-MM-DD)")
		out       = flag.String("export", "", "also write the filtered rows to this .csv or .xlsx file")
		locale    = flag.String("locale", "", "report language, es or en")
		currency  = flag.String("currency", "", "currency symbol")
		overrides = flag.String("insights", "", "YAML file with insight threshold overrides")
		logLevel  = flag.String("log-level", "warn", "log level")
	)
	flag.Parse()

	logCfg := log.DefaultConfig()
	logCfg.Level = parseLevel(*logLevel)
	logCfg.Output = os.Stderr
	logger := log.New(logCfg)
	log.SetDefault(logger)

	cfg := config.Load()
	path := *file
	if path == "" {
		path = cfg.DataFile
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "no input: pass -file or set DATA_FILE")
		os.Exit(2)
	}

	settings, err := reportSettings(cfg, *locale, *currency, *overrides)
	if err != nil {
		fmt.Fprintf(os.Stderr, "insight settings: %v\n", err)
		os.Exit(1)
	}

	q := url.Values{}
	q.Set("platform", *platform)
	q.Set("category", *category)
	q.Set("start", *start)
	q.Set("end", *end)
	sel, invalid := filter.ParseSelection(q)
	if len(invalid) > 0 {
		fmt.Fprintf(os.Stderr, "invalid date for %s, expected YYYY-MM-DD\n", strings.Join(invalid, ", "))
		os.Exit(2)
	}

	loader, err := ingest.NewLoader(ingest.LoaderConfig{CacheSize: 1, Logger: logger.WithComponent(log.ComponentIngest)})
	if err != nil {
		fmt.Fprintf(os.Stderr, "loader: %v\n", err)
		os.Exit(1)
	}
	defer loader.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	table, err := loader.LoadFile(ctx, path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load %s: %v\n", path, err)
		os.Exit(1)
	}
	filtered := filter.Apply(table, sel)

	if err := report.Write(os.Stdout, report.Input{
		Source:    filepath.Base(path),
		Selection: sel,
		Table:     filtered,
		Settings:  settings,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "write report: %v\n", err)
		os.Exit(1)
	}

	if *out != "" {
		if err := writeExport(*out, filtered, settings.Locale); err != nil {
			fmt.Fprintf(os.Stderr, "export: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "exported %d rows to %s\n", filtered.Len(), *out)
	}
}

func parseLevel(s string) slog.Level {
	lvl, err := log.ParseLevel(s)
	if err != nil {
		return slog.LevelWarn
	}
	return lvl
}

// reportSettings layers flags over the environment configuration.
func reportSettings(cfg *config.Config, locale, currency, overrides string) (insights.Settings, error) {
	settings := insights.DefaultSettings()
	settings.Currency = cfg.CurrencySymbol
	settings.Locale = cfg.ResolvedLocale()
	if currency != "" {
		settings.Currency = currency
	}
	if locale != "" {
		l, ok := core.ParseLocale(locale)
		if !ok {
			return settings, fmt.Errorf("unknown locale %q", locale)
		}
		settings.Locale = l
	}
	if overrides == "" {
		overrides = cfg.InsightsFile
	}
	if overrides != "" {
		return insights.LoadSettings(overrides, settings)
	}
	return settings, nil
}

func writeExport(path string, t core.Table, locale core.Locale) error {
	var buf bytes.Buffer
	var err error
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		err = export.WriteCSV(&buf, t, locale)
	case ".xlsx":
		err = export.WriteXLSX(&buf, t, locale)
	default:
		return fmt.Errorf("unsupported export format %q, use .csv or .xlsx", filepath.Ext(path))
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
