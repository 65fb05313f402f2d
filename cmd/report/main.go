// Command report runs the ingest and aggregation pipeline offline: it
// loads a mapping plus weekly exports, persists the snapshots and
// prints the aggregated tables, optionally writing an XLSX workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Manuqueiroz1/relatorio-email/adapters/history"
	"github.com/Manuqueiroz1/relatorio-email/adapters/tabular"
	"github.com/Manuqueiroz1/relatorio-email/internal/exporter"
	"github.com/Manuqueiroz1/relatorio-email/internal/ingest"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
)

func main() {
	dataDir := flag.String("data", "data", "history snapshot directory")
	mappingPath := flag.String("mapping", "", "automation mapping file (.csv or .xlsx)")
	minEmails := flag.Int64("min-emails", 100, "minimum sent volume for automation tables")
	xlsxOut := flag.String("xlsx", "", "write the aggregated tables to this XLSX file")
	flag.Parse()

	weeklyFiles := flag.Args()
	if *mappingPath == "" && len(weeklyFiles) == 0 {
		fmt.Fprintln(os.Stderr, "usage: report [-data DIR] [-mapping FILE] [-xlsx OUT] weekly1.csv [weekly2.csv ...]")
		os.Exit(2)
	}

	ctx := context.Background()
	store, err := history.NewFileStore(*dataDir)
	if err != nil {
		fail("opening history store: %v", err)
	}
	processor := report.NewProcessor(store)
	if _, err := processor.LoadSaved(ctx); err != nil {
		fail("restoring history: %v", err)
	}

	if *mappingPath != "" {
		if err := loadMapping(ctx, processor, *mappingPath); err != nil {
			fail("loading mapping: %v", err)
		}
	}

	for _, path := range weeklyFiles {
		if err := loadWeekly(ctx, processor, path); err != nil {
			fail("loading %s: %v", path, err)
		}
	}

	if !processor.HasData() {
		fail("no weekly data available; pass at least one weekly export")
	}

	printSummary(processor, *minEmails)

	if *xlsxOut != "" {
		wb, err := exporter.BuildWorkbook(processor, *minEmails)
		if err != nil {
			fail("building workbook: %v", err)
		}
		f, err := os.Create(*xlsxOut)
		if err != nil {
			fail("creating %s: %v", *xlsxOut, err)
		}
		defer f.Close()
		if err := wb.WriteTo(f); err != nil {
			fail("writing %s: %v", *xlsxOut, err)
		}
		fmt.Printf("\nWorkbook written to %s\n", *xlsxOut)
	}
}

func loadMapping(ctx context.Context, processor *report.Processor, path string) error {
	table, err := tabular.NewDataReader(path).ReadData()
	if err != nil {
		return err
	}
	if err := ingest.ValidateColumns(table, ingest.RequiredMappingColumns); err != nil {
		return err
	}
	mapping, cleanReport, err := ingest.CleanMapping(table)
	if err != nil {
		return err
	}
	for _, warning := range cleanReport.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}
	if err := processor.SetMapping(ctx, mapping); err != nil {
		return err
	}
	fmt.Printf("Mapping loaded: %d entries\n", len(mapping.Entries))
	return nil
}

func loadWeekly(ctx context.Context, processor *report.Processor, path string) error {
	table, err := tabular.NewDataReader(path).ReadData()
	if err != nil {
		return err
	}
	if err := ingest.ValidateColumns(table, ingest.RequiredWeeklyColumns); err != nil {
		return err
	}
	week := ingest.WeekLabelFromFilename(filepath.Base(path), time.Now())
	records, cleanReport, err := ingest.CleanWeekly(table, week)
	if err != nil {
		return err
	}
	for _, warning := range cleanReport.Warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}
	if err := processor.AddWeek(ctx, week, records); err != nil {
		return err
	}
	fmt.Printf("Week %q loaded: %d rows kept, %d dropped\n", week, cleanReport.RowsKept, cleanReport.Dropped)
	return nil
}

func printSummary(processor *report.Processor, minEmails int64) {
	summaries, err := processor.AllWeekSummaries()
	if err != nil {
		fail("aggregating weeks: %v", err)
	}

	fmt.Println("\nWeekly summary:")
	fmt.Printf("%-28s %10s %10s %8s %8s %8s\n", "Week", "Sent", "Delivered", "Open%", "Click%", "CTOR%")
	for _, s := range summaries {
		fmt.Printf("%-28s %10d %10d %7.1f%% %7.1f%% %7.1f%%\n",
			s.Week, s.Sent, s.Delivered, s.Open*100, s.Click*100, s.CTOR*100)
	}

	perf, err := processor.AutomationPerformance(minEmails)
	if err != nil {
		fmt.Fprintln(os.Stderr, "automation tables skipped:", err)
		return
	}
	fmt.Println("\nAutomations:")
	fmt.Printf("%-32s %10s %8s %8s %8s\n", "Automation", "Sent", "Open%", "Click%", "CTOR%")
	for _, a := range perf {
		fmt.Printf("%-32s %10d %7.1f%% %7.1f%% %7.1f%%\n",
			a.Automation, a.Sent, a.Open*100, a.Click*100, a.CTOR*100)
	}
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
