package ingest

import (
	"strings"
	"testing"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

func weeklyRow(overrides map[string]string) map[string]string {
	row := map[string]string{
		ColMessageName:     "boas-vindas-01",
		ColSubject:         "Bem-vindo!",
		ColListName:        "Lista Principal",
		ColSent:            "1000",
		ColDelivered:       "980",
		ColOpenRate:        "25.5%",
		ColOpened:          "250",
		ColClicked:         "50",
		ColClickRate:       "5.1%",
		ColCTOR:            "20.0%",
		ColBounced:         "20",
		ColBounceRate:      "2.0%",
		ColMarkedAsSpam:    "1",
		ColSpamRate:        "0.1%",
		ColUnsubscribed:    "3",
		ColUnsubscribeRate: "0.3%",
		ColCreatedOn:       "2025-06-30 09:00:00",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

func weeklyTable(rows ...map[string]string) *ports.TableData {
	return &ports.TableData{
		Headers: RequiredWeeklyColumns,
		Rows:    rows,
	}
}

func TestCleanWeekly_ParsesRatesAndCounts(t *testing.T) {
	records, report, err := CleanWeekly(weeklyTable(weeklyRow(nil)), "2025-06-30 a 2025-07-06")
	if err != nil {
		t.Fatalf("CleanWeekly failed: %v", err)
	}
	if report.RowsKept != 1 {
		t.Fatalf("expected 1 row kept, got %d", report.RowsKept)
	}

	rec := records[0]
	if rec.Sent != 1000 || rec.Delivered != 980 || rec.Unsubscribed != 3 {
		t.Errorf("counts parsed wrong: sent=%d delivered=%d unsubscribed=%d", rec.Sent, rec.Delivered, rec.Unsubscribed)
	}
	if rec.OpenRate == nil || *rec.OpenRate != 0.255 {
		t.Errorf("expected open rate 0.255, got %v", rec.OpenRate)
	}
	if rec.Week != "2025-06-30 a 2025-07-06" {
		t.Errorf("week label not attached: %q", rec.Week)
	}
	if rec.CreatedOn.IsZero() {
		t.Error("created on should have parsed")
	}
}

func TestCleanWeekly_BlankRateStaysUnset(t *testing.T) {
	table := weeklyTable(weeklyRow(map[string]string{ColOpenRate: ""}))
	records, _, err := CleanWeekly(table, "w")
	if err != nil {
		t.Fatalf("CleanWeekly failed: %v", err)
	}
	if records[0].OpenRate != nil {
		t.Errorf("blank rate cell should stay unset, got %v", *records[0].OpenRate)
	}
	if records[0].ClickRate == nil {
		t.Error("populated rate cell should parse")
	}
}

func TestCleanWeekly_DropsEmptyAndDeduplicates(t *testing.T) {
	// Scenario: a blank message name, a duplicate and one good row.
	table := weeklyTable(
		weeklyRow(nil),
		weeklyRow(map[string]string{ColMessageName: "  "}),
		weeklyRow(map[string]string{ColSent: "9999"}), // duplicate of row 1
		weeklyRow(map[string]string{ColMessageName: "carrinho-01"}),
	)

	records, report, err := CleanWeekly(table, "w")
	if err != nil {
		t.Fatalf("CleanWeekly failed: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if report.Dropped != 1 || report.Duplicates != 1 {
		t.Errorf("report dropped=%d duplicates=%d, want 1 and 1", report.Dropped, report.Duplicates)
	}
	// Dedup keeps the first occurrence.
	if records[0].Sent != 1000 {
		t.Errorf("duplicate should keep first occurrence, got sent=%d", records[0].Sent)
	}
}

func TestCleanWeekly_NoUsableRows(t *testing.T) {
	table := weeklyTable(weeklyRow(map[string]string{ColMessageName: ""}))
	_, _, err := CleanWeekly(table, "w")
	if err == nil {
		t.Fatal("expected error for a table with no usable rows")
	}
	if errors.CodeOf(err) != "FILE_INVALID" {
		t.Errorf("expected FILE_INVALID, got %s", errors.CodeOf(err))
	}
}

func TestCleanWeekly_MissingColumns(t *testing.T) {
	table := &ports.TableData{
		Headers: []string{ColMessageName, ColSubject},
		Rows:    []map[string]string{{ColMessageName: "x", ColSubject: "y"}},
	}
	_, _, err := CleanWeekly(table, "w")
	if err == nil {
		t.Fatal("expected error for missing columns")
	}
	if errors.CodeOf(err) != "COLUMNS_MISSING" {
		t.Errorf("expected COLUMNS_MISSING, got %s", errors.CodeOf(err))
	}
	// All missing columns are reported at once.
	if !strings.Contains(err.Error(), ColSent) || !strings.Contains(err.Error(), ColCreatedOn) {
		t.Errorf("error should list every missing column: %v", err)
	}
}

func TestCleanWeekly_WarnsOnGarbageCounts(t *testing.T) {
	table := weeklyTable(weeklyRow(map[string]string{ColSent: "n/a"}))
	records, report, err := CleanWeekly(table, "w")
	if err != nil {
		t.Fatalf("CleanWeekly failed: %v", err)
	}
	if records[0].Sent != 0 {
		t.Errorf("garbage count should coerce to 0, got %d", records[0].Sent)
	}
	if len(report.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", report.Warnings)
	}
	if !strings.Contains(report.Warnings[0], ColSent) {
		t.Errorf("warning should name the column: %s", report.Warnings[0])
	}
}

func TestCleanMapping(t *testing.T) {
	table := &ports.TableData{
		Headers: RequiredMappingColumns,
		Rows: []map[string]string{
			{ColMessageName: "boas-vindas-01", ColAutomation: "Boas-vindas"},
			{ColMessageName: "boas-vindas-01", ColAutomation: "Outra"}, // duplicate
			{ColMessageName: "", ColAutomation: "Sem nome"},
			{ColMessageName: "carrinho-01", ColAutomation: ""},
			{ColMessageName: "carrinho-01", ColAutomation: "Carrinho Abandonado"},
		},
	}

	mapping, report, err := CleanMapping(table)
	if err != nil {
		t.Fatalf("CleanMapping failed: %v", err)
	}
	if len(mapping.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(mapping.Entries))
	}
	if report.Dropped != 2 || report.Duplicates != 1 {
		t.Errorf("report dropped=%d duplicates=%d, want 2 and 1", report.Dropped, report.Duplicates)
	}

	idx := mapping.Index()
	if idx[core.MessageName("boas-vindas-01")] != "Boas-vindas" {
		t.Errorf("duplicate should keep first automation, got %q", idx["boas-vindas-01"])
	}
}

func TestParsePercent(t *testing.T) {
	cases := []struct {
		in    string
		want  float64
		unset bool
	}{
		{in: "12.5%", want: 0.125},
		{in: "12,5%", want: 0.125},
		{in: " 100% ", want: 1},
		{in: "0.25", want: 0.25},
		{in: "0,25", want: 0.25},
		{in: "", unset: true},
		{in: "abc", unset: true},
		{in: "n/a%", unset: true},
	}
	for _, c := range cases {
		got := parsePercent(c.in)
		if c.unset {
			if got != nil {
				t.Errorf("parsePercent(%q) = %v, want unset", c.in, *got)
			}
			continue
		}
		if got == nil || *got != c.want {
			t.Errorf("parsePercent(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseCount(t *testing.T) {
	report := &CleanReport{}
	cases := []struct {
		in   string
		want int64
	}{
		{"1234", 1234},
		{"1,234", 1234},
		{"1 234", 1234},
		{"1234.7", 1234},
		{"", 0},
	}
	for _, c := range cases {
		if got := parseCount(c.in, "Sent", 0, report); got != c.want {
			t.Errorf("parseCount(%q) = %d, want %d", c.in, got, c.want)
		}
	}
	if len(report.Warnings) != 0 {
		t.Errorf("no warnings expected for parseable values: %v", report.Warnings)
	}
}

func TestParseTimestampLayouts(t *testing.T) {
	for _, in := range []string{
		"2025-06-30 09:15:00",
		"2025-06-30T09:15:00",
		"2025-06-30",
		"30/06/2025 09:15",
		"30/06/2025",
	} {
		ts, ok := parseTimestamp(in)
		if !ok {
			t.Errorf("parseTimestamp(%q) should succeed", in)
			continue
		}
		if ts.Time().Year() != 2025 {
			t.Errorf("parseTimestamp(%q) parsed wrong year %d", in, ts.Time().Year())
		}
	}
	if _, ok := parseTimestamp("next tuesday"); ok {
		t.Error("garbage timestamp should not parse")
	}
}
