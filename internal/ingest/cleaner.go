// Package ingest validates and cleans uploaded tables into domain
// records: percentages become fractions, counts become integers, dates
// become timestamps, malformed rows are dropped and duplicates removed.
package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// CleanReport summarizes what the cleaner did to a table.
type CleanReport struct {
	RowsIn     int      `json:"rows_in"`
	RowsKept   int      `json:"rows_kept"`
	Dropped    int      `json:"dropped"`
	Duplicates int      `json:"duplicates"`
	Warnings   []string `json:"warnings,omitempty"`
}

// timestampLayouts are tried in order when parsing "Created on" cells.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// CleanWeekly converts a validated weekly table into domain records.
// Rows without a message name are dropped; duplicated message names
// within the week keep the first occurrence.
func CleanWeekly(table *ports.TableData, week core.WeekLabel) ([]email.Record, *CleanReport, error) {
	if err := ValidateColumns(table, RequiredWeeklyColumns); err != nil {
		return nil, nil, err
	}

	report := &CleanReport{RowsIn: len(table.Rows)}
	seen := make(map[core.MessageName]bool, len(table.Rows))
	records := make([]email.Record, 0, len(table.Rows))

	for i, row := range table.Rows {
		name := core.MessageName(strings.TrimSpace(row[ColMessageName]))
		if name == "" {
			report.Dropped++
			continue
		}
		if seen[name] {
			report.Duplicates++
			continue
		}
		seen[name] = true

		rec := email.Record{
			MessageName: name,
			Subject:     row[ColSubject],
			ListName:    row[ColListName],
			Week:        week,
		}

		rec.Sent = parseCount(row[ColSent], ColSent, i, report)
		rec.Delivered = parseCount(row[ColDelivered], ColDelivered, i, report)
		rec.Opened = parseCount(row[ColOpened], ColOpened, i, report)
		rec.Clicked = parseCount(row[ColClicked], ColClicked, i, report)
		rec.Bounced = parseCount(row[ColBounced], ColBounced, i, report)
		rec.MarkedAsSpam = parseCount(row[ColMarkedAsSpam], ColMarkedAsSpam, i, report)
		rec.Unsubscribed = parseCount(row[ColUnsubscribed], ColUnsubscribed, i, report)

		rec.OpenRate = parsePercent(row[ColOpenRate])
		rec.ClickRate = parsePercent(row[ColClickRate])
		rec.CTOR = parsePercent(row[ColCTOR])
		rec.BounceRate = parsePercent(row[ColBounceRate])
		rec.SpamRate = parsePercent(row[ColSpamRate])
		rec.UnsubscribeRate = parsePercent(row[ColUnsubscribeRate])

		if ts, ok := parseTimestamp(row[ColCreatedOn]); ok {
			rec.CreatedOn = ts
		}

		records = append(records, rec)
	}

	report.RowsKept = len(records)
	if len(records) == 0 {
		return nil, report, errors.FileInvalid("no usable rows after cleaning")
	}
	return records, report, nil
}

// CleanMapping converts a validated mapping table into the domain type.
func CleanMapping(table *ports.TableData) (*email.Mapping, *CleanReport, error) {
	if err := ValidateColumns(table, RequiredMappingColumns); err != nil {
		return nil, nil, err
	}

	report := &CleanReport{RowsIn: len(table.Rows)}
	seen := make(map[core.MessageName]bool, len(table.Rows))
	mapping := &email.Mapping{}

	for _, row := range table.Rows {
		name := core.MessageName(strings.TrimSpace(row[ColMessageName]))
		automation := core.AutomationName(strings.TrimSpace(row[ColAutomation]))
		if name == "" || automation == "" {
			report.Dropped++
			continue
		}
		if seen[name] {
			report.Duplicates++
			continue
		}
		seen[name] = true
		mapping.Entries = append(mapping.Entries, email.MappingEntry{
			MessageName: name,
			Automation:  automation,
		})
	}

	report.RowsKept = len(mapping.Entries)
	if len(mapping.Entries) == 0 {
		return nil, report, errors.FileInvalid("mapping file has no usable rows")
	}
	return mapping, report, nil
}

// parsePercent normalizes rate cells. "12.5%" becomes 0.125; bare
// numbers are assumed to already be fractions. Blank or unparseable
// cells stay nil so averages can exclude them.
func parsePercent(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}

	if strings.HasSuffix(value, "%") {
		trimmed := strings.TrimSpace(strings.TrimSuffix(value, "%"))
		trimmed = strings.ReplaceAll(trimmed, ",", ".")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		f /= 100
		return &f
	}

	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseCount coerces a count cell to int64. Thousands separators are
// tolerated and fractional values (demo exports scale counts) truncate.
func parseCount(value, column string, row int, report *CleanReport) int64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	cleaned := strings.ReplaceAll(value, ",", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return int64(f)
	}

	report.Warnings = append(report.Warnings,
		"row "+strconv.Itoa(row+1)+": unparseable "+column+" value "+strconv.Quote(value))
	return 0
}

func parseTimestamp(value string) (core.Timestamp, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return core.Timestamp{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return core.NewTimestamp(t), true
		}
	}
	return core.Timestamp{}, false
}
