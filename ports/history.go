package ports

import (
	"context"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
)

// HistorySnapshot is everything a history store can give back on boot.
type HistorySnapshot struct {
	Metadata email.Metadata
	Mapping  *email.Mapping
	Weeks    map[core.WeekLabel][]email.Record
	// Warnings lists snapshot files that were expected but missing or
	// unreadable. Their absence is reported, not fatal.
	Warnings []string
}

// HistoryStore persists processed weekly snapshots and the automation
// mapping so re-visits avoid re-upload. Implementations are flat-file.
type HistoryStore interface {
	// SaveWeek snapshots the cleaned records of one week, replacing any
	// previous snapshot for the same label.
	SaveWeek(ctx context.Context, week core.WeekLabel, records []email.Record) error

	// SaveMapping snapshots the automation mapping table.
	SaveMapping(ctx context.Context, mapping *email.Mapping) error

	// LoadAll restores the mapping and every week listed in the metadata.
	LoadAll(ctx context.Context) (*HistorySnapshot, error)

	// Weeks returns the ordered week labels currently on record.
	Weeks(ctx context.Context) ([]core.WeekLabel, error)
}
