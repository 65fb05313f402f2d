// Package report joins weekly records with the automation mapping and
// computes every aggregated view the dashboard serves.
package report

import (
	"context"
	"sort"
	"sync"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// Processor holds the in-memory working set (mapping plus per-week
// cleaned tables) and writes through to the history store.
type Processor struct {
	mu      sync.RWMutex
	store   ports.HistoryStore
	logger  *internal.Logger
	mapping *email.Mapping
	weeks   map[core.WeekLabel][]email.Record
	order   []core.WeekLabel
}

// NewProcessor creates a processor backed by the given history store.
func NewProcessor(store ports.HistoryStore) *Processor {
	return &Processor{
		store:  store,
		logger: internal.DefaultLogger,
		weeks:  make(map[core.WeekLabel][]email.Record),
	}
}

// LoadSaved restores previously persisted snapshots. It returns true
// when both a mapping and at least one week were restored.
func (p *Processor) LoadSaved(ctx context.Context) (bool, error) {
	snapshot, err := p.store.LoadAll(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed to load saved history")
	}

	for _, warning := range snapshot.Warnings {
		p.logger.Warn("history: %s", warning)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.mapping = snapshot.Mapping
	p.weeks = make(map[core.WeekLabel][]email.Record, len(snapshot.Weeks))
	p.order = p.order[:0]
	for _, week := range snapshot.Metadata.Weeks {
		if records, ok := snapshot.Weeks[week]; ok {
			p.weeks[week] = records
			p.order = append(p.order, week)
		}
	}

	p.logger.Info("history restored: %d weeks, mapping loaded=%t", len(p.order), p.mapping != nil)
	return p.mapping != nil && len(p.order) > 0, nil
}

// AddWeek registers the cleaned records of one week and persists the
// snapshot. Re-adding a week replaces its records in place.
func (p *Processor) AddWeek(ctx context.Context, week core.WeekLabel, records []email.Record) error {
	if len(records) == 0 {
		return errors.NoData("week has no records")
	}

	if err := p.store.SaveWeek(ctx, week, records); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.weeks[week]; !exists {
		p.order = append(p.order, week)
	}
	p.weeks[week] = records
	return nil
}

// SetMapping registers and persists the automation mapping.
func (p *Processor) SetMapping(ctx context.Context, mapping *email.Mapping) error {
	if mapping == nil || len(mapping.Entries) == 0 {
		return errors.NoData("mapping has no entries")
	}

	if err := p.store.SaveMapping(ctx, mapping); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mapping = mapping
	return nil
}

// AvailableWeeks returns the week labels in ingestion order.
func (p *Processor) AvailableWeeks() []core.WeekLabel {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]core.WeekLabel, len(p.order))
	copy(out, p.order)
	return out
}

// HasData reports whether any week has been ingested.
func (p *Processor) HasData() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.order) > 0
}

// HasMapping reports whether the automation mapping is loaded.
func (p *Processor) HasMapping() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.mapping != nil
}

// CombineAllWeeks concatenates every week's records in week order.
func (p *Processor) CombineAllWeeks() []email.Record {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.combineLocked()
}

func (p *Processor) combineLocked() []email.Record {
	var all []email.Record
	for _, week := range p.order {
		all = append(all, p.weeks[week]...)
	}
	return all
}

// MergeWithMapping left-joins records to the mapping on message name.
// Records without a mapping entry keep an empty automation name.
func (p *Processor) MergeWithMapping(records []email.Record) ([]email.MergedRecord, error) {
	p.mu.RLock()
	mapping := p.mapping
	p.mu.RUnlock()

	if mapping == nil {
		return nil, errors.MappingNotLoaded()
	}

	idx := mapping.Index()
	merged := make([]email.MergedRecord, len(records))
	for i, rec := range records {
		merged[i] = email.MergedRecord{
			Record:     rec,
			Automation: idx[rec.MessageName],
		}
	}
	return merged, nil
}

// WeekSummary aggregates one week across all messages.
func (p *Processor) WeekSummary(week core.WeekLabel) (*email.WeekSummary, error) {
	p.mu.RLock()
	records, ok := p.weeks[week]
	p.mu.RUnlock()

	if !ok {
		return nil, errors.WeekNotFound(week.String())
	}

	summary := &email.WeekSummary{Week: week}
	for _, rec := range records {
		summary.Totals.Add(rec)
	}
	summary.Rates = summary.Totals.Rates()
	return summary, nil
}

// AllWeekSummaries aggregates every week in ingestion order.
func (p *Processor) AllWeekSummaries() ([]email.WeekSummary, error) {
	weeks := p.AvailableWeeks()
	if len(weeks) == 0 {
		return nil, errors.NoData("no weekly data loaded")
	}

	summaries := make([]email.WeekSummary, 0, len(weeks))
	for _, week := range weeks {
		summary, err := p.WeekSummary(week)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

// AutomationPerformance groups all weeks by automation, derives rates
// and filters out automations below the sent threshold. Results are
// sorted by volume descending.
func (p *Processor) AutomationPerformance(minEmails int64) ([]email.AutomationPerformance, error) {
	merged, err := p.MergeWithMapping(p.CombineAllWeeks())
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, errors.NoData("no weekly data loaded")
	}

	groups := make(map[core.AutomationName]*email.AutomationPerformance)
	var names []core.AutomationName
	for _, rec := range merged {
		name := rec.Automation
		g, ok := groups[name]
		if !ok {
			g = &email.AutomationPerformance{Automation: name}
			groups[name] = g
			names = append(names, name)
		}
		g.Totals.Add(rec.Record)
	}

	perf := make([]email.AutomationPerformance, 0, len(names))
	for _, name := range names {
		g := groups[name]
		if g.Sent < minEmails {
			continue
		}
		g.Rates = g.Totals.Rates()
		perf = append(perf, *g)
	}

	sort.Slice(perf, func(i, j int) bool { return perf[i].Sent > perf[j].Sent })
	return perf, nil
}

// WeeklyAutomationPerformance groups records by (automation, week),
// ordered by automation name then week ingestion order.
func (p *Processor) WeeklyAutomationPerformance() ([]email.WeeklyAutomationPerformance, error) {
	merged, err := p.MergeWithMapping(p.CombineAllWeeks())
	if err != nil {
		return nil, err
	}
	if len(merged) == 0 {
		return nil, errors.NoData("no weekly data loaded")
	}

	type key struct {
		automation core.AutomationName
		week       core.WeekLabel
	}
	groups := make(map[key]*email.WeeklyAutomationPerformance)
	for _, rec := range merged {
		k := key{rec.Automation, rec.Week}
		g, ok := groups[k]
		if !ok {
			g = &email.WeeklyAutomationPerformance{Automation: k.automation, Week: k.week}
			groups[k] = g
		}
		g.Totals.Add(rec.Record)
	}

	weekIndex := p.weekIndex()
	out := make([]email.WeeklyAutomationPerformance, 0, len(groups))
	for _, g := range groups {
		g.Rates = g.Totals.Rates()
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Automation != out[j].Automation {
			return out[i].Automation < out[j].Automation
		}
		return weekIndex[out[i].Week] < weekIndex[out[j].Week]
	})
	return out, nil
}

// WeekOverWeekChanges computes the percent change of open rate, click
// rate and CTOR between consecutive weeks per automation. The first
// observed week of each automation has nil changes.
func (p *Processor) WeekOverWeekChanges() ([]email.WeekOverWeekChange, error) {
	weekly, err := p.WeeklyAutomationPerformance()
	if err != nil {
		return nil, err
	}

	changes := make([]email.WeekOverWeekChange, 0, len(weekly))
	var prev *email.WeeklyAutomationPerformance
	for i := range weekly {
		cur := weekly[i]
		change := email.WeekOverWeekChange{
			Automation: cur.Automation,
			Week:       cur.Week,
			Totals:     cur.Totals,
			Rates:      cur.Rates,
		}
		if prev != nil && prev.Automation == cur.Automation {
			change.OpenRateChange = pctChange(prev.Open, cur.Open)
			change.ClickRateChange = pctChange(prev.Click, cur.Click)
			change.CTORChange = pctChange(prev.CTOR, cur.CTOR)
		}
		changes = append(changes, change)
		prev = &weekly[i]
	}
	return changes, nil
}

// pctChange mirrors pandas pct_change scaled to percent; a zero base
// yields no value rather than infinity.
func pctChange(prev, cur float64) *float64 {
	if prev == 0 {
		return nil
	}
	v := (cur/prev - 1) * 100
	return &v
}

func (p *Processor) weekIndex() map[core.WeekLabel]int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	idx := make(map[core.WeekLabel]int, len(p.order))
	for i, w := range p.order {
		idx[w] = i
	}
	return idx
}
