package report

import (
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
)

// Overview is the headline block of the dashboard: period, totals,
// average rates with their first-to-last-week trend, and the top
// automations by open and click rate.
type Overview struct {
	FirstWeek core.WeekLabel `json:"primeira_semana"`
	LastWeek  core.WeekLabel `json:"ultima_semana"`
	WeekCount int            `json:"semanas"`

	TotalSent    int64 `json:"total_sent"`
	TotalOpened  int64 `json:"total_opened"`
	TotalClicked int64 `json:"total_clicked"`

	AvgOpenRate  float64 `json:"avg_open_rate"`
	AvgClickRate float64 `json:"avg_click_rate"`
	AvgCTOR      float64 `json:"avg_ctor"`

	// Trends compare the last week against the first, in percent.
	OpenRateTrend  *float64 `json:"open_rate_trend,omitempty"`
	ClickRateTrend *float64 `json:"click_rate_trend,omitempty"`

	TopByOpenRate  []email.AutomationPerformance `json:"top_open_rate"`
	TopByClickRate []email.AutomationPerformance `json:"top_click_rate"`
}

// Overview assembles the dashboard headline block. The top lists hold at
// most three automations each.
func (p *Processor) Overview(minEmails int64) (*Overview, error) {
	summaries, err := p.AllWeekSummaries()
	if err != nil {
		return nil, err
	}

	openRates := make([]float64, len(summaries))
	clickRates := make([]float64, len(summaries))
	ctors := make([]float64, len(summaries))
	ov := &Overview{
		FirstWeek: summaries[0].Week,
		LastWeek:  summaries[len(summaries)-1].Week,
		WeekCount: len(summaries),
	}
	for i, s := range summaries {
		openRates[i] = s.Open
		clickRates[i] = s.Click
		ctors[i] = s.CTOR
		ov.TotalSent += s.Sent
		ov.TotalOpened += s.Opened
		ov.TotalClicked += s.Clicked
	}

	ov.AvgOpenRate, _ = stats.Mean(openRates)
	ov.AvgClickRate, _ = stats.Mean(clickRates)
	ov.AvgCTOR, _ = stats.Mean(ctors)

	first, last := summaries[0], summaries[len(summaries)-1]
	ov.OpenRateTrend = pctChange(first.Open, last.Open)
	ov.ClickRateTrend = pctChange(first.Click, last.Click)

	perf, err := p.AutomationPerformance(minEmails)
	if err == nil {
		ov.TopByOpenRate = topBy(perf, 3, func(a email.AutomationPerformance) float64 { return a.Open })
		ov.TopByClickRate = topBy(perf, 3, func(a email.AutomationPerformance) float64 { return a.Click })
	}

	return ov, nil
}

// topBy returns the n best automations under the given metric.
func topBy(perf []email.AutomationPerformance, n int, metric func(email.AutomationPerformance) float64) []email.AutomationPerformance {
	sorted := make([]email.AutomationPerformance, len(perf))
	copy(sorted, perf)
	sort.SliceStable(sorted, func(i, j int) bool { return metric(sorted[i]) > metric(sorted[j]) })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// SortAutomations orders a performance table by the named metric,
// descending. Unknown metrics fall back to volume.
func SortAutomations(perf []email.AutomationPerformance, metric string) {
	key := func(a email.AutomationPerformance) float64 {
		switch metric {
		case "open_rate":
			return a.Open
		case "click_rate":
			return a.Click
		case "ctor":
			return a.CTOR
		default:
			return float64(a.Sent)
		}
	}
	sort.SliceStable(perf, func(i, j int) bool { return key(perf[i]) > key(perf[j]) })
}
