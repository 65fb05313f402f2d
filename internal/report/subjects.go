package report

import (
	"sort"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/montanaflynn/stats"

	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
)

// SubjectPerformance groups all weeks by subject line, derives rates and
// the subject-analysis features, and filters out subjects below the sent
// threshold. Results are sorted by volume descending.
func (p *Processor) SubjectPerformance(minEmails int64) ([]email.SubjectPerformance, error) {
	all := p.CombineAllWeeks()
	if len(all) == 0 {
		return nil, errors.NoData("no weekly data loaded")
	}

	groups := make(map[string]*email.SubjectPerformance)
	var subjects []string
	for _, rec := range all {
		g, ok := groups[rec.Subject]
		if !ok {
			g = &email.SubjectPerformance{
				Subject:            rec.Subject,
				Length:             utf8.RuneCountInString(rec.Subject),
				HasPersonalization: hasPersonalization(rec.Subject),
				HasQuestion:        strings.Contains(rec.Subject, "?"),
				HasNumber:          strings.ContainsFunc(rec.Subject, unicode.IsDigit),
			}
			groups[rec.Subject] = g
			subjects = append(subjects, rec.Subject)
		}
		g.Totals.Add(rec)
	}

	perf := make([]email.SubjectPerformance, 0, len(subjects))
	for _, subject := range subjects {
		g := groups[subject]
		if g.Sent < minEmails {
			continue
		}
		g.Rates = g.Totals.Rates()
		perf = append(perf, *g)
	}

	sort.Slice(perf, func(i, j int) bool { return perf[i].Sent > perf[j].Sent })
	return perf, nil
}

// hasPersonalization detects merge tags like {{CONTACT `subscriber_first_name`}}.
func hasPersonalization(subject string) bool {
	return strings.Contains(subject, "{{CONTACT") || strings.Contains(subject, "{{contact")
}

// dayLabels maps weekdays to their Portuguese dashboard labels.
var dayLabels = map[time.Weekday]string{
	time.Monday:    "Segunda-feira",
	time.Tuesday:   "Terça-feira",
	time.Wednesday: "Quarta-feira",
	time.Thursday:  "Quinta-feira",
	time.Friday:    "Sexta-feira",
	time.Saturday:  "Sábado",
	time.Sunday:    "Domingo",
}

// dayOrder runs Monday through Sunday, the dashboard display order.
var dayOrder = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// DayOfWeekPerformance groups the combined records by the weekday of
// their creation date. Records without a parsed date are skipped. Rate
// averages are plain means over the per-row export rates; rows whose
// export left a rate blank stay out of that rate's mean.
func (p *Processor) DayOfWeekPerformance() ([]email.DayOfWeekStats, error) {
	all := p.CombineAllWeeks()
	if len(all) == 0 {
		return nil, errors.NoData("no weekly data loaded")
	}

	type acc struct {
		open, click, ctor []float64
		stats             email.DayOfWeekStats
	}
	byDay := make(map[time.Weekday]*acc)

	for _, rec := range all {
		if rec.CreatedOn.IsZero() {
			continue
		}
		day := rec.CreatedOn.Weekday()
		a, ok := byDay[day]
		if !ok {
			a = &acc{stats: email.DayOfWeekStats{Day: day, Label: dayLabels[day]}}
			byDay[day] = a
		}
		// Unset export rates stay out of the averages.
		if rec.OpenRate != nil {
			a.open = append(a.open, *rec.OpenRate)
		}
		if rec.ClickRate != nil {
			a.click = append(a.click, *rec.ClickRate)
		}
		if rec.CTOR != nil {
			a.ctor = append(a.ctor, *rec.CTOR)
		}
		a.stats.Sent += rec.Sent
		a.stats.Delivered += rec.Delivered
		a.stats.Opened += rec.Opened
		a.stats.Clicked += rec.Clicked
	}

	if len(byDay) == 0 {
		return nil, errors.NoData("no records carry a creation date")
	}

	out := make([]email.DayOfWeekStats, 0, len(byDay))
	for _, day := range dayOrder {
		a, ok := byDay[day]
		if !ok {
			continue
		}
		a.stats.AvgOpenRate, _ = stats.Mean(a.open)
		a.stats.AvgClickRate, _ = stats.Mean(a.click)
		a.stats.AvgCTOR, _ = stats.Mean(a.ctor)
		out = append(out, a.stats)
	}
	return out, nil
}
