package email

import (
	"time"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
)

// WeekSummary aggregates one week across all messages.
type WeekSummary struct {
	Week core.WeekLabel `json:"semana"`
	Totals
	Rates
}

// AutomationPerformance aggregates all weeks for one automation.
type AutomationPerformance struct {
	Automation core.AutomationName `json:"automacao"`
	Totals
	Rates
}

// WeeklyAutomationPerformance aggregates one automation within one week.
type WeeklyAutomationPerformance struct {
	Automation core.AutomationName `json:"automacao"`
	Week       core.WeekLabel      `json:"semana"`
	Totals
	Rates
}

// WeekOverWeekChange holds the percent change of the headline rates for
// one automation between consecutive weeks. Change pointers are nil for
// the first observed week of an automation.
type WeekOverWeekChange struct {
	Automation core.AutomationName `json:"automacao"`
	Week       core.WeekLabel      `json:"semana"`
	Totals
	Rates
	OpenRateChange  *float64 `json:"open_rate_change,omitempty"`
	ClickRateChange *float64 `json:"click_rate_change,omitempty"`
	CTORChange      *float64 `json:"ctor_change,omitempty"`
}

// SubjectPerformance aggregates all weeks for one subject line, with the
// derived subject-analysis features.
type SubjectPerformance struct {
	Subject string `json:"subject"`
	Totals
	Rates
	Length             int  `json:"subject_length"`
	HasPersonalization bool `json:"has_personalization"`
	HasQuestion        bool `json:"has_question"`
	HasNumber          bool `json:"has_number"`
}

// DayOfWeekStats aggregates records by the weekday of their creation date.
type DayOfWeekStats struct {
	Day   time.Weekday `json:"-"`
	Label string       `json:"dia"`

	AvgOpenRate  float64 `json:"avg_open_rate"`
	AvgClickRate float64 `json:"avg_click_rate"`
	AvgCTOR      float64 `json:"avg_ctor"`

	Sent      int64 `json:"sent"`
	Delivered int64 `json:"delivered"`
	Opened    int64 `json:"opened"`
	Clicked   int64 `json:"clicked"`
}

// CorrelationMatrix is a symmetric Pearson correlation matrix over the
// rate metrics of an aggregated table.
type CorrelationMatrix struct {
	Metrics []string    `json:"metrics"`
	Values  [][]float64 `json:"values"`
}

// Metadata describes the persisted history: which weeks exist and when
// the snapshots were last touched.
type Metadata struct {
	Weeks                []core.WeekLabel `json:"weeks"`
	LastUpdated          *core.Timestamp  `json:"last_updated"`
	AutomationMapUpdated *core.Timestamp  `json:"automation_map_updated"`
}

// HasWeek reports whether the metadata already lists the given week.
func (m *Metadata) HasWeek(week core.WeekLabel) bool {
	for _, w := range m.Weeks {
		if w == week {
			return true
		}
	}
	return false
}
