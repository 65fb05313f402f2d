// Package email holds the core domain types for the email-marketing
// analytics pipeline: cleaned weekly records, the automation mapping and
// the aggregated views derived from them.
package email

import (
	"github.com/Manuqueiroz1/relatorio-email/domain/core"
)

// Record is one cleaned row of a weekly automation export.
type Record struct {
	MessageName core.MessageName `json:"message_name"`
	Subject     string           `json:"subject"`
	ListName    string           `json:"list_name"`

	Sent         int64 `json:"sent"`
	Delivered    int64 `json:"delivered"`
	Opened       int64 `json:"opened"`
	Clicked      int64 `json:"clicked"`
	Bounced      int64 `json:"bounced"`
	MarkedAsSpam int64 `json:"marked_as_spam"`
	Unsubscribed int64 `json:"unsubscribed"`

	// Rates as reported by the export, normalized to fractions
	// (0.125 = 12.5%). Blank or unparseable cells stay nil so the
	// per-row averages can skip them.
	OpenRate        *float64 `json:"open_rate,omitempty"`
	ClickRate       *float64 `json:"click_rate,omitempty"`
	CTOR            *float64 `json:"ctor,omitempty"`
	BounceRate      *float64 `json:"bounce_rate,omitempty"`
	SpamRate        *float64 `json:"spam_complaint_rate,omitempty"`
	UnsubscribeRate *float64 `json:"unsubscribe_rate,omitempty"`

	CreatedOn core.Timestamp `json:"created_on"`
	Week      core.WeekLabel `json:"week"`
}

// MappingEntry relates one message to the automation it belongs to.
type MappingEntry struct {
	MessageName core.MessageName    `json:"message_name"`
	Automation  core.AutomationName `json:"automation"`
}

// Mapping is the full message-to-automation table, indexed by message name.
type Mapping struct {
	Entries []MappingEntry `json:"entries"`
}

// Index returns a lookup from message name to automation.
func (m *Mapping) Index() map[core.MessageName]core.AutomationName {
	idx := make(map[core.MessageName]core.AutomationName, len(m.Entries))
	for _, e := range m.Entries {
		idx[e.MessageName] = e.Automation
	}
	return idx
}

// MergedRecord is a weekly record joined with its automation. Records
// without a mapping entry carry an empty automation name.
type MergedRecord struct {
	Record
	Automation core.AutomationName `json:"automation"`
}

// Totals accumulates the count columns of a set of records.
type Totals struct {
	Sent         int64 `json:"sent"`
	Delivered    int64 `json:"delivered"`
	Opened       int64 `json:"opened"`
	Clicked      int64 `json:"clicked"`
	Bounced      int64 `json:"bounced"`
	Unsubscribed int64 `json:"unsubscribed"`
}

// Add accumulates one record into the totals.
func (t *Totals) Add(r Record) {
	t.Sent += r.Sent
	t.Delivered += r.Delivered
	t.Opened += r.Opened
	t.Clicked += r.Clicked
	t.Bounced += r.Bounced
	t.Unsubscribed += r.Unsubscribed
}

// Rates holds the derived rate metrics for an aggregated group.
type Rates struct {
	Delivery    float64 `json:"delivery_rate"`
	Open        float64 `json:"open_rate"`
	Click       float64 `json:"click_rate"`
	CTOR        float64 `json:"ctor"`
	Bounce      float64 `json:"bounce_rate"`
	Unsubscribe float64 `json:"unsubscribe_rate"`
}

// Rates derives the rate metrics from the totals. Every ratio guards its
// denominator: a zero denominator yields a zero rate, never NaN.
func (t Totals) Rates() Rates {
	return Rates{
		Delivery:    ratio(t.Delivered, t.Sent),
		Open:        ratio(t.Opened, t.Delivered),
		Click:       ratio(t.Clicked, t.Delivered),
		CTOR:        ratio(t.Clicked, t.Opened),
		Bounce:      ratio(t.Bounced, t.Sent),
		Unsubscribe: ratio(t.Unsubscribed, t.Delivered),
	}
}

func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return float64(num) / float64(den)
}
