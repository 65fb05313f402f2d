package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// memStore is an in-memory HistoryStore for processor tests.
type memStore struct {
	mapping *email.Mapping
	weeks   map[core.WeekLabel][]email.Record
	order   []core.WeekLabel
}

func newMemStore() *memStore {
	return &memStore{weeks: make(map[core.WeekLabel][]email.Record)}
}

func (s *memStore) SaveWeek(_ context.Context, week core.WeekLabel, records []email.Record) error {
	if _, ok := s.weeks[week]; !ok {
		s.order = append(s.order, week)
	}
	s.weeks[week] = records
	return nil
}

func (s *memStore) SaveMapping(_ context.Context, mapping *email.Mapping) error {
	s.mapping = mapping
	return nil
}

func (s *memStore) LoadAll(_ context.Context) (*ports.HistorySnapshot, error) {
	return &ports.HistorySnapshot{
		Metadata: email.Metadata{Weeks: s.order},
		Mapping:  s.mapping,
		Weeks:    s.weeks,
	}, nil
}

func (s *memStore) Weeks(_ context.Context) ([]core.WeekLabel, error) {
	return s.order, nil
}

func rate(num, den int64) *float64 {
	r := float64(num) / float64(den)
	return &r
}

func rec(name, subject string, week core.WeekLabel, sent, delivered, opened, clicked int64) email.Record {
	return email.Record{
		MessageName: core.MessageName(name),
		Subject:     subject,
		Week:        week,
		Sent:        sent,
		Delivered:   delivered,
		Opened:      opened,
		Clicked:     clicked,
		OpenRate:    rate(opened, delivered),
		ClickRate:   rate(clicked, delivered),
		CTOR:        rate(clicked, opened),
	}
}

func testMapping() *email.Mapping {
	return &email.Mapping{Entries: []email.MappingEntry{
		{MessageName: "bv-01", Automation: "Boas-vindas"},
		{MessageName: "bv-02", Automation: "Boas-vindas"},
		{MessageName: "car-01", Automation: "Carrinho"},
	}}
}

const (
	week1 = core.WeekLabel("2025-06-23 a 2025-06-29")
	week2 = core.WeekLabel("2025-06-30 a 2025-07-06")
)

func loadedProcessor(t *testing.T) *Processor {
	t.Helper()
	ctx := context.Background()
	p := NewProcessor(newMemStore())

	require.NoError(t, p.SetMapping(ctx, testMapping()))
	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{
		rec("bv-01", "Bem-vindo, {{CONTACT.FIRSTNAME}}!", week1, 1000, 980, 400, 80),
		rec("bv-02", "Seus primeiros passos", week1, 500, 490, 150, 30),
		rec("car-01", "Esqueceu algo no carrinho?", week1, 2000, 1960, 500, 150),
		rec("solto-01", "Mensagem sem automacao", week1, 50, 49, 10, 2),
	}))
	require.NoError(t, p.AddWeek(ctx, week2, []email.Record{
		rec("bv-01", "Bem-vindo, {{CONTACT.FIRSTNAME}}!", week2, 1100, 1078, 484, 110),
		rec("car-01", "Esqueceu algo no carrinho?", week2, 2100, 2058, 630, 147),
	}))
	return p
}

func TestAddWeek_OrderAndReplace(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())
	require.NoError(t, p.SetMapping(ctx, testMapping()))

	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{rec("bv-01", "a", week1, 100, 98, 40, 8)}))
	require.NoError(t, p.AddWeek(ctx, week2, []email.Record{rec("bv-01", "a", week2, 200, 196, 80, 16)}))
	assert.Equal(t, []core.WeekLabel{week1, week2}, p.AvailableWeeks())

	// Re-adding a week replaces its records without disturbing the order.
	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{rec("bv-01", "a", week1, 300, 294, 120, 24)}))
	assert.Equal(t, []core.WeekLabel{week1, week2}, p.AvailableWeeks())

	summary, err := p.WeekSummary(week1)
	require.NoError(t, err)
	assert.Equal(t, int64(300), summary.Sent)
}

func TestAddWeek_RejectsEmpty(t *testing.T) {
	p := NewProcessor(newMemStore())
	err := p.AddWeek(context.Background(), week1, nil)
	assert.Error(t, err)
}

func TestWeekSummary(t *testing.T) {
	p := loadedProcessor(t)

	summary, err := p.WeekSummary(week1)
	require.NoError(t, err)

	assert.Equal(t, int64(3550), summary.Sent)
	assert.Equal(t, int64(3479), summary.Delivered)
	assert.Equal(t, int64(1060), summary.Opened)
	assert.InDelta(t, 3479.0/3550.0, summary.Delivery, 1e-9)
	assert.InDelta(t, 1060.0/3479.0, summary.Open, 1e-9)
	assert.InDelta(t, 262.0/1060.0, summary.CTOR, 1e-9)

	_, err = p.WeekSummary("semana inexistente")
	assert.Error(t, err)
}

func TestMergeWithMapping_LeftJoin(t *testing.T) {
	p := loadedProcessor(t)

	merged, err := p.MergeWithMapping(p.CombineAllWeeks())
	require.NoError(t, err)
	require.Len(t, merged, 6)

	byName := make(map[core.MessageName]core.AutomationName)
	for _, m := range merged {
		byName[m.MessageName] = m.Automation
	}
	assert.Equal(t, core.AutomationName("Boas-vindas"), byName["bv-01"])
	assert.Equal(t, core.AutomationName("Carrinho"), byName["car-01"])
	// Unmapped messages survive the join with an empty automation.
	assert.Equal(t, core.AutomationName(""), byName["solto-01"])
}

func TestMergeWithMapping_RequiresMapping(t *testing.T) {
	p := NewProcessor(newMemStore())
	_, err := p.MergeWithMapping(nil)
	assert.Error(t, err)
}

func TestAutomationPerformance(t *testing.T) {
	p := loadedProcessor(t)

	perf, err := p.AutomationPerformance(100)
	require.NoError(t, err)

	// The unmapped 50-send message falls under the threshold together
	// with its empty-name group.
	require.Len(t, perf, 2)
	// Sorted by volume descending.
	assert.Equal(t, core.AutomationName("Carrinho"), perf[0].Automation)
	assert.Equal(t, int64(4100), perf[0].Sent)
	assert.Equal(t, core.AutomationName("Boas-vindas"), perf[1].Automation)
	assert.Equal(t, int64(2600), perf[1].Sent)

	// With no threshold the unmapped group appears too.
	all, err := p.AutomationPerformance(0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestWeekOverWeekChanges(t *testing.T) {
	p := loadedProcessor(t)

	changes, err := p.WeekOverWeekChanges()
	require.NoError(t, err)

	byKey := make(map[string]email.WeekOverWeekChange)
	for _, c := range changes {
		byKey[string(c.Automation)+"|"+string(c.Week)] = c
	}

	first := byKey["Boas-vindas|"+string(week1)]
	assert.Nil(t, first.OpenRateChange, "first observed week has no change")

	second := byKey["Boas-vindas|"+string(week2)]
	require.NotNil(t, second.OpenRateChange)
	// Week 1: (400+150)/(980+490); week 2: 484/1078.
	prevOpen := 550.0 / 1470.0
	curOpen := 484.0 / 1078.0
	assert.InDelta(t, (curOpen/prevOpen-1)*100, *second.OpenRateChange, 1e-9)
}

func TestLoadSaved_RestoresWorkingSet(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()

	seed := NewProcessor(store)
	require.NoError(t, seed.SetMapping(ctx, testMapping()))
	require.NoError(t, seed.AddWeek(ctx, week1, []email.Record{rec("bv-01", "a", week1, 100, 98, 40, 8)}))
	require.NoError(t, seed.AddWeek(ctx, week2, []email.Record{rec("bv-01", "a", week2, 200, 196, 80, 16)}))

	restored := NewProcessor(store)
	ok, err := restored.LoadSaved(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []core.WeekLabel{week1, week2}, restored.AvailableWeeks())
	assert.True(t, restored.HasMapping())
}

func TestOverview(t *testing.T) {
	p := loadedProcessor(t)

	ov, err := p.Overview(100)
	require.NoError(t, err)

	assert.Equal(t, week1, ov.FirstWeek)
	assert.Equal(t, week2, ov.LastWeek)
	assert.Equal(t, 2, ov.WeekCount)
	assert.Equal(t, int64(6750), ov.TotalSent)

	require.NotNil(t, ov.OpenRateTrend)
	w1Open := 1060.0 / 3479.0
	w2Open := 1114.0 / 3136.0
	assert.InDelta(t, (w2Open/w1Open-1)*100, *ov.OpenRateTrend, 1e-9)
	assert.InDelta(t, (w1Open+w2Open)/2, ov.AvgOpenRate, 1e-9)

	require.NotEmpty(t, ov.TopByOpenRate)
	assert.LessOrEqual(t, len(ov.TopByOpenRate), 3)
}

func TestPctChange(t *testing.T) {
	v := pctChange(0.20, 0.25)
	require.NotNil(t, v)
	assert.InDelta(t, 25.0, *v, 1e-9)
	assert.Nil(t, pctChange(0, 0.25), "zero base yields no value")
}
