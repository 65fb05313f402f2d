package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
)

func TestSubjectPerformance_Features(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())
	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{
		rec("m1", "Bem-vindo, {{CONTACT.FIRSTNAME}}!", week1, 1000, 980, 400, 80),
		rec("m2", "Você viu as 3 novidades?", week1, 800, 784, 200, 40),
		rec("m3", "Sem nada de especial", week1, 600, 588, 120, 24),
	}))

	perf, err := p.SubjectPerformance(0)
	require.NoError(t, err)
	require.Len(t, perf, 3)

	bySubject := make(map[string]email.SubjectPerformance)
	for _, s := range perf {
		bySubject[s.Subject] = s
	}

	personalized := bySubject["Bem-vindo, {{CONTACT.FIRSTNAME}}!"]
	assert.True(t, personalized.HasPersonalization)
	assert.False(t, personalized.HasQuestion)

	question := bySubject["Você viu as 3 novidades?"]
	assert.True(t, question.HasQuestion)
	assert.True(t, question.HasNumber)
	assert.False(t, question.HasPersonalization)
	// Length counts runes, not bytes.
	assert.Equal(t, 24, question.Length)

	plain := bySubject["Sem nada de especial"]
	assert.False(t, plain.HasPersonalization || plain.HasQuestion || plain.HasNumber)
}

func TestSubjectPerformance_ThresholdAndAggregation(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())
	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{
		rec("m1", "Assunto repetido", week1, 600, 588, 120, 24),
		rec("m2", "Assunto pequeno", week1, 40, 39, 10, 2),
	}))
	require.NoError(t, p.AddWeek(ctx, week2, []email.Record{
		rec("m1", "Assunto repetido", week2, 400, 392, 100, 20),
	}))

	perf, err := p.SubjectPerformance(100)
	require.NoError(t, err)
	// The small subject falls under the threshold; the repeated one
	// accumulates across weeks.
	require.Len(t, perf, 1)
	assert.Equal(t, "Assunto repetido", perf[0].Subject)
	assert.Equal(t, int64(1000), perf[0].Sent)
	assert.InDelta(t, 220.0/980.0, perf[0].Open, 1e-9)
}

func TestDayOfWeekPerformance(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())

	monday := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)
	friday := time.Date(2025, 7, 4, 10, 0, 0, 0, time.UTC)

	r1 := rec("m1", "a", week1, 1000, 980, 400, 80)
	r1.CreatedOn = core.NewTimestamp(monday)
	r2 := rec("m2", "b", week1, 500, 490, 100, 20)
	r2.CreatedOn = core.NewTimestamp(monday)
	r3 := rec("m3", "c", week1, 800, 784, 200, 40)
	r3.CreatedOn = core.NewTimestamp(friday)
	r4 := rec("m4", "d", week1, 100, 98, 30, 6) // no creation date, skipped

	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{r1, r2, r3, r4}))

	days, err := p.DayOfWeekPerformance()
	require.NoError(t, err)
	require.Len(t, days, 2)

	// Monday before Friday, in display order.
	assert.Equal(t, "Segunda-feira", days[0].Label)
	assert.Equal(t, "Sexta-feira", days[1].Label)

	assert.Equal(t, int64(1500), days[0].Sent)
	// Average of the per-row open rates, not a pooled rate.
	expected := (400.0/980.0 + 100.0/490.0) / 2
	assert.InDelta(t, expected, days[0].AvgOpenRate, 1e-9)
}

func TestDayOfWeekPerformance_BlankRates(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())

	monday := time.Date(2025, 6, 30, 10, 0, 0, 0, time.UTC)

	r1 := rec("m1", "a", week1, 1000, 980, 392, 80)
	r1.CreatedOn = core.NewTimestamp(monday)
	// The export left this row's rate cells blank; it still counts in
	// the volume totals but must not drag the averages toward zero.
	r2 := rec("m2", "b", week1, 500, 490, 100, 20)
	r2.CreatedOn = core.NewTimestamp(monday)
	r2.OpenRate = nil
	r2.ClickRate = nil
	r2.CTOR = nil

	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{r1, r2}))

	days, err := p.DayOfWeekPerformance()
	require.NoError(t, err)
	require.Len(t, days, 1)

	assert.InDelta(t, 0.40, days[0].AvgOpenRate, 1e-9)
	assert.Equal(t, int64(1500), days[0].Sent)
}

func TestDayOfWeekPerformance_NoDates(t *testing.T) {
	ctx := context.Background()
	p := NewProcessor(newMemStore())
	require.NoError(t, p.AddWeek(ctx, week1, []email.Record{rec("m1", "a", week1, 100, 98, 30, 6)}))

	_, err := p.DayOfWeekPerformance()
	assert.Error(t, err)
}
