package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
)

func perfRow(automation string, delivery, open, click, ctor, bounce, unsub float64) email.AutomationPerformance {
	p := email.AutomationPerformance{}
	p.Automation = core.AutomationName(automation)
	p.Delivery = delivery
	p.Open = open
	p.Click = click
	p.CTOR = ctor
	p.Bounce = bounce
	p.Unsubscribe = unsub
	return p
}

func TestCorrelationMatrix(t *testing.T) {
	// Open and click rates move together; bounce moves against them.
	perf := []email.AutomationPerformance{
		perfRow("a", 0.98, 0.20, 0.04, 0.20, 0.030, 0.003),
		perfRow("b", 0.97, 0.30, 0.06, 0.20, 0.020, 0.002),
		perfRow("c", 0.96, 0.40, 0.08, 0.20, 0.010, 0.001),
	}

	m, err := CorrelationMatrix(perf)
	require.NoError(t, err)
	assert.Equal(t, correlationMetrics, m.Metrics)
	require.Len(t, m.Values, len(correlationMetrics))

	// Diagonal is exactly 1.
	for i := range m.Values {
		assert.Equal(t, 1.0, m.Values[i][i])
	}

	// Open (1) and Click (2) are perfectly positively correlated.
	assert.InDelta(t, 1.0, m.Values[1][2], 1e-9)
	// Open (1) and Bounce (4) are perfectly negatively correlated.
	assert.InDelta(t, -1.0, m.Values[1][4], 1e-9)
	// CTOR (3) has zero variance; its correlations report as 0.
	assert.Equal(t, 0.0, m.Values[1][3])

	// The matrix is symmetric.
	for i := range m.Values {
		for j := range m.Values[i] {
			assert.InDelta(t, m.Values[j][i], m.Values[i][j], 1e-12)
		}
	}
}

func TestCorrelationMatrix_NeedsTwoRows(t *testing.T) {
	_, err := CorrelationMatrix([]email.AutomationPerformance{perfRow("a", 1, 1, 1, 1, 0, 0)})
	assert.Error(t, err)
}
