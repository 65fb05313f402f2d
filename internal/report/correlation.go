package report

import (
	"gonum.org/v1/gonum/stat"

	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
)

// correlationMetrics fixes the order of the rate columns in the matrix.
var correlationMetrics = []string{
	"Delivery Rate", "Open Rate", "Click Rate", "CTOR", "Bounce Rate", "Unsubscribe Rate",
}

// CorrelationMatrix computes pairwise Pearson correlations over the rate
// columns of the automation performance table. Needs at least two rows
// for the correlations to be defined.
func CorrelationMatrix(perf []email.AutomationPerformance) (*email.CorrelationMatrix, error) {
	if len(perf) < 2 {
		return nil, errors.NoData("need at least two automations for a correlation matrix")
	}

	columns := make([][]float64, len(correlationMetrics))
	for i := range columns {
		columns[i] = make([]float64, len(perf))
	}
	for j, ap := range perf {
		columns[0][j] = ap.Delivery
		columns[1][j] = ap.Open
		columns[2][j] = ap.Click
		columns[3][j] = ap.CTOR
		columns[4][j] = ap.Bounce
		columns[5][j] = ap.Unsubscribe
	}

	n := len(correlationMetrics)
	values := make([][]float64, n)
	for i := 0; i < n; i++ {
		values[i] = make([]float64, n)
		for j := 0; j < n; j++ {
			if i == j {
				values[i][j] = 1
				continue
			}
			r := stat.Correlation(columns[i], columns[j], nil)
			// Zero-variance columns produce NaN; report no correlation.
			if r != r {
				r = 0
			}
			values[i][j] = r
		}
	}

	return &email.CorrelationMatrix{
		Metrics: correlationMetrics,
		Values:  values,
	}, nil
}
