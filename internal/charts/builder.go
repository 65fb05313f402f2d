// Package charts builds the figure specifications for every dashboard
// page from the aggregated report tables.
package charts

import (
	"fmt"
	"sort"

	"github.com/montanaflynn/stats"

	"github.com/Manuqueiroz1/relatorio-email/domain/charts"
	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/domain/email"
)

const (
	colorOpen     = "#1f77b4"
	colorClick    = "#ff7f0e"
	colorCTOR     = "#2ca02c"
	colorVolume   = "#9467bd"
	colorBounce   = "#d62728"
	colorDelivery = "#17becf"
	colorUnsub    = "#8c564b"
)

const defaultHeight = 400

// truncate shortens long automation and subject labels for axis display.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}

func weekLabels(summaries []email.WeekSummary) []string {
	labels := make([]string, len(summaries))
	for i, s := range summaries {
		labels[i] = string(s.Week)
	}
	return labels
}

func lineFigure(title, yTitle string, x []string, y []float64, color string) charts.Figure {
	return charts.Figure{
		Traces: []charts.Trace{{
			Type:   "scatter",
			Mode:   "lines+markers",
			X:      charts.Strings(x),
			Y:      charts.Percent(y),
			Marker: &charts.Marker{Color: color, Size: 8},
			Line:   &charts.Line{Color: color, Width: 2},
		}},
		Layout: charts.Layout{
			Title:      title,
			Height:     defaultHeight,
			Template:   "plotly_white",
			YAxis:      &charts.Axis{Title: yTitle},
			ShowLegend: charts.Bool(false),
		},
	}
}

// WeeklyMetrics builds the evolution panels of the weekly page: open
// rate, click rate, CTOR, sent volume, delivery rate and the negative
// signals (bounce and unsubscribe), one point per week.
func WeeklyMetrics(summaries []email.WeekSummary) []charts.Figure {
	labels := weekLabels(summaries)
	open := make([]float64, len(summaries))
	click := make([]float64, len(summaries))
	ctor := make([]float64, len(summaries))
	delivery := make([]float64, len(summaries))
	bounce := make([]float64, len(summaries))
	unsub := make([]float64, len(summaries))
	sent := make([]int64, len(summaries))
	for i, s := range summaries {
		open[i] = s.Open
		click[i] = s.Click
		ctor[i] = s.CTOR
		delivery[i] = s.Delivery
		bounce[i] = s.Bounce
		unsub[i] = s.Unsubscribe
		sent[i] = s.Sent
	}

	volume := charts.Figure{
		Traces: []charts.Trace{{
			Type:   "bar",
			X:      charts.Strings(labels),
			Y:      charts.Ints(sent),
			Marker: &charts.Marker{Color: colorVolume},
		}},
		Layout: charts.Layout{
			Title:      "Volume de Envios por Semana",
			Height:     defaultHeight,
			Template:   "plotly_white",
			YAxis:      &charts.Axis{Title: "Emails Enviados"},
			ShowLegend: charts.Bool(false),
		},
	}

	negatives := charts.Figure{
		Traces: []charts.Trace{
			{
				Type:   "scatter",
				Mode:   "lines+markers",
				Name:   "Taxa de Bounce",
				X:      charts.Strings(labels),
				Y:      charts.Percent(bounce),
				Marker: &charts.Marker{Color: colorBounce, Size: 8},
				Line:   &charts.Line{Color: colorBounce, Width: 2},
			},
			{
				Type:   "scatter",
				Mode:   "lines+markers",
				Name:   "Taxa de Descadastro",
				X:      charts.Strings(labels),
				Y:      charts.Percent(unsub),
				Marker: &charts.Marker{Color: colorUnsub, Size: 8},
				Line:   &charts.Line{Color: colorUnsub, Width: 2},
			},
		},
		Layout: charts.Layout{
			Title:      "Bounces e Descadastros por Semana",
			Height:     defaultHeight,
			Template:   "plotly_white",
			YAxis:      &charts.Axis{Title: "Taxa (%)"},
			ShowLegend: charts.Bool(true),
		},
	}

	return []charts.Figure{
		lineFigure("Taxa de Abertura por Semana", "Taxa de Abertura (%)", labels, open, colorOpen),
		lineFigure("Taxa de Clique por Semana", "Taxa de Clique (%)", labels, click, colorClick),
		lineFigure("CTOR por Semana", "CTOR (%)", labels, ctor, colorCTOR),
		volume,
		lineFigure("Taxa de Entrega por Semana", "Taxa de Entrega (%)", labels, delivery, colorDelivery),
		negatives,
	}
}

func hbarFigure(title, xTitle string, labels []string, values []interface{}, color string) charts.Figure {
	return charts.Figure{
		Traces: []charts.Trace{{
			Type:        "bar",
			Orientation: "h",
			X:           values,
			Y:           charts.Strings(labels),
			Marker:      &charts.Marker{Color: color},
		}},
		Layout: charts.Layout{
			Title:      title,
			Height:     defaultHeight,
			Template:   "plotly_white",
			XAxis:      &charts.Axis{Title: xTitle},
			ShowLegend: charts.Bool(false),
		},
	}
}

// TopAutomations builds the four ranking panels of the automation page:
// open rate, click rate, CTOR and volume for the top automations by the
// respective metric. Bars are horizontal, best at the top.
func TopAutomations(perf []email.AutomationPerformance, topN int) []charts.Figure {
	type panel struct {
		title  string
		xTitle string
		color  string
		metric func(email.AutomationPerformance) float64
		volume bool
	}
	panels := []panel{
		{"Top Automações por Taxa de Abertura", "Taxa de Abertura (%)", colorOpen,
			func(a email.AutomationPerformance) float64 { return a.Open }, false},
		{"Top Automações por Taxa de Clique", "Taxa de Clique (%)", colorClick,
			func(a email.AutomationPerformance) float64 { return a.Click }, false},
		{"Top Automações por CTOR", "CTOR (%)", colorCTOR,
			func(a email.AutomationPerformance) float64 { return a.CTOR }, false},
		{"Top Automações por Volume", "Emails Enviados", colorVolume,
			func(a email.AutomationPerformance) float64 { return float64(a.Sent) }, true},
	}

	figures := make([]charts.Figure, 0, len(panels))
	for _, pn := range panels {
		sorted := make([]email.AutomationPerformance, len(perf))
		copy(sorted, perf)
		sort.SliceStable(sorted, func(i, j int) bool { return pn.metric(sorted[i]) > pn.metric(sorted[j]) })
		if len(sorted) > topN {
			sorted = sorted[:topN]
		}
		// Plotly draws horizontal bars bottom-up, so reverse to put the
		// best automation at the top.
		labels := make([]string, len(sorted))
		values := make([]float64, len(sorted))
		for i, a := range sorted {
			j := len(sorted) - 1 - i
			labels[j] = truncate(string(a.Automation), 30)
			values[j] = pn.metric(a)
		}
		var x []interface{}
		if pn.volume {
			x = charts.Floats(values)
		} else {
			x = charts.Percent(values)
		}
		figures = append(figures, hbarFigure(pn.title, pn.xTitle, labels, x, pn.color))
	}
	return figures
}

// topByVolume returns the names of the n automations with the most
// accumulated sends.
func topByVolume(weekly []email.WeeklyAutomationPerformance, n int) []core.AutomationName {
	totals := make(map[core.AutomationName]int64)
	for _, w := range weekly {
		totals[w.Automation] += w.Sent
	}
	return topNames(totals, n)
}

// topNames sorts automation names by their accumulated sends, ties
// broken by name, and keeps the first n.
func topNames(totals map[core.AutomationName]int64, n int) []core.AutomationName {
	names := make([]core.AutomationName, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if totals[names[i]] != totals[names[j]] {
			return totals[names[i]] > totals[names[j]]
		}
		return names[i] < names[j]
	})
	if len(names) > n {
		names = names[:n]
	}
	return names
}

func heatmapFigure(title, scaleTitle, colorscale string, zmax float64, rows []string, cols []string, z [][]float64) charts.Figure {
	return charts.Figure{
		Traces: []charts.Trace{{
			Type:       "heatmap",
			X:          charts.Strings(cols),
			Y:          charts.Strings(rows),
			Z:          z,
			Colorscale: colorscale,
			ZMin:       charts.Float(0),
			ZMax:       charts.Float(zmax),
			TextTmpl:   "%{z:.1f}%",
			Colorbar:   &charts.Colorbar{Title: scaleTitle},
		}},
		Layout: charts.Layout{
			Title:    title,
			Height:   defaultHeight,
			Template: "plotly_white",
		},
	}
}

// WeeklyHeatmaps builds the three automation-by-week heatmaps of the
// weekly page for the five highest-volume automations: open rate,
// click rate and CTOR, each on its own fixed color scale.
func WeeklyHeatmaps(weekly []email.WeeklyAutomationPerformance, weeks []core.WeekLabel) []charts.Figure {
	top := topByVolume(weekly, 5)
	if len(top) == 0 || len(weeks) == 0 {
		return nil
	}

	rowIdx := make(map[core.AutomationName]int, len(top))
	rows := make([]string, len(top))
	for i, name := range top {
		rowIdx[name] = i
		rows[i] = truncate(string(name), 30)
	}
	colIdx := make(map[core.WeekLabel]int, len(weeks))
	cols := make([]string, len(weeks))
	for i, w := range weeks {
		colIdx[w] = i
		cols[i] = string(w)
	}

	grid := func(metric func(email.WeeklyAutomationPerformance) float64) [][]float64 {
		z := make([][]float64, len(rows))
		for i := range z {
			z[i] = make([]float64, len(cols))
		}
		for _, w := range weekly {
			r, okR := rowIdx[w.Automation]
			c, okC := colIdx[w.Week]
			if okR && okC {
				z[r][c] = metric(w) * 100
			}
		}
		return z
	}

	return []charts.Figure{
		heatmapFigure("Taxa de Abertura por Automação e Semana", "Abertura (%)", "Blues", 50, rows, cols,
			grid(func(w email.WeeklyAutomationPerformance) float64 { return w.Open })),
		heatmapFigure("Taxa de Clique por Automação e Semana", "Clique (%)", "Greens", 10, rows, cols,
			grid(func(w email.WeeklyAutomationPerformance) float64 { return w.Click })),
		heatmapFigure("CTOR por Automação e Semana", "CTOR (%)", "Oranges", 30, rows, cols,
			grid(func(w email.WeeklyAutomationPerformance) float64 { return w.CTOR })),
	}
}

func zeroLine(n int) charts.Shape {
	return charts.Shape{
		Type: "line",
		X0:   -0.5,
		Y0:   0,
		X1:   float64(n) - 0.5,
		Y1:   0,
		Line: &charts.Line{Color: "#888888", Width: 1, Dash: "dash"},
	}
}

// WeekOverWeek builds the variation panels: one grouped bar chart per
// headline rate, one bar group per week, one trace per automation, with
// a dashed zero reference line. Only the five highest-volume
// automations get a trace; weeks without a previous observation carry
// no bar.
func WeekOverWeek(changes []email.WeekOverWeekChange, weeks []core.WeekLabel) []charts.Figure {
	if len(changes) == 0 || len(weeks) == 0 {
		return nil
	}

	colIdx := make(map[core.WeekLabel]int, len(weeks))
	cols := make([]string, len(weeks))
	for i, w := range weeks {
		colIdx[w] = i
		cols[i] = string(w)
	}

	byAutomation := make(map[core.AutomationName][]email.WeekOverWeekChange)
	totals := make(map[core.AutomationName]int64)
	for _, ch := range changes {
		byAutomation[ch.Automation] = append(byAutomation[ch.Automation], ch)
		totals[ch.Automation] += ch.Sent
	}
	names := topNames(totals, 5)
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	type panel struct {
		title  string
		metric func(email.WeekOverWeekChange) *float64
	}
	panels := []panel{
		{"Variação Semanal da Taxa de Abertura", func(c email.WeekOverWeekChange) *float64 { return c.OpenRateChange }},
		{"Variação Semanal da Taxa de Clique", func(c email.WeekOverWeekChange) *float64 { return c.ClickRateChange }},
		{"Variação Semanal do CTOR", func(c email.WeekOverWeekChange) *float64 { return c.CTORChange }},
	}

	figures := make([]charts.Figure, 0, len(panels))
	for _, pn := range panels {
		traces := make([]charts.Trace, 0, len(names))
		for _, name := range names {
			y := make([]interface{}, len(cols))
			for _, ch := range byAutomation[name] {
				i, ok := colIdx[ch.Week]
				if !ok {
					continue
				}
				if v := pn.metric(ch); v != nil {
					y[i] = *v
				}
			}
			traces = append(traces, charts.Trace{
				Type: "bar",
				Name: truncate(string(name), 30),
				X:    charts.Strings(cols),
				Y:    y,
			})
		}
		figures = append(figures, charts.Figure{
			Traces: traces,
			Layout: charts.Layout{
				Title:    pn.title,
				Height:   defaultHeight,
				Template: "plotly_white",
				BarMode:  "group",
				YAxis:    &charts.Axis{Title: "Variação (%)"},
				Shapes:   []charts.Shape{zeroLine(len(cols))},
			},
		})
	}
	return figures
}

// lengthBracket buckets subject lengths for the length-analysis chart.
func lengthBracket(n int) string {
	switch {
	case n <= 20:
		return "0-20"
	case n <= 40:
		return "21-40"
	case n <= 60:
		return "41-60"
	default:
		return "61+"
	}
}

var lengthBrackets = []string{"0-20", "21-40", "41-60", "61+"}

// SubjectCharts builds the subject page figures: the top ten subjects by
// open and by click rate, the personalization comparison and the average
// open rate per subject-length bracket.
func SubjectCharts(perf []email.SubjectPerformance) []charts.Figure {
	if len(perf) == 0 {
		return nil
	}

	topSubjects := func(title, xTitle, color string, metric func(email.SubjectPerformance) float64) charts.Figure {
		sorted := make([]email.SubjectPerformance, len(perf))
		copy(sorted, perf)
		sort.SliceStable(sorted, func(i, j int) bool { return metric(sorted[i]) > metric(sorted[j]) })
		if len(sorted) > 10 {
			sorted = sorted[:10]
		}
		labels := make([]string, len(sorted))
		values := make([]float64, len(sorted))
		for i, s := range sorted {
			j := len(sorted) - 1 - i
			labels[j] = truncate(s.Subject, 40)
			values[j] = metric(s)
		}
		return hbarFigure(title, xTitle, labels, charts.Percent(values), color)
	}

	figures := []charts.Figure{
		topSubjects("Top Assuntos por Taxa de Abertura", "Taxa de Abertura (%)", colorOpen,
			func(s email.SubjectPerformance) float64 { return s.Open }),
		topSubjects("Top Assuntos por Taxa de Clique", "Taxa de Clique (%)", colorClick,
			func(s email.SubjectPerformance) float64 { return s.Click }),
	}

	if fig, ok := personalizationFigure(perf); ok {
		figures = append(figures, fig)
	}
	if fig, ok := lengthFigure(perf); ok {
		figures = append(figures, fig)
	}
	return figures
}

func personalizationFigure(perf []email.SubjectPerformance) (charts.Figure, bool) {
	var withOpen, withClick, withCTOR, withoutOpen, withoutClick, withoutCTOR []float64
	for _, s := range perf {
		if s.HasPersonalization {
			withOpen = append(withOpen, s.Open)
			withClick = append(withClick, s.Click)
			withCTOR = append(withCTOR, s.CTOR)
		} else {
			withoutOpen = append(withoutOpen, s.Open)
			withoutClick = append(withoutClick, s.Click)
			withoutCTOR = append(withoutCTOR, s.CTOR)
		}
	}
	if len(withOpen) == 0 || len(withoutOpen) == 0 {
		return charts.Figure{}, false
	}

	mean := func(values []float64) float64 {
		m, _ := stats.Mean(values)
		return m
	}
	groups := []string{"Com personalização", "Sem personalização"}
	return charts.Figure{
		Traces: []charts.Trace{
			{
				Type:   "bar",
				Name:   "Taxa de Abertura",
				X:      charts.Strings(groups),
				Y:      charts.Percent([]float64{mean(withOpen), mean(withoutOpen)}),
				Marker: &charts.Marker{Color: colorOpen},
			},
			{
				Type:   "bar",
				Name:   "Taxa de Clique",
				X:      charts.Strings(groups),
				Y:      charts.Percent([]float64{mean(withClick), mean(withoutClick)}),
				Marker: &charts.Marker{Color: colorClick},
			},
			{
				Type:   "bar",
				Name:   "CTOR",
				X:      charts.Strings(groups),
				Y:      charts.Percent([]float64{mean(withCTOR), mean(withoutCTOR)}),
				Marker: &charts.Marker{Color: colorCTOR},
			},
		},
		Layout: charts.Layout{
			Title:    "Personalização no Assunto",
			Height:   defaultHeight,
			Template: "plotly_white",
			BarMode:  "group",
			YAxis:    &charts.Axis{Title: "Taxa Média (%)"},
		},
	}, true
}

func lengthFigure(perf []email.SubjectPerformance) (charts.Figure, bool) {
	openByBracket := make(map[string][]float64, len(lengthBrackets))
	ctorByBracket := make(map[string][]float64, len(lengthBrackets))
	for _, s := range perf {
		b := lengthBracket(s.Length)
		openByBracket[b] = append(openByBracket[b], s.Open)
		ctorByBracket[b] = append(ctorByBracket[b], s.CTOR)
	}
	labels := make([]string, 0, len(lengthBrackets))
	open := make([]float64, 0, len(lengthBrackets))
	ctor := make([]float64, 0, len(lengthBrackets))
	for _, b := range lengthBrackets {
		rates, ok := openByBracket[b]
		if !ok {
			continue
		}
		mo, _ := stats.Mean(rates)
		mc, _ := stats.Mean(ctorByBracket[b])
		labels = append(labels, b)
		open = append(open, mo)
		ctor = append(ctor, mc)
	}
	if len(labels) == 0 {
		return charts.Figure{}, false
	}
	return charts.Figure{
		Traces: []charts.Trace{
			{
				Type:   "bar",
				Name:   "Taxa de Abertura",
				X:      charts.Strings(labels),
				Y:      charts.Percent(open),
				Marker: &charts.Marker{Color: colorOpen},
			},
			{
				Type:   "bar",
				Name:   "CTOR",
				X:      charts.Strings(labels),
				Y:      charts.Percent(ctor),
				Marker: &charts.Marker{Color: colorCTOR},
			},
		},
		Layout: charts.Layout{
			Title:    "Métricas por Tamanho do Assunto",
			Height:   defaultHeight,
			Template: "plotly_white",
			BarMode:  "group",
			XAxis:    &charts.Axis{Title: "Caracteres"},
			YAxis:    &charts.Axis{Title: "Taxa Média (%)"},
		},
	}, true
}

// Correlation builds the metric correlation heatmap on a fixed diverging
// scale from -1 to 1.
func Correlation(m *email.CorrelationMatrix) charts.Figure {
	return charts.Figure{
		Traces: []charts.Trace{{
			Type:       "heatmap",
			X:          charts.Strings(m.Metrics),
			Y:          charts.Strings(m.Metrics),
			Z:          m.Values,
			Colorscale: "RdBu",
			ZMin:       charts.Float(-1),
			ZMax:       charts.Float(1),
			TextTmpl:   "%{z:.2f}",
			Colorbar:   &charts.Colorbar{Title: "Correlação"},
		}},
		Layout: charts.Layout{
			Title:    "Correlação entre Métricas",
			Height:   500,
			Template: "plotly_white",
		},
	}
}

// DayOfWeek builds the weekday panels of the subject page: average rates
// and sent volume by the day messages were created.
func DayOfWeek(days []email.DayOfWeekStats) []charts.Figure {
	if len(days) == 0 {
		return nil
	}
	labels := make([]string, len(days))
	open := make([]float64, len(days))
	click := make([]float64, len(days))
	sent := make([]int64, len(days))
	for i, d := range days {
		labels[i] = d.Label
		open[i] = d.AvgOpenRate
		click[i] = d.AvgClickRate
		sent[i] = d.Sent
	}

	rates := charts.Figure{
		Traces: []charts.Trace{
			{
				Type:   "bar",
				Name:   "Taxa de Abertura",
				X:      charts.Strings(labels),
				Y:      charts.Percent(open),
				Marker: &charts.Marker{Color: colorOpen},
			},
			{
				Type:   "bar",
				Name:   "Taxa de Clique",
				X:      charts.Strings(labels),
				Y:      charts.Percent(click),
				Marker: &charts.Marker{Color: colorClick},
			},
		},
		Layout: charts.Layout{
			Title:    "Taxas Médias por Dia da Semana",
			Height:   defaultHeight,
			Template: "plotly_white",
			BarMode:  "group",
			YAxis:    &charts.Axis{Title: "Taxa Média (%)"},
		},
	}
	volume := charts.Figure{
		Traces: []charts.Trace{{
			Type:   "bar",
			X:      charts.Strings(labels),
			Y:      charts.Ints(sent),
			Marker: &charts.Marker{Color: colorVolume},
		}},
		Layout: charts.Layout{
			Title:      "Volume de Envios por Dia da Semana",
			Height:     defaultHeight,
			Template:   "plotly_white",
			YAxis:      &charts.Axis{Title: "Emails Enviados"},
			ShowLegend: charts.Bool(false),
		},
	}
	return []charts.Figure{rates, volume}
}

// Dashboard builds the overview page figures: the joint rate evolution
// line chart, the weekly volume bars and the top automations by open
// rate.
func Dashboard(summaries []email.WeekSummary, perf []email.AutomationPerformance) []charts.Figure {
	labels := weekLabels(summaries)
	open := make([]float64, len(summaries))
	click := make([]float64, len(summaries))
	ctor := make([]float64, len(summaries))
	sent := make([]int64, len(summaries))
	for i, s := range summaries {
		open[i] = s.Open
		click[i] = s.Click
		ctor[i] = s.CTOR
		sent[i] = s.Sent
	}

	evolution := charts.Figure{
		Traces: []charts.Trace{
			{
				Type: "scatter", Mode: "lines+markers", Name: "Taxa de Abertura",
				X: charts.Strings(labels), Y: charts.Percent(open),
				Line: &charts.Line{Color: colorOpen, Width: 2},
			},
			{
				Type: "scatter", Mode: "lines+markers", Name: "Taxa de Clique",
				X: charts.Strings(labels), Y: charts.Percent(click),
				Line: &charts.Line{Color: colorClick, Width: 2},
			},
			{
				Type: "scatter", Mode: "lines+markers", Name: "CTOR",
				X: charts.Strings(labels), Y: charts.Percent(ctor),
				Line: &charts.Line{Color: colorCTOR, Width: 2},
			},
		},
		Layout: charts.Layout{
			Title:    "Evolução das Taxas",
			Height:   defaultHeight,
			Template: "plotly_white",
			YAxis:    &charts.Axis{Title: "Taxa (%)"},
		},
	}

	volume := charts.Figure{
		Traces: []charts.Trace{{
			Type:   "bar",
			X:      charts.Strings(labels),
			Y:      charts.Ints(sent),
			Text:   countLabels(sent),
			Marker: &charts.Marker{Color: colorVolume},
		}},
		Layout: charts.Layout{
			Title:      "Volume de Envios",
			Height:     defaultHeight,
			Template:   "plotly_white",
			YAxis:      &charts.Axis{Title: "Emails Enviados"},
			ShowLegend: charts.Bool(false),
		},
	}

	figures := []charts.Figure{evolution, volume}

	if len(perf) > 0 {
		sorted := make([]email.AutomationPerformance, len(perf))
		copy(sorted, perf)
		sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Open > sorted[j].Open })
		if len(sorted) > 5 {
			sorted = sorted[:5]
		}
		names := make([]string, len(sorted))
		rates := make([]float64, len(sorted))
		for i, a := range sorted {
			j := len(sorted) - 1 - i
			names[j] = truncate(string(a.Automation), 30)
			rates[j] = a.Open
		}
		figures = append(figures, hbarFigure("Melhores Automações por Taxa de Abertura", "Taxa de Abertura (%)", names, charts.Percent(rates), colorOpen))
	}
	return figures
}

func countLabels(counts []int64) []string {
	out := make([]string, len(counts))
	for i, c := range counts {
		out[i] = fmt.Sprintf("%d", c)
	}
	return out
}
