package ui

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	domaincharts "github.com/Manuqueiroz1/relatorio-email/domain/charts"
	"github.com/Manuqueiroz1/relatorio-email/internal/charts"
	"github.com/Manuqueiroz1/relatorio-email/internal/exporter"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
)

// minEmails reads the min_emails query parameter, falling back to the
// configured default.
func (a *App) minEmails(r *http.Request, fallback int) int64 {
	if raw := r.URL.Query().Get("min_emails"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			return int64(v)
		}
	}
	return int64(fallback)
}

func (a *App) handleOverviewJSON(w http.ResponseWriter, r *http.Request) {
	overview, err := a.processor.Overview(a.minEmails(r, a.cfg.Report.MinEmailsAutomations))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, overview)
}

func (a *App) handleWeeksJSON(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.processor.AllWeekSummaries()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"semanas": a.processor.AvailableWeeks(),
		"resumos": summaries,
	})
}

func (a *App) handleAutomationsJSON(w http.ResponseWriter, r *http.Request) {
	perf, err := a.processor.AutomationPerformance(a.minEmails(r, a.cfg.Report.MinEmailsAutomations))
	if err != nil {
		a.writeError(w, err)
		return
	}
	if metric := r.URL.Query().Get("ordenar"); metric != "" {
		report.SortAutomations(perf, metric)
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"automacoes": perf})
}

func (a *App) handleSubjectsJSON(w http.ResponseWriter, r *http.Request) {
	perf, err := a.processor.SubjectPerformance(a.minEmails(r, a.cfg.Report.MinEmailsSubjects))
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, map[string]interface{}{"assuntos": perf})
}

// chartsPayload is the envelope of every charts endpoint: a list of
// independent figures the front end lays out in order.
type chartsPayload struct {
	Figures []domaincharts.Figure `json:"figures"`
}

func (a *App) handleDashboardCharts(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.processor.AllWeekSummaries()
	if err != nil {
		a.writeError(w, err)
		return
	}
	// The automation ranking panel is optional on the overview; it
	// needs the mapping, which may not be loaded yet.
	perf, _ := a.processor.AutomationPerformance(a.minEmails(r, a.cfg.Report.MinEmailsAutomations))
	a.writeJSON(w, http.StatusOK, chartsPayload{Figures: charts.Dashboard(summaries, perf)})
}

func (a *App) handleWeeklyCharts(w http.ResponseWriter, r *http.Request) {
	summaries, err := a.processor.AllWeekSummaries()
	if err != nil {
		a.writeError(w, err)
		return
	}
	figures := charts.WeeklyMetrics(summaries)

	if weekly, err := a.processor.WeeklyAutomationPerformance(); err == nil {
		figures = append(figures, charts.WeeklyHeatmaps(weekly, a.processor.AvailableWeeks())...)
	}
	if changes, err := a.processor.WeekOverWeekChanges(); err == nil {
		figures = append(figures, charts.WeekOverWeek(changes, a.processor.AvailableWeeks())...)
	}
	a.writeJSON(w, http.StatusOK, chartsPayload{Figures: figures})
}

func (a *App) handleAutomationCharts(w http.ResponseWriter, r *http.Request) {
	perf, err := a.processor.AutomationPerformance(a.minEmails(r, a.cfg.Report.MinEmailsAutomations))
	if err != nil {
		a.writeError(w, err)
		return
	}
	figures := charts.TopAutomations(perf, a.cfg.Report.TopAutomations)

	if matrix, err := report.CorrelationMatrix(perf); err == nil {
		figures = append(figures, charts.Correlation(matrix))
	}
	a.writeJSON(w, http.StatusOK, chartsPayload{Figures: figures})
}

func (a *App) handleSubjectCharts(w http.ResponseWriter, r *http.Request) {
	perf, err := a.processor.SubjectPerformance(a.minEmails(r, a.cfg.Report.MinEmailsSubjects))
	if err != nil {
		a.writeError(w, err)
		return
	}
	figures := charts.SubjectCharts(perf)

	if days, err := a.processor.DayOfWeekPerformance(); err == nil {
		figures = append(figures, charts.DayOfWeek(days)...)
	}
	a.writeJSON(w, http.StatusOK, chartsPayload{Figures: figures})
}

func (a *App) handleExportXLSX(w http.ResponseWriter, r *http.Request) {
	wb, err := exporter.BuildWorkbook(a.processor, a.minEmails(r, a.cfg.Report.MinEmailsAutomations))
	if err != nil {
		a.writeError(w, err)
		return
	}

	filename := fmt.Sprintf("relatorio_email_%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := wb.WriteTo(w); err != nil {
		a.logger.Error("writing xlsx export: %v", err)
	}
}
