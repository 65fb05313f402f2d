// Package exporter writes the aggregated report tables to an XLSX
// workbook for offline consumption.
package exporter

import (
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Manuqueiroz1/relatorio-email/domain/email"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
)

const (
	sheetSummary     = "Resumo Semanal"
	sheetAutomations = "Automações"
	sheetWeekly      = "Automações por Semana"
	sheetSubjects    = "Assuntos"
)

// Workbook collects the tables to export.
type Workbook struct {
	Summaries   []email.WeekSummary
	Automations []email.AutomationPerformance
	Weekly      []email.WeeklyAutomationPerformance
	Subjects    []email.SubjectPerformance
}

// BuildWorkbook assembles an export workbook from the processor.
func BuildWorkbook(p *report.Processor, minEmails int64) (*Workbook, error) {
	summaries, err := p.AllWeekSummaries()
	if err != nil {
		return nil, err
	}
	wb := &Workbook{Summaries: summaries}

	// Mapping-dependent tables are optional; a workbook with only the
	// weekly summary is still useful before the mapping is uploaded.
	if autos, err := p.AutomationPerformance(minEmails); err == nil {
		wb.Automations = autos
	}
	if weekly, err := p.WeeklyAutomationPerformance(); err == nil {
		wb.Weekly = weekly
	}
	if subjects, err := p.SubjectPerformance(minEmails); err == nil {
		wb.Subjects = subjects
	}
	return wb, nil
}

// WriteTo renders the workbook as an XLSX document.
func (wb *Workbook) WriteTo(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSheet(f, sheetSummary, summaryHeaders, summaryRows(wb.Summaries)); err != nil {
		return err
	}
	if len(wb.Automations) > 0 {
		if err := writeSheet(f, sheetAutomations, automationHeaders, automationRows(wb.Automations)); err != nil {
			return err
		}
	}
	if len(wb.Weekly) > 0 {
		if err := writeSheet(f, sheetWeekly, weeklyHeaders, weeklyRows(wb.Weekly)); err != nil {
			return err
		}
	}
	if len(wb.Subjects) > 0 {
		if err := writeSheet(f, sheetSubjects, subjectHeaders, subjectRows(wb.Subjects)); err != nil {
			return err
		}
	}

	// The default Sheet1 only exists because excelize creates it.
	if idx, err := f.GetSheetIndex("Sheet1"); err == nil && idx != -1 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return errors.Wrap(err, "removing default sheet")
		}
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "writing workbook")
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]interface{}) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return errors.Wrapf(err, "creating sheet %s", sheet)
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return errors.Wrapf(err, "writing header of %s", sheet)
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrapf(err, "writing row %d of %s", r+2, sheet)
			}
		}
	}
	return nil
}

var summaryHeaders = []string{
	"Semana", "Enviados", "Entregues", "Abertos", "Clicados", "Bounces", "Descadastros",
	"Taxa de Entrega (%)", "Taxa de Abertura (%)", "Taxa de Clique (%)", "CTOR (%)",
	"Taxa de Bounce (%)", "Taxa de Descadastro (%)",
}

func summaryRows(summaries []email.WeekSummary) [][]interface{} {
	rows := make([][]interface{}, len(summaries))
	for i, s := range summaries {
		rows[i] = append([]interface{}{string(s.Week)}, totalsCells(s.Totals, s.Rates)...)
	}
	return rows
}

var automationHeaders = append([]string{"Automação"}, summaryHeaders[1:]...)

func automationRows(autos []email.AutomationPerformance) [][]interface{} {
	rows := make([][]interface{}, len(autos))
	for i, a := range autos {
		rows[i] = append([]interface{}{string(a.Automation)}, totalsCells(a.Totals, a.Rates)...)
	}
	return rows
}

var weeklyHeaders = append([]string{"Automação", "Semana"}, summaryHeaders[1:]...)

func weeklyRows(weekly []email.WeeklyAutomationPerformance) [][]interface{} {
	rows := make([][]interface{}, len(weekly))
	for i, w := range weekly {
		rows[i] = append([]interface{}{string(w.Automation), string(w.Week)}, totalsCells(w.Totals, w.Rates)...)
	}
	return rows
}

var subjectHeaders = append(
	append([]string{"Assunto"}, summaryHeaders[1:]...),
	"Tamanho", "Personalização", "Pergunta", "Número",
)

func subjectRows(subjects []email.SubjectPerformance) [][]interface{} {
	rows := make([][]interface{}, len(subjects))
	for i, s := range subjects {
		row := append([]interface{}{s.Subject}, totalsCells(s.Totals, s.Rates)...)
		row = append(row, s.Length, simNao(s.HasPersonalization), simNao(s.HasQuestion), simNao(s.HasNumber))
		rows[i] = row
	}
	return rows
}

func totalsCells(t email.Totals, r email.Rates) []interface{} {
	return []interface{}{
		t.Sent, t.Delivered, t.Opened, t.Clicked, t.Bounced, t.Unsubscribed,
		round2(r.Delivery * 100), round2(r.Open * 100), round2(r.Click * 100),
		round2(r.CTOR * 100), round2(r.Bounce * 100), round2(r.Unsubscribe * 100),
	}
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}

func simNao(b bool) string {
	if b {
		return "Sim"
	}
	return "Não"
}
