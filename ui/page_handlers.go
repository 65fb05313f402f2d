package ui

import (
	"net/http"

	"github.com/Manuqueiroz1/relatorio-email/domain/core"
	"github.com/Manuqueiroz1/relatorio-email/internal/report"
)

// pageData is the common payload of every rendered page.
type pageData struct {
	Title      string
	Active     string
	HasData    bool
	HasMapping bool
	Weeks      []core.WeekLabel
	Overview   *report.Overview
}

func (a *App) basePageData(title, active string) pageData {
	data := pageData{
		Title:      title,
		Active:     active,
		HasData:    a.processor.HasData(),
		HasMapping: a.processor.HasMapping(),
		Weeks:      a.processor.AvailableWeeks(),
	}
	if data.HasData {
		if ov, err := a.processor.Overview(int64(a.cfg.Report.MinEmailsAutomations)); err == nil {
			data.Overview = ov
		}
	}
	return data
}

func (a *App) handleDashboard(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "dashboard.html", a.basePageData("Visão Geral", "dashboard"))
}

func (a *App) handleWeekly(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "semanal.html", a.basePageData("Análise Semanal", "semanal"))
}

func (a *App) handleAutomations(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "automacoes.html", a.basePageData("Análise de Automações", "automacoes"))
}

func (a *App) handleSubjects(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "assuntos.html", a.basePageData("Análise de Assuntos", "assuntos"))
}

func (a *App) handleUploadPage(w http.ResponseWriter, r *http.Request) {
	a.renderTemplate(w, "upload.html", a.basePageData("Upload de Dados", "upload"))
}
