package ui

import (
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/Manuqueiroz1/relatorio-email/adapters/tabular"
	"github.com/Manuqueiroz1/relatorio-email/internal/errors"
	"github.com/Manuqueiroz1/relatorio-email/internal/ingest"
	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// uploadResult reports the outcome of one uploaded file.
type uploadResult struct {
	Filename string   `json:"arquivo"`
	Week     string   `json:"semana,omitempty"`
	Rows     int      `json:"linhas"`
	Dropped  int      `json:"descartadas,omitempty"`
	Warnings []string `json:"avisos,omitempty"`
	Error    string   `json:"erro,omitempty"`
}

func validUploadExtension(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv", ".xlsx", ".xls":
		return true
	}
	return false
}

// stageAndRead stages an uploaded file, parses it into a table and
// removes the staged copy.
func (a *App) stageAndRead(file multipart.File, filename string) (*ports.TableData, error) {
	stagedPath, err := a.staging.Store(file, filename)
	if err != nil {
		return nil, errors.Wrapf(err, "staging %s", filename)
	}
	defer func() {
		if err := a.staging.Delete(stagedPath); err != nil {
			a.logger.Warn("removing staged file %s: %v", stagedPath, err)
		}
	}()

	return tabular.NewDataReader(stagedPath).ReadData()
}

// handleWeeklyUpload ingests one or more weekly exports in a single
// multipart request. Files are processed independently: a bad file is
// reported in its result without failing the batch.
func (a *App) handleWeeklyUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.cfg.Storage.MaxUploadSize); err != nil {
		a.writeError(w, errors.FileInvalid("could not parse multipart request"))
		return
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		a.writeError(w, errors.FileInvalid("no files uploaded"))
		return
	}

	results := make([]uploadResult, 0, len(headers))
	ok := 0
	for _, header := range headers {
		result := a.ingestWeeklyFile(r, header)
		if result.Error == "" {
			ok++
		}
		results = append(results, result)
	}

	status := http.StatusOK
	if ok == 0 {
		status = http.StatusBadRequest
	}
	a.writeJSON(w, status, map[string]interface{}{
		"processados": ok,
		"resultados":  results,
	})
}

func (a *App) ingestWeeklyFile(r *http.Request, header *multipart.FileHeader) uploadResult {
	result := uploadResult{Filename: header.Filename}

	if header.Size > a.cfg.Storage.MaxUploadSize {
		result.Error = fmt.Sprintf("file exceeds the %d MB limit", a.cfg.Storage.MaxUploadSize/(1024*1024))
		return result
	}
	if !validUploadExtension(header.Filename) {
		result.Error = "only .csv, .xlsx and .xls files are accepted"
		return result
	}

	file, err := header.Open()
	if err != nil {
		result.Error = err.Error()
		return result
	}
	defer file.Close()

	table, err := a.stageAndRead(file, header.Filename)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if err := ingest.ValidateColumns(table, ingest.RequiredWeeklyColumns); err != nil {
		result.Error = err.Error()
		return result
	}

	week := ingest.WeekLabelFromFilename(header.Filename, time.Now())
	records, report, err := ingest.CleanWeekly(table, week)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	if err := a.processor.AddWeek(r.Context(), week, records); err != nil {
		result.Error = err.Error()
		return result
	}

	result.Week = string(week)
	result.Rows = report.RowsKept
	result.Dropped = report.Dropped
	result.Warnings = report.Warnings
	a.logger.Info("ingested %s as %q: %d rows kept, %d dropped", header.Filename, week, report.RowsKept, report.Dropped)
	return result
}

// handleMappingUpload ingests the message-to-automation mapping file.
func (a *App) handleMappingUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(a.cfg.Storage.MaxUploadSize); err != nil {
		a.writeError(w, errors.FileInvalid("could not parse multipart request"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.writeError(w, errors.FileInvalid("no mapping file uploaded"))
		return
	}
	defer file.Close()

	if !validUploadExtension(header.Filename) {
		a.writeError(w, errors.FileInvalid("only .csv, .xlsx and .xls files are accepted"))
		return
	}

	table, err := a.stageAndRead(file, header.Filename)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := ingest.ValidateColumns(table, ingest.RequiredMappingColumns); err != nil {
		a.writeError(w, err)
		return
	}

	mapping, report, err := ingest.CleanMapping(table)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if err := a.processor.SetMapping(r.Context(), mapping); err != nil {
		a.writeError(w, err)
		return
	}

	a.logger.Info("mapping loaded from %s: %d entries", header.Filename, len(mapping.Entries))
	a.writeJSON(w, http.StatusOK, map[string]interface{}{
		"entradas": len(mapping.Entries),
		"avisos":   report.Warnings,
	})
}
