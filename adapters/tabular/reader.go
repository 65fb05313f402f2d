// Package tabular reads uploaded CSV and XLSX files into the tabular
// form the ingestion pipeline consumes.
package tabular

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Manuqueiroz1/relatorio-email/ports"
)

// DataReader handles reading Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" || ext == ".xls" {
		fileType = "xlsx"
	}
	return &DataReader{filePath: filePath, fileType: fileType}
}

// ReadData reads data from Excel or CSV files into structured format
func (r *DataReader) ReadData() (*ports.TableData, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// readExcelData reads the first sheet of an Excel workbook
func (r *DataReader) readExcelData() (*ports.TableData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("Excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("Excel file must have at least a header row and one data row")
	}

	return r.processRows(rows)
}

// readCSVData reads CSV data into structured format
func (r *DataReader) readCSVData() (*ports.TableData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadCSV(file)
}

// ReadCSV parses CSV content from any reader, used directly for uploads
// that are already in memory.
func ReadCSV(rd io.Reader) (*ports.TableData, error) {
	reader := csv.NewReader(rd)
	// Weekly exports occasionally carry ragged trailing columns.
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}

	if len(rows) < 2 {
		return nil, fmt.Errorf("CSV file must have at least a header row and one data row")
	}

	return (&DataReader{fileType: "csv"}).processRows(rows)
}

// processRows converts raw string rows into TableData format
func (r *DataReader) processRows(rows [][]string) (*ports.TableData, error) {
	// Header cells arrive with stray whitespace and quotes from some exports
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = CleanHeader(header)
	}

	var dataRows []map[string]string
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		rowData := make(map[string]string)

		for j, cell := range row {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}

		dataRows = append(dataRows, rowData)
	}

	log.Printf("[DataReader] %s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ports.TableData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

// CleanHeader normalizes a header cell: trims whitespace and strips the
// stray quotes some export tools leave behind.
func CleanHeader(header string) string {
	return strings.ReplaceAll(strings.TrimSpace(header), `"`, "")
}
