package ports

// TableData represents a parsed tabular upload: headers plus string rows.
type TableData struct {
	Headers []string
	Rows    []map[string]string
}

// TableReader parses an uploaded file (CSV or XLSX) into tabular form.
type TableReader interface {
	ReadData() (*TableData, error)
}
