package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Column names recognized in upload files. The three required columns form
// the hierarchical key each row is matched on.
const (
	ColAreaName        = "area_name"
	ColObjectiveTitle  = "objective_title"
	ColInitiativeTitle = "initiative_title"

	ColObjectiveDescription = "objective_description"
	ColQuarter              = "quarter"
	ColObjectivePriority    = "objective_priority"
	ColObjectiveStatus      = "objective_status"
	ColObjectiveProgress    = "objective_progress"
	ColObjectiveTargetDate  = "objective_target_date"

	ColInitiativeDescription = "initiative_description"
	ColInitiativePriority    = "initiative_priority"
	ColInitiativeStatus      = "initiative_status"
	ColInitiativeProgress    = "initiative_progress"
	ColInitiativeTargetDate  = "initiative_target_date"
	ColBudget                = "budget"
	ColActualCost            = "actual_cost"

	ColActivityTitle     = "activity_title"
	ColActivityCompleted = "activity_completed"
	ColAssignedToEmail   = "assigned_to_email"
)

var requiredColumns = []string{ColAreaName, ColObjectiveTitle, ColInitiativeTitle}

// Row is one parsed data row. Number is 1-indexed over data rows (the header
// row is not counted).
type Row struct {
	Number int
	Values map[string]string
}

// Get returns the trimmed value of a column, empty when absent
func (r Row) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// Has reports whether the column is present and non-empty
func (r Row) Has(column string) bool {
	return r.Get(column) != ""
}

// ParseFile parses CSV or XLSX content into header-mapped rows. The header
// row is normalized to lower case so column matching is case-insensitive.
func ParseFile(filename string, data []byte) ([]Row, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".csv":
		return parseCSV(bytes.NewReader(data))
	case ".xlsx":
		return parseXLSX(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(filename))
}

func parseCSV(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return mapRecords(records)
}

func parseXLSX(r io.Reader) ([]Row, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open XLSX: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("XLSX file has no sheets")
	}

	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read XLSX rows: %w", err)
	}
	return mapRecords(records)
}

func mapRecords(records [][]string) ([]Row, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("file must have a header row and at least one data row")
	}

	header := make([]string, len(records[0]))
	for i, name := range records[0] {
		header[i] = strings.ToLower(strings.TrimSpace(name))
	}

	for _, required := range requiredColumns {
		found := false
		for _, name := range header {
			if name == required {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	rows := make([]Row, 0, len(records)-1)
	for i, record := range records[1:] {
		values := make(map[string]string, len(header))
		for j, name := range header {
			if name == "" || j >= len(record) {
				continue
			}
			values[name] = record[j]
		}
		rows = append(rows, Row{Number: i + 1, Values: values})
	}
	return rows, nil
}
