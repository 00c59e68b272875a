package dataset

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Load reads the score table at path, dispatching on the file
// extension. Malformed rows are skipped with a warning; an unreadable
// file or an empty result is an error, which is fatal at startup.
func Load(path string, logger *slog.Logger) ([]PercentileRecord, error) {
	var (
		rows [][]string
		err  error
	)

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("unsupported dataset format: %s", path)
	}
	if err != nil {
		return nil, err
	}

	records, err := parseRows(rows, logger)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	logger.Info("dataset loaded",
		slog.String("path", path),
		slog.Int("rows", len(rows)-1),
		slog.Int("records", len(records)))

	return records, nil
}

// readCSV reads all rows of a CSV file including the header row.
func readCSV(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	return rows, nil
}

// readXLSX reads the score sheet of a workbook. The expected sheet is
// found by probing known names first, then by header inspection, since
// upstream spreadsheets are not consistent about sheet naming.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset: %w", err)
	}
	defer f.Close()

	for _, name := range []string{"Scores", "scores", "Data", "Sheet1"} {
		if rows, err := f.GetRows(name); err == nil && len(rows) > 1 {
			return rows, nil
		}
	}

	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil || len(rows) < 2 {
			continue
		}
		header := strings.ToLower(strings.Join(rows[0], " "))
		if strings.Contains(header, "state") && strings.Contains(header, "percentile") {
			return rows, nil
		}
	}

	return nil, fmt.Errorf("could not find score sheet in %s", path)
}

// column keys after header normalization
const (
	colState       = "state"
	colSubject     = "subject"
	colGrade       = "grade"
	colPercentile  = "percentile"
	colScore2019   = "score2019"
	colScore2024   = "score2024"
	colSE2019      = "se2019"
	colSE2024      = "se2024"
	colSignificant = "significant"
)

var requiredColumns = []string{
	colState, colSubject, colGrade, colPercentile,
	colScore2019, colScore2024, colSE2019, colSE2024,
}

// normalizeHeader maps header spellings like "Score.2019", "SE_2024" or
// "score 2019" onto the canonical column keys.
func normalizeHeader(cell string) string {
	s := strings.ToLower(strings.TrimSpace(cell))
	for _, cut := range []string{".", "_", " ", "-"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}

// parseRows converts raw table rows into records using a dynamic header
// map, so column order in the source file does not matter.
func parseRows(rows [][]string, logger *slog.Logger) ([]PercentileRecord, error) {
	if len(rows) < 2 {
		return nil, ErrEmptyDataset
	}

	columns := make(map[string]int)
	for i, cell := range rows[0] {
		columns[normalizeHeader(cell)] = i
	}
	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("dataset missing column %q", col)
		}
	}
	_, hasSignificant := columns[colSignificant]

	records := make([]PercentileRecord, 0, len(rows)-1)
	for i, row := range rows[1:] {
		rec, err := parseRow(row, columns, hasSignificant)
		if err != nil {
			logger.Warn("skipping malformed dataset row",
				slog.Int("row", i+2),
				slog.String("error", err.Error()))
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, ErrEmptyDataset
	}
	return records, nil
}

func parseRow(row []string, columns map[string]int, hasSignificant bool) (PercentileRecord, error) {
	cell := func(col string) string {
		i := columns[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	state := cell(colState)
	if state == "" {
		return PercentileRecord{}, fmt.Errorf("empty state")
	}

	subject, err := ParseSubject(cell(colSubject))
	if err != nil {
		return PercentileRecord{}, err
	}

	gradeVal, err := strconv.Atoi(cell(colGrade))
	if err != nil {
		return PercentileRecord{}, fmt.Errorf("invalid grade %q", cell(colGrade))
	}
	grade, err := ParseGrade(gradeVal)
	if err != nil {
		return PercentileRecord{}, err
	}

	percentile, err := strconv.Atoi(cell(colPercentile))
	if err != nil || !validPercentile(percentile) {
		return PercentileRecord{}, fmt.Errorf("invalid percentile %q", cell(colPercentile))
	}

	floats := make(map[string]float64, 4)
	for _, col := range []string{colScore2019, colScore2024, colSE2019, colSE2024} {
		v, err := strconv.ParseFloat(cell(col), 64)
		if err != nil {
			return PercentileRecord{}, fmt.Errorf("invalid %s %q", col, cell(col))
		}
		floats[col] = v
	}

	rec := PercentileRecord{
		State:      state,
		Subject:    subject,
		Grade:      grade,
		Percentile: percentile,
		Score2019:  floats[colScore2019],
		Score2024:  floats[colScore2024],
		SE2019:     floats[colSE2019],
		SE2024:     floats[colSE2024],
	}

	if hasSignificant {
		if raw := cell(colSignificant); raw != "" {
			sig, err := parseBool(raw)
			if err != nil {
				return PercentileRecord{}, err
			}
			rec.Significant = &sig
		}
	}

	return rec, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "t", "yes", "1":
		return true, nil
	case "false", "f", "no", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid significant flag %q", s)
	}
}
