// Package export renders reports as the CSV file handed to operators.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/abelzeko/petrodata/internal/entities"
)

// Header is the fixed column order of every export.
var Header = []string{
	"Date",
	"Field Name",
	"Well ID",
	"Oil Produced (BBL)",
	"Gas Produced (MCF)",
	"Water Produced (BBL)",
	"Employees Affected by Accidents",
	"Weather Condition",
	"Notes",
}

// EncodeCSV renders reports as CSV text. An empty input gives an empty string.
// Field name, well ID and notes are always quoted; only notes get embedded
// quotes doubled. Rows are separated by "\n" with no trailing newline.
func EncodeCSV(reports []entities.DailyReport) string {
	if len(reports) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString(strings.Join(Header, ","))
	for _, r := range reports {
		b.WriteByte('\n')
		b.WriteString(strings.Join(row(r), ","))
	}
	return b.String()
}

func row(r entities.DailyReport) []string {
	return []string{
		r.Date.String(),
		`"` + r.FieldName + `"`,
		`"` + r.WellID + `"`,
		formatNumber(r.OilProducedBbl),
		formatNumber(r.GasProducedMcf),
		formatNumber(r.WaterProducedBbl),
		strconv.Itoa(r.EmployeesAffected),
		string(r.WeatherCondition),
		`"` + strings.ReplaceAll(r.Notes, `"`, `""`) + `"`,
	}
}

// formatNumber prints the shortest exact decimal form: 1000, 812.5.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FileName is the download name of an export made at t.
func FileName(t time.Time) string {
	return fmt.Sprintf("petrodata_export_%s.csv", t.Format(entities.DateLayout))
}

// WriteFile writes the export of reports into dir and returns the file path.
func WriteFile(dir string, at time.Time, reports []entities.DailyReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, FileName(at))
	if err := os.WriteFile(path, []byte(EncodeCSV(reports)), 0644); err != nil {
		return "", fmt.Errorf("failed to write export %s: %w", path, err)
	}
	return path, nil
}
