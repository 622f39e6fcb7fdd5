package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/taskman/internal/todo"
)

// Formats accepted by Export.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
)

// Formats returns the supported export formats.
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatPDF}
}

// Export encodes the report in the given format.
func Export(r Report, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return []byte(TaskOverview(r) + "\n\n" + UserOverview(r) + "\n"), nil
	case FormatJSON:
		data, err := json.MarshalIndent(exportView(r), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		return append(data, '\n'), nil
	case FormatYAML:
		data, err := yaml.Marshal(exportView(r))
		if err != nil {
			return nil, fmt.Errorf("marshal report: %w", err)
		}
		return data, nil
	case FormatCSV:
		return exportCSV(r)
	case FormatPDF:
		return exportPDF(r)
	default:
		return nil, fmt.Errorf("unknown format %s (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

// view is the serialized shape of a report, with the date in record format.
type view struct {
	GeneratedOn    string      `json:"generated_on" yaml:"generated_on"`
	TotalTasks     int         `json:"total_tasks" yaml:"total_tasks"`
	Completed      int         `json:"completed" yaml:"completed"`
	Uncompleted    int         `json:"uncompleted" yaml:"uncompleted"`
	Overdue        int         `json:"overdue" yaml:"overdue"`
	PctUncompleted float64     `json:"pct_uncompleted" yaml:"pct_uncompleted"`
	PctOverdue     float64     `json:"pct_overdue" yaml:"pct_overdue"`
	TotalUsers     int         `json:"total_users" yaml:"total_users"`
	Users          []UserStats `json:"users" yaml:"users"`
}

func exportView(r Report) view {
	users := r.Users
	if users == nil {
		users = []UserStats{}
	}
	return view{
		GeneratedOn:    todo.FormatDate(r.GeneratedOn),
		TotalTasks:     r.TotalTasks,
		Completed:      r.Completed,
		Uncompleted:    r.Uncompleted,
		Overdue:        r.Overdue,
		PctUncompleted: r.PctUncompleted,
		PctOverdue:     r.PctOverdue,
		TotalUsers:     r.TotalUsers,
		Users:          users,
	}
}

func exportCSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"username", "tasks", "completed", "uncompleted", "overdue", "pct_of_total", "pct_completed", "pct_uncompleted", "pct_overdue"})
	for _, u := range r.Users {
		_ = w.Write([]string{
			u.Username,
			strconv.Itoa(u.Tasks),
			strconv.Itoa(u.Completed),
			strconv.Itoa(u.Uncompleted),
			strconv.Itoa(u.Overdue),
			Percent(u.PctOfTotal),
			Percent(u.PctCompleted),
			Percent(u.PctUncompleted),
			Percent(u.PctOverdue),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func exportPDF(r Report) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "Task Overview")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"Generated on", todo.FormatDate(r.GeneratedOn)},
		{"Total tasks", strconv.Itoa(r.TotalTasks)},
		{"Completed tasks", strconv.Itoa(r.Completed)},
		{"Uncompleted tasks", strconv.Itoa(r.Uncompleted)},
		{"Overdue tasks", strconv.Itoa(r.Overdue)},
		{"Uncompleted", Percent(r.PctUncompleted)},
		{"Overdue", Percent(r.PctOverdue)},
	}
	for _, row := range summary {
		pdf.CellFormat(60, 6, row[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(40, 6, row[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(40, 10, "User Overview")
	pdf.Ln(12)

	headers := []string{"User", "Tasks", "% of total", "% done", "% open", "% overdue"}
	widths := []float64{50, 20, 28, 28, 28, 28}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, u := range r.Users {
		cells := []string{
			u.Username,
			strconv.Itoa(u.Tasks),
			Percent(u.PctOfTotal),
			Percent(u.PctCompleted),
			Percent(u.PctUncompleted),
			Percent(u.PctOverdue),
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, c, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
