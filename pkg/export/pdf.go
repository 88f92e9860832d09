// Package export renders grade data into downloadable report files: PDF
// documents, CSV rosters and zip bundles.
package export

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// RosterEntry is one student row of a subject roster.
type RosterEntry struct {
	Name       string
	Surname    string
	Email      string
	FinalGrade *float64
}

// StudentReportRow is one subject row of a student grade report.
type StudentReportRow struct {
	SubjectName string
	Level       models.EducationalLevel
	Evaluations []models.EvaluationGrade
	FinalGrade  *float64
}

func newReportPDF(title, subtitle string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, title, "", 1, "C", false, 0, "")
	if subtitle != "" {
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 6, subtitle, "", 1, "C", false, 0, "")
	}
	pdf.Ln(4)
	return pdf
}

func renderPDF(pdf *gofpdf.Fpdf) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func tableHeader(pdf *gofpdf.Fpdf, widths []float64, labels []string) {
	pdf.SetFont("Arial", "B", 10)
	for i, label := range labels {
		pdf.CellFormat(widths[i], 8, label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 9)
}

func gradeCell(grade *float64) string {
	if grade == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *grade)
}

// SubjectRosterPDF renders the enrolled students of a subject with their
// final grades.
func SubjectRosterPDF(subject models.Subject, entries []RosterEntry) ([]byte, error) {
	pdf := newReportPDF(subject.Name,
		fmt.Sprintf("%s - curso %d - %d alumnos", subject.Level, subject.Year, len(entries)))

	widths := []float64{60, 50, 55, 25}
	tableHeader(pdf, widths, []string{"Apelidos", "Nome", "Email", "Nota final"})
	for _, entry := range entries {
		pdf.CellFormat(widths[0], 7, entry.Surname, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, entry.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, entry.Email, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[3], 7, gradeCell(entry.FinalGrade), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	return renderPDF(pdf)
}

// StudentGradesPDF renders one student's grades across all enrolled subjects,
// one evaluation column set per subject row.
func StudentGradesPDF(student models.Student, rows []StudentReportRow) ([]byte, error) {
	pdf := newReportPDF(
		fmt.Sprintf("%s, %s", student.Surname, student.Name),
		fmt.Sprintf("Boletin de notas - %d materias", len(rows)))

	widths := []float64{70, 95, 25}
	tableHeader(pdf, widths, []string{"Materia", "Avaliacions", "Nota final"})
	for _, row := range rows {
		evals := ""
		for i, eg := range row.Evaluations {
			if i > 0 {
				evals += "  "
			}
			evals += fmt.Sprintf("Av%d: %s", i+1, gradeCell(eg.FinalGrade))
		}
		if evals == "" {
			evals = "-"
		}
		pdf.CellFormat(widths[0], 7, row.SubjectName, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, evals, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[2], 7, gradeCell(row.FinalGrade), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}
	return renderPDF(pdf)
}

// SubjectStatsPDF renders the aggregate statistics of a subject.
func SubjectStatsPDF(stats models.SubjectStats) ([]byte, error) {
	pdf := newReportPDF(stats.SubjectName, fmt.Sprintf("Estatisticas - %s", stats.Level))

	summary := [][2]string{
		{"Alumnos matriculados", fmt.Sprintf("%d", stats.StudentCount)},
		{"Alumnos con nota", fmt.Sprintf("%d", stats.GradedCount)},
		{"Media", fmt.Sprintf("%.2f", stats.Mean)},
		{"Minima", fmt.Sprintf("%.2f", stats.Min)},
		{"Maxima", fmt.Sprintf("%.2f", stats.Max)},
		{"Aprobados", fmt.Sprintf("%d", stats.PassCount)},
		{"Suspensos", fmt.Sprintf("%d", stats.FailCount)},
		{"Taxa de aprobados", fmt.Sprintf("%.1f%%", stats.PassRate)},
	}
	pdf.SetFont("Arial", "", 10)
	for _, row := range summary {
		pdf.CellFormat(80, 7, row[0], "1", 0, "", false, 0, "")
		pdf.CellFormat(40, 7, row[1], "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(6)
	widths := []float64{60, 30}
	tableHeader(pdf, widths, []string{"Tramo", "Alumnos"})
	for _, bucket := range stats.Distribution {
		pdf.CellFormat(widths[0], 7, bucket.Label, "1", 0, "", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", bucket.Count), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	if len(stats.Evaluations) > 0 {
		pdf.Ln(6)
		widths = []float64{30, 30, 30, 30, 30}
		tableHeader(pdf, widths, []string{"Avaliacion", "Con nota", "Media", "Aprobados", "Suspensos"})
		for _, ev := range stats.Evaluations {
			pdf.CellFormat(widths[0], 7, fmt.Sprintf("%d", ev.Number), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", ev.GradedCount), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[2], 7, fmt.Sprintf("%.2f", ev.Mean), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[3], 7, fmt.Sprintf("%d", ev.PassCount), "1", 0, "C", false, 0, "")
			pdf.CellFormat(widths[4], 7, fmt.Sprintf("%d", ev.FailCount), "1", 0, "C", false, 0, "")
			pdf.Ln(-1)
		}
	}
	return renderPDF(pdf)
}
