package export

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestSubjectRosterPDF(t *testing.T) {
	subject := models.Subject{Name: "Redes Locais", Level: models.LevelSMR, Year: 1}
	entries := []RosterEntry{
		{Name: "Antía", Surname: "García", Email: "antia@example.com", FinalGrade: floatPtr(7.4)},
		{Name: "Breixo", Surname: "Souto", Email: "breixo@example.com"},
	}
	data, err := SubjectRosterPDF(subject, entries)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestStudentGradesPDF(t *testing.T) {
	student := models.Student{Name: "Antía", Surname: "García"}
	rows := []StudentReportRow{
		{
			SubjectName: "Redes Locais",
			Evaluations: []models.EvaluationGrade{{EvaluationID: "ev1", FinalGrade: floatPtr(8)}},
			FinalGrade:  floatPtr(8),
		},
		{SubjectName: "Sistemas Operativos"},
	}
	data, err := StudentGradesPDF(student, rows)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSubjectStatsPDF(t *testing.T) {
	stats := models.SubjectStats{
		SubjectName:  "Redes Locais",
		Level:        models.LevelSMR,
		StudentCount: 10,
		GradedCount:  8,
		Mean:         6.2,
		Min:          2.1,
		Max:          9.8,
		PassCount:    6,
		FailCount:    2,
		PassRate:     75,
		Distribution: []models.GradeBucket{{Label: "5-6.9", From: 5, To: 6.9, Count: 3}},
		Evaluations:  []models.EvaluationStats{{EvaluationID: "ev1", Number: 1, GradedCount: 8, Mean: 6.0, PassCount: 6, FailCount: 2}},
	}
	data, err := SubjectStatsPDF(stats)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestSubjectRosterCSV(t *testing.T) {
	subject := models.Subject{Name: "Redes Locais"}
	entries := []RosterEntry{
		{Name: "Antía", Surname: "García", Email: "antia@example.com", FinalGrade: floatPtr(7.4)},
		{Name: "Breixo", Surname: "Souto", Email: "breixo@example.com"},
	}
	data, err := SubjectRosterCSV(subject, entries)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "apelidos,nome,email,nota_final", lines[0])
	assert.Contains(t, lines[1], "7.40")
	assert.True(t, strings.HasSuffix(lines[2], ","))
}

func TestZipBundle(t *testing.T) {
	data, err := ZipBundle([]ZipEntry{
		{Name: "garcia_antia.pdf", Data: []byte("%PDF-1.4 one")},
		{Name: "souto_breixo.pdf", Data: []byte("%PDF-1.4 two")},
	})
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	assert.Equal(t, "garcia_antia.pdf", reader.File[0].Name)

	_, err = ZipBundle(nil)
	assert.Error(t, err)
}
