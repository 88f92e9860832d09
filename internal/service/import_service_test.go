package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

func newImportService(t *testing.T) (*ImportService, string, *StudentService) {
	stores := newTestStores(t)
	professor := seedProfessor(t, stores)
	students := NewStudentService(stores.Students, stores.Enrollments, nil, nil)
	return NewImportService(students, nil), professor.ID, students
}

func TestImportCSVGalicianHeaders(t *testing.T) {
	svc, professorID, students := newImportService(t)
	file := strings.NewReader(
		"nome,apelidos,email,telefono\n" +
			"Antía,García,antia@example.com,600111222\n" +
			"Breixo,Souto,breixo@example.com,\n")

	result, err := svc.ImportCSV(context.Background(), professorID, file)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	list, total, err := students.List(context.Background(), professorID, models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.NotEmpty(t, list)
	assert.NotNil(t, list[0].Phone)
}

func TestImportCSVSpanishHeaders(t *testing.T) {
	svc, professorID, students := newImportService(t)
	file := strings.NewReader(
		"nombre,apellidos,correo,teléfono\n" +
			"Carmen,Alonso,carmen@example.com,600333444\n")

	result, err := svc.ImportCSV(context.Background(), professorID, file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)

	list, total, err := students.List(context.Background(), professorID, models.StudentFilter{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.NotEmpty(t, list)
	assert.Equal(t, "carmen@example.com", list[0].Email)
	require.NotNil(t, list[0].Phone)
	assert.Equal(t, "600333444", *list[0].Phone)
}

func TestImportCSVReportsBadRows(t *testing.T) {
	svc, professorID, _ := newImportService(t)
	file := strings.NewReader(
		"nome,apelidos,email\n" +
			"Antía,García,antia@example.com\n" +
			"SenEmail,Souto,non-e-un-email\n")

	result, err := svc.ImportCSV(context.Background(), professorID, file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Row)
}

func TestImportCSVRejectsMissingColumns(t *testing.T) {
	svc, professorID, _ := newImportService(t)
	_, err := svc.ImportCSV(context.Background(), professorID, strings.NewReader("nome,email\nAntía,a@example.com\n"))
	assert.Error(t, err)
}

func TestImportJSONBareArray(t *testing.T) {
	svc, professorID, _ := newImportService(t)
	file := strings.NewReader(`[
		{"name":"Antía","surname":"García","email":"antia@example.com"},
		{"name":"Breixo","surname":"Souto","email":"breixo@example.com"}
	]`)

	result, err := svc.ImportJSON(context.Background(), professorID, file)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
}

func TestImportJSONWrappedDocument(t *testing.T) {
	svc, professorID, _ := newImportService(t)
	file := strings.NewReader(`{"data":{"students":[
		{"name":"Antía","surname":"García","email":"antia@example.com"}
	]}}`)

	result, err := svc.ImportJSON(context.Background(), professorID, file)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportJSONRejectsGarbage(t *testing.T) {
	svc, professorID, _ := newImportService(t)
	_, err := svc.ImportJSON(context.Background(), professorID, strings.NewReader(`{"foo":1}`))
	assert.Error(t, err)
}
