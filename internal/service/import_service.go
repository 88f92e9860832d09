package service

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	appErrors "github.com/tonikampos/kampos-xestion-api/pkg/errors"
)

// ImportRowError records one rejected row of an import file.
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportResult summarises a bulk student import.
type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

// ImportService loads students in bulk from CSV or JSON files. Rows that
// fail validation are reported but do not abort the rest of the file.
type ImportService struct {
	students *StudentService
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(students *StudentService, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, logger: logger}
}

// csvColumns maps accepted header names (Galician and Spanish) onto fields.
var csvColumns = map[string]string{
	"nome":      "name",
	"nombre":    "name",
	"name":      "name",
	"apelidos":  "surname",
	"apellidos": "surname",
	"surname":   "surname",
	"email":     "email",
	"correo":    "email",
	"telefono":  "phone",
	"teléfono":  "phone",
	"phone":     "phone",
}

// ImportCSV reads students from a CSV file with a header row.
func (s *ImportService) ImportCSV(ctx context.Context, professorID string, r io.Reader) (*ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "empty or unreadable csv file")
	}
	fields := make(map[int]string, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if field, ok := csvColumns[key]; ok {
			fields[i] = field
		}
	}
	required := map[string]bool{"name": false, "surname": false, "email": false}
	for _, field := range fields {
		required[field] = true
	}
	for field, present := range required {
		if !present {
			return nil, appErrors.Clone(appErrors.ErrValidation,
				fmt.Sprintf("csv header missing %s column", field))
		}
	}

	result := &ImportResult{}
	for row := 2; ; row++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, ImportRowError{Row: row, Reason: "malformed csv row"})
			continue
		}
		input := StudentInput{}
		for i, value := range record {
			value = strings.TrimSpace(value)
			switch fields[i] {
			case "name":
				input.Name = value
			case "surname":
				input.Surname = value
			case "email":
				input.Email = value
			case "phone":
				if value != "" {
					phone := value
					input.Phone = &phone
				}
			}
		}
		s.importOne(ctx, professorID, input, row, result)
	}
	s.logger.Info("csv import finished", zap.String("professor_id", professorID),
		zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

type jsonImportFile struct {
	Data struct {
		Students []StudentInput `json:"students"`
	} `json:"data"`
}

// ImportJSON reads students from a JSON file: either a bare array of student
// objects or a document with a data.students array.
func (s *ImportService) ImportJSON(ctx context.Context, professorID string, r io.Reader) (*ImportResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unreadable json file")
	}

	var inputs []StudentInput
	if err := json.Unmarshal(raw, &inputs); err != nil {
		var file jsonImportFile
		if err := json.Unmarshal(raw, &file); err != nil || file.Data.Students == nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "json must be a student array or a data.students document")
		}
		inputs = file.Data.Students
	}

	result := &ImportResult{}
	for i, input := range inputs {
		s.importOne(ctx, professorID, input, i+1, result)
	}
	s.logger.Info("json import finished", zap.String("professor_id", professorID),
		zap.Int("imported", result.Imported), zap.Int("skipped", result.Skipped))
	return result, nil
}

func (s *ImportService) importOne(ctx context.Context, professorID string, input StudentInput, row int, result *ImportResult) {
	if _, err := s.students.Create(ctx, professorID, input); err != nil {
		result.Skipped++
		result.Errors = append(result.Errors, ImportRowError{Row: row, Reason: importReason(err)})
		return
	}
	result.Imported++
}

func importReason(err error) string {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		return fmt.Sprintf("invalid %s", strings.ToLower(ve[0].Field()))
	}
	return appErrors.FromError(err).Message
}
