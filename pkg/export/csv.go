package export

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/tonikampos/kampos-xestion-api/internal/models"
)

// SubjectRosterCSV renders the subject roster as CSV with Galician headers,
// matching the import format.
func SubjectRosterCSV(subject models.Subject, entries []RosterEntry) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := csv.NewWriter(buf)
	if err := writer.Write([]string{"apelidos", "nome", "email", "nota_final"}); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, entry := range entries {
		record := []string{entry.Surname, entry.Name, entry.Email, ""}
		if entry.FinalGrade != nil {
			record[3] = fmt.Sprintf("%.2f", *entry.FinalGrade)
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}
