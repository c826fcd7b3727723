// Package imports handles bulk lead loading from CSV or JSON rows, tracked
// in import batches that can be reverted.
package imports

import (
	"encoding/csv"
	"strings"
)

// Row is one lead candidate after header normalization.
type Row struct {
	Name       string
	Email      string
	Phone      string
	Product    string
	StatusName string
}

// headerAliases maps the header spellings seen in the wild onto canonical
// columns. Spreadsheets arrive in Portuguese, English or WhatsApp exports.
var headerAliases = map[string]string{
	"nome":         "name",
	"name":         "name",
	"first_name":   "name",
	"email":        "email",
	"e-mail":       "email",
	"telefone":     "phone",
	"phone":        "phone",
	"phone_number": "phone",
	"whatsapp":     "phone",
	"celular":      "phone",
	"produto":      "product",
	"product":      "product",
	"product_name": "product",
	"status":       "status",
	"status_name":  "status",
}

// ParseCSV reads a delimiter-sniffed CSV into normalized rows. Rows without a
// name or email are dropped; a file without a data line yields nothing.
func ParseCSV(raw string) ([]Row, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if firstLine, _, _ := strings.Cut(raw, "\n"); strings.Contains(firstLine, ";") {
		reader.Comma = ';'
	}

	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, nil
	}

	columns := make([]string, len(records[0]))
	for i, header := range records[0] {
		key := strings.ToLower(strings.TrimSpace(header))
		if canonical, ok := headerAliases[key]; ok {
			columns[i] = canonical
		}
	}

	var rows []Row
	for _, record := range records[1:] {
		var row Row
		for i, value := range record {
			if i >= len(columns) {
				break
			}
			value = strings.TrimSpace(value)
			switch columns[i] {
			case "name":
				row.Name = value
			case "email":
				row.Email = value
			case "phone":
				row.Phone = value
			case "product":
				row.Product = value
			case "status":
				row.StatusName = value
			}
		}
		if row.Name != "" || row.Email != "" {
			rows = append(rows, row)
		}
	}
	return rows, nil
}
