package parsers

import (
	"strings"

	"github.com/username/markfolio/backend/src/models"
)

// CSVParser turns raw delimited text into ordered row maps keyed by the
// header fields. It deliberately does NOT implement RFC 4180: there is no
// quoting or escaping of embedded commas. Fields and values are trimmed of
// surrounding whitespace. Rows shorter than the header leave the trailing
// fields absent.
type CSVParser struct{}

func NewCSVParser() *CSVParser { return &CSVParser{} }

// Parse splits text on newlines, treats the first line as the header and maps
// every subsequent line positionally onto the header names. Input with fewer
// than two lines (header plus at least one data line) yields an empty
// sequence.
func (p *CSVParser) Parse(text string) []models.RawRow {
	// Trimming the whole input first keeps a trailing newline from
	// manufacturing a phantom empty row.
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) < 2 {
		return []models.RawRow{}
	}

	headers := strings.Split(lines[0], ",")
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	rows := make([]models.RawRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		values := strings.Split(line, ",")
		row := make(models.RawRow, len(headers))
		for i, header := range headers {
			if i < len(values) {
				row[header] = strings.TrimSpace(values[i])
			}
		}
		rows = append(rows, row)
	}
	return rows
}
