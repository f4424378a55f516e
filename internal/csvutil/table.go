package csvutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"
)

// Row maps header names to raw cell values for a single record.
type Row map[string]string

// Table is a decoded tabular dataset: the header set plus one Row per
// input record, in file order.
type Table struct {
	Headers []string
	Rows    []Row
}

// ReadTable reads a CSV export into a Table. Files that are not valid
// UTF-8 are decoded as Latin-1, matching the encodings seen in the wild
// for collection exports. Records with a different field count than the
// header are kept: missing cells read as empty strings rather than
// dropping the row.
func ReadTable(filename string) (*Table, error) {
	csvFile, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %v", err)
	}
	defer func() { _ = csvFile.Close() }()

	// File existence check
	if fi, err := csvFile.Stat(); err != nil || fi.Size() == 0 {
		return nil, fmt.Errorf("CSV file is empty or cannot be read")
	}

	data, err := io.ReadAll(csvFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %v", err)
	}

	if !utf8.Valid(data) {
		slog.Info("CSV file is not valid UTF-8, decoding as Latin-1", "filename", filename)
		data = decodeLatin1(data)
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %v", err)
	}

	table := &Table{Headers: headers}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Error reading record", "error", err)
			continue
		}

		row := make(Row, len(headers))
		for i, header := range headers {
			if i < len(record) {
				row[header] = record[i]
			} else {
				row[header] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	return table, nil
}

// decodeLatin1 converts ISO 8859-1 bytes to UTF-8. Every byte maps
// directly to the code point of the same value.
func decodeLatin1(data []byte) []byte {
	var out strings.Builder
	out.Grow(len(data))
	for _, b := range data {
		out.WriteRune(rune(b))
	}
	return []byte(out.String())
}
