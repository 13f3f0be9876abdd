package dictionary

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/bastiangx/freqdict/pkg/clean"
)

const (
	wordColumn  = "word"
	countColumn = "count"
)

// ReadCSV reads a table with a header naming "word" and "count" columns.
// Other columns are ignored and columns may appear in any order. Short
// records leave the missing fields empty.
func ReadCSV(r io.Reader) ([]clean.RawRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty CSV: missing %s,%s header", wordColumn, countColumn)
		}
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	wordIdx, countIdx := -1, -1
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch name {
		case wordColumn:
			if wordIdx < 0 {
				wordIdx = i
			}
		case countColumn:
			if countIdx < 0 {
				countIdx = i
			}
		}
	}
	if wordIdx < 0 || countIdx < 0 {
		return nil, fmt.Errorf("CSV header %v must contain %q and %q columns", header, wordColumn, countColumn)
	}

	var rows []clean.RawRow
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		rows = append(rows, clean.RawRow{
			Word:  field(record, wordIdx),
			Count: field(record, countIdx),
		})
	}
	return rows, nil
}

func field(record []string, idx int) string {
	if idx < len(record) {
		return record[idx]
	}
	return ""
}

// WriteCSV writes rows as a word,count table with a header.
func WriteCSV(w io.Writer, rows []clean.Row) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{wordColumn, countColumn}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := writer.Write([]string{r.Word, formatCount(r.Count)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
