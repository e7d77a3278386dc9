package keywords

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Load reads search keywords from the first column of a CSV file. The
// first row is a header and is skipped; blank cells are dropped.
func Load(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open keywords file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1 // ragged rows are fine, only column one matters

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse keywords file: %w", err)
	}

	var kws []string
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) == 0 {
			continue
		}
		kw := strings.TrimSpace(row[0])
		if kw == "" {
			continue
		}
		kws = append(kws, kw)
	}

	return kws, nil
}
