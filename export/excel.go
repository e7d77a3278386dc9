package export

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kennygrant/sanitize"
	"github.com/xuri/excelize/v2"

	"github.com/Candra0x6/BusinessScap-Maps/models"
)

const recordSheet = "Businesses"

var recordHeader = []interface{}{"Name", "Description", "Website", "Phone", "Maps Link"}

// WorkbookName returns the output filename for a keyword, sanitized so
// any keyword maps to a usable path. Slashes are flattened first
// because sanitize.Name would otherwise keep only the last path
// segment of the keyword.
func WorkbookName(keyword string) string {
	name := sanitize.Name(strings.ReplaceAll(keyword, "/", " "))
	name = strings.Trim(name, "-.")
	if name == "" {
		name = "keyword"
	}
	return name + ".xlsx"
}

// WriteWorkbook writes one keyword's records to an Excel workbook under
// dir and returns the file path.
func WriteWorkbook(dir, keyword string, records []models.BusinessRecord) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", recordSheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(recordSheet, "A1", &recordHeader); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, rec := range records {
		row := []interface{}{rec.Name, rec.Description, rec.Website, rec.Phone, rec.MapsLink}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(recordSheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(dir, WorkbookName(keyword))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}

	log.Printf("Wrote %d records for %q to %s\n", len(records), keyword, path)
	return path, nil
}

// WriteSummary writes a timestamped batch summary workbook under dir.
func WriteSummary(dir string, summaries []models.KeywordSummary) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []interface{}{"Keyword", "Records", "Attempted", "Skipped", "Status", "Duration"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	for i, s := range summaries {
		row := []interface{}{
			s.Keyword,
			s.Records,
			s.Attempted,
			s.Skipped,
			s.Status,
			s.Duration.Round(time.Second).String(),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return "", fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	path := filepath.Join(dir, fmt.Sprintf("summary_%s.xlsx", time.Now().Format("20060102_150405")))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save summary: %w", err)
	}

	log.Printf("Wrote batch summary for %d keywords to %s\n", len(summaries), path)
	return path, nil
}

// ReadWorkbook loads the records of one per-keyword workbook.
func ReadWorkbook(path string) ([]models.BusinessRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var records []models.BusinessRecord
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		rec := models.BusinessRecord{}
		if len(row) > 0 {
			rec.Name = row[0]
		}
		if len(row) > 1 {
			rec.Description = row[1]
		}
		if len(row) > 2 {
			rec.Website = row[2]
		}
		if len(row) > 3 {
			rec.Phone = row[3]
		}
		if len(row) > 4 {
			rec.MapsLink = row[4]
		}
		if rec.Name == "" {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}
