package export

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Candra0x6/BusinessScap-Maps/models"
)

// KeywordCoverage is the analysis result for one keyword's workbook.
type KeywordCoverage struct {
	Keyword     string
	Records     int
	WithWebsite int
	WithPhone   int
}

// WebsitePct returns the share of records that carry a website.
func (c KeywordCoverage) WebsitePct() float64 {
	if c.Records == 0 {
		return 0
	}
	return 100 * float64(c.WithWebsite) / float64(c.Records)
}

// PhonePct returns the share of records that carry a phone number.
func (c KeywordCoverage) PhonePct() float64 {
	if c.Records == 0 {
		return 0
	}
	return 100 * float64(c.WithPhone) / float64(c.Records)
}

// Report aggregates coverage across all per-keyword workbooks.
type Report struct {
	Keywords []KeywordCoverage
	Total    KeywordCoverage
}

// listWorkbooks returns the per-keyword workbooks in dir, skipping
// summaries and previously generated post-processing outputs.
func listWorkbooks(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".xlsx") {
			continue
		}
		if strings.HasPrefix(name, "summary_") ||
			strings.HasPrefix(name, "merged_") ||
			strings.HasPrefix(name, "filtered_") ||
			strings.HasPrefix(name, "~") {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	sort.Strings(paths)
	return paths, nil
}

// keywordFromPath recovers the (sanitized) keyword from a workbook
// filename.
func keywordFromPath(path string) string {
	return strings.TrimSuffix(filepath.Base(path), ".xlsx")
}

// readAll loads every per-keyword workbook in dir, keyed by keyword.
// Unreadable workbooks are logged and skipped so one corrupt file does
// not block post-processing.
func readAll(dir string) (map[string][]models.BusinessRecord, []string, error) {
	paths, err := listWorkbooks(dir)
	if err != nil {
		return nil, nil, err
	}

	byKeyword := make(map[string][]models.BusinessRecord)
	var keywords []string
	for _, path := range paths {
		records, err := ReadWorkbook(path)
		if err != nil {
			log.Printf("Warning: Skipping %s: %v\n", path, err)
			continue
		}
		kw := keywordFromPath(path)
		byKeyword[kw] = records
		keywords = append(keywords, kw)
	}

	return byKeyword, keywords, nil
}

// Merge combines all per-keyword workbooks in dir into one workbook
// with a Source Keyword column and returns the output path.
func Merge(dir string) (string, error) {
	byKeyword, keywords, err := readAll(dir)
	if err != nil {
		return "", err
	}
	if len(keywords) == 0 {
		return "", fmt.Errorf("no keyword workbooks found in %s", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Merged"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	header := append(append([]interface{}{}, recordHeader...), "Source Keyword")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	rowIdx := 2
	for _, kw := range keywords {
		for _, rec := range byKeyword[kw] {
			row := []interface{}{rec.Name, rec.Description, rec.Website, rec.Phone, rec.MapsLink, kw}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowIdx), &row); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", rowIdx, err)
			}
			rowIdx++
		}
	}

	path := filepath.Join(dir, "merged_businesses.xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save merged workbook: %w", err)
	}

	log.Printf("Merged %d workbooks (%d records) into %s\n", len(keywords), rowIdx-2, path)
	return path, nil
}

// Analyze computes record counts and website/phone coverage per
// keyword and in total.
func Analyze(dir string) (*Report, error) {
	byKeyword, keywords, err := readAll(dir)
	if err != nil {
		return nil, err
	}
	if len(keywords) == 0 {
		return nil, fmt.Errorf("no keyword workbooks found in %s", dir)
	}

	report := &Report{Total: KeywordCoverage{Keyword: "TOTAL"}}
	for _, kw := range keywords {
		cov := KeywordCoverage{Keyword: kw}
		for _, rec := range byKeyword[kw] {
			cov.Records++
			if rec.HasWebsite() {
				cov.WithWebsite++
			}
			if rec.HasPhone() {
				cov.WithPhone++
			}
		}
		report.Keywords = append(report.Keywords, cov)
		report.Total.Records += cov.Records
		report.Total.WithWebsite += cov.WithWebsite
		report.Total.WithPhone += cov.WithPhone
	}

	return report, nil
}

// ExportJSON writes every workbook's records to a single JSON file
// keyed by keyword and returns the output path.
func ExportJSON(dir, outPath string) (string, error) {
	byKeyword, keywords, err := readAll(dir)
	if err != nil {
		return "", err
	}
	if len(keywords) == 0 {
		return "", fmt.Errorf("no keyword workbooks found in %s", dir)
	}

	if outPath == "" {
		outPath = filepath.Join(dir, "businesses.json")
	}

	data, err := json.MarshalIndent(byKeyword, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal records: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write JSON file: %w", err)
	}

	log.Printf("Exported %d keywords to %s\n", len(keywords), outPath)
	return outPath, nil
}

// FilterWebsites writes one workbook containing only the records that
// have a website, across all keywords, and returns the output path.
func FilterWebsites(dir string) (string, error) {
	byKeyword, keywords, err := readAll(dir)
	if err != nil {
		return "", err
	}
	if len(keywords) == 0 {
		return "", fmt.Errorf("no keyword workbooks found in %s", dir)
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "With Websites"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return "", fmt.Errorf("failed to name sheet: %w", err)
	}

	header := append(append([]interface{}{}, recordHeader...), "Source Keyword")
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return "", fmt.Errorf("failed to write header: %w", err)
	}

	rowIdx := 2
	for _, kw := range keywords {
		for _, rec := range byKeyword[kw] {
			if !rec.HasWebsite() {
				continue
			}
			row := []interface{}{rec.Name, rec.Description, rec.Website, rec.Phone, rec.MapsLink, kw}
			if err := f.SetSheetRow(sheet, fmt.Sprintf("A%d", rowIdx), &row); err != nil {
				return "", fmt.Errorf("failed to write row %d: %w", rowIdx, err)
			}
			rowIdx++
		}
	}

	path := filepath.Join(dir, "filtered_websites.xlsx")
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save filtered workbook: %w", err)
	}

	log.Printf("Wrote %d records with websites to %s\n", rowIdx-2, path)
	return path, nil
}
