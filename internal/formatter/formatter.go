// package formatter reads and writes the catalog, pairs and status report tables (CSV, XLSX)
// and the missing-items ledgers
package formatter

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/mtcat/internal/models"
	"github.com/desertthunder/mtcat/internal/shared"
)

// Catalog table columns, in file order.
const (
	ColIdentifier    = "Author/Dataset"
	ColCreatedAt     = "Date of Creation"
	ColLastModified  = "Last Modified"
	ColDatasetType   = "Dataset Type"
	ColLink          = "Hugging Face Link"
	ColDownloads     = "Downloads Last Month"
	ColLikes         = "# Likes"
	ColLanguageCount = "# Languages"
	ColLanguages     = "Supported Languages"
)

// Pairs table columns, in file order.
const (
	ColLanguagePair = "Language Pair"
	ColTrain        = "# Train Set"
	ColDev          = "# Development Set"
	ColTest         = "# Test Set"
)

// ColStatus is the leading column of the status report.
const ColStatus = "Status"

// CatalogHeaders lists the catalog table columns.
var CatalogHeaders = []string{
	ColIdentifier, ColCreatedAt, ColLastModified, ColDatasetType, ColLink,
	ColDownloads, ColLikes, ColLanguageCount, ColLanguages,
}

// PairHeaders lists the pairs table columns.
var PairHeaders = []string{ColIdentifier, ColLanguagePair, ColTrain, ColDev, ColTest}

func catalogRecord(row models.CatalogRow) []string {
	return []string{
		row.Identifier,
		shared.FormatDate(row.CreatedAt),
		shared.FormatDate(row.LastModified),
		string(row.DatasetType),
		row.Link,
		strconv.Itoa(row.Downloads),
		strconv.Itoa(row.Likes),
		strconv.Itoa(row.LanguageCount),
		FormatLanguages(row.SupportedLanguages),
	}
}

// ExportCatalogCSV converts catalog rows to CSV with [CatalogHeaders] columns.
func ExportCatalogCSV(rows []models.CatalogRow) ([]byte, error) {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, catalogRecord(row))
	}
	return exportCSV(CatalogHeaders, records)
}

// ExportPairsCSV converts pair records to CSV with [PairHeaders] columns.
func ExportPairsCSV(records []models.PairRecord) ([]byte, error) {
	out := make([][]string, 0, len(records))
	for _, rec := range records {
		out = append(out, []string{
			rec.Identifier,
			rec.LanguagePair,
			strconv.Itoa(rec.TrainCount),
			strconv.Itoa(rec.DevCount),
			strconv.Itoa(rec.TestCount),
		})
	}
	return exportCSV(PairHeaders, out)
}

// ExportStatusCSV converts a status report to CSV: a Status column followed by the catalog columns.
func ExportStatusCSV(report []models.StatusRow) ([]byte, error) {
	out := make([][]string, 0, len(report))
	for _, sr := range report {
		out = append(out, append([]string{string(sr.Status)}, catalogRecord(sr.CatalogRow)...))
	}
	return exportCSV(append([]string{ColStatus}, CatalogHeaders...), out)
}

func exportCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ParseCatalogCSV reads a catalog table. Columns are matched by header name, case-insensitively,
// and extra columns are ignored.
//
// Dates are normalized to calendar dates; malformed dates fail with [shared.ErrMalformedDate]
// and any other malformed value with [shared.ErrMalformedTable].
func ParseCatalogCSV(r io.Reader) ([]models.CatalogRow, error) {
	t, err := readTable(r, CatalogHeaders)
	if err != nil {
		return nil, err
	}

	rows := make([]models.CatalogRow, 0, len(t.records))
	for i, rec := range t.records {
		line := i + 2
		row := models.CatalogRow{
			Identifier:  t.get(rec, ColIdentifier),
			DatasetType: models.DatasetType(t.get(rec, ColDatasetType)),
			Link:        t.get(rec, ColLink),
		}

		if row.CreatedAt, err = t.date(rec, ColCreatedAt, line); err != nil {
			return nil, err
		}
		if row.LastModified, err = t.date(rec, ColLastModified, line); err != nil {
			return nil, err
		}
		if row.Downloads, err = t.int(rec, ColDownloads, line); err != nil {
			return nil, err
		}
		if row.Likes, err = t.int(rec, ColLikes, line); err != nil {
			return nil, err
		}
		if row.LanguageCount, err = t.int(rec, ColLanguageCount, line); err != nil {
			return nil, err
		}

		langs, err := ParseLanguages(t.get(rec, ColLanguages))
		if err != nil {
			return nil, fmt.Errorf("line %d column %q: %w", line, ColLanguages, err)
		}
		row.SupportedLanguages = langs

		rows = append(rows, row)
	}
	return rows, nil
}

// ParsePairsCSV reads a pairs table, harvested or external.
func ParsePairsCSV(r io.Reader) ([]models.PairRecord, error) {
	t, err := readTable(r, PairHeaders)
	if err != nil {
		return nil, err
	}

	records := make([]models.PairRecord, 0, len(t.records))
	for i, rec := range t.records {
		line := i + 2
		pr := models.PairRecord{
			Identifier:   t.get(rec, ColIdentifier),
			LanguagePair: t.get(rec, ColLanguagePair),
		}
		if pr.TrainCount, err = t.int(rec, ColTrain, line); err != nil {
			return nil, err
		}
		if pr.DevCount, err = t.int(rec, ColDev, line); err != nil {
			return nil, err
		}
		if pr.TestCount, err = t.int(rec, ColTest, line); err != nil {
			return nil, err
		}
		records = append(records, pr)
	}
	return records, nil
}

// LoadCatalog reads the catalog table at path.
func LoadCatalog(path string) ([]models.CatalogRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog table: %w", err)
	}
	defer f.Close()

	rows, err := ParseCatalogCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

// LoadPairs reads the pairs table at path.
func LoadPairs(path string) ([]models.PairRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pairs table: %w", err)
	}
	defer f.Close()

	records, err := ParsePairsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return records, nil
}

// SaveCatalog overwrites the catalog table at path.
func SaveCatalog(path string, rows []models.CatalogRow) error {
	data, err := ExportCatalogCSV(rows)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeFile(path, data)
}

// SavePairs overwrites the pairs table at path.
func SavePairs(path string, records []models.PairRecord) error {
	data, err := ExportPairsCSV(records)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeFile(path, data)
}

// AppendPairs adds records to the pairs table at path, creating it when missing.
func AppendPairs(path string, records []models.PairRecord) error {
	existing, err := LoadPairs(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return SavePairs(path, append(existing, records...))
}

// writeFile replaces path through a temporary sibling so readers never see a partial table.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to set file mode: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// table is a parsed CSV body with a case-insensitive column index.
type table struct {
	columns map[string]int
	records [][]string
}

func readTable(r io.Reader, required []string) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrMalformedTable, err)
	}
	if len(all) == 0 {
		return nil, fmt.Errorf("%w: missing header row", shared.ErrMalformedTable)
	}

	t := &table{columns: make(map[string]int), records: all[1:]}
	for i, name := range all[0] {
		key := normalizeHeader(name)
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}

	var missing []string
	for _, name := range required {
		if _, ok := t.columns[normalizeHeader(name)]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing columns %s", shared.ErrMalformedTable, strings.Join(missing, ", "))
	}
	return t, nil
}

func normalizeHeader(name string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
}

func (t *table) get(rec []string, column string) string {
	i := t.columns[normalizeHeader(column)]
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func (t *table) int(rec []string, column string, line int) (int, error) {
	v := t.get(rec, column)
	if v == "" {
		return 0, nil
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	// Spreadsheet tools sometimes write integral counts as floats.
	if f, err := strconv.ParseFloat(v, 64); err == nil && f == float64(int(f)) {
		return int(f), nil
	}
	return 0, fmt.Errorf("%w: line %d column %q: %q is not an integer", shared.ErrMalformedTable, line, column, v)
}

func (t *table) date(rec []string, column string, line int) (dt time.Time, err error) {
	v := t.get(rec, column)
	if v == "" {
		return dt, nil
	}
	dt, err = shared.ParseDate(v)
	if err != nil {
		return dt, fmt.Errorf("line %d column %q: %w", line, column, err)
	}
	return dt, nil
}
