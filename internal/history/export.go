package history

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"vinscan/internal/fileutil"
	"vinscan/internal/logging"
)

// ByteOrderMark prefixes exported files so spreadsheet tools detect UTF-8.
const ByteOrderMark = "\ufeff"

// Header is the fixed CSV header row.
var Header = []string{"VIN", "Make", "Model", "Year", "Location", "Remarks", "Date", "Time", "Company"}

// ExportCSV writes the records in store order. An empty store writes nothing
// and returns ErrEmptyHistory.
func (s *Store) ExportCSV(w io.Writer, company string) error {
	if len(s.records) == 0 {
		return ErrEmptyHistory
	}
	if _, err := io.WriteString(w, ByteOrderMark); err != nil {
		return fmt.Errorf("write byte order mark: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, rec := range s.records {
		row := []string{rec.VIN, rec.Make, rec.Model, rec.Year, rec.Location, rec.Remarks, rec.Date, rec.Time, company}
		for i := range row {
			row[i] = singleLine(row[i])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", rec.VIN, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExport writes the CSV into dir and returns the file path.
func (s *Store) WriteExport(dir, company string, now time.Time) (string, error) {
	if len(s.records) == 0 {
		return "", ErrEmptyHistory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure export directory: %w", err)
	}
	path := filepath.Join(dir, ExportFilename(company, now))
	digest, err := fileutil.WriteAtomic(path, 0o644, func(w io.Writer) error {
		return s.ExportCSV(w, company)
	})
	if err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	s.logger.Info("history exported",
		logging.String("path", path),
		logging.Int("records", len(s.records)),
		logging.String("sha256", digest),
	)
	return path, nil
}

// ExportFilename builds stock_<COMPANY>_<YYYY-MM-DD>.csv. Whitespace becomes
// underscores and accents or characters unsafe in file names are dropped.
func ExportFilename(company string, now time.Time) string {
	name := sanitizeCompany(company)
	date := now.Format("2006-01-02")
	if name == "" {
		return "stock_" + date + ".csv"
	}
	return "stock_" + name + "_" + date + ".csv"
}

func sanitizeCompany(company string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), company)
	if err != nil {
		stripped = company
	}
	var b strings.Builder
	for _, r := range strings.TrimSpace(stripped) {
		switch {
		case unicode.IsSpace(r):
			b.WriteRune('_')
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.'):
			b.WriteRune(r)
		}
	}
	return b.String()
}

func singleLine(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	return strings.Join(strings.Fields(s), " ")
}
