package history_test

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"vinscan/internal/history"
	"vinscan/internal/kvstore"
	"vinscan/internal/logging"
	"vinscan/internal/testsupport"
	"vinscan/internal/vin"
)

func openKV(t *testing.T) *kvstore.Store {
	t.Helper()
	return testsupport.MustOpenStore(t, testsupport.NewConfig(t))
}

func loadStore(t *testing.T, kv history.Persister) *history.Store {
	t.Helper()
	store, err := history.Load(context.Background(), kv, logging.NewNop())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return store
}

func record(v, loc string) history.Record {
	return history.Record{VIN: v, Make: "Honda", Model: "Accord", Year: "2003", Location: loc, Date: "18/10/2026", Time: "09:30"}
}

func TestAppendRejectsDuplicate(t *testing.T) {
	store := loadStore(t, openKV(t))
	ctx := context.Background()

	first := record("1HGCM82633A004352", "A1")
	if err := store.Append(ctx, first); err != nil {
		t.Fatalf("Append: %v", err)
	}

	second := record("1HGCM82633A004352", "B2")
	second.Remarks = "second scan"
	err := store.Append(ctx, second)
	if !errors.Is(err, vin.ErrDuplicateVin) {
		t.Fatalf("expected ErrDuplicateVin, got %v", err)
	}
	var dup *history.DuplicateError
	if !errors.As(err, &dup) || dup.Existing.Location != "A1" {
		t.Fatalf("expected duplicate error referencing the stored record, got %#v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("store size changed to %d", store.Len())
	}
	if got := store.Records()[0]; got != first {
		t.Fatalf("existing record mutated: %#v", got)
	}
}

func TestAppendPrependsAndPersists(t *testing.T) {
	kv := openKV(t)
	store := loadStore(t, kv)
	ctx := context.Background()

	for _, v := range []string{"1HGCM82633A004352", "5YJ3E1EA7KF317000"} {
		if err := store.Append(ctx, record(v, "A1")); err != nil {
			t.Fatalf("Append %s: %v", v, err)
		}
	}

	reloaded := loadStore(t, kv)
	got := reloaded.Records()
	if len(got) != 2 {
		t.Fatalf("expected 2 persisted records, got %d", len(got))
	}
	if got[0].VIN != "5YJ3E1EA7KF317000" || got[1].VIN != "1HGCM82633A004352" {
		t.Fatalf("expected most recent first, got %s then %s", got[0].VIN, got[1].VIN)
	}
}

func TestAppendRejectsNonCanonicalVIN(t *testing.T) {
	store := loadStore(t, openKV(t))
	err := store.Append(context.Background(), record("1HGCM82633A00435", "A1"))
	if !errors.Is(err, vin.ErrIncompleteVin) {
		t.Fatalf("expected ErrIncompleteVin, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("invalid record must not be stored")
	}
}

type failingPersister struct{ err error }

func (failingPersister) GetJSON(context.Context, string, any) (bool, error) { return false, nil }

func (f failingPersister) PutJSON(context.Context, string, any) error { return f.err }

func TestFailedPersistLeavesMemoryUnchanged(t *testing.T) {
	store := loadStore(t, failingPersister{err: errors.New("disk full")})
	if err := store.Append(context.Background(), record("1HGCM82633A004352", "A1")); err == nil {
		t.Fatal("expected persist error")
	}
	if store.Len() != 0 {
		t.Fatalf("expected empty store after failed persist, got %d", store.Len())
	}
}

func TestClearEmptiesAndPersists(t *testing.T) {
	kv := openKV(t)
	store := loadStore(t, kv)
	ctx := context.Background()
	if err := store.Append(ctx, record("1HGCM82633A004352", "A1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("expected empty store")
	}
	if reloaded := loadStore(t, kv); reloaded.Len() != 0 {
		t.Fatalf("expected empty persisted history, got %d", reloaded.Len())
	}
}

func TestExportCSV(t *testing.T) {
	store := loadStore(t, openKV(t))
	ctx := context.Background()
	a := record("1HGCM82633A004352", "A1")
	a.Remarks = "scratch on door;\nrear"
	b := record("5YJ3E1EA7KF317000", "B2")
	for _, rec := range []history.Record{a, b} {
		if err := store.Append(ctx, rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	var buf bytes.Buffer
	if err := store.ExportCSV(&buf, "MY DEALERSHIP"); err != nil {
		t.Fatalf("ExportCSV: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\ufeff") {
		t.Fatal("expected UTF-8 byte order mark")
	}
	lines := strings.Split(strings.TrimSuffix(strings.TrimPrefix(out, "\ufeff"), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "VIN;Make;Model;Year;Location;Remarks;Date;Time;Company" {
		t.Fatalf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[1], "5YJ3E1EA7KF317000;") {
		t.Fatalf("expected store order, got %q", lines[1])
	}
	for _, line := range lines[1:] {
		if !strings.HasSuffix(line, ";MY DEALERSHIP") {
			t.Fatalf("expected company column, got %q", line)
		}
	}
	// Plain rows split into exactly nine fields.
	if n := len(strings.Split(lines[1], ";")); n != 9 {
		t.Fatalf("expected 9 fields, got %d in %q", n, lines[1])
	}
	// The remark containing a separator is quoted and flattened.
	if !strings.Contains(lines[2], `"scratch on door; rear"`) {
		t.Fatalf("expected quoted remark, got %q", lines[2])
	}
}

func TestExportEmptyStoreIsNoop(t *testing.T) {
	store := loadStore(t, openKV(t))
	var buf bytes.Buffer
	if err := store.ExportCSV(&buf, "ACME"); !errors.Is(err, history.ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatal("empty export must not write anything")
	}

	dir := t.TempDir()
	if _, err := store.WriteExport(dir, "ACME", time.Now()); !errors.Is(err, history.ErrEmptyHistory) {
		t.Fatalf("expected ErrEmptyHistory, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("expected no file, found %d", len(entries))
	}
}

func TestWriteExportCreatesNamedFile(t *testing.T) {
	store := loadStore(t, openKV(t))
	if err := store.Append(context.Background(), record("1HGCM82633A004352", "A1")); err != nil {
		t.Fatalf("Append: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "exports")
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	path, err := store.WriteExport(dir, "Garage Élan", now)
	if err != nil {
		t.Fatalf("WriteExport: %v", err)
	}
	if filepath.Base(path) != "stock_Garage_Elan_2026-10-18.csv" {
		t.Fatalf("unexpected file name %q", filepath.Base(path))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("expected BOM bytes at start of file")
	}
}

func TestExportFilename(t *testing.T) {
	now := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	cases := map[string]string{
		"MY DEALERSHIP":  "stock_MY_DEALERSHIP_2026-01-02.csv",
		"AUTO/ZONE  SUD": "stock_AUTOZONE__SUD_2026-01-02.csv",
		"  ":             "stock_2026-01-02.csv",
		"CITROËN CENTRE": "stock_CITROEN_CENTRE_2026-01-02.csv",
	}
	for company, want := range cases {
		if got := history.ExportFilename(company, now); got != want {
			t.Errorf("ExportFilename(%q) = %q, want %q", company, got, want)
		}
	}
}

func TestWithPlaceholders(t *testing.T) {
	rec := history.Record{VIN: "1HGCM82633A004352", Model: "  ", Remarks: " line one\n line two "}.WithPlaceholders()
	if rec.Make != history.UnknownMake || rec.Model != history.UnknownModel || rec.Year != history.UnknownYear {
		t.Fatalf("placeholders not applied: %#v", rec)
	}
	if rec.Remarks != "line one line two" {
		t.Fatalf("unexpected remarks %q", rec.Remarks)
	}
}
