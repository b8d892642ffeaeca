package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/cartonq/cartonq-backend/pkg/logger"
)

func sheetHeader() []interface{} {
	return []interface{}{
		"fefco", "x_mm", "y_mm", "z_mm", "material", "print", "sla_type",
		"sku", "qty_min", "qty_max",
		"lead_time_std", "lead_time_rush", "lead_time_strg",
		"price_std", "margin_std", "price_rush", "margin_rush", "price_strg", "margin_strg",
		"terms",
	}
}

func sheetRow(sku string, qtyMin, qtyMax string) []interface{} {
	return []interface{}{
		"0201", "300", "200", "150", "T23B", "1+0", "standard",
		sku, qtyMin, qtyMax,
		"10-12 days", "5-6 days", "20-25 days",
		"23,40", "18,5", "27,10", "15,0", "21,00", "22,0",
		"FCA warehouse; 50% prepayment",
	}
}

func testKey() MatchKey {
	return MatchKey{FEFCO: "0201", XMM: 300, YMM: 200, ZMM: 150, Material: "T23B", Print: "1+0", SLAType: "standard"}
}

func TestParseSheet(t *testing.T) {
	values := [][]interface{}{
		sheetHeader(),
		sheetRow("BOX-001", "500", "2000"),
		sheetRow("BOX-002", "2000", "5000"),
	}

	rows, skipped := parseSheet(values)
	if skipped != 0 {
		t.Fatalf("expected no skipped rows, got %d", skipped)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Key != testKey() {
		t.Fatalf("unexpected match key: %+v", first.Key)
	}
	if first.Record.SKU != "BOX-001" {
		t.Fatalf("unexpected sku %q", first.Record.SKU)
	}
	if first.Record.QtyBand != (QtyBand{Min: 500, Max: 2000}) {
		t.Fatalf("unexpected band %+v", first.Record.QtyBand)
	}
	if got := first.Record.Prices.Std.PricePerUnit.StringFixed(2); got != "23.40" {
		t.Fatalf("comma decimal not parsed, got %s", got)
	}
	if got := first.Record.Prices.Rush.MarginPct.StringFixed(1); got != "15.0" {
		t.Fatalf("unexpected rush margin %s", got)
	}
	if len(first.Record.Terms) != 2 || first.Record.Terms[0] != "FCA warehouse" {
		t.Fatalf("terms not split, got %v", first.Record.Terms)
	}
	if first.Record.LeadTimes.Rush != "5-6 days" {
		t.Fatalf("unexpected rush lead time %q", first.Record.LeadTimes.Rush)
	}
}

func TestParseSheetSkipsMalformedRows(t *testing.T) {
	bad := sheetRow("BOX-BAD", "abc", "2000")
	inverted := sheetRow("BOX-INV", "5000", "100")
	values := [][]interface{}{
		sheetHeader(),
		sheetRow("BOX-001", "500", "2000"),
		bad,
		inverted,
	}

	rows, skipped := parseSheet(values)
	if skipped != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", skipped)
	}
	if len(rows) != 1 || rows[0].Record.SKU != "BOX-001" {
		t.Fatalf("expected only the valid row, got %+v", rows)
	}
}

func TestParseSheetEmpty(t *testing.T) {
	rows, skipped := parseSheet(nil)
	if rows != nil || skipped != 0 {
		t.Fatalf("expected empty result, got %v / %d", rows, skipped)
	}
	rows, _ = parseSheet([][]interface{}{sheetHeader()})
	if rows != nil {
		t.Fatalf("header-only sheet should yield no rows, got %v", rows)
	}
}

type fakeValuesGetter struct {
	values [][]interface{}
	err    error
	calls  int
}

func (f *fakeValuesGetter) Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &sheets.ValueRange{Values: f.values}, nil
}

func newTestSheetsBackend(t *testing.T, getter sheetsValuesGetter, ttl time.Duration) *SheetsBackend {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel})
	return &SheetsBackend{
		values:  getter,
		sheetID: "sheet",
		tab:     "QuoteCatalog",
		cache:   newSnapshotCache(ttl),
		logg:    logg,
	}
}

func TestSheetsBackend_FetchCandidates(t *testing.T) {
	getter := &fakeValuesGetter{values: [][]interface{}{
		sheetHeader(),
		sheetRow("BOX-001", "500", "2000"),
		sheetRow("BOX-002", "2000", "5000"),
	}}
	backend := newTestSheetsBackend(t, getter, time.Minute)

	records, err := backend.FetchCandidates(context.Background(), testKey())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(records))
	}

	other := testKey()
	other.Material = "T24C"
	records, err = backend.FetchCandidates(context.Background(), other)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("expected no candidates for other material, got %d", len(records))
	}

	if getter.calls != 1 {
		t.Fatalf("expected snapshot to be cached, got %d API calls", getter.calls)
	}
}

func TestSheetsBackend_FetchError(t *testing.T) {
	getter := &fakeValuesGetter{err: errors.New("boom")}
	backend := newTestSheetsBackend(t, getter, time.Minute)

	_, err := backend.FetchCandidates(context.Background(), testKey())
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if err := backend.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable from ping, got %v", err)
	}
}
