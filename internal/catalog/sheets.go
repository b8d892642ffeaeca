package catalog

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"google.golang.org/api/option"
	sheets "google.golang.org/api/sheets/v4"

	"github.com/cartonq/cartonq-backend/pkg/config"
	"github.com/cartonq/cartonq-backend/pkg/logger"
)

// SheetsBackend reads the price catalog from a Google Sheets tab. The whole
// tab is fetched in one call and kept in a TTL snapshot so a burst of quote
// requests does not fan out into Sheets API calls.
type SheetsBackend struct {
	values  sheetsValuesGetter
	sheetID string
	tab     string
	cache   *snapshotCache
	logg    *logger.Logger
}

// sheetsValuesGetter is the single Sheets API call the backend makes.
type sheetsValuesGetter interface {
	Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error)
}

type sheetsValuesService struct {
	svc *sheets.Service
}

func (s sheetsValuesService) Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error) {
	return s.svc.Spreadsheets.Values.Get(spreadsheetID, readRange).Context(ctx).Do()
}

func NewSheetsBackend(ctx context.Context, cfg config.CatalogConfig, logg *logger.Logger) (*SheetsBackend, error) {
	if cfg.SheetsID == "" {
		return nil, fmt.Errorf("sheets id is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}

	opts := []option.ClientOption{option.WithScopes(sheets.SpreadsheetsReadonlyScope)}
	if cfg.SheetsCredentials != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.SheetsCredentials))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}

	return &SheetsBackend{
		values:  sheetsValuesService{svc: svc},
		sheetID: cfg.SheetsID,
		tab:     cfg.SheetsTab,
		cache:   newSnapshotCache(cfg.CacheTTL),
		logg:    logg,
	}, nil
}

func (b *SheetsBackend) FetchCandidates(ctx context.Context, key MatchKey) ([]PriceRecord, error) {
	rows, err := b.snapshot(ctx)
	if err != nil {
		return nil, err
	}

	var out []PriceRecord
	for _, r := range rows {
		if r.Key == key {
			out = append(out, r.Record)
		}
	}
	return out, nil
}

func (b *SheetsBackend) Ping(ctx context.Context) error {
	if _, err := b.snapshot(ctx); err != nil {
		return err
	}
	return nil
}

func (b *SheetsBackend) snapshot(ctx context.Context) ([]row, error) {
	if rows, ok := b.cache.Get(); ok {
		return rows, nil
	}

	vr, err := b.values.Get(ctx, b.sheetID, b.tab)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %q: %v", ErrUnavailable, b.tab, err)
	}

	rows, skipped := parseSheet(vr.Values)
	if skipped > 0 {
		b.logg.Warn(b.logg.WithFields(ctx, map[string]any{"skipped": skipped}), "sheet rows skipped during parse")
	}

	b.cache.Put(rows)
	return rows, nil
}

// Column headers expected in the first sheet row. Order in the sheet does not
// matter, only the names.
const (
	colFEFCO        = "fefco"
	colXMM          = "x_mm"
	colYMM          = "y_mm"
	colZMM          = "z_mm"
	colMaterial     = "material"
	colPrint        = "print"
	colSLAType      = "sla_type"
	colSKU          = "sku"
	colQtyMin       = "qty_min"
	colQtyMax       = "qty_max"
	colLeadTimeStd  = "lead_time_std"
	colLeadTimeRush = "lead_time_rush"
	colLeadTimeStrg = "lead_time_strg"
	colPriceStd     = "price_std"
	colMarginStd    = "margin_std"
	colPriceRush    = "price_rush"
	colMarginRush   = "margin_rush"
	colPriceStrg    = "price_strg"
	colMarginStrg   = "margin_strg"
	colTerms        = "terms"
)

// parseSheet converts raw sheet values into catalog rows. The first row is
// treated as a header; rows that fail to parse are counted and dropped rather
// than failing the whole snapshot.
func parseSheet(values [][]interface{}) ([]row, int) {
	if len(values) < 2 {
		return nil, 0
	}

	header := make(map[string]int, len(values[0]))
	for i, cell := range values[0] {
		header[strings.ToLower(strings.TrimSpace(cellString(cell)))] = i
	}

	var (
		rows    []row
		skipped int
	)
	for _, raw := range values[1:] {
		r, err := parseSheetRow(header, raw)
		if err != nil {
			skipped++
			continue
		}
		rows = append(rows, r)
	}
	return rows, skipped
}

func parseSheetRow(header map[string]int, raw []interface{}) (row, error) {
	cell := func(name string) (string, error) {
		idx, ok := header[name]
		if !ok {
			return "", fmt.Errorf("missing column %q", name)
		}
		if idx >= len(raw) {
			return "", nil
		}
		return strings.TrimSpace(cellString(raw[idx])), nil
	}

	str := func(name string) (string, error) {
		v, err := cell(name)
		if err != nil {
			return "", err
		}
		if v == "" {
			return "", fmt.Errorf("empty column %q", name)
		}
		return v, nil
	}

	num := func(name string) (int, error) {
		v, err := str(name)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}
		return n, nil
	}

	dec := func(name string) (decimal.Decimal, error) {
		v, err := str(name)
		if err != nil {
			return decimal.Decimal{}, err
		}
		// spreadsheets exported from RU locales use comma decimals
		d, err := decimal.NewFromString(strings.ReplaceAll(v, ",", "."))
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("column %q: %w", name, err)
		}
		return d, nil
	}

	var (
		r   row
		err error
	)
	if r.Key.FEFCO, err = str(colFEFCO); err != nil {
		return row{}, err
	}
	if r.Key.XMM, err = num(colXMM); err != nil {
		return row{}, err
	}
	if r.Key.YMM, err = num(colYMM); err != nil {
		return row{}, err
	}
	if r.Key.ZMM, err = num(colZMM); err != nil {
		return row{}, err
	}
	if r.Key.Material, err = str(colMaterial); err != nil {
		return row{}, err
	}
	if r.Key.Print, err = str(colPrint); err != nil {
		return row{}, err
	}
	if r.Key.SLAType, err = str(colSLAType); err != nil {
		return row{}, err
	}

	if r.Record.SKU, err = str(colSKU); err != nil {
		return row{}, err
	}
	if r.Record.QtyBand.Min, err = num(colQtyMin); err != nil {
		return row{}, err
	}
	if r.Record.QtyBand.Max, err = num(colQtyMax); err != nil {
		return row{}, err
	}
	if r.Record.QtyBand.Min > r.Record.QtyBand.Max {
		return row{}, fmt.Errorf("inverted qty band for sku %q", r.Record.SKU)
	}

	if r.Record.LeadTimes.Std, err = cell(colLeadTimeStd); err != nil {
		return row{}, err
	}
	if r.Record.LeadTimes.Rush, err = cell(colLeadTimeRush); err != nil {
		return row{}, err
	}
	if r.Record.LeadTimes.Strategic, err = cell(colLeadTimeStrg); err != nil {
		return row{}, err
	}

	if r.Record.Prices.Std.PricePerUnit, err = dec(colPriceStd); err != nil {
		return row{}, err
	}
	if r.Record.Prices.Std.MarginPct, err = dec(colMarginStd); err != nil {
		return row{}, err
	}
	if r.Record.Prices.Rush.PricePerUnit, err = dec(colPriceRush); err != nil {
		return row{}, err
	}
	if r.Record.Prices.Rush.MarginPct, err = dec(colMarginRush); err != nil {
		return row{}, err
	}
	if r.Record.Prices.Strategic.PricePerUnit, err = dec(colPriceStrg); err != nil {
		return row{}, err
	}
	if r.Record.Prices.Strategic.MarginPct, err = dec(colMarginStrg); err != nil {
		return row{}, err
	}

	termsCell, err := cell(colTerms)
	if err != nil {
		return row{}, err
	}
	r.Record.Terms = splitTerms(termsCell)

	return r, nil
}

func cellString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

// splitTerms splits the semicolon-separated terms column into clean entries.
func splitTerms(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	var out []string
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
