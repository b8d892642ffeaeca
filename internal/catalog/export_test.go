package catalog

import (
	"context"
	"strings"
	"time"

	sheets "google.golang.org/api/sheets/v4"
	"gorm.io/gorm"

	"github.com/cartonq/cartonq-backend/pkg/logger"
)

type staticValues [][]interface{}

func (s staticValues) Get(ctx context.Context, spreadsheetID, readRange string) (*sheets.ValueRange, error) {
	return &sheets.ValueRange{Values: s}, nil
}

// NewStaticSheetsBackend wires a SheetsBackend over fixed tab values so tests
// outside the package can compare backends without the Sheets API.
func NewStaticSheetsBackend(values [][]interface{}, logg *logger.Logger) *SheetsBackend {
	return &SheetsBackend{
		values:  staticValues(values),
		sheetID: "sheet",
		tab:     "QuoteCatalog",
		cache:   newSnapshotCache(time.Minute),
		logg:    logg,
	}
}

// MigrateCatalogTable creates the quote_catalog table for SQLite-backed tests.
func MigrateCatalogTable(db *gorm.DB) error {
	return db.AutoMigrate(&catalogRow{})
}

// InsertCatalogRow stores one record under the given key, joining terms the
// way the relational schema stores them.
func InsertCatalogRow(db *gorm.DB, key MatchKey, rec PriceRecord) error {
	m := catalogRow{
		SKU:      rec.SKU,
		FEFCO:    key.FEFCO,
		XMM:      key.XMM,
		YMM:      key.YMM,
		ZMM:      key.ZMM,
		Material: key.Material,
		Print:    key.Print,
		SLAType:  key.SLAType,

		QtyMin: rec.QtyBand.Min,
		QtyMax: rec.QtyBand.Max,

		LeadTimeStd:  rec.LeadTimes.Std,
		LeadTimeRush: rec.LeadTimes.Rush,
		LeadTimeStrg: rec.LeadTimes.Strategic,

		PriceStd:   rec.Prices.Std.PricePerUnit,
		MarginStd:  rec.Prices.Std.MarginPct,
		PriceRush:  rec.Prices.Rush.PricePerUnit,
		MarginRush: rec.Prices.Rush.MarginPct,
		PriceStrg:  rec.Prices.Strategic.PricePerUnit,
		MarginStrg: rec.Prices.Strategic.MarginPct,

		Terms: strings.Join(rec.Terms, "; "),
	}
	return db.Create(&m).Error
}
