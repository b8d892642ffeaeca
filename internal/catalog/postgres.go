package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// catalogRow is the GORM model for the quote_catalog table.
type catalogRow struct {
	ID       uint64 `gorm:"primaryKey"`
	SKU      string `gorm:"column:sku"`
	FEFCO    string `gorm:"column:fefco"`
	XMM      int    `gorm:"column:x_mm"`
	YMM      int    `gorm:"column:y_mm"`
	ZMM      int    `gorm:"column:z_mm"`
	Material string `gorm:"column:material"`
	Print    string `gorm:"column:print"`
	SLAType  string `gorm:"column:sla_type"`

	QtyMin int `gorm:"column:qty_min"`
	QtyMax int `gorm:"column:qty_max"`

	LeadTimeStd  string `gorm:"column:lead_time_std"`
	LeadTimeRush string `gorm:"column:lead_time_rush"`
	LeadTimeStrg string `gorm:"column:lead_time_strg"`

	PriceStd   decimal.Decimal `gorm:"column:price_std;type:numeric(12,2)"`
	MarginStd  decimal.Decimal `gorm:"column:margin_std;type:numeric(6,2)"`
	PriceRush  decimal.Decimal `gorm:"column:price_rush;type:numeric(12,2)"`
	MarginRush decimal.Decimal `gorm:"column:margin_rush;type:numeric(6,2)"`
	PriceStrg  decimal.Decimal `gorm:"column:price_strg;type:numeric(12,2)"`
	MarginStrg decimal.Decimal `gorm:"column:margin_strg;type:numeric(6,2)"`

	Terms string `gorm:"column:terms"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (catalogRow) TableName() string {
	return "quote_catalog"
}

func (m catalogRow) toRecord() PriceRecord {
	return PriceRecord{
		SKU:     m.SKU,
		QtyBand: QtyBand{Min: m.QtyMin, Max: m.QtyMax},
		LeadTimes: LeadTimes{
			Std:       m.LeadTimeStd,
			Rush:      m.LeadTimeRush,
			Strategic: m.LeadTimeStrg,
		},
		Prices: Prices{
			Std:       TierPrice{PricePerUnit: m.PriceStd, MarginPct: m.MarginStd},
			Rush:      TierPrice{PricePerUnit: m.PriceRush, MarginPct: m.MarginRush},
			Strategic: TierPrice{PricePerUnit: m.PriceStrg, MarginPct: m.MarginStrg},
		},
		Terms: splitTerms(m.Terms),
	}
}

// PostgresBackend reads the price catalog from the quote_catalog table.
type PostgresBackend struct {
	db *gorm.DB
}

func NewPostgresBackend(db *gorm.DB) (*PostgresBackend, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	return &PostgresBackend{db: db}, nil
}

func (b *PostgresBackend) FetchCandidates(ctx context.Context, key MatchKey) ([]PriceRecord, error) {
	var rows []catalogRow
	err := b.db.WithContext(ctx).
		Where("fefco = ? AND x_mm = ? AND y_mm = ? AND z_mm = ? AND material = ? AND print = ? AND sla_type = ?",
			key.FEFCO, key.XMM, key.YMM, key.ZMM, key.Material, key.Print, key.SLAType).
		Order("sku ASC, qty_min ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("%w: querying quote_catalog: %v", ErrUnavailable, err)
	}

	out := make([]PriceRecord, 0, len(rows))
	for _, m := range rows {
		out = append(out, m.toRecord())
	}
	return out, nil
}

func (b *PostgresBackend) Ping(ctx context.Context) error {
	sqlDB, err := b.db.DB()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
