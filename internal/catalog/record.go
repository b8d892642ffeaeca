package catalog

import (
	"github.com/shopspring/decimal"
)

// MatchKey identifies the box configuration a catalog row prices. All keys
// are compared with exact scalar equality; quantity is matched separately
// against the row's band.
type MatchKey struct {
	FEFCO    string
	XMM      int
	YMM      int
	ZMM      int
	Material string
	Print    string
	SLAType  string
}

// QtyBand is the inclusive quantity range a catalog row is valid for.
type QtyBand struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// Contains reports whether qty falls inside the band.
func (b QtyBand) Contains(qty int) bool {
	return b.Min <= qty && qty <= b.Max
}

// Distance returns the one-sided distance from qty to the band: zero when qty
// is inside, otherwise the gap to the nearer boundary.
func (b QtyBand) Distance(qty int) int {
	switch {
	case qty < b.Min:
		return b.Min - qty
	case qty > b.Max:
		return qty - b.Max
	default:
		return 0
	}
}

// TierPrice is the price/margin pair for one service tier.
type TierPrice struct {
	PricePerUnit decimal.Decimal `json:"price_per_unit"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
}

// Prices carries the three service tiers every catalog row quotes.
type Prices struct {
	Std       TierPrice `json:"std"`
	Rush      TierPrice `json:"rush"`
	Strategic TierPrice `json:"strategic"`
}

// LeadTimes carries the human-readable lead time per service tier.
type LeadTimes struct {
	Std       string `json:"std"`
	Rush      string `json:"rush"`
	Strategic string `json:"strategic"`
}

// PriceRecord is the authoritative catalog entry matched for a request. The
// pipeline holds an immutable copy once fetched.
type PriceRecord struct {
	SKU       string    `json:"sku"`
	QtyBand   QtyBand   `json:"qty_band"`
	LeadTimes LeadTimes `json:"lead_time"`
	Prices    Prices    `json:"prices"`
	Terms     []string  `json:"terms"`
}
