// Package fingerprint derives the price-integrity hash a generated quote
// must echo back. Any drift between the looked-up record and the numbers the
// generator saw changes the hash and gets the quote rejected.
package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cartonq/cartonq-backend/internal/catalog"
)

// Compute returns the MD5 hex digest of a canonical JSON rendering of the
// priced fields plus the salt. Keys are sorted and monetary values are
// normalized to two decimal places, so logically equal inputs always hash the
// same regardless of which catalog backend produced them.
func Compute(rec catalog.PriceRecord, qty int, salt string) string {
	payload := map[string]any{
		"prices": map[string]any{
			"std":       tierPayload(rec.Prices.Std),
			"rush":      tierPayload(rec.Prices.Rush),
			"strategic": tierPayload(rec.Prices.Strategic),
		},
		"qty": qty,
		"qty_band": map[string]any{
			"min": rec.QtyBand.Min,
			"max": rec.QtyBand.Max,
		},
		"lead_time": map[string]any{
			"std":       rec.LeadTimes.Std,
			"rush":      rec.LeadTimes.Rush,
			"strategic": rec.LeadTimes.Strategic,
		},
		"salt": salt,
	}

	// encoding/json writes map keys in sorted order, which is exactly the
	// canonical form needed here.
	data, err := json.Marshal(payload)
	if err != nil {
		// the payload is built from plain maps and scalars, this cannot fail
		panic(fmt.Sprintf("marshaling fingerprint payload: %v", err))
	}

	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}

func tierPayload(t catalog.TierPrice) map[string]any {
	return map[string]any{
		"price_per_unit": json.RawMessage(normalize(t.PricePerUnit)),
		"margin_pct":     json.RawMessage(normalize(t.MarginPct)),
	}
}

func normalize(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NewLeadID returns a lead identifier of the form web-<unix>-<8 hex chars>.
// The random tail keeps PDF artifact paths unguessable.
func NewLeadID(now time.Time) string {
	return fmt.Sprintf("web-%d-%s", now.Unix(), uuid.NewString()[:8])
}
