package llm

import (
	"fmt"
	"strings"

	"github.com/cartonq/cartonq-backend/internal/quote"
)

// buildPrompt lays out the control fields, buyer, order parameters and the
// looked-up catalog data for the model. The control block is what the model
// must echo back untouched.
func buildPrompt(input quote.GenerationInput) string {
	req := input.Request
	rec := input.Record

	var b strings.Builder

	b.WriteString("Create a commercial packaging proposal from the data below.\n\n")

	b.WriteString("CONTROL (echo back exactly):\n")
	fmt.Fprintf(&b, "- lead_id: %s\n", input.LeadID)
	fmt.Fprintf(&b, "- date_today: %s\n", input.DateToday)
	fmt.Fprintf(&b, "- valid_until: %s\n", input.ValidUntil)
	fmt.Fprintf(&b, "- price_hash: %s\n\n", input.PriceHash)

	b.WriteString("BUYER:\n")
	fmt.Fprintf(&b, "- company: %s\n", req.Company)
	fmt.Fprintf(&b, "- contact: %s\n", req.ContactName)
	fmt.Fprintf(&b, "- city: %s\n", req.City)
	fmt.Fprintf(&b, "- phone: %s\n", req.Phone)
	fmt.Fprintf(&b, "- email: %s\n", req.Email)
	fmt.Fprintf(&b, "- telegram: %s\n\n", orDefault(req.TGUsername, "not provided"))

	b.WriteString("ORDER:\n")
	fmt.Fprintf(&b, "- fefco: %s\n", req.FEFCO)
	fmt.Fprintf(&b, "- dimensions: %dx%dx%d mm\n", req.XMM, req.YMM, req.ZMM)
	fmt.Fprintf(&b, "- material: %s\n", req.Material)
	fmt.Fprintf(&b, "- print: %s\n", req.Print)
	fmt.Fprintf(&b, "- qty: %d pcs\n", req.Qty)
	fmt.Fprintf(&b, "- service level: %s\n\n", req.SLAType)

	b.WriteString("CATALOG DATA:\n")
	fmt.Fprintf(&b, "- sku: %s\n", rec.SKU)
	fmt.Fprintf(&b, "- qty band: %d-%d pcs\n", rec.QtyBand.Min, rec.QtyBand.Max)
	b.WriteString("- lead times:\n")
	fmt.Fprintf(&b, "  * Standard: %s\n", rec.LeadTimes.Std)
	fmt.Fprintf(&b, "  * Rush: %s\n", rec.LeadTimes.Rush)
	fmt.Fprintf(&b, "  * Strategic: %s\n", rec.LeadTimes.Strategic)
	b.WriteString("- prices:\n")
	fmt.Fprintf(&b, "  * Standard: %s per unit (margin %s%%)\n",
		rec.Prices.Std.PricePerUnit.StringFixed(2), rec.Prices.Std.MarginPct.String())
	fmt.Fprintf(&b, "  * Rush: %s per unit (margin %s%%)\n",
		rec.Prices.Rush.PricePerUnit.StringFixed(2), rec.Prices.Rush.MarginPct.String())
	fmt.Fprintf(&b, "  * Strategic: %s per unit (margin %s%%)\n",
		rec.Prices.Strategic.PricePerUnit.StringFixed(2), rec.Prices.Strategic.MarginPct.String())
	fmt.Fprintf(&b, "- terms: %s\n\n", orDefault(strings.Join(rec.Terms, ", "), "standard terms"))

	b.WriteString("BRANDING:\n")
	fmt.Fprintf(&b, "- company: %s\n", input.Branding.CompanyName)
	fmt.Fprintf(&b, "- contacts: %s\n\n", input.Branding.ContactInfo)

	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. Produce exactly 3 options named Standard, Rush and Strategic.\n")
	b.WriteString("2. Use the exact prices, margins and lead times from the catalog data.\n")
	b.WriteString("3. Write a short professional note for each option.\n")
	b.WriteString("4. html_block must be a self-contained printable HTML document for the proposal.\n")

	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
