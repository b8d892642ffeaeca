package quote

import (
	"github.com/shopspring/decimal"

	"github.com/cartonq/cartonq-backend/internal/catalog"
)

// Request is the validated quote form handed to the pipeline.
type Request struct {
	FEFCO    string
	XMM      int
	YMM      int
	ZMM      int
	Material string
	Print    string
	SLAType  string
	Qty      int

	Company     string
	ContactName string
	City        string
	Phone       string
	Email       string
	TGUsername  string
}

// MatchKey projects the request onto the catalog match keys.
func (r Request) MatchKey() catalog.MatchKey {
	return catalog.MatchKey{
		FEFCO:    r.FEFCO,
		XMM:      r.XMM,
		YMM:      r.YMM,
		ZMM:      r.ZMM,
		Material: r.Material,
		Print:    r.Print,
		SLAType:  r.SLAType,
	}
}

// Branding is injected into the generated document.
type Branding struct {
	CompanyName string
	ContactInfo string
	LogoURL     string
}

// GenerationInput is everything the generator needs to produce a quote
// document. PriceHash must come back verbatim in the result.
type GenerationInput struct {
	LeadID     string
	DateToday  string
	ValidUntil string
	PriceHash  string

	Request  Request
	Record   catalog.PriceRecord
	Branding Branding
}

// Dimensions mirrors the dimensions_mm object of the generated summary.
type Dimensions struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// Summary restates the order parameters inside the generated quote.
type Summary struct {
	FEFCO      string     `json:"fefco"`
	Dimensions Dimensions `json:"dimensions_mm"`
	Material   string     `json:"material"`
	Print      string     `json:"print"`
	Qty        int        `json:"qty"`
	SKU        string     `json:"sku"`
}

// Option is one of the exactly three priced variants of a quote.
type Option struct {
	Name         string          `json:"name"`
	PricePerUnit decimal.Decimal `json:"price_per_unit_rub"`
	LeadTime     string          `json:"lead_time"`
	MarginPct    decimal.Decimal `json:"margin_pct"`
	Notes        []string        `json:"notes,omitempty"`
}

// CTA carries the closing calls to action of the quote.
type CTA struct {
	ConfirmVariants []string `json:"confirm_variants"`
	Followups       []string `json:"followups,omitempty"`
}

// GenerationResult is the structured quote document produced by the
// generator. Field tags match the generator's response schema.
type GenerationResult struct {
	LeadID        string   `json:"lead_id"`
	EchoPriceHash string   `json:"echo_price_hash"`
	Summary       Summary  `json:"summary"`
	Options       []Option `json:"options"`
	WhatIncluded  []string `json:"what_included"`
	Important     []string `json:"important"`
	CTA           CTA      `json:"cta"`
	HTMLBlock     string   `json:"html_block"`
}

// Artifact points at a rendered PDF, both on disk and as a public URL.
type Artifact struct {
	Path string
	URL  string
}

// Outcome is what a successful pipeline run hands back to the caller.
type Outcome struct {
	LeadID string
	PDFURL string
}
