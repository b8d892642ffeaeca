package llm

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"github.com/cartonq/cartonq-backend/internal/catalog"
	"github.com/cartonq/cartonq-backend/internal/quote"
)

type fakeModels struct {
	text    string
	err     error
	lastCtx context.Context
	lastCfg *genai.GenerateContentConfig
}

func (f *fakeModels) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.lastCtx = ctx
	f.lastCfg = config
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}},
		},
	}, nil
}

func testInput() quote.GenerationInput {
	return quote.GenerationInput{
		LeadID:     "web-1700000000-abcd1234",
		DateToday:  "2026-08-23",
		ValidUntil: "2026-08-30",
		PriceHash:  "0123456789abcdef0123456789abcdef",
		Request: quote.Request{
			FEFCO: "0201", XMM: 300, YMM: 200, ZMM: 150,
			Material: "T23B", Print: "1+0", SLAType: "standard", Qty: 1000,
			Company: "Acme LLC", ContactName: "Ivan", City: "Moscow",
			Phone: "+70000000000", Email: "ivan@acme.test",
		},
		Record: catalog.PriceRecord{
			SKU:       "BOX-001",
			QtyBand:   catalog.QtyBand{Min: 500, Max: 2000},
			LeadTimes: catalog.LeadTimes{Std: "10-12 days", Rush: "5-6 days", Strategic: "20-25 days"},
			Prices: catalog.Prices{
				Std: catalog.TierPrice{PricePerUnit: decimal.RequireFromString("23.40"), MarginPct: decimal.RequireFromString("18.5")},
			},
			Terms: []string{"FCA warehouse", "50% prepayment"},
		},
		Branding: quote.Branding{CompanyName: "CartonQ", ContactInfo: "sales@cartonq.example"},
	}
}

func modelJSON(t *testing.T, input quote.GenerationInput) string {
	t.Helper()
	result := quote.GenerationResult{
		LeadID:        input.LeadID,
		EchoPriceHash: input.PriceHash,
		Options: []quote.Option{
			{Name: "Standard", PricePerUnit: decimal.RequireFromString("23.40"), LeadTime: "10-12 days", MarginPct: decimal.RequireFromString("18.5")},
			{Name: "Rush", PricePerUnit: decimal.RequireFromString("27.10"), LeadTime: "5-6 days", MarginPct: decimal.RequireFromString("15.0")},
			{Name: "Strategic", PricePerUnit: decimal.RequireFromString("21.00"), LeadTime: "20-25 days", MarginPct: decimal.RequireFromString("22.0")},
		},
		CTA:       quote.CTA{ConfirmVariants: []string{"reply with the option name"}},
		HTMLBlock: "<html></html>",
	}
	data, err := json.Marshal(result)
	if err != nil {
		t.Fatalf("marshaling fixture: %v", err)
	}
	return string(data)
}

func newTestGenerator(models contentGenerator) *Generator {
	return &Generator{
		models:      models,
		model:       "gemini-2.0-flash",
		temperature: 0.2,
		timeout:     time.Second,
	}
}

func TestGenerate_DecodesStructuredResponse(t *testing.T) {
	input := testInput()
	models := &fakeModels{text: modelJSON(t, input)}
	gen := newTestGenerator(models)

	result, err := gen.Generate(context.Background(), input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.LeadID != input.LeadID {
		t.Fatalf("unexpected lead id %q", result.LeadID)
	}
	if len(result.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(result.Options))
	}
	if got := result.Options[0].PricePerUnit.StringFixed(2); got != "23.40" {
		t.Fatalf("unexpected price %s", got)
	}
}

func TestGenerate_RequestsJSONWithSchema(t *testing.T) {
	input := testInput()
	models := &fakeModels{text: modelJSON(t, input)}
	gen := newTestGenerator(models)

	if _, err := gen.Generate(context.Background(), input); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if models.lastCfg.ResponseMIMEType != "application/json" {
		t.Fatalf("expected json response mime type, got %q", models.lastCfg.ResponseMIMEType)
	}
	if models.lastCfg.ResponseSchema == nil {
		t.Fatal("expected a response schema")
	}
	if _, ok := models.lastCtx.Deadline(); !ok {
		t.Fatal("expected a deadline on the model call")
	}
}

func TestGenerate_TransportError(t *testing.T) {
	gen := newTestGenerator(&fakeModels{err: errors.New("quota exhausted")})

	if _, err := gen.Generate(context.Background(), testInput()); err == nil {
		t.Fatal("expected error")
	}
}

func TestDecodeResult_BadPayloads(t *testing.T) {
	if _, err := decodeResult(""); err == nil {
		t.Fatal("expected error for empty response")
	}
	if _, err := decodeResult("not json"); err == nil {
		t.Fatal("expected error for invalid json")
	}
}

func TestBuildPrompt_CarriesControlAndCatalogData(t *testing.T) {
	input := testInput()
	prompt := buildPrompt(input)

	for _, want := range []string{
		input.LeadID,
		input.PriceHash,
		input.ValidUntil,
		"300x200x150 mm",
		"BOX-001",
		"23.40",
		"FCA warehouse, 50% prepayment",
		"exactly 3 options",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q", want)
		}
	}
}
