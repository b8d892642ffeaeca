package quote

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartonq/cartonq-backend/internal/catalog"
	"github.com/cartonq/cartonq-backend/internal/fingerprint"
	"github.com/cartonq/cartonq-backend/internal/pricing"
	pkgerrors "github.com/cartonq/cartonq-backend/pkg/errors"
	"github.com/cartonq/cartonq-backend/pkg/logger"
	"github.com/cartonq/cartonq-backend/pkg/metrics"
)

// Pipeline stage names used in logs and metrics.
const (
	StageLookup   = "lookup"
	StageGenerate = "generate"
	StageRender   = "render"
	StageDeliver  = "deliver"
)

// Generator produces the structured quote document for an input.
type Generator interface {
	Generate(ctx context.Context, input GenerationInput) (*GenerationResult, error)
}

// Renderer turns the generated HTML into a stored PDF artifact.
type Renderer interface {
	Render(ctx context.Context, html, leadID string) (Artifact, error)
}

// Notifier delivers the rendered artifact to the sales channel. Delivery is
// best-effort; the pipeline never fails on a Notifier error.
type Notifier interface {
	Send(ctx context.Context, artifact Artifact, caption, leadID string) error
}

// Service runs the quote pipeline end to end.
type Service interface {
	Generate(ctx context.Context, req Request) (*Outcome, error)
}

// ServiceParams wires the pipeline collaborators.
type ServiceParams struct {
	Lookup    pricing.Service
	Generator Generator
	Renderer  Renderer
	Notifier  Notifier // optional
	Metrics   *metrics.PipelineMetrics
	Logger    *logger.Logger

	HashSalt      string
	ValidDays     int
	NotifyTimeout time.Duration
	Branding      Branding
}

type serviceImpl struct {
	lookup    pricing.Service
	generator Generator
	renderer  Renderer
	notifier  Notifier
	metrics   *metrics.PipelineMetrics
	logg      *logger.Logger

	salt          string
	validDays     int
	notifyTimeout time.Duration
	branding      Branding

	now       func() time.Time
	newLeadID func(time.Time) string
}

func NewService(params ServiceParams) (Service, error) {
	if params.Lookup == nil {
		return nil, fmt.Errorf("lookup service is required")
	}
	if params.Generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	validDays := params.ValidDays
	if validDays <= 0 {
		validDays = 7
	}
	return &serviceImpl{
		lookup:        params.Lookup,
		generator:     params.Generator,
		renderer:      params.Renderer,
		notifier:      params.Notifier,
		metrics:       params.Metrics,
		logg:          params.Logger,
		salt:          params.HashSalt,
		validDays:     validDays,
		notifyTimeout: params.NotifyTimeout,
		branding:      params.Branding,
		now:           time.Now,
		newLeadID:     fingerprint.NewLeadID,
	}, nil
}

// Generate runs lookup, generation, rendering and delivery for one request.
// Everything between lookup and the rendered PDF fails as a single opaque
// generation error; the caller only learns the classification, the logs keep
// the detail.
func (s *serviceImpl) Generate(ctx context.Context, req Request) (*Outcome, error) {
	now := s.now()
	leadID := s.newLeadID(now)
	ctx = s.logg.WithLeadID(ctx, leadID)

	record, err := s.lookupStage(ctx, req)
	if err != nil {
		return nil, err
	}

	hash := fingerprint.Compute(record, req.Qty, s.salt)
	input := GenerationInput{
		LeadID:     leadID,
		DateToday:  now.Format("2006-01-02"),
		ValidUntil: now.AddDate(0, 0, s.validDays).Format("2006-01-02"),
		PriceHash:  hash,
		Request:    req,
		Record:     record,
		Branding:   s.branding,
	}

	result, err := s.generateStage(ctx, input)
	if err != nil {
		return nil, err
	}

	artifact, err := s.renderStage(ctx, result.HTMLBlock, leadID)
	if err != nil {
		return nil, err
	}

	s.deliverStage(ctx, artifact, req, leadID)

	s.metrics.IncOutcome("success")
	s.logg.Info(ctx, "quote pipeline completed")
	return &Outcome{LeadID: leadID, PDFURL: artifact.URL}, nil
}

func (s *serviceImpl) lookupStage(ctx context.Context, req Request) (catalog.PriceRecord, error) {
	ctx = s.logg.WithStage(ctx, StageLookup)
	start := s.now()
	record, err := s.lookup.Lookup(ctx, req.MatchKey(), req.Qty)
	s.metrics.ObserveStage(StageLookup, s.now().Sub(start))

	switch {
	case err == nil:
		return record, nil
	case errors.Is(err, pricing.ErrNotFound):
		s.metrics.IncOutcome("not_found")
		s.logg.Info(ctx, "price pack not found")
		return catalog.PriceRecord{}, pkgerrors.New(pkgerrors.CodeNotFound, "price pack not found")
	case errors.Is(err, catalog.ErrUnavailable):
		s.metrics.IncOutcome("catalog_unavailable")
		s.logg.Error(ctx, "price catalog unavailable", err)
		return catalog.PriceRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price catalog unavailable")
	default:
		s.metrics.IncOutcome("catalog_unavailable")
		s.logg.Error(ctx, "price lookup failed", err)
		return catalog.PriceRecord{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "price catalog unavailable")
	}
}

func (s *serviceImpl) generateStage(ctx context.Context, input GenerationInput) (*GenerationResult, error) {
	ctx = s.logg.WithStage(ctx, StageGenerate)
	start := s.now()
	result, err := s.generator.Generate(ctx, input)
	s.metrics.ObserveStage(StageGenerate, s.now().Sub(start))

	if err != nil {
		return nil, s.generationFailure(ctx, "quote generation failed", err)
	}
	if err := validateGeneration(result, input); err != nil {
		return nil, s.generationFailure(ctx, "generated quote rejected", err)
	}
	return result, nil
}

func (s *serviceImpl) renderStage(ctx context.Context, html, leadID string) (Artifact, error) {
	ctx = s.logg.WithStage(ctx, StageRender)
	start := s.now()
	artifact, err := s.renderer.Render(ctx, html, leadID)
	s.metrics.ObserveStage(StageRender, s.now().Sub(start))

	if err != nil {
		return Artifact{}, s.generationFailure(ctx, "pdf rendering failed", err)
	}
	return artifact, nil
}

// deliverStage sends the artifact to the sales channel. A failed or skipped
// delivery leaves the outcome untouched, the quote already exists.
func (s *serviceImpl) deliverStage(ctx context.Context, artifact Artifact, req Request, leadID string) {
	if s.notifier == nil {
		return
	}

	ctx = s.logg.WithStage(ctx, StageDeliver)
	if s.notifyTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.notifyTimeout)
		defer cancel()
	}

	caption := fmt.Sprintf("Quote %s - %s %dx%dx%d, %d pcs",
		leadID, req.FEFCO, req.XMM, req.YMM, req.ZMM, req.Qty)

	start := s.now()
	err := s.notifier.Send(ctx, artifact, caption, leadID)
	s.metrics.ObserveStage(StageDeliver, s.now().Sub(start))
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "quote delivery failed")
	}
}

func (s *serviceImpl) generationFailure(ctx context.Context, msg string, err error) error {
	s.metrics.IncOutcome("generation_failed")
	s.logg.Error(ctx, msg, err)
	return pkgerrors.Wrap(pkgerrors.CodeGeneration, err, msg)
}

// validateGeneration enforces the structural contract on the generated
// document before anything downstream trusts it.
func validateGeneration(result *GenerationResult, input GenerationInput) error {
	if result == nil {
		return fmt.Errorf("empty generation result")
	}
	if result.EchoPriceHash != input.PriceHash {
		return fmt.Errorf("price hash mismatch: got %q", result.EchoPriceHash)
	}
	if len(result.Options) != 3 {
		return fmt.Errorf("expected exactly 3 options, got %d", len(result.Options))
	}
	if result.LeadID != input.LeadID {
		return fmt.Errorf("lead id mismatch: got %q", result.LeadID)
	}
	if result.HTMLBlock == "" {
		return fmt.Errorf("empty html block")
	}
	return nil
}
