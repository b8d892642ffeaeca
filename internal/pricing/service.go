package pricing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartonq/cartonq-backend/internal/catalog"
	"github.com/cartonq/cartonq-backend/pkg/config"
)

// ErrNotFound means the catalog was read successfully but no record matched
// the request. It is deliberately distinct from catalog.ErrUnavailable: a
// missing price must never be reported as an outage, or the other way round.
var ErrNotFound = errors.New("no matching price record")

// Policy controls what happens when the match keys line up but the requested
// quantity falls outside every band.
type Policy string

const (
	// PolicyStrict fails the lookup when no band contains the quantity.
	PolicyStrict Policy = config.LookupPolicyStrict
	// PolicyFallback returns the band nearest to the quantity instead.
	PolicyFallback Policy = config.LookupPolicyFallback
)

func ParsePolicy(value string) (Policy, error) {
	switch Policy(value) {
	case PolicyStrict, PolicyFallback:
		return Policy(value), nil
	default:
		return "", fmt.Errorf("unsupported lookup policy %q", value)
	}
}

// Service resolves the authoritative price record for a quote request.
type Service interface {
	Lookup(ctx context.Context, key catalog.MatchKey, qty int) (catalog.PriceRecord, error)
}

type serviceImpl struct {
	backend catalog.Backend
	policy  Policy
	timeout time.Duration
}

func NewService(backend catalog.Backend, policy Policy, timeout time.Duration) (Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("catalog backend is required")
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	return &serviceImpl{backend: backend, policy: policy, timeout: timeout}, nil
}

func (s *serviceImpl) Lookup(ctx context.Context, key catalog.MatchKey, qty int) (catalog.PriceRecord, error) {
	if qty <= 0 {
		return catalog.PriceRecord{}, fmt.Errorf("%w: non-positive quantity", ErrNotFound)
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	candidates, err := s.backend.FetchCandidates(ctx, key)
	if err != nil {
		return catalog.PriceRecord{}, fmt.Errorf("fetching candidates: %w", err)
	}
	if len(candidates) == 0 {
		return catalog.PriceRecord{}, ErrNotFound
	}

	if rec, ok := exactMatch(candidates, qty); ok {
		return rec, nil
	}

	if s.policy == PolicyFallback {
		return nearestBand(candidates, qty), nil
	}
	return catalog.PriceRecord{}, ErrNotFound
}

// exactMatch returns the candidate whose band contains qty. Catalog data is
// expected to keep bands disjoint per key; if they ever overlap the lowest
// SKU wins so the result stays deterministic.
func exactMatch(candidates []catalog.PriceRecord, qty int) (catalog.PriceRecord, bool) {
	var (
		best  catalog.PriceRecord
		found bool
	)
	for _, c := range candidates {
		if !c.QtyBand.Contains(qty) {
			continue
		}
		if !found || c.SKU < best.SKU {
			best = c
			found = true
		}
	}
	return best, found
}

// nearestBand picks the candidate with the smallest one-sided distance to
// qty, breaking ties on the lowest SKU.
func nearestBand(candidates []catalog.PriceRecord, qty int) catalog.PriceRecord {
	best := candidates[0]
	bestDist := best.QtyBand.Distance(qty)
	for _, c := range candidates[1:] {
		dist := c.QtyBand.Distance(qty)
		if dist < bestDist || (dist == bestDist && c.SKU < best.SKU) {
			best = c
			bestDist = dist
		}
	}
	return best
}
