// Package directions turns free-form place names into driving routes by
// geocoding each address and chaining the coordinates into a route request.
package directions

import (
	"context"
	"log/slog"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

// Geocoder is the part of the provider client the resolver needs.
type Geocoder interface {
	Geocode(ctx context.Context, query string, opts naver.GeocodeOptions) (*naver.GeocodeResult, error)
}

// Resolution is a geocoded address.
type Resolution struct {
	Query      string         `json:"query"`
	Resolved   string         `json:"resolved"`
	Coordinate geo.Coordinate `json:"coordinates"`
	Synthetic  bool           `json:"synthetic"`
}

// Resolver maps a single free-form address to its best coordinate.
type Resolver struct {
	geocoder Geocoder
	logger   *slog.Logger
}

// NewResolver creates a resolver backed by geocoder.
func NewResolver(geocoder Geocoder, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{geocoder: geocoder, logger: logger}
}

// Resolve geocodes query and returns the first candidate. Synthetic
// candidates are accepted and flagged; an empty candidate list is an
// ErrNoResults resolution error.
func (r *Resolver) Resolve(ctx context.Context, query string) (*Resolution, error) {
	result, err := r.geocoder.Geocode(ctx, query, naver.GeocodeOptions{})
	if err != nil {
		return nil, &ResolutionError{Query: query, Err: err}
	}
	if len(result.Addresses) == 0 {
		return nil, &ResolutionError{Query: query, Err: ErrNoResults}
	}

	head := result.Addresses[0]
	res := &Resolution{
		Query:      query,
		Resolved:   head.DisplayAddress(),
		Coordinate: head.Coordinate(),
		Synthetic:  result.Synthetic(),
	}
	r.logger.Debug("resolved address",
		"query", query,
		"resolved", res.Resolved,
		"coordinate", res.Coordinate,
		"synthetic", res.Synthetic)
	return res, nil
}
