package directions

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/NERVsystems/navermcp/pkg/geo"
	"github.com/NERVsystems/navermcp/pkg/metrics"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

// Router is the part of the provider client the orchestrator needs.
type Router interface {
	Route(ctx context.Context, req naver.RouteRequest) (*naver.RouteResult, error)
	RouteWithWaypoints(ctx context.Context, req naver.RouteRequest) (*naver.RouteResult, error)
}

// Provider is implemented by *naver.Client.
type Provider interface {
	Geocoder
	Router
}

// NaturalLanguageRequest asks for a route between place names.
type NaturalLanguageRequest struct {
	Start     string
	Goal      string
	Waypoints []string
	Option    naver.RouteOption
	Lang      naver.Language
}

// OriginalAddresses records how each address of a natural-language route
// was resolved.
type OriginalAddresses struct {
	Start     Resolution   `json:"start"`
	Goal      Resolution   `json:"goal"`
	Waypoints []Resolution `json:"waypoints,omitempty"`
}

// NaturalLanguageRoute is a route plus the resolution of its addresses.
type NaturalLanguageRoute struct {
	*naver.RouteResult
	OriginalAddresses OriginalAddresses `json:"originalAddresses"`
}

// Orchestrator builds routes from coordinates or from place names.
type Orchestrator struct {
	router   Router
	resolver *Resolver
	logger   *slog.Logger
}

// NewOrchestrator creates an orchestrator using provider for both
// geocoding and routing.
func NewOrchestrator(provider Provider, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		router:   provider,
		resolver: NewResolver(provider, logger),
		logger:   logger,
	}
}

// DirectRoute routes between known coordinates, choosing the waypoint
// endpoint only when waypoints are present.
func (o *Orchestrator) DirectRoute(ctx context.Context, req naver.RouteRequest) (*naver.RouteResult, error) {
	if len(req.Waypoints) == 0 {
		return o.router.Route(ctx, req)
	}
	return o.router.RouteWithWaypoints(ctx, req)
}

// NaturalLanguageRoute resolves start, goal and each waypoint in that order,
// then requests the route. Resolution stops at the first failing address and
// no route is requested; the returned *ResolutionError names that address.
func (o *Orchestrator) NaturalLanguageRoute(ctx context.Context, req NaturalLanguageRequest) (*NaturalLanguageRoute, error) {
	if len(req.Waypoints) > naver.MaxWaypoints {
		return nil, &naver.APIError{
			Op:       naver.OpRouteWithWaypoints,
			Kind:     naver.KindRequest,
			Message:  fmt.Sprintf("too many waypoints: %d (maximum is %d)", len(req.Waypoints), naver.MaxWaypoints),
			Guidance: naver.GuidanceInvalidParams,
		}
	}

	start, err := o.resolve(ctx, Leg{Role: RoleStart}, req.Start)
	if err != nil {
		return nil, err
	}
	goal, err := o.resolve(ctx, Leg{Role: RoleGoal}, req.Goal)
	if err != nil {
		return nil, err
	}

	addresses := OriginalAddresses{Start: *start, Goal: *goal}
	var waypoints []geo.Coordinate
	for i, query := range req.Waypoints {
		wp, err := o.resolve(ctx, Leg{Role: RoleWaypoint, Index: i}, query)
		if err != nil {
			return nil, err
		}
		addresses.Waypoints = append(addresses.Waypoints, *wp)
		waypoints = append(waypoints, wp.Coordinate)
	}

	route, err := o.DirectRoute(ctx, naver.RouteRequest{
		Start:     start.Coordinate,
		Goal:      goal.Coordinate,
		Waypoints: waypoints,
		Option:    req.Option,
		Lang:      req.Lang,
	})
	if err != nil {
		return nil, err
	}

	return &NaturalLanguageRoute{RouteResult: route, OriginalAddresses: addresses}, nil
}

func (o *Orchestrator) resolve(ctx context.Context, leg Leg, query string) (*Resolution, error) {
	o.logger.Info("resolving address", "leg", leg.String(), "query", query)
	res, err := o.resolver.Resolve(ctx, query)
	if err != nil {
		metrics.ResolutionFailuresTotal.WithLabelValues(string(leg.Role)).Inc()
		if resErr, ok := err.(*ResolutionError); ok {
			resErr.Leg = leg
		}
		o.logger.Error("address resolution failed", "leg", leg.String(), "query", query, "error", err)
		return nil, err
	}
	return res, nil
}
