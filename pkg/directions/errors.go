package directions

import (
	"errors"
	"fmt"
)

// ErrNoResults is returned when geocoding succeeded but matched nothing.
var ErrNoResults = errors.New("no matching address")

// Role names the part of a route an address belongs to.
type Role string

const (
	RoleStart    Role = "start"
	RoleGoal     Role = "goal"
	RoleWaypoint Role = "waypoint"
)

// Leg identifies one address of a natural-language route. Index is only
// meaningful for waypoints.
type Leg struct {
	Role  Role
	Index int
}

func (l Leg) String() string {
	if l.Role == RoleWaypoint {
		return fmt.Sprintf("%s[%d]", l.Role, l.Index)
	}
	return string(l.Role)
}

// ResolutionError reports an address that could not be turned into a
// coordinate. Err is ErrNoResults or the geocoding failure.
type ResolutionError struct {
	Leg   Leg
	Query string
	Err   error
}

func (e *ResolutionError) Error() string {
	if e.Leg.Role == "" {
		return fmt.Sprintf("cannot resolve address %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("cannot resolve %s address %q: %v", e.Leg, e.Query, e.Err)
}

func (e *ResolutionError) Unwrap() error {
	return e.Err
}
