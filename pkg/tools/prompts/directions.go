package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// DirectionsGuideHandler returns the prompt for the routing tools
func DirectionsGuideHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to Naver Maps driving-directions tools.

CHOOSING A TOOL:
- The user gives place names ("강남역에서 서울역까지") → getDirectionsByNaturalLanguage
- Place names with stops in between → getDirectionsWithWaypointsByNaturalLanguage (waypointAddresses in visiting order)
- You already have coordinates → getDirections, or getDirectionsWithWaypoints for stops
- At most 15 waypoints are supported

OPTIONS:
- trafast (default): fastest
- tracomfort: most comfortable
- traoptimal: balanced
- traavoidtoll: avoid toll roads
- traavoidcaronly: avoid car-only roads

READING RESULTS:
- "distance" is in meters and "duration" in milliseconds; convert before presenting
- "originalAddresses" shows how each place name was resolved; mention the resolved address if it differs from what the user said
- If any resolved address has "synthetic": true, say the route is based on placeholder data

ERRORS:
- "cannot resolve start address" / "goal" / "waypoint[i]" names the place that failed; ask the user to clarify only that place
- "no route found (code 1)" means start and goal are the same location`

	return mcp.NewGetPromptResult(
		"Directions Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}
