// Package prompts provides prompt templates for use with the MCP server.
package prompts

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Prompt names
const (
	GeocodingGuide  = "geocoding_guide"
	DirectionsGuide = "directions_guide"
)

// RegisterPrompts registers all prompts with the MCP server
func RegisterPrompts(s *server.MCPServer) {
	s.AddPrompt(mcp.NewPrompt(GeocodingGuide,
		mcp.WithPromptDescription("Instructions for properly using the Naver geocoding tools"),
	), GeocodingGuideHandler)

	s.AddPrompt(mcp.NewPrompt(DirectionsGuide,
		mcp.WithPromptDescription("Instructions for choosing and calling the Naver routing tools"),
	), DirectionsGuideHandler)
}

// GeocodingGuideHandler returns the prompt for the geocoding tools
func GeocodingGuideHandler(ctx context.Context, request mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	systemPrompt := `You have access to Naver Maps geocoding tools that convert between Korean addresses and coordinates.
When using these tools:

1. Prefer Korean addresses. Road-name addresses (도로명주소) resolve best, e.g. "서울특별시 강남구 테헤란로 129"
2. Well-known landmarks and stations also work, e.g. "강남역", "서울역"
3. Every candidate has "x" (longitude) and "y" (latitude); pass them on as {"latitude": y, "longitude": x}
4. When a result has "status": "empty", retry with a more complete address including the district (구)
5. When a result has "source": "synthetic", the coordinates are placeholder data and must not be presented as real

IMPORTANT ADDRESS FORMATTING EXAMPLES:
✅ GOOD: "서울특별시 중구 세종대로 110"
❌ BAD: "시청 근처"

✅ GOOD: "분당구 판교역로 160"
❌ BAD: "판교 (테크노밸리 쪽)"

REVERSE GEOCODING:
1. Use decimal degrees for reverseGeocode; latitude is between -90 and 90, longitude between -180 and 180
2. Only set coords_type when the input is not WGS-84 latitude/longitude

ERROR HANDLING GUIDELINES:
When a tool returns an error, read the "Guidance:" line and follow it before retrying.`

	return mcp.NewGetPromptResult(
		"Geocoding Tool Usage Guidelines",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(systemPrompt),
			),
		},
	), nil
}
