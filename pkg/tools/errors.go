package tools

import (
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/directions"
	"github.com/NERVsystems/navermcp/pkg/naver"
)

// ErrUnknownTool is returned for a tool name outside the catalog.
var ErrUnknownTool = errors.New("unknown tool")

// Common error guidance messages
const (
	GuidanceArguments   = "Please correct the parameters and try again."
	GuidanceNoResults   = "Try a more specific address or place name, for example adding the district (구) or city."
	GuidanceGeneral     = "Please try again later or modify your request parameters."
	GuidanceUnknownTool = "Use one of the tools listed by tools/list."
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError("Error: " + message)
}

// ErrorWithGuidance returns an error response with a guidance line.
func ErrorWithGuidance(message, guidance string) *mcp.CallToolResult {
	if guidance == "" {
		return ErrorResponse(message)
	}
	return mcp.NewToolResultError(fmt.Sprintf("Error: %s\n\nGuidance: %s", message, guidance))
}

// errorResult converts a handler error into the error envelope, attaching
// guidance for classified failures.
func errorResult(err error) *mcp.CallToolResult {
	var (
		argErr   *ArgumentError
		resErr   *directions.ResolutionError
		routeErr *naver.RouteError
	)

	switch {
	case errors.As(err, &argErr):
		return ErrorWithGuidance(err.Error(), GuidanceArguments)
	case errors.As(err, &resErr):
		if apiErr, ok := naver.AsAPIError(resErr.Err); ok {
			return ErrorWithGuidance(err.Error(), apiErr.Guidance)
		}
		return ErrorWithGuidance(err.Error(), GuidanceNoResults)
	case errors.As(err, &routeErr):
		return ErrorWithGuidance(err.Error(), routeErr.Guidance())
	}

	if apiErr, ok := naver.AsAPIError(err); ok {
		return ErrorWithGuidance(apiErr.Error(), apiErr.Guidance)
	}
	return ErrorResponse(err.Error())
}
