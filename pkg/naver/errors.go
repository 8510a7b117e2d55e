package naver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"
)

// ErrorKind classifies a failed provider call.
type ErrorKind string

const (
	// KindRequest covers 4xx responses and requests rejected before sending.
	KindRequest ErrorKind = "request"
	// KindUpstream covers 5xx responses and provider-reported system errors.
	KindUpstream ErrorKind = "upstream"
	// KindNetwork means no response was received (DNS, refused, timeout).
	KindNetwork ErrorKind = "network"
	// KindDecode means a response arrived but could not be understood.
	KindDecode ErrorKind = "decode"
)

// Common error guidance messages
const (
	GuidanceCredentials   = "Check that NAVER_CLIENT_ID and NAVER_CLIENT_SECRET are set and that the Maps application is enabled in the NCP console."
	GuidanceRateLimit     = "The Naver Maps quota or rate limit was exceeded. Please try again in a few moments."
	GuidanceInvalidParams = "The request was invalid. Check your parameters and try again."
	GuidanceUpstream      = "The Naver Maps service encountered an error. This is likely temporary, please try again later."
	GuidanceNetworkError  = "Check your internet connection and try again."
	GuidanceTimeout       = "The request timed out. Try again or raise API_TIMEOUT."
	GuidanceDataError     = "The data received was incomplete or malformed. Try different search parameters."
	GuidanceAddressFormat = "Try a more complete Korean address, for example including the district (구) and road name."
)

// APIError represents a failed call to the Naver Maps API, with
// information to help users recover.
type APIError struct {
	Op         string    // Operation name (geocode, reverseGeocode, route, routeWithWaypoints)
	Kind       ErrorKind // Failure classification
	StatusCode int       // HTTP status code, 0 when no response was received
	Message    string    // Error message
	Guidance   string    // Guidance for users on how to recover
	Err        error     // Underlying cause, if any
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("naver %s API error (%d): %s", e.Op, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("naver %s API error: %s", e.Op, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// Recoverable reports whether retrying the same request could succeed.
func (e *APIError) Recoverable() bool {
	return e.Kind != KindRequest
}

// RouteError is returned when the directions API answers with a non-zero
// result code, e.g. when start and goal are identical.
type RouteError struct {
	Code    int
	Message string
}

func (e *RouteError) Error() string {
	return fmt.Sprintf("no route found (code %d): %s", e.Code, e.Message)
}

// Guidance explains the provider's route result code.
func (e *RouteError) Guidance() string {
	switch e.Code {
	case 1:
		return "Start and goal are the same location. Choose two different places."
	case 2:
		return "The start point is not near a drivable road. Move it closer to a road."
	case 3:
		return "The goal point is not near a drivable road. Move it closer to a road."
	case 4:
		return "A waypoint is not near a drivable road. Adjust or remove it."
	case 5:
		return "The route is longer than the 1500km the provider supports."
	default:
		return "No route could be found between the specified points. Try locations with accessible roads."
	}
}

// AsAPIError returns the *APIError in err's chain, if any.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

func newRequestError(op, message string) *APIError {
	return &APIError{
		Op:       op,
		Kind:     KindRequest,
		Message:  message,
		Guidance: GuidanceInvalidParams,
	}
}

func newNetworkError(op string, err error) *APIError {
	guidance := GuidanceNetworkError
	if isTimeout(err) {
		guidance = GuidanceTimeout
	}
	return &APIError{
		Op:       op,
		Kind:     KindNetwork,
		Message:  err.Error(),
		Guidance: guidance,
		Err:      err,
	}
}

func newDecodeError(op string, err error) *APIError {
	return &APIError{
		Op:       op,
		Kind:     KindDecode,
		Message:  fmt.Sprintf("invalid response body: %v", err),
		Guidance: GuidanceDataError,
		Err:      err,
	}
}

// newStatusError classifies an HTTP error response.
func newStatusError(op string, statusCode int, body []byte) *APIError {
	kind := KindUpstream
	if statusCode < http.StatusInternalServerError {
		kind = KindRequest
	}

	var guidance string
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		guidance = GuidanceCredentials
	case http.StatusTooManyRequests:
		guidance = GuidanceRateLimit
	case http.StatusBadRequest, http.StatusNotFound:
		guidance = GuidanceInvalidParams
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		guidance = GuidanceTimeout
	default:
		if kind == KindUpstream {
			guidance = GuidanceUpstream
		} else {
			guidance = GuidanceInvalidParams
		}
	}

	return &APIError{
		Op:         op,
		Kind:       kind,
		StatusCode: statusCode,
		Message:    errorMessage(statusCode, body),
		Guidance:   guidance,
	}
}

// errorMessage extracts a readable message from an error body. The gateway
// answers with {"error":{"errorCode","message","details"}}, the geocoders
// with {"errorMessage"}.
func errorMessage(statusCode int, body []byte) string {
	var payload struct {
		Error struct {
			ErrorCode string `json:"errorCode"`
			Message   string `json:"message"`
			Details   string `json:"details"`
		} `json:"error"`
		ErrorMessage string `json:"errorMessage"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		switch {
		case payload.Error.Message != "" && payload.Error.Details != "":
			return payload.Error.Message + ": " + payload.Error.Details
		case payload.Error.Message != "":
			return payload.Error.Message
		case payload.ErrorMessage != "":
			return payload.ErrorMessage
		}
	}

	text := strings.TrimSpace(string(body))
	if text == "" {
		return http.StatusText(statusCode)
	}
	if len(text) > maxErrorText {
		cut := maxErrorText
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}

// maxErrorText bounds, in bytes, the body text carried into an error message.
const maxErrorText = 200

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
