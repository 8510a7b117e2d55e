package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/navermcp/pkg/naver"
	"github.com/NERVsystems/navermcp/pkg/testutil"
)

func newTestServer(t *testing.T) (*Server, *testutil.NaverFixture) {
	t.Helper()
	fixture := testutil.NewNaverFixture(t)
	s, err := NewServer(fixture.Config(), testutil.DiscardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	return s, fixture
}

func TestNewServer(t *testing.T) {
	s, _ := newTestServer(t)
	ctx := context.Background()

	tools, ok := s.MCP().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)).(mcp.JSONRPCResponse)
	if !ok {
		t.Fatal("tools/list did not return a response")
	}
	if got := len(tools.Result.(mcp.ListToolsResult).Tools); got != 8 {
		t.Errorf("registered %d tools, want 8", got)
	}

	prompts, ok := s.MCP().HandleMessage(ctx, []byte(`{"jsonrpc":"2.0","id":2,"method":"prompts/list"}`)).(mcp.JSONRPCResponse)
	if !ok {
		t.Fatal("prompts/list did not return a response")
	}
	if got := len(prompts.Result.(mcp.ListPromptsResult).Prompts); got != 2 {
		t.Errorf("registered %d prompts, want 2", got)
	}
}

func TestNewServerInvalidBaseURL(t *testing.T) {
	for _, base := range []string{"not a url", "/relative", "://missing-scheme"} {
		t.Run(base, func(t *testing.T) {
			if _, err := NewServer(naver.Config{BaseURL: base}, testutil.DiscardLogger()); err == nil {
				t.Errorf("NewServer(%q) succeeded", base)
			}
		})
	}
}

func TestServerReload(t *testing.T) {
	s, fixture := newTestServer(t)

	cfg := fixture.Config()
	cfg.ClientSecret = "rotated"
	s.Reload(cfg)

	result := s.Dispatcher().Dispatch(context.Background(), "geocode", map[string]any{"address": "강남역"})
	if !result.IsError {
		t.Error("call with rotated secret succeeded; reload not applied")
	}
}

func TestRunStdio(t *testing.T) {
	s, _ := newTestServer(t)

	in := strings.NewReader(strings.Join([]string{
		`{"jsonrpc":"2.0","id":1,"method":"initialize","params":{"protocolVersion":"2024-11-05","capabilities":{},"clientInfo":{"name":"test","version":"1.0"}}}`,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`,
		`{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"searchPlaces","arguments":{"query":"카페"}}}`,
	}, "\n") + "\n")
	var out bytes.Buffer

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.RunStdio(ctx, in, &out); err != nil {
		t.Fatalf("RunStdio() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d responses, want 2:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[0], ServerName) {
		t.Errorf("initialize response = %s", lines[0])
	}
	if !strings.Contains(lines[1], "검색 결과 예시") {
		t.Errorf("tools/call response = %s", lines[1])
	}
}

func TestRunStdioCancelled(t *testing.T) {
	s, _ := newTestServer(t)

	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunStdio(ctx, pr, io.Discard) }()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunStdio() error = %v, want nil on cancellation", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunStdio did not return after cancellation")
	}
}

func TestRunHTTPShutdown(t *testing.T) {
	s, _ := newTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunHTTP(ctx, "127.0.0.1:0") }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("RunHTTP() error = %v, want nil on shutdown", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("RunHTTP did not return after cancellation")
	}
}

func TestHTTPRoutes(t *testing.T) {
	s, _ := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	tests := []struct {
		name       string
		method     string
		path       string
		wantStatus int
		wantBody   string
	}{
		{"index", http.MethodGet, "/", http.StatusOK, SSEEndpoint},
		{"health", http.MethodGet, "/healthz", http.StatusOK, `"status":"ok"`},
		{"metrics", http.MethodGet, "/metrics", http.StatusOK, "go_goroutines"},
		{"preflight", http.MethodOptions, MessageEndpoint, http.StatusNoContent, ""},
		{"message without session", http.MethodPost, MessageEndpoint, http.StatusBadRequest, "sessionId"},
		{"unknown path", http.MethodGet, "/nope", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, ts.URL+tt.path, strings.NewReader("{}"))
			if err != nil {
				t.Fatalf("NewRequest: %v", err)
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatalf("request failed: %v", err)
			}
			defer resp.Body.Close()
			body, _ := io.ReadAll(resp.Body)

			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantBody != "" && !strings.Contains(string(body), tt.wantBody) {
				t.Errorf("body %q does not contain %q", body, tt.wantBody)
			}
			if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("Access-Control-Allow-Origin = %q", got)
			}
		})
	}
}

func TestHealthReportsMissingCredentials(t *testing.T) {
	s, err := NewServer(naver.Config{}, testutil.DiscardLogger())
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("health body is not JSON: %v", err)
	}
	if body["credentials"] != "missing" {
		t.Errorf("credentials = %v, want missing", body["credentials"])
	}
}

// readEvent returns the data of the next SSE event named name.
func readEvent(t *testing.T, r *bufio.Reader, name string) string {
	t.Helper()
	var event string
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			t.Fatalf("reading event stream: %v", err)
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: ") && event == name:
			return strings.TrimPrefix(line, "data: ")
		}
	}
}

func TestSSETransport(t *testing.T) {
	s, fixture := newTestServer(t)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ts.URL+SSEEndpoint, nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	stream, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("opening event stream: %v", err)
	}
	defer stream.Body.Close()
	events := bufio.NewReader(stream.Body)

	endpoint := readEvent(t, events, "endpoint")
	if !strings.HasPrefix(endpoint, MessageEndpoint+"?sessionId=") {
		t.Fatalf("endpoint event = %q", endpoint)
	}

	call := `{"jsonrpc":"2.0","id":7,"method":"tools/call","params":{"name":"getDirectionsByNaturalLanguage","arguments":{"startAddress":"강남역","goalAddress":"서울역"}}}`
	resp, err := http.Post(ts.URL+endpoint, "application/json", strings.NewReader(call))
	if err != nil {
		t.Fatalf("posting message: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("message status = %d, want 202", resp.StatusCode)
	}

	message := readEvent(t, events, "message")
	if !strings.Contains(message, `"id":7`) || !strings.Contains(message, "originalAddresses") {
		t.Errorf("message event = %s", message)
	}
	if fixture.Calls(naver.DirectionsPath) != 1 {
		t.Errorf("route calls = %d, want 1", fixture.Calls(naver.DirectionsPath))
	}
}
