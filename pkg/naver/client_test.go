package naver_test

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/NERVsystems/navermcp/pkg/naver"
	"github.com/NERVsystems/navermcp/pkg/testutil"
	"github.com/NERVsystems/navermcp/pkg/version"
)

func TestConfigDefaults(t *testing.T) {
	client := naver.NewClient(naver.Config{BaseURL: "https://example.test/"})
	cfg := client.Config()
	if cfg.BaseURL != "https://example.test" {
		t.Errorf("BaseURL = %q, want trailing slash trimmed", cfg.BaseURL)
	}
	if cfg.Timeout != naver.DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, naver.DefaultTimeout)
	}

	client = naver.NewClient(naver.Config{})
	if got := client.Config().BaseURL; got != naver.DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", got, naver.DefaultBaseURL)
	}
}

func TestReload(t *testing.T) {
	fixture := testutil.NewNaverFixture(t)
	client := naver.NewClient(naver.Config{BaseURL: fixture.URL}, naver.WithLogger(testutil.DiscardLogger()))

	if _, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{}); err == nil {
		t.Fatal("expected authentication failure before reload")
	}

	client.Reload(fixture.Config())

	if _, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{}); err != nil {
		t.Fatalf("Geocode() after Reload error = %v", err)
	}
}

func TestMissingCredentialsWarning(t *testing.T) {
	fixture := testutil.NewNaverFixture(t)
	logger, logs := testutil.NewRecordingLogger()
	client := naver.NewClient(naver.Config{BaseURL: fixture.URL}, naver.WithLogger(logger))

	for i := 0; i < 3; i++ {
		client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{})
	}

	if fixture.Calls(naver.GeocodePath) != 3 {
		t.Errorf("upstream calls = %d, want requests sent even without credentials", fixture.Calls(naver.GeocodePath))
	}
	if n := logs.Count("credentials are not configured"); n != 1 {
		t.Errorf("credential warning logged %d times, want 1", n)
	}
	if strings.Contains(logs.String(), naver.HeaderClientSecret+"=") {
		t.Error("log output contains a credential header")
	}
}

func TestNetworkError(t *testing.T) {
	fixture := testutil.NewNaverFixture(t)
	cfg := fixture.Config()
	fixture.Close()

	client := naver.NewClient(cfg, naver.WithLogger(testutil.DiscardLogger()))
	_, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{})
	apiErr, ok := naver.AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.Kind != naver.KindNetwork || apiErr.StatusCode != 0 {
		t.Errorf("Kind = %q, StatusCode = %d", apiErr.Kind, apiErr.StatusCode)
	}
	if !apiErr.Recoverable() {
		t.Error("network errors should be recoverable")
	}
}

func TestTimeout(t *testing.T) {
	fixture := testutil.NewNaverFixture(t)
	release := make(chan struct{})
	defer close(release)
	fixture.Handle(naver.GeocodePath, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})

	cfg := fixture.Config()
	cfg.Timeout = 50 * time.Millisecond
	client := naver.NewClient(cfg, naver.WithLogger(testutil.DiscardLogger()))

	start := time.Now()
	_, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call took %v, want it bounded by the timeout", elapsed)
	}
	apiErr, ok := naver.AsAPIError(err)
	if !ok || apiErr.Kind != naver.KindNetwork {
		t.Fatalf("error = %v, want network *APIError", err)
	}
	if apiErr.Guidance != naver.GuidanceTimeout {
		t.Errorf("Guidance = %q, want timeout guidance", apiErr.Guidance)
	}
}

func TestAPIErrorFormat(t *testing.T) {
	tests := []struct {
		name string
		err  *naver.APIError
		want string
	}{
		{"with status", &naver.APIError{Op: "geocode", StatusCode: 401, Message: "Authentication Failed"}, "naver geocode API error (401): Authentication Failed"},
		{"without status", &naver.APIError{Op: "route", Message: "dial tcp: refused"}, "naver route API error: dial tcp: refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorBodyTruncation(t *testing.T) {
	client, fixture := newTestClient(t)

	// 3-byte runes, so a 200-byte cut falls inside one.
	body := strings.Repeat("가", 100)
	fixture.Handle(naver.GeocodePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(body))
	})

	_, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{})
	apiErr, ok := naver.AsAPIError(err)
	if !ok {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if !utf8.ValidString(apiErr.Message) {
		t.Errorf("Message is not valid UTF-8: %q", apiErr.Message)
	}
	if want := strings.Repeat("가", 66) + "..."; apiErr.Message != want {
		t.Errorf("Message = %q, want %q", apiErr.Message, want)
	}
}

func TestUserAgentHeader(t *testing.T) {
	client, fixture := newTestClient(t)

	var got string
	fixture.Handle(naver.GeocodePath, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		testutil.WriteJSON(w, http.StatusOK, map[string]any{"status": "OK", "addresses": []any{}})
	})

	if _, err := client.Geocode(context.Background(), "강남역", naver.GeocodeOptions{}); err != nil {
		t.Fatalf("Geocode() error = %v", err)
	}
	if got != version.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", got, version.UserAgent())
	}
}
