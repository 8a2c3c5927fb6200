//go:build e2e
// +build e2e

package e2e

import (
	"io"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"
)

const defaultPluginHTTPBase = "http://localhost:48080"

func pluginHTTPBase() string {
	if v := os.Getenv("PLUGIN_HTTP_BASE"); v != "" {
		return v
	}
	return defaultPluginHTTPBase
}

func doRequest(t *testing.T, method, path, body string) (*http.Response, string) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, pluginHTTPBase()+path, reader)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Tenant-Id", "e2e-tenant")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}
	return resp, string(data)
}

func TestHealthEndpoint(t *testing.T) {
	resp, body := doRequest(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.StatusCode, body)
	}
	if !strings.Contains(body, `"ok"`) {
		t.Fatalf("unexpected health body: %s", body)
	}
}

func TestNotificationsEndpointAccepts(t *testing.T) {
	payload := `{"live":"false","notificationItems":[{"NotificationRequestItem":{"eventCode":"REPORT_AVAILABLE","success":"true","pspReference":"e2e-psp"}}]}`
	resp, body := doRequest(t, http.MethodPost, "/notifications", payload)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d body %s", resp.StatusCode, body)
	}
	if body != "[accepted]" {
		t.Fatalf("expected [accepted], got %s", body)
	}
}

func TestNotificationsEndpointRejectsEmptyBatch(t *testing.T) {
	resp, body := doRequest(t, http.MethodPost, "/notifications", `{"notificationItems":[]}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d body %s", resp.StatusCode, body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	resp, body := doRequest(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if !strings.Contains(body, "adyen_") {
		t.Fatalf("expected plugin metrics in output: %s", body)
	}
}
