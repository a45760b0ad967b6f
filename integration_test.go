package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// mockAPIs serves the price and production fixtures and records every request.
type mockAPIs struct {
	entsoe  *httptest.Server
	fingrid *httptest.Server

	mu       sync.Mutex
	requests []*http.Request
	// status overrides the response status per dataset id
	status map[string]int
}

func newMockAPIs(t *testing.T) *mockAPIs {
	t.Helper()
	m := &mockAPIs{status: map[string]int{}}

	prices, err := os.ReadFile("testdata/prices.xml")
	require.NoError(t, err)

	m.entsoe = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.record(r)
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(http.StatusOK)
		w.Write(prices)
	}))
	t.Cleanup(m.entsoe.Close)

	m.fingrid = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.record(r)

		var id string
		if _, err := fmt.Sscanf(r.URL.Path, "/datasets/%s", &id); err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		id = strings.TrimSuffix(id, "/data")

		m.mu.Lock()
		status, overridden := m.status[id]
		m.mu.Unlock()
		if overridden {
			w.WriteHeader(status)
			w.Write([]byte(`{"message":"upstream failure"}`))
			return
		}

		body, err := os.ReadFile("testdata/dataset_" + id + ".json")
		if err != nil {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(body)
	}))
	t.Cleanup(m.fingrid.Close)

	return m
}

func (m *mockAPIs) record(r *http.Request) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, r.Clone(context.Background()))
}

func (m *mockAPIs) paths() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	paths := make([]string, 0, len(m.requests))
	for _, r := range m.requests {
		paths = append(paths, r.URL.Path)
	}
	return paths
}

func (m *mockAPIs) writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config")
	content := fmt.Sprintf(`
[entsoe]
security-token = "test_security_token"
base-url = %q

[fingrid]
authentication-token = "test_authentication_token"
base-url = %q
`, m.entsoe.URL, m.fingrid.URL)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func testEnv() (environment, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	return environment{
		stdout:   &stdout,
		stderr:   &stderr,
		now:      func() time.Time { return fixedNow },
		location: time.UTC,
	}, &stdout, &stderr
}

// TestIntegration_GoldenOutput tests the full flow against the fixture servers
func TestIntegration_GoldenOutput(t *testing.T) {
	apis := newMockAPIs(t)
	output := filepath.Join(t.TempDir(), "data.json")
	env, _, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
		"--output", output,
	}, env)
	require.Equal(t, 0, code, stderr.String())

	got, err := os.ReadFile(output)
	require.NoError(t, err)
	want, err := os.ReadFile("testdata/golden_output.json")
	require.NoError(t, err)
	assert.Equal(t, string(want), string(got))

	assert.Equal(t, []string{"/", "/datasets/75/data", "/datasets/245/data", "/datasets/248/data"}, apis.paths())
}

func TestIntegration_RequestParameters(t *testing.T) {
	apis := newMockAPIs(t)
	env, _, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
	}, env)
	require.Equal(t, 0, code, stderr.String())

	apis.mu.Lock()
	defer apis.mu.Unlock()
	require.Len(t, apis.requests, 4)

	price := apis.requests[0].URL.Query()
	assert.Equal(t, "A44", price.Get("documentType"))
	assert.Equal(t, "test_security_token", price.Get("securityToken"))
	assert.Equal(t, "2024-06-01T00:00:00Z/2024-06-03T00:00:00Z", price.Get("timeInterval"))
	assert.Equal(t, "10YFI-1--------U", price.Get("in_domain"))
	assert.Equal(t, "10YFI-1--------U", price.Get("out_domain"))

	for _, r := range apis.requests[1:] {
		q := r.URL.Query()
		assert.Equal(t, "test_authentication_token", r.Header.Get("x-api-key"))
		// the production window starts at the first price point, not the requested start
		assert.Equal(t, "2024-05-31T22:00:00Z", q.Get("startTime"))
		assert.Equal(t, "2024-06-03T00:00:00Z", q.Get("endTime"))
		assert.Equal(t, "json", q.Get("format"))
		assert.Equal(t, "1000", q.Get("pageSize"))
		assert.Equal(t, "en", q.Get("locale"))
		assert.Equal(t, "startTime", q.Get("sortBy"))
		assert.Equal(t, "asc", q.Get("sortOrder"))
	}
}

func TestIntegration_PartialFailure(t *testing.T) {
	apis := newMockAPIs(t)
	apis.status["245"] = http.StatusInternalServerError
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
		"--output", "-",
	}, env)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))

	assert.Contains(t, out, "basePrices")
	assert.Contains(t, out, "windProduction")
	assert.NotContains(t, out, "windProductionForecast")
	assert.NotContains(t, out, "solarProductionForecast")

	// the remaining dataset is never requested
	assert.Equal(t, []string{"/", "/datasets/75/data", "/datasets/245/data"}, apis.paths())
	assert.Contains(t, stderr.String(), "production fetch failed")
	assert.Contains(t, stderr.String(), "upstream failure")
}

func TestIntegration_ContinueOnError(t *testing.T) {
	apis := newMockAPIs(t)
	apis.status["245"] = http.StatusInternalServerError
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
		"--continue-on-error",
		"--output", "-",
	}, env)
	require.Equal(t, 0, code, stderr.String())

	var out map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))

	assert.Contains(t, out, "windProduction")
	assert.NotContains(t, out, "windProductionForecast")
	assert.Contains(t, out, "solarProductionForecast")
}

func TestIntegration_MissingConfig(t *testing.T) {
	apis := newMockAPIs(t)
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", filepath.Join(t.TempDir(), "missing"),
		"--output", "-",
	}, env)

	assert.NotEqual(t, 0, code)
	assert.Equal(t, exitConfig, code)
	assert.Empty(t, apis.paths(), "no request may be sent without configuration")
	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "failed to load configuration")
}

func TestIntegration_InvalidDate(t *testing.T) {
	apis := newMockAPIs(t)
	env, _, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "01.06.2024",
	}, env)

	assert.Equal(t, exitUsage, code)
	assert.Empty(t, apis.paths())
	assert.Contains(t, stderr.String(), "invalid date format")
}

func TestIntegration_PriceFailureIsFatal(t *testing.T) {
	fingridHits := 0
	var mu sync.Mutex

	entsoeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer entsoeServer.Close()

	fingridServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		fingridHits++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer fingridServer.Close()

	path := filepath.Join(t.TempDir(), "config")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(
		"[entsoe]\nsecurity-token = \"bad\"\nbase-url = %q\n[fingrid]\nauthentication-token = \"token\"\nbase-url = %q\n",
		entsoeServer.URL, fingridServer.URL)), 0o600))

	output := filepath.Join(t.TempDir(), "data.json")
	env, _, stderr := testEnv()

	code := runMain(context.Background(), []string{"gather-data", "--config", path, "--output", output}, env)

	assert.Equal(t, exitFetch, code)
	assert.Contains(t, stderr.String(), "status 401")
	assert.Zero(t, fingridHits)
	assert.NoFileExists(t, output)
}

func TestIntegration_IncludeOverhead(t *testing.T) {
	apis := newMockAPIs(t)
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
		"--include-overhead",
		"--output", "-",
	}, env)
	require.Equal(t, 0, code, stderr.String())

	var out struct {
		BasePrices     []struct{ Price float64 } `json:"basePrices"`
		AdjustedPrices []struct {
			StartTime string  `json:"startTime"`
			Price     float64 `json:"price"`
		} `json:"adjustedPrices"`
	}
	require.NoError(t, json.Unmarshal(stdout.Bytes(), &out))
	require.Len(t, out.AdjustedPrices, len(out.BasePrices))

	// 22:00 still carries the day fee, VAT applies to the positive spot price
	day := 0.013 + 2.24 + 0.40323 + 2.58
	assert.Equal(t, "2024-05-31T22:00:00Z", out.AdjustedPrices[0].StartTime)
	assert.InDelta(t, 5.25*1.24+day*1.24, out.AdjustedPrices[0].Price, 1e-9)

	// 23:00 is a night hour with a negative spot price left without VAT
	night := 0.013 + 2.24 + 0.40323 + 1.13
	assert.Equal(t, "2024-05-31T23:00:00Z", out.AdjustedPrices[1].StartTime)
	assert.InDelta(t, -0.5+night*1.24, out.AdjustedPrices[1].Price, 1e-9)
}

func TestIntegration_NoOutputDiscardsResult(t *testing.T) {
	apis := newMockAPIs(t)
	env, stdout, stderr := testEnv()

	code := runMain(context.Background(), []string{
		"gather-data",
		"--config", apis.writeConfig(t),
		"--date", "2024-06-01",
	}, env)

	require.Equal(t, 0, code, stderr.String())
	assert.Empty(t, stdout.String())
	assert.Len(t, apis.paths(), 4, "every fetch still runs without an output")
}

func TestRun_Usage(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no command", nil, exitUsage},
		{"unknown command", []string{"fetch"}, exitUsage},
		{"unknown flag", []string{"gather-data", "--bogus"}, exitUsage},
		{"extra argument", []string{"gather-data", "extra"}, exitUsage},
		{"non-finite wait", []string{"gather-data", "--wait-between-requests", "NaN"}, exitUsage},
		{"infinite wait", []string{"gather-data", "--wait-between-requests", "+Inf"}, exitUsage},
		{"version", []string{"version"}, exitOK},
		{"help", []string{"gather-data", "--help"}, exitOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := testEnv()
			assert.Equal(t, tt.want, runMain(context.Background(), tt.args, env))
		})
	}
}
