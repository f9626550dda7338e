package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"vinscan/internal/services"
)

func testImage(t *testing.T) Image {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	sniffed, err := SniffImage(buf.Bytes())
	if err != nil {
		t.Fatalf("SniffImage: %v", err)
	}
	return sniffed
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content":      map[string]any{"parts": []any{map[string]any{"text": text}}},
				"finishReason": "STOP",
			},
		},
	}
}

func newTestServer(t *testing.T, text string, inspect func(*http.Request, generateRequest)) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if inspect != nil {
			inspect(r, req)
		}
		if err := json.NewEncoder(w).Encode(textResponse(text)); err != nil {
			t.Errorf("encode response: %v", err)
		}
	}))
	t.Cleanup(server.Close)
	return server
}

func TestRecognizeVehicleSendsImageAndParsesReply(t *testing.T) {
	img := testImage(t)
	reply := "Here is the result:\n```json\n{\"vin\":\"1HGCM82633A004352\",\"make\":\"Honda\",\"model\":\"Accord\",\"year\":2003,\"readable\":true,\"confidence\":1.4,\"notes\":\"dashboard\",\"error\":null}\n```\nLet me know {if} you need more."
	server := newTestServer(t, reply, func(r *http.Request, req generateRequest) {
		if r.URL.Path != "/demo-model:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("x-goog-api-key"); got != "test-key" {
			t.Errorf("unexpected api key header %q", got)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("expected one content with two parts, got %#v", req.Contents)
			return
		}
		inline := req.Contents[0].Parts[1].InlineData
		if inline == nil || inline.MIMEType != "image/png" {
			t.Errorf("expected inline png, got %#v", inline)
			return
		}
		decoded, err := base64.StdEncoding.DecodeString(inline.Data)
		if err != nil || !bytes.Equal(decoded, img.Data) {
			t.Errorf("inline data does not round-trip the image")
		}
	})

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Model: "demo-model"})
	got, err := client.RecognizeVehicle(context.Background(), img)
	if err != nil {
		t.Fatalf("RecognizeVehicle: %v", err)
	}
	if got.VIN != "1HGCM82633A004352" || got.Make != "Honda" || got.Model != "Accord" || got.Year != "2003" {
		t.Fatalf("unexpected result %#v", got)
	}
	if got.Confidence != 1 {
		t.Fatalf("expected confidence clamped to 1, got %v", got.Confidence)
	}
}

func TestRecognizeVehicleNothingFound(t *testing.T) {
	reply := `{"vin":"","make":"","model":"","year":"","readable":false,"confidence":0,"notes":"","error":"no VIN visible"}`
	server := newTestServer(t, reply, nil)
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := client.RecognizeVehicle(context.Background(), testImage(t))
	if !errors.Is(err, ErrNoVIN) {
		t.Fatalf("expected ErrNoVIN, got %v", err)
	}
	if errors.Is(err, services.ErrTransport) {
		t.Fatal("nothing found must not look like a transport failure")
	}
	if !strings.Contains(err.Error(), "no VIN visible") {
		t.Fatalf("expected service reason in error, got %q", err.Error())
	}
}

func TestRecognizeVehicleToleratesQuotedFields(t *testing.T) {
	reply := `{"vin":"JM1BL1S58A1234567","make":"Mazda","model":3,"year":"2010","readable":"true","confidence":"0.9","notes":null}`
	server := newTestServer(t, reply, nil)
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	result, err := client.RecognizeVehicle(context.Background(), testImage(t))
	if err != nil {
		t.Fatalf("RecognizeVehicle: %v", err)
	}
	if result.VIN != "JM1BL1S58A1234567" || result.Model != "3" || result.Year != "2010" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.Confidence != 0.9 {
		t.Fatalf("expected confidence 0.9, got %v", result.Confidence)
	}

	unreadable := newTestServer(t, `{"vin":"JM1BL1S58A1234567","readable":"false","confidence":"85%"}`, nil)
	client = NewClient(Config{APIKey: "k", BaseURL: unreadable.URL, Model: "m"})
	if _, err := client.RecognizeVehicle(context.Background(), testImage(t)); !errors.Is(err, ErrNoVIN) {
		t.Fatalf("expected quoted readable=false to mean ErrNoVIN, got %v", err)
	}
}

func TestRecognizeVehicleMalformedReplyIsTransportError(t *testing.T) {
	server := newTestServer(t, "I cannot help with that.", nil)
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := client.RecognizeVehicle(context.Background(), testImage(t))
	var transport *TransportError
	if !errors.As(err, &transport) || !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestHTTPFailureIsTransportErrorWithoutRetry(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"overloaded"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	_, err := client.RecognizeVehicle(context.Background(), testImage(t))
	var transport *TransportError
	if !errors.As(err, &transport) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if transport.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", transport.StatusCode)
	}
	if calls != 1 {
		t.Fatalf("expected exactly one call, got %d", calls)
	}
}

func TestHungServiceResolvesToTransportError(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(
		Config{APIKey: "k", BaseURL: server.URL, Model: "m"},
		WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}),
	)
	_, _, err := client.RecognizeLocation(context.Background(), testImage(t))
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error on timeout, got %v", err)
	}
}

func TestRecognizeLocation(t *testing.T) {
	cases := []struct {
		reply string
		code  string
		found bool
	}{
		{"a1", "A1", true},
		{"ZONE-B\n", "ZONE-B", true},
		{"Code: c3.", "C3", true},
		{"```text\nD4\n```", "D4", true},
		{"UNKNOWN", "", false},
		{"unknown.", "", false},
		{"parking-area-north-17", "PARKING-AREA-NO", true},
	}
	for _, tc := range cases {
		server := newTestServer(t, tc.reply, func(_ *http.Request, req generateRequest) {
			if !strings.Contains(req.Contents[0].Parts[0].Text, "UNKNOWN") {
				t.Errorf("location prompt should mention the UNKNOWN sentinel")
			}
		})
		client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
		code, found, err := client.RecognizeLocation(context.Background(), testImage(t))
		if err != nil {
			t.Fatalf("RecognizeLocation(%q): %v", tc.reply, err)
		}
		if code != tc.code || found != tc.found {
			t.Errorf("RecognizeLocation(%q) = %q,%v want %q,%v", tc.reply, code, found, tc.code, tc.found)
		}
	}
}

func TestDescribeVINIsTextOnly(t *testing.T) {
	server := newTestServer(t, `{"model":"Model 3","year":""}`, func(_ *http.Request, req generateRequest) {
		parts := req.Contents[0].Parts
		if len(parts) != 1 || parts[0].InlineData != nil {
			t.Errorf("describe must not send an image: %#v", parts)
		}
		if !strings.Contains(parts[0].Text, "5YJ3E1EA7KF317000") || !strings.Contains(parts[0].Text, "Tesla") {
			t.Errorf("prompt should carry VIN and inferred make: %q", parts[0].Text)
		}
	})
	clock := func() time.Time { return time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC) }
	client := NewClient(Config{APIKey: "k", BaseURL: server.URL, Model: "m"}, WithClock(clock))

	info, err := client.DescribeVIN(context.Background(), "5YJ3E1EA7KF317000")
	if err != nil {
		t.Fatalf("DescribeVIN: %v", err)
	}
	if info.Model != "Model 3" || info.Year != "2019" {
		t.Fatalf("unexpected info %#v", info)
	}
}

func TestMissingKeyIsConfigurationError(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1", Model: "m"})
	if client.Configured() {
		t.Fatal("expected client without key to be unconfigured")
	}
	_, err := client.RecognizeVehicle(context.Background(), testImage(t))
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if services.Recoverable(err) {
		t.Fatal("configuration errors are not recoverable by re-capture")
	}
	if err := client.HealthCheck(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

func TestHealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/m" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "good" {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		_, _ = w.Write([]byte(`{"name":"models/m"}`))
	}))
	defer server.Close()

	if err := NewClient(Config{APIKey: "good", BaseURL: server.URL, Model: "m"}).HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	err := NewClient(Config{APIKey: "bad", BaseURL: server.URL, Model: "m"}).HealthCheck(context.Background())
	if !errors.Is(err, services.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if !errors.Is(err, services.ErrConfiguration) || services.Recoverable(err) {
		t.Fatalf("a rejected key should read as a configuration problem, got %v", err)
	}
}
