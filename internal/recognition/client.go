package recognition

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"vinscan/internal/config"
	"vinscan/internal/logging"
	"vinscan/internal/vin"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultBaseURL     = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel       = "gemini-2.0-flash"
	maxResponseBytes   = 4 << 20
)

// Config captures the runtime settings required to reach the service.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// ConfigFrom maps application configuration onto client settings.
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		APIKey:         cfg.Recognition.APIKey,
		BaseURL:        cfg.Recognition.BaseURL,
		Model:          cfg.Recognition.Model,
		TimeoutSeconds: cfg.Recognition.TimeoutSeconds,
	}
}

// Client calls the remote vision model. It performs exactly one HTTP request
// per operation.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
	now        func() time.Time
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger attaches a logger; the client tags it with its component name.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock overrides the clock used for model-year inference.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// NewClient constructs a client. The HTTP timeout bounds every call so a hung
// service resolves to a *TransportError.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
		logger:     logging.NewNop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = defaultModel
	}
	client.logger = logging.NewComponentLogger(client.logger, "recognition")
	return client
}

// Configured reports whether an API key is available.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

// VehicleResult is what the service reported for a VIN photo. VIN is the
// service's raw text; callers normalize and validate it.
type VehicleResult struct {
	VIN        string
	Make       string
	Model      string
	Year       string
	Confidence float64
	Notes      string
}

// ModelInfo is the text-only enrichment for a known VIN.
type ModelInfo struct {
	Model string `json:"model"`
	Year  string `json:"year"`
}

// vehiclePayload fields beyond the VIN are loosely typed; the service
// sometimes quotes numbers and booleans or answers a model name like 3.
type vehiclePayload struct {
	VIN        string `json:"vin"`
	Make       any    `json:"make"`
	Model      any    `json:"model"`
	Year       any    `json:"year"`
	Readable   any    `json:"readable"`
	Confidence any    `json:"confidence"`
	Notes      any    `json:"notes"`
	Error      any    `json:"error"`
}

// RecognizeVehicle asks the service to read a VIN from img.
func (c *Client) RecognizeVehicle(ctx context.Context, img Image) (VehicleResult, error) {
	var empty VehicleResult
	if !c.Configured() {
		return empty, ErrNotConfigured
	}
	text, err := c.generate(ctx, "recognize vehicle", vehiclePrompt, &img)
	if err != nil {
		return empty, err
	}

	var payload vehiclePayload
	if err := DecodeFirstObject(text, &payload); err != nil {
		return empty, &TransportError{Op: "recognize vehicle", Err: fmt.Errorf("parse payload: %w", err)}
	}

	result := VehicleResult{
		VIN:        strings.TrimSpace(payload.VIN),
		Make:       textValue(payload.Make),
		Model:      textValue(payload.Model),
		Year:       yearString(payload.Year),
		Confidence: clamp01(numberValue(payload.Confidence)),
		Notes:      textValue(payload.Notes),
	}
	if readable, ok := boolValue(payload.Readable); result.VIN == "" || (ok && !readable) {
		reason := result.Notes
		if msg := textValue(payload.Error); msg != "" {
			reason = msg
		}
		if reason == "" {
			return empty, ErrNoVIN
		}
		return empty, fmt.Errorf("%w: %s", ErrNoVIN, reason)
	}
	c.logger.DebugContext(ctx, "vehicle recognized",
		logging.String("raw_vin", result.VIN),
		logging.Any("confidence", result.Confidence),
	)
	return result, nil
}

// RecognizeLocation asks the service for a location code. found is false when
// the service reported nothing readable; that is not an error.
func (c *Client) RecognizeLocation(ctx context.Context, img Image) (code string, found bool, err error) {
	if !c.Configured() {
		return "", false, ErrNotConfigured
	}
	text, err := c.generate(ctx, "recognize location", locationPrompt, &img)
	if err != nil {
		return "", false, err
	}
	code, found = ExtractLocationCode(text)
	c.logger.DebugContext(ctx, "location recognized",
		logging.String(logging.FieldLocation, code),
		logging.Bool("found", found),
	)
	return code, found, nil
}

// DescribeVIN asks for the likely model and year of a canonical VIN. The
// year falls back to the decoded model year when the service omits it.
func (c *Client) DescribeVIN(ctx context.Context, v string) (ModelInfo, error) {
	var empty ModelInfo
	if !c.Configured() {
		return empty, ErrNotConfigured
	}
	if !vin.IsCanonical(v) {
		return empty, &vin.IncompleteError{Usable: len(vin.Normalize(v).Candidate)}
	}
	manufacturer := vin.InferMake(v)
	if manufacturer == "" {
		manufacturer = "unknown"
	}
	text, err := c.generate(ctx, "describe vin", fmt.Sprintf(describePrompt, v, manufacturer), nil)
	if err != nil {
		return empty, err
	}
	var payload struct {
		Model any `json:"model"`
		Year  any `json:"year"`
	}
	if err := DecodeFirstObject(text, &payload); err != nil {
		return empty, &TransportError{Op: "describe vin", Err: fmt.Errorf("parse payload: %w", err)}
	}
	info := ModelInfo{Model: textValue(payload.Model), Year: yearString(payload.Year)}
	if info.Year == "" {
		info.Year = vin.ModelYearString(v, c.now().Year()+1)
	}
	return info, nil
}

// HealthCheck fetches the model's metadata, which needs a valid key but does
// not spend a generation request.
func (c *Client) HealthCheck(ctx context.Context) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/"+c.cfg.Model, nil)
	if err != nil {
		return &TransportError{Op: "health", Err: err}
	}
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Op: "health", Err: fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode >= http.StatusMultipleChoices {
		return &TransportError{Op: "health", StatusCode: resp.StatusCode, Body: string(body)}
	}
	return nil
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (c *Client) generate(ctx context.Context, op, prompt string, img *Image) (string, error) {
	parts := []part{{Text: prompt}}
	if img != nil {
		if len(img.Data) == 0 {
			return "", fmt.Errorf("%s: %w: empty image", op, ErrUnsupportedImage)
		}
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: img.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}
	payload := generateRequest{
		Contents:         []content{{Role: "user", Parts: parts}},
		GenerationConfig: &generationConfig{Temperature: 0},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%s: encode body: %w", op, err)
	}

	endpoint := c.cfg.BaseURL + "/" + c.cfg.Model + ":generateContent"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("http error (timeout=%s): %w", c.httpClient.Timeout, err)}
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)}
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", &TransportError{Op: op, StatusCode: resp.StatusCode, Body: string(body)}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &TransportError{Op: op, Err: fmt.Errorf("decode response: %w (snippet: %s)", err, summarizePayloadSnippet(string(body)))}
	}
	if decoded.Error != nil {
		return "", &TransportError{Op: op, StatusCode: decoded.Error.Code, Err: fmt.Errorf("api error: %s", strings.TrimSpace(decoded.Error.Message))}
	}
	text := firstCandidateText(decoded)
	if text == "" {
		reason := "empty candidates"
		if decoded.PromptFeedback != nil && decoded.PromptFeedback.BlockReason != "" {
			reason = "blocked: " + decoded.PromptFeedback.BlockReason
		} else if len(decoded.Candidates) > 0 {
			reason = "empty content (finish_reason=" + decoded.Candidates[0].FinishReason + ")"
		}
		return "", &TransportError{Op: op, Err: fmt.Errorf("%s", reason)}
	}

	c.logger.DebugContext(ctx, "recognition call completed",
		logging.String("op", op),
		logging.Duration("elapsed", time.Since(started)),
		logging.Int("response_bytes", len(body)),
	)
	return text, nil
}

func firstCandidateText(resp generateResponse) string {
	for _, cand := range resp.Candidates {
		var b strings.Builder
		for _, p := range cand.Content.Parts {
			b.WriteString(p.Text)
		}
		if text := strings.TrimSpace(b.String()); text != "" {
			return text
		}
	}
	return ""
}

func yearString(v any) string {
	switch y := v.(type) {
	case string:
		return strings.TrimSpace(y)
	case float64:
		if y <= 0 {
			return ""
		}
		return fmt.Sprintf("%d", int(y))
	default:
		return ""
	}
}

func textValue(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return ""
	}
}

func numberValue(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case string:
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(n), "%"), 64)
		if err != nil {
			return 0
		}
		if strings.HasSuffix(strings.TrimSpace(n), "%") {
			f /= 100
		}
		return f
	default:
		return 0
	}
}

// boolValue reports ok=false when the field is absent or unrecognized.
func boolValue(v any) (value bool, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	default:
		return false, false
	}
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
