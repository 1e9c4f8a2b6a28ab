// Package gemini talks to the Google Generative Language API: Gemini for
// word analysis, anchors and scenes, Imagen for the card image.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/vytor/mnemoflash/internal/config"
	"github.com/vytor/mnemoflash/internal/logger"
)

var (
	// ErrNotConfigured is returned by text operations when no API key is set.
	ErrNotConfigured = errors.New("Gemini API key not configured")
	// ErrAPIDisabled is returned when the key's project has the API turned off.
	ErrAPIDisabled = errors.New("Generative Language API is not enabled. Please enable it in Google Cloud Console.")
)

// apiKeyHeader carries the key so it never appears in request URLs.
const apiKeyHeader = "x-goog-api-key"

type Options struct {
	APIKey      string
	BaseURL     string
	Model       string
	ImagenModel string
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// OptionsFromConfig maps the application config to client options.
func OptionsFromConfig(cfg config.Config) Options {
	return Options{
		APIKey:      cfg.GeminiAPIKey,
		BaseURL:     cfg.GeminiBaseURL,
		Model:       cfg.GeminiModel,
		ImagenModel: cfg.ImagenModel,
		Timeout:     cfg.GenerationTimeout,
	}
}

type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	model       string
	imagenModel string
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	c := &Client{
		httpClient:  hc,
		apiKey:      opts.APIKey,
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		model:       opts.Model,
		imagenModel: opts.ImagenModel,
	}
	if c.baseURL == "" {
		c.baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if c.model == "" {
		c.model = "gemini-1.5-flash"
	}
	if c.imagenModel == "" {
		c.imagenModel = "imagen-3.0-generate-002"
	}
	if c.apiKey == "" {
		logger.Default().WithPrefix("gemini").Warn("no API key set, generation will not work and images fall back to placeholders")
	}
	return c
}

// Configured reports whether an API key is set.
func (c *Client) Configured() bool { return c.apiKey != "" }

func (c *Client) endpoint(model, method string) string {
	return fmt.Sprintf("%s/models/%s:%s", c.baseURL, model, method)
}

func (c *Client) headers() map[string]string {
	return map[string]string{apiKeyHeader: c.apiKey}
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (r generateResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var b strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	return b.String()
}

// generateJSON renders the named prompt, sends it to Gemini and decodes the
// JSON answer into out. failure is the message reported for any error other
// than a disabled API.
func (c *Client) generateJSON(ctx context.Context, failure, tmpl string, data, out any) error {
	log := logger.FromContext(ctx).WithPrefix("gemini").WithField("prompt", tmpl)

	if !c.Configured() {
		return ErrNotConfigured
	}
	prompt, err := render(tmpl, data)
	if err != nil {
		log.Error("failed to render prompt: %v", err)
		return fmt.Errorf("%s: %w", failure, err)
	}

	body := generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	}

	log.Debug("calling %s", c.model)
	start := time.Now()
	var resp generateResponse
	if err := doJSON(ctx, c.httpClient, http.MethodPost, c.endpoint(c.model, "generateContent"), c.headers(), body, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.serviceDisabled() {
			log.Error("generative language API disabled: %s", apiErr.Body)
			return fmt.Errorf("%w (%s)", ErrAPIDisabled, apiErr.Body)
		}
		log.Error("generateContent failed after %v: %v", time.Since(start), err)
		return fmt.Errorf("%s: %w", failure, err)
	}

	text := resp.text()
	if text == "" {
		log.Warn("empty response from model")
		return fmt.Errorf("%s: empty response from model", failure)
	}
	if err := json.Unmarshal([]byte(stripFences(text)), out); err != nil {
		log.Error("failed to decode model output: %v", err)
		return fmt.Errorf("%s: invalid JSON from model: %w", failure, err)
	}
	log.Debug("generateContent completed in %v", time.Since(start))
	return nil
}

var fenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// stripFences extracts the JSON from a markdown code block when the model
// wrapped its answer in one.
func stripFences(text string) string {
	if m := fenceRe.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func languageName(code string) string {
	if name, ok := config.SupportedLanguages[code]; ok {
		return name
	}
	return code
}
