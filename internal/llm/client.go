// Package llm provides Gemini integration for generating hints and
// monster dialogue.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/f3rmion/kanjimon/internal/flavor"
	"github.com/f3rmion/kanjimon/internal/kanji"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	defaultModel   = "gemini-2.0-flash"

	maxOutputTokens = 100
	temperature     = 0.8
)

// ErrNoAPIKey is returned when no Gemini API key is configured.
var ErrNoAPIKey = errors.New("GEMINI_API_KEY not set")

// Config configures a Client.
type Config struct {
	APIKey  string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	Model   string        `mapstructure:"model" yaml:"model"`       // Defaults to gemini-2.0-flash
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"` // Defaults to the public Generative Language endpoint
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`   // HTTP client timeout; defaults to 5s
}

// Client is a Gemini generateContent client. It implements flavor.Generator.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

var _ flavor.Generator = (*Client)(nil)

// part is a Gemini content part.
type part struct {
	Text string `json:"text"`
}

// content is a Gemini content block.
type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens"`
	Temperature     float64 `json:"temperature"`
}

// request represents a generateContent request.
type request struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

// response represents a generateContent response.
type response struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a new Gemini client.
func NewClient(cfg Config) (*Client, error) {
	// Trim any whitespace/newlines that might have snuck in
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, ErrNoAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
	if c.baseURL == "" {
		c.baseURL = defaultBaseURL
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.httpClient.Timeout <= 0 {
		c.httpClient.Timeout = flavor.DefaultTimeout
	}
	return c, nil
}

// NewClientFromEnv creates a client from the GEMINI_API_KEY environment
// variable.
func NewClientFromEnv() (*Client, error) {
	return NewClient(Config{APIKey: os.Getenv("GEMINI_API_KEY")})
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// GenerateHint asks for a hint that does not give the reading away.
func (c *Client) GenerateHint(ctx context.Context, q kanji.Question) (string, error) {
	return c.generate(ctx, hintPrompt(q))
}

// GenerateDialogue asks for one short line spoken by a monster.
func (c *Client) GenerateDialogue(ctx context.Context, req flavor.DialogueRequest) (string, error) {
	return c.generate(ctx, dialoguePrompt(req))
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	req := request{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: prompt}}},
		},
		GenerationConfig: generationConfig{
			MaxOutputTokens: maxOutputTokens,
			Temperature:     temperature,
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent", c.baseURL, c.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("making request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}

	var apiResp response
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshaling response (status %d): %w", resp.StatusCode, err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if len(apiResp.Candidates) == 0 || len(apiResp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from API")
	}

	return strings.TrimSpace(apiResp.Candidates[0].Content.Parts[0].Text), nil
}
