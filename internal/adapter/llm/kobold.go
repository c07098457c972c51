package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mantis/internal/domain"
)

const (
	DefaultBaseURL = "http://localhost:5001"
	DefaultTimeout = 300 * time.Second
	pingTimeout    = 5 * time.Second

	generatePath = "/api/v1/generate"
	modelPath    = "/api/v1/model"
)

// Params are the sampling parameters sent with every generation request.
type Params struct {
	MaxLength     int
	Temperature   float64
	TopP          float64
	TopK          int
	RepPen        float64
	StopSequences []string
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Params  Params
}

// KoboldClient talks to a KoboldCPP-compatible text completion server.
type KoboldClient struct {
	client  *http.Client
	baseURL string
	params  Params
}

type generateRequest struct {
	Prompt       string   `json:"prompt"`
	MaxLength    int      `json:"max_length"`
	Temperature  float64  `json:"temperature"`
	TopP         float64  `json:"top_p"`
	TopK         int      `json:"top_k"`
	RepPen       float64  `json:"rep_pen"`
	StopSequence []string `json:"stop_sequence"`
}

type generateResponse struct {
	Results []struct {
		Text string `json:"text"`
	} `json:"results"`
}

type modelResponse struct {
	Result string `json:"result"`
}

func NewKoboldClient(cfg Config) *KoboldClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &KoboldClient{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		params:  cfg.Params,
	}
}

// Generate sends prompt and returns the trimmed text of the first result.
func (c *KoboldClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Prompt:       prompt,
		MaxLength:    c.params.MaxLength,
		Temperature:  c.params.Temperature,
		TopP:         c.params.TopP,
		TopK:         c.params.TopK,
		RepPen:       c.params.RepPen,
		StopSequence: c.params.StopSequences,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var gen generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&gen); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", domain.ErrLLMResponse, err)
	}
	if len(gen.Results) == 0 {
		return "", fmt.Errorf("%w: no results in response", domain.ErrLLMResponse)
	}
	return strings.TrimSpace(gen.Results[0].Text), nil
}

// ModelName asks the server which model it has loaded.
func (c *KoboldClient) ModelName(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+modelPath, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(resp)
	}

	var info modelResponse
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return "", fmt.Errorf("%w: decode model info: %v", domain.ErrLLMResponse, err)
	}
	if info.Result == "" {
		return "Unknown Model", nil
	}
	return info.Result, nil
}

// Ping reports whether the server answers the model endpoint.
func (c *KoboldClient) Ping(ctx context.Context) error {
	_, err := c.ModelName(ctx)
	return err
}

func (c *KoboldClient) BaseURL() string { return c.baseURL }

// classifyTransportError maps client failures to sentinels. Cancellation stays
// context.Canceled.
func classifyTransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("generation cancelled: %w", context.Canceled)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", domain.ErrLLMTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", domain.ErrLLMTimeout, err)
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", domain.ErrLLMUnavailable, urlErr.Err)
	}
	return fmt.Errorf("%w: send request: %v", domain.ErrLLMUnavailable, err)
}

// statusError prefers the server's "detail" field over the raw body.
func statusError(resp *http.Response) error {
	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return fmt.Errorf("%w: status %d (failed to read body: %v)", domain.ErrLLMResponse, resp.StatusCode, err)
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var detail string
		if json.Unmarshal(payload.Detail, &detail) != nil {
			detail = string(payload.Detail)
		}
		return fmt.Errorf("%w: status %d: %s", domain.ErrLLMResponse, resp.StatusCode, detail)
	}

	msg := strings.TrimSpace(string(body))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", domain.ErrLLMResponse, resp.StatusCode, msg)
}
