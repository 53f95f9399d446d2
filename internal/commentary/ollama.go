// Package commentary asks a local Ollama model to narrate a finished
// listening report.
package commentary

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultURL         = "http://localhost:11434"
	DefaultModel       = "llama3.2"
	DefaultTemperature = 0.9

	chatPath = "/api/chat"
)

// ErrEmptyResponse is returned when the model answers without any content.
var ErrEmptyResponse = errors.New("empty response from model")

var errUnreachable = errors.New("ollama unreachable")

// StatusError is a non-2xx answer from the Ollama server.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Ollama error %d: %s", e.StatusCode, e.Body)
}

type Config struct {
	// URL is the server root, without the /api/chat suffix.
	URL         string
	Model       string
	Temperature float64

	// Attempts bounds tries per request, including the first one.
	Attempts   uint
	RetryDelay time.Duration

	// Limiter paces requests. Nil means one request per second.
	Limiter    *rate.Limiter
	HTTPClient *http.Client
}

type Client struct {
	url         string
	model       string
	temperature float64
	attempts    uint
	retryDelay  time.Duration
	limiter     *rate.Limiter
	httpClient  *http.Client
}

func NewClient(cfg Config) *Client {
	if cfg.URL == "" {
		cfg.URL = DefaultURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.Attempts == 0 {
		cfg.Attempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Limiter == nil {
		cfg.Limiter = rate.NewLimiter(rate.Every(1*time.Second), 1)
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 5 * time.Minute}
	}

	return &Client{
		url:         strings.TrimRight(cfg.URL, "/"),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		attempts:    cfg.Attempts,
		retryDelay:  cfg.RetryDelay,
		limiter:     cfg.Limiter,
		httpClient:  cfg.HTTPClient,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatOptions struct {
	Temperature float64 `json:"temperature"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
	Options  chatOptions   `json:"options"`
}

type chatResponse struct {
	Message *chatMessage `json:"message"`
}

// Generate sends report to the model and returns its commentary: a
// tagline, a short paragraph and three superlatives. Server errors and
// transport failures are retried.
func (c *Client) Generate(ctx context.Context, report any) (string, error) {
	prompt, err := userPrompt(report)
	if err != nil {
		return "", err
	}
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Stream:  false,
		Options: chatOptions{Temperature: c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("encoding chat request: %w", err)
	}

	var content string
	err = retry.Do(
		func() error {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
			var err error
			content, err = c.chatOnce(ctx, body)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			if ctx.Err() != nil {
				return false
			}
			var serr *StatusError
			if (errors.As(err, &serr) && serr.StatusCode/100 == 5) || errors.Is(err, errUnreachable) {
				log.Warn().Err(err).Msg("ollama errored, retrying")
				return true
			}
			return false
		}),
	)
	if err != nil {
		return "", fmt.Errorf("commentary: %w", err)
	}
	return content, nil
}

func (c *Client) chatOnce(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+chatPath, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debug().Str("url", req.URL.String()).Str("model", c.model).Msg("requesting commentary")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", errUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		txt, _ := io.ReadAll(resp.Body)
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(txt)}
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decoding chat response: %w", err)
	}
	if out.Message == nil || strings.TrimSpace(out.Message.Content) == "" {
		return "", ErrEmptyResponse
	}
	return out.Message.Content, nil
}
