// Package genai is a thin HTTP facade over the Gemini generateContent API.
// It owns transport concerns only: request encoding, response decoding, the
// API error envelope, and the retry-with-backoff policy for quota errors.
package genai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"studio/internal/domain"
)

const (
	defaultBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultTextModel  = "gemini-3-flash-preview"
	defaultImageModel = "gemini-2.5-flash-image"

	defaultMaxRetries = 3
	defaultRetryBase  = 2 * time.Second
)

// Options controls how the client is configured.
type Options struct {
	APIKey     string
	BaseURL    string
	TextModel  string
	ImageModel string
	HTTPClient *http.Client
	Logger     *zerolog.Logger

	// MaxRetries and RetryBaseDelay tune the quota backoff. Zero values
	// select the defaults (3 retries, 2s doubling).
	MaxRetries     int
	RetryBaseDelay time.Duration
}

// Client calls the Gemini API. All requests share one retry policy: quota
// errors are retried MaxRetries times with exponentially growing delays; any
// other error propagates immediately.
type Client struct {
	apiKey     string
	baseURL    string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     zerolog.Logger
	maxRetries int
	retryBase  time.Duration

	// sleep is swapped out by tests to observe backoff delays.
	sleep func(time.Duration)
}

// NewClient constructs a client with sane defaults.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 60 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	textModel := strings.TrimSpace(opts.TextModel)
	if textModel == "" {
		textModel = defaultTextModel
	}
	imageModel := strings.TrimSpace(opts.ImageModel)
	if imageModel == "" {
		imageModel = defaultImageModel
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	maxRetries := opts.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}
	retryBase := opts.RetryBaseDelay
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		baseURL:    baseURL,
		textModel:  textModel,
		imageModel: imageModel,
		httpClient: httpClient,
		logger:     logger,
		maxRetries: maxRetries,
		retryBase:  retryBase,
		sleep:      time.Sleep,
	}
}

// TextModel returns the configured text model identifier.
func (c *Client) TextModel() string { return c.textModel }

// ImageModel returns the configured image model identifier.
func (c *Client) ImageModel() string { return c.imageModel }

// Inline is binary content attached to a request or returned by the model.
type Inline struct {
	MIMEType string
	Data     []byte
}

// TextRequest describes a text-producing generateContent call.
type TextRequest struct {
	System         string
	Prompt         string
	Image          *Inline
	Temperature    float64
	ResponseSchema json.RawMessage
}

// ImageRequest describes an image-producing generateContent call.
type ImageRequest struct {
	Prompt      string
	Reference   *Inline
	AspectRatio string
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType,omitempty"`
	Data     string `json:"data,omitempty"`
}

type generationConfig struct {
	Temperature      float64         `json:"temperature,omitempty"`
	CandidateCount   int             `json:"candidateCount,omitempty"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ResponseSchema   json.RawMessage `json:"responseSchema,omitempty"`
	ImageConfig      *imageConfig    `json:"imageConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type generateContentRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason,omitempty"`
}

type generateContentResponse struct {
	Candidates []candidate `json:"candidates"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code,omitempty"`
		Status  string `json:"status,omitempty"`
		Message string `json:"message,omitempty"`
	} `json:"error"`
}

// GenerateText runs a text call and returns the first non-empty text part.
// An empty result is returned as "", not as an error; callers decide their
// own fallback.
func (c *Client) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: buildParts(req.Prompt, req.Image)}},
	}
	if req.System != "" {
		payload.SystemInstruction = &content{Parts: []part{{Text: req.System}}}
	}
	cfg := &generationConfig{Temperature: req.Temperature, CandidateCount: 1}
	if len(req.ResponseSchema) > 0 {
		cfg.ResponseMIMEType = "application/json"
		cfg.ResponseSchema = req.ResponseSchema
	}
	payload.GenerationConfig = cfg

	var resp generateContentResponse
	if err := c.invoke(ctx, c.textModel, payload, &resp); err != nil {
		return "", err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text, nil
			}
		}
	}
	return "", nil
}

// GenerateImage runs an image call and returns the first inline image part.
// A response without an image payload fails with domain.ErrGenerationFailed.
func (c *Client) GenerateImage(ctx context.Context, req ImageRequest) (Inline, error) {
	payload := generateContentRequest{
		Contents: []content{{Role: "user", Parts: buildParts(req.Prompt, req.Reference)}},
	}
	if req.AspectRatio != "" {
		payload.GenerationConfig = &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: req.AspectRatio},
		}
	}

	var resp generateContentResponse
	if err := c.invoke(ctx, c.imageModel, payload, &resp); err != nil {
		return Inline{}, err
	}
	for _, cand := range resp.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return Inline{}, fmt.Errorf("decode inline image: %w", err)
			}
			mime := p.InlineData.MIMEType
			if mime == "" {
				mime = "image/png"
			}
			return Inline{MIMEType: mime, Data: data}, nil
		}
	}
	return Inline{}, domain.ErrGenerationFailed
}

func buildParts(prompt string, image *Inline) []part {
	parts := []part{{Text: prompt}}
	if image != nil && len(image.Data) > 0 {
		parts = append(parts, part{InlineData: &inlineData{
			MIMEType: image.MIMEType,
			Data:     base64.StdEncoding.EncodeToString(image.Data),
		}})
	}
	return parts
}

// invoke posts the payload, retrying quota errors with the 2s/4s/8s
// schedule. Missing credentials fail before any network round trip.
func (c *Client) invoke(ctx context.Context, model string, payload any, out any) error {
	if c.apiKey == "" {
		return domain.ErrMissingAPIKey
	}

	delay := c.retryBase
	for attempt := 0; ; attempt++ {
		err := c.post(ctx, model, payload, out)
		if err == nil {
			return nil
		}
		if !isRateLimited(err) || attempt >= c.maxRetries {
			return err
		}
		c.logger.Warn().
			Err(err).
			Str("model", model).
			Int("attempt", attempt+1).
			Dur("backoff", delay).
			Msg("genai: quota exhausted, backing off")
		if err := c.wait(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
}

func (c *Client) post(ctx context.Context, model string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, url.PathEscape(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("invoke gemini: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode gemini response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	var apiErr apiErrorResponse
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error.Message != "" {
		if resp.StatusCode == http.StatusTooManyRequests || apiErr.Error.Status == "RESOURCE_EXHAUSTED" {
			return fmt.Errorf("%w: gemini status %d: %s", domain.ErrRateLimited, resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, apiErr.Error.Message)
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: gemini status %d", domain.ErrRateLimited, resp.StatusCode)
	}
	if len(data) > 0 {
		return fmt.Errorf("gemini status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return fmt.Errorf("gemini status %d", resp.StatusCode)
}

func isRateLimited(err error) bool {
	return errors.Is(err, domain.ErrRateLimited)
}

func (c *Client) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleep(d)
	return ctx.Err()
}
