// Package backend provides the HTTP client for the sentiment-analysis server.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/f3rmion/moodlog/internal/journal"
	"github.com/f3rmion/moodlog/internal/logging"
	"github.com/f3rmion/moodlog/internal/metrics"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	analyzePath = "/api/analyze"
	healthPath  = "/api/health"

	defaultTimeout = 30 * time.Second

	// maxBodySize bounds how much of a response we read.
	maxBodySize = 8 << 20
)

// Client talks to the analysis backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	log        *zap.Logger
	metrics    *metrics.Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout bounds each request, including time spent waiting on the
// rate limiter.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit allows at most perMinute analysis requests per minute.
// Zero or less disables limiting.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.log = logging.OrNop(l) }
}

// WithMetrics records dispatch outcomes on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(c *Client) { c.metrics = r }
}

// analyzeRequest is the wire body of POST /api/analyze.
type analyzeRequest struct {
	Topic        string   `json:"topic"`
	NoOfArticles int      `json:"noofarticles"`
	Platforms    []string `json:"platforms"`
}

// failureBody is the error shape of a non-2xx response.
type failureBody struct {
	Detail json.RawMessage `json:"detail"`
}

// HealthStatus is the body of GET /api/health.
type HealthStatus struct {
	Status  string   `json:"status"`
	Message string   `json:"message,omitempty"`
	Version string   `json:"version,omitempty"`
	Agents  []string `json:"agents,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h *HealthStatus) Healthy() bool {
	return h != nil && h.Status == "healthy"
}

// NewClient creates a client for the backend at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, fmt.Errorf("backend base URL not set")
	}

	c := &Client{
		baseURL: baseURL,
		timeout: defaultTimeout,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}
	return c, nil
}

// BaseURL returns the backend origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Prepare validates req and fills in defaults. It never touches the network.
func Prepare(req journal.AnalysisRequest) (journal.AnalysisRequest, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, inputError(MsgEmptyTopic)
	}
	if utf8.RuneCountInString(req.Topic) > journal.MaxTopicLength {
		return req, inputError(MsgTopicTooLong)
	}

	switch {
	case req.ArticleCount == 0:
		req.ArticleCount = journal.DefaultArticleCount
	case req.ArticleCount < journal.MinArticleCount || req.ArticleCount > journal.MaxArticleCount:
		return req, inputError(MsgBadCount)
	}

	if len(req.Platforms) == 0 {
		req.Platforms = journal.DefaultPlatforms()
	}
	for _, p := range req.Platforms {
		if _, ok := journal.ParsePlatform(string(p)); !ok {
			return req, &Error{Kind: KindInput, Message: MsgUnknownPlatform + ": " + string(p)}
		}
	}
	return req, nil
}

// Analyze submits req and returns the backend's successful result, or an
// *Error classifying the failure. It performs exactly one round trip.
func (c *Client) Analyze(ctx context.Context, req journal.AnalysisRequest) (*journal.AnalysisResult, error) {
	start := time.Now()
	result, err := c.analyze(ctx, req)

	outcome := metrics.OutcomeSuccess
	if err != nil {
		outcome = KindOf(err).String()
		c.log.Warn("analysis failed",
			zap.String("kind", outcome),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err),
		)
	} else {
		c.log.Info("analysis completed",
			zap.String("topic", result.Topic),
			zap.Duration("elapsed", time.Since(start)),
		)
	}
	c.metrics.ObserveDispatch(outcome, time.Since(start))
	return result, err
}

func (c *Client) analyze(ctx context.Context, req journal.AnalysisRequest) (*journal.AnalysisResult, error) {
	req, err := Prepare(req)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, transportError(fmt.Errorf("waiting for rate limiter: %w", err))
		}
	}

	wire := analyzeRequest{
		Topic:        req.Topic,
		NoOfArticles: req.ArticleCount,
		Platforms:    make([]string, len(req.Platforms)),
	}
	for i, p := range req.Platforms {
		wire.Platforms[i] = string(p)
	}

	body, err := json.Marshal(wire)
	if err != nil {
		return nil, inputError(fmt.Sprintf("encoding request: %v", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+analyzePath, bytes.NewReader(body))
	if err != nil {
		return nil, transportError(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	c.log.Debug("dispatching analysis",
		zap.Int("topic_len", utf8.RuneCountInString(req.Topic)),
		zap.Int("articles", req.ArticleCount),
		zap.Strings("platforms", wire.Platforms),
	)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, transportError(fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, serverError(resp.StatusCode, failureDetail(respBody), fmt.Errorf("status %d", resp.StatusCode))
	}

	if msg, failed := unsuccessful(respBody); failed {
		return nil, serverError(resp.StatusCode, msg, nil)
	}

	if err := validateResult(respBody); err != nil {
		return nil, serverError(resp.StatusCode, MsgMalformed, err)
	}

	var result journal.AnalysisResult
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, serverError(resp.StatusCode, MsgMalformed, fmt.Errorf("unmarshaling response: %w", err))
	}

	if !result.Success {
		return nil, serverError(resp.StatusCode, MsgUnsuccessful, nil)
	}

	return &result, nil
}

// unsuccessful reports whether a 2xx body carries "success": false, and the
// message to show for it. The rest of such a body is not validated.
func unsuccessful(body []byte) (string, bool) {
	var head struct {
		Success *bool           `json:"success"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &head); err != nil || head.Success == nil || *head.Success {
		return "", false
	}

	var msg string
	if err := json.Unmarshal(head.Error, &msg); err == nil {
		if msg = strings.TrimSpace(msg); msg != "" {
			return msg, true
		}
	}
	return MsgUnsuccessful, true
}

// failureDetail extracts the human-readable detail of a non-2xx body.
// FastAPI sends either a string or a list of validation errors.
func failureDetail(body []byte) string {
	var fb failureBody
	if err := json.Unmarshal(body, &fb); err != nil || len(fb.Detail) == 0 {
		return MsgServerFailure
	}

	var s string
	if err := json.Unmarshal(fb.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return MsgServerFailure
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(fb.Detail, &items); err == nil {
		var msgs []string
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return MsgServerFailure
}

// Health queries the backend's health endpoint once.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+healthPath, nil)
	if err != nil {
		return nil, transportError(fmt.Errorf("creating request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.metrics.SetHealthy(false)
		return nil, transportError(fmt.Errorf("making request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.metrics.SetHealthy(false)
		return nil, transportError(fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.metrics.SetHealthy(false)
		return nil, serverError(resp.StatusCode, failureDetail(respBody), fmt.Errorf("status %d", resp.StatusCode))
	}

	var status HealthStatus
	if err := json.Unmarshal(respBody, &status); err != nil {
		c.metrics.SetHealthy(false)
		return nil, serverError(resp.StatusCode, MsgMalformed, fmt.Errorf("unmarshaling response: %w", err))
	}

	c.metrics.SetHealthy(status.Healthy())
	return &status, nil
}
