package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/mootai/moot/pkg/utils/safe"
)

// Backend endpoints, relative to the base URL
const (
	EndpointGenerate    = "/api/debate/generate"
	EndpointSummarize   = "/api/case/summarize"
	EndpointVerdict     = "/api/verdict/generate"
	EndpointHealth      = "/health"
	EndpointModelInit   = "/api/model/init"
	EndpointModelStatus = "/api/model/status"
)

// DirectiveVersionHeader carries Directive.SchemaVersion
const DirectiveVersionHeader = "X-Directive-Version"

// maxResponseBytes bounds how much of a backend response is read
const maxResponseBytes = 16 << 20

// Client talks to the generation backend over HTTP. It performs exactly one
// round trip per call and never retries.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
}

var _ interfaces.Backend = &Client{}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithTimeout sets a per-request timeout. Zero keeps the caller's context
// as the only deadline. It applies regardless of option order.
func WithTimeout(d time.Duration) Option {
	return func(client *Client) {
		client.timeout = d
	}
}

// New creates a backend client for baseURL, e.g. "http://localhost:5000"
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, goerr.New("backend URL is required")
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, goerr.Wrap(err, "invalid backend URL", goerr.V("url", baseURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, goerr.New("backend URL must be http or https", goerr.V("url", baseURL))
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c, nil
}

// Generate sends a directive and returns the normalized generated text
func (c *Client) Generate(ctx context.Context, directive *model.Directive) (string, error) {
	header := http.Header{}
	if directive.SchemaVersion != "" {
		header.Set(DirectiveVersionHeader, directive.SchemaVersion)
	}

	status, body, err := c.do(ctx, http.MethodPost, EndpointGenerate, directive, header)
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		return "", statusFailure(EndpointGenerate, status, body)
	}

	text, err := model.ParseGenerationResponse(body)
	if err != nil {
		return "", annotate(err, EndpointGenerate, status)
	}
	return text, nil
}

func (c *Client) Summarize(ctx context.Context, req *model.SummaryRequest) (string, error) {
	status, body, err := c.do(ctx, http.MethodPost, EndpointSummarize, req, nil)
	if err != nil {
		return "", err
	}

	if !isSuccess(status) {
		return "", statusFailure(EndpointSummarize, status, body)
	}

	var resp model.SummaryResponse
	if err := decode(body, &resp); err != nil {
		return "", annotate(err, EndpointSummarize, status)
	}
	summary, err := resp.Result()
	if err != nil {
		return "", annotate(err, EndpointSummarize, status)
	}
	return summary, nil
}

func (c *Client) Verdict(ctx context.Context, req *model.VerdictRequest) (*model.Verdict, error) {
	status, body, err := c.do(ctx, http.MethodPost, EndpointVerdict, req, nil)
	if err != nil {
		return nil, err
	}

	if !isSuccess(status) {
		return nil, statusFailure(EndpointVerdict, status, body)
	}

	var resp model.VerdictResponse
	if err := decode(body, &resp); err != nil {
		return nil, annotate(err, EndpointVerdict, status)
	}
	verdict, err := resp.Result()
	if err != nil {
		return nil, annotate(err, EndpointVerdict, status)
	}
	return verdict, nil
}

// Health succeeds when the backend answers its health endpoint with 2xx
func (c *Client) Health(ctx context.Context) error {
	status, body, err := c.do(ctx, http.MethodGet, EndpointHealth, nil, nil)
	if err != nil {
		return err
	}
	if !isSuccess(status) {
		return statusFailure(EndpointHealth, status, body)
	}
	return nil
}

// InitModel asks the backend to load its model and returns its answer as is
func (c *Client) InitModel(ctx context.Context) (model.ModelStatus, error) {
	status, body, err := c.do(ctx, http.MethodPost, EndpointModelInit, struct{}{}, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusFailure(EndpointModelInit, status, body)
	}
	if !json.Valid(body) {
		return nil, goerr.Wrap(model.ErrMalformedResponse, "model init response is not JSON", goerr.V(model.EndpointKey, EndpointModelInit))
	}
	return model.ModelStatus(body), nil
}

// ModelStatus returns the backend's model status, unwrapped from a
// {"success": ..., "status": {...}} envelope when present.
func (c *Client) ModelStatus(ctx context.Context) (model.ModelStatus, error) {
	status, body, err := c.do(ctx, http.MethodGet, EndpointModelStatus, nil, nil)
	if err != nil {
		return nil, err
	}
	if !isSuccess(status) {
		return nil, statusFailure(EndpointModelStatus, status, body)
	}

	var envelope struct {
		Status json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, goerr.Wrap(model.ErrMalformedResponse, "failed to decode model status",
			goerr.V(model.EndpointKey, EndpointModelStatus),
			goerr.V("cause", err.Error()))
	}
	if len(envelope.Status) > 0 && envelope.Status[0] == '{' {
		return model.ModelStatus(envelope.Status), nil
	}
	return model.ModelStatus(body), nil
}

// do performs one request. Transport failures are ErrBackendUnreachable; a
// non-2xx status is returned to the caller together with the body so that
// an error text in the body can be surfaced.
func (c *Client) do(ctx context.Context, method, endpoint string, payload any, header http.Header) (int, []byte, error) {
	target := c.baseURL.JoinPath(endpoint).String()

	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, goerr.Wrap(err, "failed to encode backend request", goerr.V(model.EndpointKey, endpoint))
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return 0, nil, goerr.Wrap(err, "failed to build backend request", goerr.V(model.EndpointKey, endpoint))
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	logger := logging.From(ctx)
	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, nil, goerr.Wrap(ctxErr, "backend request canceled", goerr.V(model.EndpointKey, endpoint))
		}
		return 0, nil, goerr.Wrap(model.ErrBackendUnreachable, "failed to reach backend",
			goerr.V(model.EndpointKey, endpoint),
			goerr.V("cause", err.Error()))
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, goerr.Wrap(model.ErrBackendUnreachable, "failed to read backend response",
			goerr.V(model.EndpointKey, endpoint),
			goerr.V("cause", err.Error()))
	}

	logger.Debug("backend call",
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
		slog.Int("bytes", len(body)),
	)

	return resp.StatusCode, body, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

func decode(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return goerr.Wrap(model.ErrMalformedResponse, "failed to decode backend response", goerr.V("cause", err.Error()))
	}
	return nil
}

// annotate adds the endpoint and status to a normalization error
func annotate(err error, endpoint string, status int) error {
	return goerr.Wrap(err, "backend call failed",
		goerr.V(model.EndpointKey, endpoint),
		goerr.V(model.StatusCodeKey, status))
}

// statusFailure builds the error for a non-2xx answer, using the body's
// "error" text when it has one.
func statusFailure(endpoint string, status int, body []byte) error {
	var resp struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return goerr.Wrap(model.ErrBackendError, resp.Error,
			goerr.V(model.EndpointKey, endpoint),
			goerr.V(model.StatusCodeKey, status),
			goerr.V(model.UpstreamErrorKey, resp.Error))
	}
	return goerr.Wrap(model.ErrBackendError, "backend returned error status",
		goerr.V(model.EndpointKey, endpoint),
		goerr.V(model.StatusCodeKey, status))
}
