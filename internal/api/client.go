// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the CodeCraft Context backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Endpoint paths served by the backend.
const (
	PathProjects = "/api/projects"
	PathAnalyze  = "/api/analyze_project"
	PathAsk      = "/api/ask_question"
)

// HeaderRequestID carries a per-request UUID so client and server logs can be correlated.
const HeaderRequestID = "X-Request-ID"

// maxErrorBody caps how much of a failed response is read looking for an error message.
const maxErrorBody = 64 * 1024

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// ClientConfig holds configuration options for the backend client.
type ClientConfig struct {
	// BaseURL is the backend base URL (default: http://127.0.0.1:5000)
	BaseURL string

	// Timeout for listing projects and asking questions (default: 2m)
	Timeout time.Duration

	// AnalyzeTimeout for analysis runs, which crawl a whole tree (default: 10m)
	AnalyzeTimeout time.Duration

	// RequestsPerSecond is the sustained request rate (default: 5)
	RequestsPerSecond float64

	// Burst is the number of requests allowed above the sustained rate (default: 5)
	Burst int

	// UserAgent sent with every request (default: codecraft-tui)
	UserAgent string

	// Logger receives one debug entry per request (default: no-op)
	Logger *zap.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:           "http://127.0.0.1:5000",
		Timeout:           2 * time.Minute,
		AnalyzeTimeout:    10 * time.Minute,
		RequestsPerSecond: 5,
		Burst:             5,
		UserAgent:         "codecraft-tui",
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the CodeCraft Context backend.
//
// The Client is thread-safe for concurrent use.
//
// Example:
//
//	client := api.NewClient()
//	projects, err := client.ListProjects(ctx)
//	resp, err := client.AskQuestion(ctx, "Where is auth handled?", projects[0].Name)
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	log        *zap.Logger
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json field names so messages match what the server calls them.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	defaults := DefaultConfig()

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = defaults.BaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = defaults.Timeout
	}
	if config.AnalyzeTimeout == 0 {
		config.AnalyzeTimeout = defaults.AnalyzeTimeout
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = defaults.RequestsPerSecond
	}
	if config.Burst == 0 {
		config.Burst = defaults.Burst
	}
	if config.UserAgent == "" {
		config.UserAgent = defaults.UserAgent
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), config.Burst),
		log:        logger.Named("api"),
	}
}

// BaseURL returns the backend URL the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// OPERATIONS
// =============================================================================

// CheckRunning verifies that the backend is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	_, err := c.ListProjects(ctx)
	return err
}

// ListProjects retrieves all analyzed projects in server order.
func (c *Client) ListProjects(ctx context.Context) ([]Project, error) {
	var projects []Project
	if err := c.do(ctx, http.MethodGet, PathProjects, nil, &projects, c.config.Timeout); err != nil {
		return nil, err
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

// AnalyzeProject asks the backend to crawl path and store the result under name.
func (c *Client) AnalyzeProject(ctx context.Context, path, name string) (*AnalyzeResponse, error) {
	req := AnalyzeRequest{ProjectPath: path, ProjectName: name}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var result AnalyzeResponse
	if err := c.do(ctx, http.MethodPost, PathAnalyze, req, &result, c.config.AnalyzeTimeout); err != nil {
		return nil, err
	}
	return &result, nil
}

// AskQuestion asks a question about an analyzed project.
func (c *Client) AskQuestion(ctx context.Context, question, project string) (*AskResponse, error) {
	req := AskRequest{Question: question, ProjectName: project}
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	var result AskResponse
	if err := c.do(ctx, http.MethodPost, PathAsk, req, &result, c.config.Timeout); err != nil {
		return nil, err
	}
	return &result, nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		msg := fe.Field() + " is " + fe.Tag()
		if fe.Tag() == "required" {
			msg = fe.Field() + " is required"
		}
		return &ClientError{Type: ErrTypeValidation, Message: "invalid request: " + msg, Cause: err}
	}
	return &ClientError{Type: ErrTypeValidation, Message: "invalid request", Cause: err}
}

// do sends one JSON request and decodes a 2xx response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		if ctx.Err() != nil {
			return transportError(ctx, ctx.Err())
		}
		return &ClientError{Type: ErrTypeTimeout, Message: "rate limit wait exceeds deadline", Cause: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, body)
	if err != nil {
		return &ClientError{Type: ErrTypeNotRunning, Message: "failed to create request", Cause: err}
	}
	requestID := uuid.NewString()
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		mapped := transportError(ctx, err)
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return mapped
	}
	defer resp.Body.Close()

	c.log.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		_ = json.Unmarshal(raw, &eb)
		return serverError(resp.StatusCode, http.StatusText(resp.StatusCode), eb.text())
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if ctx.Err() != nil {
			return transportError(ctx, ctx.Err())
		}
		if errors.Is(err, io.EOF) {
			return &ClientError{Type: ErrTypeInvalidResponse, Message: "empty response from server"}
		}
		return &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return nil
}
