// Package api is the typed HTTP gateway to the investment-research backend.
// It owns transport concerns: the shared client and its timeout, JSON
// encoding, request/response logging and instrumentation, and the
// translation of every transport or HTTP failure into the package's error
// types. Nothing above this package sees a raw *http.Response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// RequestTimeout bounds every remote call. The backend answers simple
// queries in a few seconds; 30s covers slow AI summarization.
const RequestTimeout = 30 * time.Second

// Client issues requests against a single backend base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	meter      metric.Meter
}

// NewClient creates a gateway client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger, tracer trace.Tracer, meter metric.Meter) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: RequestTimeout},
		logger:     logger,
		tracer:     tracer,
		meter:      meter,
	}
}

// BaseURL returns the configured backend address.
func (c *Client) BaseURL() string { return c.baseURL }

// errordetail is the structured detail field carried by backend error
// responses.
type errorDetail struct {
	Detail string `json:"detail"`
}

// send issues one HTTP request and returns the raw response body. Transport
// failures come back as *NetworkError, non-2xx statuses as *RemoteError.
func (c *Client) send(ctx context.Context, method, path string, body any) ([]byte, error) {
	ctx, span := c.tracer.Start(ctx, fmt.Sprintf("api %s %s", method, path))
	defer span.End()

	start := time.Now()
	op := fmt.Sprintf("%s %s", method, path)

	var reqBody io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("api request", "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		nerr := &NetworkError{Op: op, Err: err, Timeout: isTimeout(err)}
		c.logger.Error("api transport failure", "method", method, "path", path,
			"timeout", nerr.Timeout, "error", err)
		return nil, nerr
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: op, Err: err, Timeout: isTimeout(err)}
	}

	duration := time.Since(start)
	c.logger.Info("api response", "method", method, "path", path,
		"status", resp.StatusCode, "duration_ms", duration.Milliseconds())

	histogram, err := c.meter.Float64Histogram(
		"http.client.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
	)
	if err == nil {
		histogram.Record(ctx, float64(duration.Milliseconds()))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail := fmt.Sprintf("request failed with status %s", resp.Status)
		var ed errorDetail
		if err := json.Unmarshal(respBody, &ed); err == nil && ed.Detail != "" {
			detail = ed.Detail
		}
		return nil, &RemoteError{Status: resp.StatusCode, Detail: detail}
	}

	return respBody, nil
}

// isTimeout reports whether a transport error was caused by the request
// deadline rather than a reachability problem.
func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

// SubmitQuery calls the primary query contract.
func (c *Client) SubmitQuery(ctx context.Context, userID int, query string) (*QueryResult, error) {
	body, err := c.send(ctx, http.MethodPost, "/query/", QueryRequest{UserID: userID, Query: query})
	if err != nil {
		return nil, err
	}
	var result QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal query response: %w", err)
	}
	return &result, nil
}

// SubmitChat calls the secondary, session-scoped query contract.
func (c *Client) SubmitChat(ctx context.Context, query, sessionID string) (*QueryResult, error) {
	body, err := c.send(ctx, http.MethodPost, "/chat/", ChatRequest{Query: query, SessionID: sessionID})
	if err != nil {
		return nil, err
	}
	var result QueryResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat response: %w", err)
	}
	return &result, nil
}

// ListSessions fetches all stored sessions, in the order the backend
// returns them.
func (c *Client) ListSessions(ctx context.Context) ([]SessionRecord, error) {
	body, err := c.send(ctx, http.MethodGet, "/chat/sessions/", nil)
	if err != nil {
		return nil, err
	}
	var sessions []SessionRecord
	if err := json.Unmarshal(body, &sessions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal sessions: %w", err)
	}
	return sessions, nil
}

// SessionDetail fetches one stored session by id.
func (c *Client) SessionDetail(ctx context.Context, sessionID string) (*SessionRecord, error) {
	body, err := c.send(ctx, http.MethodGet, "/chat/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var record SessionRecord
	if err := json.Unmarshal(body, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session detail: %w", err)
	}
	return &record, nil
}

// DeleteSession removes one stored session by id.
func (c *Client) DeleteSession(ctx context.Context, sessionID string) (*DeleteResult, error) {
	body, err := c.send(ctx, http.MethodDelete, "/chat/sessions/"+sessionID, nil)
	if err != nil {
		return nil, err
	}
	var result DeleteResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal delete confirmation: %w", err)
	}
	return &result, nil
}

// Health checks backend liveness.
func (c *Client) Health(ctx context.Context) (*HealthResult, error) {
	body, err := c.send(ctx, http.MethodGet, "/health/simple", nil)
	if err != nil {
		return nil, err
	}
	var result HealthResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal health response: %w", err)
	}
	return &result, nil
}
