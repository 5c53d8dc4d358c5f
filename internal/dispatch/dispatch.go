// Package dispatch sends a user query to the backend and reconciles the two
// backend contract shapes into one canonical response. The primary contract
// (/query/) and the fallback (/chat/) are owned by different backend
// versions; callers above this package never see either raw shape.
package dispatch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/YuweAEC/invest-ai/internal/api"
	"github.com/YuweAEC/invest-ai/internal/session"
)

// Response is the canonical query result. Enrichment fields are nil when the
// backend did not supply them; an empty slice means the backend answered
// with an explicitly empty list.
type Response struct {
	Text        string
	Ticker      string
	Quote       *session.Quote
	Sentiment   *session.Sentiment
	Sources     []string
	RelatedNews []session.NewsItem
}

// Gateway is the subset of the API client the dispatcher uses.
type Gateway interface {
	SubmitQuery(ctx context.Context, userID int, query string) (*api.QueryResult, error)
	SubmitChat(ctx context.Context, query, sessionID string) (*api.QueryResult, error)
}

// Dispatcher resolves user queries with primary-then-fallback semantics.
type Dispatcher struct {
	gw     Gateway
	logger *slog.Logger
}

// New creates a dispatcher over the given gateway.
func New(gw Gateway, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{gw: gw, logger: logger}
}

// SubmitQuery sends one query, trying the primary contract first and falling
// back to the secondary on any failure. The two attempts are strictly
// sequential and there is no retry beyond them. When both fail, the
// secondary's error is returned; the primary's error survives only in the
// structured log.
func (d *Dispatcher) SubmitQuery(ctx context.Context, userID int, sessionID, text string) (*Response, error) {
	raw, primaryErr := d.gw.SubmitQuery(ctx, userID, text)
	if primaryErr != nil {
		d.logger.Warn("primary query contract failed, falling back",
			"session_id", sessionID, "error", primaryErr)

		var fallbackErr error
		raw, fallbackErr = d.gw.SubmitChat(ctx, text, sessionID)
		if fallbackErr != nil {
			d.logger.Error("both query contracts failed",
				"session_id", sessionID,
				"primary_error", primaryErr, "fallback_error", fallbackErr)
			return nil, fallbackErr
		}
	}

	return normalize(raw)
}

// normalize maps either raw contract shape onto the canonical response.
// Display text prefers the response field over ai_summary; news prefers
// relevant_news over the generic news field, where a present-but-empty
// relevant_news still wins. Everything else is carried verbatim, absent
// stays absent.
func normalize(raw *api.QueryResult) (*Response, error) {
	resp := &Response{}

	switch {
	case raw.Response != nil:
		resp.Text = *raw.Response
	case raw.AISummary != nil:
		resp.Text = *raw.AISummary
	default:
		return nil, fmt.Errorf("empty response from backend")
	}

	if raw.DetectedTicker != nil {
		resp.Ticker = *raw.DetectedTicker
	}
	if raw.StockData != nil {
		resp.Quote = &session.Quote{
			CurrentPrice:  raw.StockData.CurrentPrice,
			ChangePercent: raw.StockData.ChangePercent,
		}
	}
	if raw.SentimentResult != nil {
		resp.Sentiment = &session.Sentiment{
			Category:   raw.SentimentResult.Sentiment,
			Confidence: raw.SentimentResult.Confidence,
			Polarity:   raw.SentimentResult.Polarity,
		}
	}
	resp.Sources = raw.Sources

	if raw.RelevantNews != nil {
		resp.RelatedNews = raw.RelevantNews
	} else {
		resp.RelatedNews = raw.News
	}

	return resp, nil
}
