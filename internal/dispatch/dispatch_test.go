package dispatch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/YuweAEC/invest-ai/internal/api"
	"github.com/YuweAEC/invest-ai/internal/session"
)

type fakeGateway struct {
	primaryResult  *api.QueryResult
	primaryErr     error
	fallbackResult *api.QueryResult
	fallbackErr    error

	primaryCalls  int
	fallbackCalls int
}

func (f *fakeGateway) SubmitQuery(ctx context.Context, userID int, query string) (*api.QueryResult, error) {
	f.primaryCalls++
	return f.primaryResult, f.primaryErr
}

func (f *fakeGateway) SubmitChat(ctx context.Context, query, sessionID string) (*api.QueryResult, error) {
	f.fallbackCalls++
	return f.fallbackResult, f.fallbackErr
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func strptr(s string) *string { return &s }

func TestPrimarySuccessSkipsFallback(t *testing.T) {
	gw := &fakeGateway{
		primaryResult: &api.QueryResult{Response: strptr("primary answer")},
	}
	d := New(gw, testLogger())

	resp, err := d.SubmitQuery(context.Background(), 1, "sess", "query")
	if err != nil {
		t.Fatalf("SubmitQuery() returned error: %v", err)
	}
	if resp.Text != "primary answer" {
		t.Errorf("text = %q, want primary answer", resp.Text)
	}
	if gw.primaryCalls != 1 || gw.fallbackCalls != 0 {
		t.Errorf("calls = (%d primary, %d fallback), want (1, 0)", gw.primaryCalls, gw.fallbackCalls)
	}
}

func TestFallbackOnPrimaryFailure(t *testing.T) {
	gw := &fakeGateway{
		primaryErr: &api.RemoteError{Status: 500, Detail: "primary down"},
		fallbackResult: &api.QueryResult{
			AISummary:      strptr("fallback answer"),
			DetectedTicker: strptr("AAPL"),
			SentimentResult: &api.SentimentResult{
				Sentiment: session.SentimentPositive, Confidence: 0.8, Polarity: 0.3,
			},
		},
	}
	d := New(gw, testLogger())

	resp, err := d.SubmitQuery(context.Background(), 1, "sess", "query")
	if err != nil {
		t.Fatalf("SubmitQuery() returned error: %v", err)
	}
	if resp.Text != "fallback answer" {
		t.Errorf("text = %q, want fallback answer", resp.Text)
	}
	if resp.Ticker != "AAPL" {
		t.Errorf("ticker = %q, want AAPL", resp.Ticker)
	}
	if resp.Sentiment == nil || resp.Sentiment.Category != session.SentimentPositive {
		t.Errorf("sentiment = %+v, want Positive", resp.Sentiment)
	}
	if gw.primaryCalls != 1 || gw.fallbackCalls != 1 {
		t.Errorf("calls = (%d primary, %d fallback), want (1, 1)", gw.primaryCalls, gw.fallbackCalls)
	}
}

func TestDoubleFailureSurfacesFallbackError(t *testing.T) {
	primaryErr := &api.NetworkError{Op: "POST /query/", Err: errors.New("refused")}
	fallbackErr := &api.RemoteError{Status: 503, Detail: "overloaded"}
	gw := &fakeGateway{primaryErr: primaryErr, fallbackErr: fallbackErr}
	d := New(gw, testLogger())

	_, err := d.SubmitQuery(context.Background(), 1, "sess", "query")
	if err == nil {
		t.Fatal("SubmitQuery() succeeded with both contracts down")
	}
	if !errors.Is(err, error(fallbackErr)) {
		t.Errorf("error = %v, want the fallback error", err)
	}
	var ne *api.NetworkError
	if errors.As(err, &ne) {
		t.Errorf("primary error leaked into the result: %v", err)
	}
}

func TestNormalizePreferences(t *testing.T) {
	newsA := []session.NewsItem{{Title: "a", Source: "x", URL: "u"}}
	newsB := []session.NewsItem{{Title: "b", Source: "y", URL: "v"}}

	tests := []struct {
		name     string
		raw      *api.QueryResult
		wantText string
		wantNews []session.NewsItem
	}{
		{
			name:     "response preferred over ai_summary",
			raw:      &api.QueryResult{Response: strptr("r"), AISummary: strptr("s")},
			wantText: "r",
		},
		{
			name:     "ai_summary used when response absent",
			raw:      &api.QueryResult{AISummary: strptr("s")},
			wantText: "s",
		},
		{
			name:     "relevant_news preferred over news",
			raw:      &api.QueryResult{Response: strptr("r"), RelevantNews: newsA, News: newsB},
			wantText: "r",
			wantNews: newsA,
		},
		{
			name:     "present but empty relevant_news still wins",
			raw:      &api.QueryResult{Response: strptr("r"), RelevantNews: []session.NewsItem{}, News: newsB},
			wantText: "r",
			wantNews: []session.NewsItem{},
		},
		{
			name:     "news used when relevant_news absent",
			raw:      &api.QueryResult{Response: strptr("r"), News: newsB},
			wantText: "r",
			wantNews: newsB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := normalize(tt.raw)
			if err != nil {
				t.Fatalf("normalize() returned error: %v", err)
			}
			if resp.Text != tt.wantText {
				t.Errorf("text = %q, want %q", resp.Text, tt.wantText)
			}
			if len(resp.RelatedNews) != len(tt.wantNews) {
				t.Fatalf("news = %+v, want %+v", resp.RelatedNews, tt.wantNews)
			}
			if tt.wantNews == nil && resp.RelatedNews != nil {
				t.Error("absent news normalized to non-nil")
			}
			for i := range tt.wantNews {
				if resp.RelatedNews[i] != tt.wantNews[i] {
					t.Errorf("news[%d] = %+v, want %+v", i, resp.RelatedNews[i], tt.wantNews[i])
				}
			}
		})
	}
}

func TestNormalizeAbsenceStaysAbsent(t *testing.T) {
	resp, err := normalize(&api.QueryResult{Response: strptr("just text")})
	if err != nil {
		t.Fatalf("normalize() returned error: %v", err)
	}
	if resp.Quote != nil || resp.Sentiment != nil || resp.Sources != nil || resp.RelatedNews != nil {
		t.Errorf("absent fields were defaulted: %+v", resp)
	}
	if resp.Ticker != "" {
		t.Errorf("ticker = %q, want empty", resp.Ticker)
	}
}

func TestNormalizeRejectsEmptyPayload(t *testing.T) {
	if _, err := normalize(&api.QueryResult{}); err == nil {
		t.Error("normalize() accepted a payload with no display text")
	}
}
