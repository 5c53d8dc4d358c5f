package session

import (
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestNewSession(t *testing.T) {
	s := New()
	if s.ID == "" {
		t.Fatal("New() returned empty session ID")
	}
	if !strings.HasPrefix(s.ID, "session_") {
		t.Errorf("session ID %q missing session_ prefix", s.ID)
	}
	if len(s.Messages) != 0 {
		t.Errorf("new session has %d messages, want 0", len(s.Messages))
	}
	if s.CreatedAt.IsZero() {
		t.Error("new session has zero creation timestamp")
	}

	other := New()
	if other.ID == s.ID {
		t.Errorf("two sessions share ID %q", s.ID)
	}
}

func TestExportParseRoundTrip(t *testing.T) {
	created := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	s := &Session{
		ID:        "session_1234_abcd",
		CreatedAt: created,
		Messages: []Message{
			{
				ID:        1,
				Role:      RoleUser,
				Content:   "how is AAPL doing?",
				Timestamp: created.Add(time.Second),
				// user message: all enrichment absent
			},
			{
				ID:        2,
				Role:      RoleAssistant,
				Content:   "Apple is up today.",
				Timestamp: created.Add(2 * time.Second),
				Ticker:    "AAPL",
				Quote:     &Quote{CurrentPrice: 175.20, ChangePercent: 2.1},
				Sentiment: &Sentiment{Category: SentimentPositive, Confidence: 0.9, Polarity: 0.4},
				Sources:   []string{"Yahoo Finance", "NewsAPI"},
				RelatedNews: []NewsItem{
					{Title: "iPhone sales beat", Source: "NewsAPI", PublishedAt: "2026-03-14", URL: "https://example.com/a"},
				},
			},
			{
				ID:        3,
				Role:      RoleAssistant,
				Content:   "No data for that one.",
				Timestamp: created.Add(3 * time.Second),
				// explicitly empty, as opposed to absent
				Sources:     []string{},
				RelatedNews: []NewsItem{},
			},
			{
				ID:        4,
				Role:      RoleError,
				Content:   "Sorry, I encountered an error: remote error 503: overloaded",
				Timestamp: created.Add(4 * time.Second),
			},
		},
	}

	data, err := s.Export()
	if err != nil {
		t.Fatalf("Export() returned error: %v", err)
	}

	parsed, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse() returned error: %v", err)
	}

	if !reflect.DeepEqual(s, parsed) {
		t.Errorf("round trip mismatch:\n got: %+v\nwant: %+v", parsed, s)
	}

	// Absence and explicit emptiness must survive separately.
	if parsed.Messages[0].Sources != nil {
		t.Error("absent sources came back non-nil")
	}
	if parsed.Messages[2].Sources == nil || len(parsed.Messages[2].Sources) != 0 {
		t.Errorf("empty sources came back as %#v, want empty non-nil slice", parsed.Messages[2].Sources)
	}
	if parsed.Messages[0].Quote != nil {
		t.Error("absent quote came back non-nil")
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := Parse([]byte("{not json")); err == nil {
		t.Error("Parse() accepted malformed input")
	}
}
