package api

import (
	"time"

	"github.com/YuweAEC/invest-ai/internal/session"
)

// QueryRequest is the primary query contract (POST /query/).
type QueryRequest struct {
	UserID int    `json:"user_id"`
	Query  string `json:"query"`
}

// ChatRequest is the secondary, session-scoped query contract (POST /chat/).
type ChatRequest struct {
	Query     string `json:"query"`
	SessionID string `json:"session_id"`
}

// QueryResult is the union of the two backend response shapes. The primary
// contract fills Response; the secondary fills AISummary and the enrichment
// fields. Pointer and slice fields stay nil when the backend omitted them —
// the dispatcher relies on that to distinguish absence from an empty value.
type QueryResult struct {
	Response        *string            `json:"response"`
	AISummary       *string            `json:"ai_summary"`
	DetectedTicker  *string            `json:"detected_ticker"`
	StockData       *StockData         `json:"stock_data"`
	SentimentResult *SentimentResult   `json:"sentiment_result"`
	RelevantNews    []session.NewsItem `json:"relevant_news"`
	News            []session.NewsItem `json:"news"`
	Sources         []string           `json:"sources"`
	SessionID       string             `json:"session_id,omitempty"`
}

// StockData is the backend's quote payload.
type StockData struct {
	Symbol        string   `json:"symbol"`
	CurrentPrice  float64  `json:"current_price"`
	ChangePercent float64  `json:"change_percent"`
	Volume        *int64   `json:"volume,omitempty"`
	MarketCap     *float64 `json:"market_cap,omitempty"`
}

// SentimentResult is the backend's sentiment payload.
type SentimentResult struct {
	Sentiment  string  `json:"sentiment"`
	Confidence float64 `json:"confidence"`
	Polarity   float64 `json:"polarity"`
}

// MessageRecord is one stored query/response pair inside a remote session.
type MessageRecord struct {
	ID              int        `json:"id"`
	UserQuery       string     `json:"user_query"`
	AIResponse      string     `json:"ai_response"`
	TickerSymbol    string     `json:"ticker_symbol,omitempty"`
	SentimentResult string     `json:"sentiment_result,omitempty"`
	StockData       *StockData `json:"stock_data,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// SessionRecord is a remote session as returned by the sessions endpoints.
type SessionRecord struct {
	SessionID string          `json:"session_id"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Messages  []MessageRecord `json:"messages"`
}

// DeleteResult is the confirmation payload for a session deletion.
type DeleteResult struct {
	SessionID string `json:"session_id"`
	Deleted   bool   `json:"deleted"`
}

// HealthResult is the liveness payload.
type HealthResult struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version,omitempty"`
}
