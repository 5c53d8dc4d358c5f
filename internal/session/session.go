package session

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Message roles. Error messages carry the human-readable failure detail
// produced when a query could not be resolved.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Sentiment categories returned by the research backend.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// Quote is a point-in-time price snapshot for a detected ticker.
type Quote struct {
	CurrentPrice  float64 `json:"current_price"`
	ChangePercent float64 `json:"change_percent"`
}

// Sentiment classifies the tone of an assistant reply about a financial topic.
type Sentiment struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence,omitempty"`
	Polarity   float64 `json:"polarity,omitempty"`
}

// NewsItem is a news reference passed through from the backend. The client
// does not interpret it beyond display.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	URL         string `json:"url"`
}

// Message is a single entry in a session's conversation log. Identifiers are
// strictly increasing in append order within a session. The enrichment
// fields (Ticker, Quote, Sentiment, Sources, RelatedNews) are set only on
// assistant messages, and only when the backend supplied them: a nil field
// means the backend said nothing, which is distinct from an empty value.
type Message struct {
	ID        int64     `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`

	Ticker      string     `json:"ticker_symbol,omitempty"`
	Quote       *Quote     `json:"quote,omitempty"`
	Sentiment   *Sentiment `json:"sentiment,omitempty"`
	Sources     []string   `json:"sources"`
	RelatedNews []NewsItem `json:"related_news"`
}

// Session is one client-lifetime conversation: an identifier, a creation
// timestamp, and an append-only ordered message log.
type Session struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Messages  []Message `json:"messages"`
}

// New creates an empty session with a globally unique identifier.
func New() *Session {
	id := fmt.Sprintf("session_%d_%s", time.Now().Unix(), uuid.NewString()[:8])
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		Messages:  []Message{},
	}
}

// Export serializes the session to JSON, preserving message order and the
// absent-vs-empty distinction of enrichment fields.
func (s *Session) Export() ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export session: %w", err)
	}
	return data, nil
}

// Parse reconstructs a session from its exported form.
func Parse(data []byte) (*Session, error) {
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}
	return &s, nil
}
