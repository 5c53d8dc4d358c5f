// Package history derives dashboard and history views from the stored
// session list. It only reads session data; the remote store and the active
// conversation own their own state.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/YuweAEC/invest-ai/internal/api"
)

// TopPerformerCount is the default size of the top-performers ranking.
const TopPerformerCount = 5

// AggregatedStock is one ranked entry in the top-performers view, flattened
// out of a quote-bearing stored message.
type AggregatedStock struct {
	Symbol        string
	Price         float64
	ChangePercent float64
	Timestamp     time.Time
}

// Store is the subset of the API client the history service uses.
type Store interface {
	ListSessions(ctx context.Context) ([]api.SessionRecord, error)
	SessionDetail(ctx context.Context, sessionID string) (*api.SessionRecord, error)
	DeleteSession(ctx context.Context, sessionID string) (*api.DeleteResult, error)
}

// Service fetches stored sessions and exposes the derived views.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a history service over the given store.
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// List fetches all stored sessions. The backend's ordering (assumed
// reverse-chronological) is preserved as-is.
func (s *Service) List(ctx context.Context) ([]api.SessionRecord, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	s.logger.Info("fetched session history", "count", len(sessions))
	return sessions, nil
}

// Detail fetches one stored session by id.
func (s *Service) Detail(ctx context.Context, sessionID string) (*api.SessionRecord, error) {
	record, err := s.store.SessionDetail(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return record, nil
}

// Delete removes one stored session. A missing id surfaces as
// api.ErrNotFound; the caller is expected to drop exactly the matching
// entry from its local list on success.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.store.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	s.logger.Info("deleted session", "session_id", sessionID)
	return nil
}

// TopPerformers flattens all quote-bearing messages in session-then-message
// order and ranks them by change percent, descending. The sort is stable:
// equal changes keep their flattening order. Taking at most n, an empty
// input yields an empty ranking.
func TopPerformers(sessions []api.SessionRecord, n int) []AggregatedStock {
	var stocks []AggregatedStock
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			if msg.StockData == nil {
				continue
			}
			stocks = append(stocks, AggregatedStock{
				Symbol:        msg.TickerSymbol,
				Price:         msg.StockData.CurrentPrice,
				ChangePercent: msg.StockData.ChangePercent,
				Timestamp:     msg.CreatedAt,
			})
		}
	}

	sort.SliceStable(stocks, func(i, j int) bool {
		return stocks[i].ChangePercent > stocks[j].ChangePercent
	})

	if len(stocks) > n {
		stocks = stocks[:n]
	}
	return stocks
}

// SentimentHistogram counts stored messages per sentiment category across
// all sessions. Categories with no occurrences are absent from the map, not
// present with a zero count.
func SentimentHistogram(sessions []api.SessionRecord) map[string]int {
	counts := make(map[string]int)
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			if msg.SentimentResult == "" {
				continue
			}
			counts[msg.SentimentResult]++
		}
	}
	return counts
}

// Search filters sessions to those where any message's query or response
// text contains term as a case-insensitive substring. An empty term matches
// every session.
func Search(sessions []api.SessionRecord, term string) []api.SessionRecord {
	if term == "" {
		return sessions
	}
	needle := strings.ToLower(term)

	var matched []api.SessionRecord
	for _, sess := range sessions {
		for _, msg := range sess.Messages {
			if strings.Contains(strings.ToLower(msg.UserQuery), needle) ||
				strings.Contains(strings.ToLower(msg.AIResponse), needle) {
				matched = append(matched, sess)
				break
			}
		}
	}
	return matched
}
