// Package chat owns the active session's ordered message log and the
// single-query-in-flight discipline around it.
package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/YuweAEC/invest-ai/internal/dispatch"
	"github.com/YuweAEC/invest-ai/internal/session"
)

// ErrEmptyQuery rejects a submission whose text is empty after trimming.
// Nothing is appended and no remote call is made.
var ErrEmptyQuery = errors.New("query must not be empty")

// ErrBusy rejects a submission while a previous query is still in flight.
var ErrBusy = errors.New("a query is already awaiting a response")

// Resolver is the dispatcher contract the conversation awaits on.
type Resolver interface {
	SubmitQuery(ctx context.Context, userID int, sessionID, text string) (*dispatch.Response, error)
}

// Conversation is the state machine for one session: idle until a submission,
// awaiting-response while exactly one query is in flight, then idle again.
// The message log is append-only and message ids strictly increase in append
// order, which is also display order.
type Conversation struct {
	resolver Resolver
	logger   *slog.Logger
	userID   int

	mu     sync.Mutex
	sess   *session.Session
	nextID int64
	busy   bool
}

// New creates a conversation around a fresh session.
func New(resolver Resolver, userID int, logger *slog.Logger) *Conversation {
	return &Conversation{
		resolver: resolver,
		logger:   logger,
		userID:   userID,
		sess:     session.New(),
		nextID:   1,
	}
}

// SessionID returns the active session's identifier.
func (c *Conversation) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess.ID
}

// Pending reports whether a query is currently awaiting a response.
func (c *Conversation) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy
}

// Messages returns a copy of the message log in append order.
func (c *Conversation) Messages() []session.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]session.Message, len(c.sess.Messages))
	copy(out, c.sess.Messages)
	return out
}

// Snapshot returns a copy of the full session, for export.
func (c *Conversation) Snapshot() *session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := &session.Session{
		ID:        c.sess.ID,
		CreatedAt: c.sess.CreatedAt,
		Messages:  make([]session.Message, len(c.sess.Messages)),
	}
	copy(snap.Messages, c.sess.Messages)
	return snap
}

// Reset discards the current session and starts a new one. Rejected while a
// query is in flight.
func (c *Conversation) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.busy {
		return ErrBusy
	}
	c.sess = session.New()
	c.nextID = 1
	c.logger.Info("started new session", "session_id", c.sess.ID)
	return nil
}

// Submit appends the user message, awaits the dispatcher, and appends either
// the assistant reply or an error message embedding the failure detail. The
// returned message is the reply. A ErrEmptyQuery or ErrBusy rejection
// appends nothing and leaves the state untouched; a dispatcher failure is
// not returned as an error, because the conversation has already absorbed it
// into a visible error message and remains usable.
func (c *Conversation) Submit(ctx context.Context, text string) (session.Message, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return session.Message{}, ErrEmptyQuery
	}

	c.mu.Lock()
	if c.busy {
		c.mu.Unlock()
		return session.Message{}, ErrBusy
	}
	c.busy = true
	c.append(session.Message{Role: session.RoleUser, Content: trimmed})
	sessionID := c.sess.ID
	c.mu.Unlock()

	resp, err := c.resolver.SubmitQuery(ctx, c.userID, sessionID, trimmed)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.busy = false

	var reply session.Message
	if err != nil {
		c.logger.Error("query failed", "session_id", sessionID, "error", err)
		reply = session.Message{
			Role:    session.RoleError,
			Content: fmt.Sprintf("Sorry, I encountered an error: %v", err),
		}
	} else {
		reply = session.Message{
			Role:        session.RoleAssistant,
			Content:     resp.Text,
			Ticker:      resp.Ticker,
			Quote:       resp.Quote,
			Sentiment:   resp.Sentiment,
			Sources:     resp.Sources,
			RelatedNews: resp.RelatedNews,
		}
	}
	return c.append(reply), nil
}

// append assigns the next id and a capture-time timestamp, then appends.
// Callers hold c.mu.
func (c *Conversation) append(msg session.Message) session.Message {
	msg.ID = c.nextID
	c.nextID++
	msg.Timestamp = time.Now()
	c.sess.Messages = append(c.sess.Messages, msg)
	return msg
}
