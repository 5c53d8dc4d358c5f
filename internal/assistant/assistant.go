// Package assistant is the terminal front end: it reads user input, routes
// commands, and renders the data model produced by the core packages.
package assistant

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/YuweAEC/invest-ai/internal/api"
	"github.com/YuweAEC/invest-ai/internal/chat"
	"github.com/YuweAEC/invest-ai/internal/config"
	"github.com/YuweAEC/invest-ai/internal/dispatch"
	"github.com/YuweAEC/invest-ai/internal/history"
	"github.com/YuweAEC/invest-ai/internal/prefs"
	"github.com/YuweAEC/invest-ai/internal/session"
	"github.com/YuweAEC/invest-ai/internal/telemetry"
)

// Assistant wires the gateway, dispatcher, conversation, and history service
// together behind an interactive prompt.
type Assistant struct {
	config   config.Config
	gateway  *api.Client
	conv     *chat.Conversation
	hist     *history.Service
	prefs    *prefs.Store
	logger   *slog.Logger
	cleanup  func()
	darkMode bool

	// last fetched session list, kept so a delete can drop exactly the
	// matching entry without a refetch
	sessions []api.SessionRecord
}

// New creates a fully wired assistant from configuration.
func New(cfg config.Config) (*Assistant, error) {
	logger, err := telemetry.InitLogger(cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx := context.Background()
	tracer, meter, cleanup, err := telemetry.InitTelemetry(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	store, err := prefs.Open(cfg.PrefsPath)
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to open preferences: %w", err)
	}

	darkMode, err := store.DarkMode()
	if err != nil {
		logger.Warn("failed to load display preference", "error", err)
	}

	gateway := api.NewClient(cfg.BaseURL, logger, tracer, meter)
	dispatcher := dispatch.New(gateway, logger)
	conv := chat.New(dispatcher, cfg.UserID, logger)
	hist := history.NewService(gateway, logger)

	logger.Info("assistant ready",
		"base_url", cfg.BaseURL, "session_id", conv.SessionID())

	return &Assistant{
		config:   cfg,
		gateway:  gateway,
		conv:     conv,
		hist:     hist,
		prefs:    store,
		logger:   logger,
		cleanup:  cleanup,
		darkMode: darkMode,
	}, nil
}

// Run starts the interactive loop and blocks until the user quits.
func (a *Assistant) Run() error {
	defer a.cleanup()
	defer a.prefs.Close()

	fmt.Println("=== InvestAI Research Assistant ===")
	fmt.Printf("Session: %s\n", a.conv.SessionID())
	fmt.Printf("Backend: %s\n", a.gateway.BaseURL())
	fmt.Println("Ask about any stock or investment topic. Type /help for commands.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	ctx := context.Background()

	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			shouldQuit, err := a.handleCommand(ctx, input)
			if err != nil {
				fmt.Printf("Error: %v\n", err)
				a.logger.Error("command error", "error", err)
			}
			if shouldQuit {
				break
			}
			continue
		}

		reply, err := a.conv.Submit(ctx, input)
		if err != nil {
			// Only local validation errors reach here; remote failures are
			// absorbed into an error-typed message.
			fmt.Printf("Error: %v\n", err)
			continue
		}
		a.renderReply(reply)
	}

	fmt.Println("Goodbye!")
	return nil
}

// handleCommand routes slash commands. It returns true when the loop should
// exit.
func (a *Assistant) handleCommand(ctx context.Context, cmd string) (bool, error) {
	parts := strings.Fields(cmd)
	if len(parts) == 0 {
		return false, nil
	}

	switch parts[0] {
	case "/quit", "/exit":
		return true, nil

	case "/new-session":
		if err := a.conv.Reset(); err != nil {
			return false, err
		}
		fmt.Println("Started new session:", a.conv.SessionID())
		return false, nil

	case "/history":
		sessions, err := a.hist.List(ctx)
		if err != nil {
			return false, err
		}
		a.sessions = sessions
		a.renderSessionList(sessions)
		return false, nil

	case "/search":
		term := strings.TrimSpace(strings.TrimPrefix(cmd, "/search"))
		if a.sessions == nil {
			sessions, err := a.hist.List(ctx)
			if err != nil {
				return false, err
			}
			a.sessions = sessions
		}
		a.renderSessionList(history.Search(a.sessions, term))
		return false, nil

	case "/open":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /open <session-id>")
		}
		record, err := a.hist.Detail(ctx, parts[1])
		if err != nil {
			return false, err
		}
		a.renderSessionDetail(record)
		return false, nil

	case "/delete":
		if len(parts) < 2 {
			return false, fmt.Errorf("usage: /delete <session-id>")
		}
		if err := a.hist.Delete(ctx, parts[1]); err != nil {
			if errors.Is(err, api.ErrNotFound) {
				return false, fmt.Errorf("session %s does not exist", parts[1])
			}
			return false, err
		}
		a.dropLocalSession(parts[1])
		fmt.Println("Deleted session:", parts[1])
		return false, nil

	case "/dashboard":
		sessions, err := a.hist.List(ctx)
		if err != nil {
			return false, err
		}
		a.sessions = sessions
		a.renderDashboard(sessions)
		return false, nil

	case "/export":
		return false, a.exportSession(ctx, parts[1:])

	case "/health":
		result, err := a.gateway.Health(ctx)
		if err != nil {
			return false, fmt.Errorf("health check failed: %w", err)
		}
		fmt.Printf("Backend status: %s\n", result.Status)
		return false, nil

	case "/dark":
		a.darkMode = !a.darkMode
		if err := a.prefs.SetDarkMode(a.darkMode); err != nil {
			return false, err
		}
		if a.darkMode {
			fmt.Println("Dark mode on (colored output enabled)")
		} else {
			fmt.Println("Dark mode off")
		}
		return false, nil

	case "/help":
		fmt.Println("Available commands:")
		fmt.Println("  /quit, /exit          - Exit the assistant")
		fmt.Println("  /new-session          - Start a new conversation session")
		fmt.Println("  /history              - List past sessions")
		fmt.Println("  /search <term>        - Filter past sessions by text")
		fmt.Println("  /open <session-id>    - Show a past session in full")
		fmt.Println("  /delete <session-id>  - Delete a past session")
		fmt.Println("  /dashboard            - Top performers and sentiment overview")
		fmt.Println("  /export [session-id]  - Export the active (or a past) session to JSON")
		fmt.Println("  /health               - Check backend liveness")
		fmt.Println("  /dark                 - Toggle the dark display preference")
		fmt.Println("  /help                 - Show this help message")
		return false, nil

	default:
		return false, fmt.Errorf("unknown command: %s", parts[0])
	}
}

// dropLocalSession removes exactly the matching entry from the cached list.
func (a *Assistant) dropLocalSession(sessionID string) {
	for i, sess := range a.sessions {
		if sess.SessionID == sessionID {
			a.sessions = append(a.sessions[:i], a.sessions[i+1:]...)
			return
		}
	}
}

// exportSession writes the active session, or a stored one when an id is
// given, to a JSON file in the working directory.
func (a *Assistant) exportSession(ctx context.Context, args []string) error {
	var data []byte
	var name string

	if len(args) == 0 {
		snap := a.conv.Snapshot()
		exported, err := snap.Export()
		if err != nil {
			return err
		}
		data, name = exported, snap.ID
	} else {
		record, err := a.hist.Detail(ctx, args[0])
		if err != nil {
			return err
		}
		exported, err := exportRecord(record)
		if err != nil {
			return err
		}
		data, name = exported, record.SessionID
	}

	filename := fmt.Sprintf("investai-session-%s.json", name)
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	fmt.Println("Exported to", filename)
	return nil
}

// exportRecord serializes a stored session record for export.
func exportRecord(record *api.SessionRecord) ([]byte, error) {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to export session: %w", err)
	}
	return data, nil
}

// renderReply prints an assistant or error message with its enrichment data.
func (a *Assistant) renderReply(msg session.Message) {
	if msg.Role == session.RoleError {
		fmt.Printf("%s\n\n", a.color(msg.Content, colorRed))
		return
	}

	var badges []string
	if msg.Ticker != "" {
		badges = append(badges, "["+msg.Ticker+"]")
	}
	if msg.Sentiment != nil {
		badges = append(badges, a.sentimentLabel(msg.Sentiment.Category))
	}
	if len(badges) > 0 {
		fmt.Println(strings.Join(badges, " "))
	}

	fmt.Printf("Bot: %s\n", msg.Content)

	if msg.Quote != nil {
		change := fmt.Sprintf("%+.2f%%", msg.Quote.ChangePercent)
		if msg.Quote.ChangePercent >= 0 {
			change = a.color(change, colorGreen)
		} else {
			change = a.color(change, colorRed)
		}
		fmt.Printf("     Price: $%.2f  Change: %s\n", msg.Quote.CurrentPrice, change)
	}
	if len(msg.Sources) > 0 {
		fmt.Printf("     Sources: %s\n", strings.Join(msg.Sources, ", "))
	}
	for _, item := range msg.RelatedNews {
		fmt.Printf("     News: %s (%s)\n", item.Title, item.Source)
	}
	fmt.Println()
}

// renderSessionList prints one line per session: date, first query, counts.
func (a *Assistant) renderSessionList(sessions []api.SessionRecord) {
	if len(sessions) == 0 {
		fmt.Println("No sessions found.")
		return
	}
	fmt.Println()
	for _, sess := range sessions {
		first := ""
		if len(sess.Messages) > 0 {
			first = sess.Messages[0].UserQuery
		}
		if len(first) > 60 {
			first = first[:57] + "..."
		}
		fmt.Printf("%s  %s  (%d messages)\n",
			sess.SessionID, sess.CreatedAt.Format("2006-01-02 15:04"), len(sess.Messages))
		if first != "" {
			fmt.Printf("    %s\n", first)
		}
	}
	fmt.Println()
}

// renderSessionDetail prints every query/response pair of a stored session.
func (a *Assistant) renderSessionDetail(record *api.SessionRecord) {
	fmt.Printf("\nSession %s (%s)\n\n", record.SessionID, record.CreatedAt.Format("2006-01-02 15:04"))
	for _, msg := range record.Messages {
		fmt.Printf("You: %s\n", msg.UserQuery)
		fmt.Printf("Bot: %s\n", msg.AIResponse)
		if msg.StockData != nil {
			fmt.Printf("     %s  $%.2f  %+.2f%%\n",
				msg.TickerSymbol, msg.StockData.CurrentPrice, msg.StockData.ChangePercent)
		}
		if msg.SentimentResult != "" {
			fmt.Printf("     Sentiment: %s\n", a.sentimentLabel(msg.SentimentResult))
		}
		fmt.Println()
	}
}

// renderDashboard prints the top-performers ranking and the sentiment
// distribution derived from the stored sessions.
func (a *Assistant) renderDashboard(sessions []api.SessionRecord) {
	top := history.TopPerformers(sessions, history.TopPerformerCount)
	fmt.Println("\nTop Performing Stocks")
	if len(top) == 0 {
		fmt.Println("  no quote data yet")
	}
	for i, stock := range top {
		change := fmt.Sprintf("%+.2f%%", stock.ChangePercent)
		if stock.ChangePercent >= 0 {
			change = a.color(change, colorGreen)
		} else {
			change = a.color(change, colorRed)
		}
		fmt.Printf("  %d. %-6s $%.2f  %s\n", i+1, stock.Symbol, stock.Price, change)
	}

	counts := history.SentimentHistogram(sessions)
	fmt.Println("\nSentiment Distribution")
	if len(counts) == 0 {
		fmt.Println("  no sentiment data yet")
	}
	for _, category := range []string{session.SentimentPositive, session.SentimentNegative, session.SentimentNeutral} {
		if n, ok := counts[category]; ok {
			fmt.Printf("  %-8s %d\n", a.sentimentLabel(category), n)
		}
	}
	fmt.Println()
}

const (
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorReset  = "\033[0m"
)

// color wraps s in an ANSI color when the dark display preference is on.
func (a *Assistant) color(s, code string) string {
	if !a.darkMode {
		return s
	}
	return code + s + colorReset
}

func (a *Assistant) sentimentLabel(category string) string {
	switch category {
	case session.SentimentPositive:
		return a.color(category, colorGreen)
	case session.SentimentNegative:
		return a.color(category, colorRed)
	default:
		return a.color(category, colorYellow)
	}
}
