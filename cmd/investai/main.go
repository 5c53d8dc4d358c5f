package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/YuweAEC/invest-ai/internal/assistant"
	"github.com/YuweAEC/invest-ai/internal/config"
)

func main() {
	var cfg config.Config

	flag.StringVar(&cfg.BaseURL, "base-url", config.BaseURLFromEnv(), "Backend base URL (env: INVESTAI_API_URL)")
	flag.IntVar(&cfg.UserID, "user-id", config.DefaultUserID, "User ID sent on the primary query contract")
	flag.StringVar(&cfg.PrefsPath, "prefs", "investai.db", "Path to the preferences database")
	flag.BoolVar(&cfg.Debug, "debug", false, "Enable debug logging")

	flag.Parse()

	app, err := assistant.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize assistant: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
