package config

import "os"

// DefaultBaseURL is the local development backend address used when no
// override is configured.
const DefaultBaseURL = "http://localhost:8000"

// DefaultUserID is the user id sent on the primary query contract.
const DefaultUserID = 1

// Config holds application configuration.
type Config struct {
	BaseURL   string // backend base URL, the single external configuration point
	UserID    int    // user id for the primary query contract
	PrefsPath string // path to the preferences database
	Debug     bool   // enable debug logging
}

// BaseURLFromEnv resolves the backend base URL from the environment,
// falling back to the local development address.
func BaseURLFromEnv() string {
	if v := os.Getenv("INVESTAI_API_URL"); v != "" {
		return v
	}
	return DefaultBaseURL
}
