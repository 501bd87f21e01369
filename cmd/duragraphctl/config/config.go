// Package config loads duragraphctl's environment-driven configuration,
// ported from the teacher's cmd/server/config.Load() getEnv/getEnvInt
// helper pattern, narrowed to what this CLI needs: LLM provider keys, the
// NATS URL the streaming bridge publishes run events through, and an HTTP
// timeout setting that is loaded but not passed to HTTP nodes (each uses its
// own timeout_seconds, or 30 seconds). There is no DB/JWT/OAuth config here, since
// persistence and auth are explicitly out of scope.
package config

import (
	"os"
	"strconv"
)

// Config holds duragraphctl's process-wide configuration, read once at
// startup.
type Config struct {
	AnthropicAPIKey    string
	OpenAIAPIKey       string
	NATSURL            string
	// HTTPTimeoutSeconds is read from DURAGRAPHCTL_HTTP_TIMEOUT_SECONDS;
	// nothing in duragraphctl passes it on to HTTP nodes.
	HTTPTimeoutSeconds int
}

// Load reads Config from the environment. The provider keys default to
// empty: a node's own config.api_key always wins over these, which only
// fill the gap when a graph leaves api_key blank.
func Load() *Config {
	return &Config{
		AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
		OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
		NATSURL:            getEnv("DURAGRAPHCTL_NATS_URL", "nats://localhost:4222"),
		HTTPTimeoutSeconds: getEnvInt("DURAGRAPHCTL_HTTP_TIMEOUT_SECONDS", 30),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
