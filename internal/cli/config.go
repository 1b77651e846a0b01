package cli

import "os"

// Config holds CLI configuration
type Config struct {
	Server   string
	Username string
	Password string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		Server:   getEnvOrDefault("LOBBY_SERVER", "localhost:7070"),
		Username: os.Getenv("LOBBY_USER"),
		Password: os.Getenv("LOBBY_PASS"),
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
