// Package config holds the server's immutable repository configuration:
// the GitHub credential and the owner/repo pair every operation is
// scoped to. It is loaded once at startup and never mutated.
package config

import (
	"os"
	"sync"

	"github.com/joho/godotenv"
)

const (
	TokenEnvVar = "GITHUB_TOKEN"
	OwnerEnvVar = "REPOLENS_OWNER"
	RepoEnvVar  = "REPOLENS_REPO"
)

// Config is the repository configuration triple.
type Config struct {
	Token string
	Owner string
	Repo  string
}

var (
	globalConfig *Config
	configOnce   sync.Once
)

// Load returns the singleton configuration, reading the environment
// (and an optional .env file) on first use.
func Load() *Config {
	configOnce.Do(func() {
		// Missing .env is fine; real environment variables win either way.
		_ = godotenv.Load()

		globalConfig = &Config{
			Token: os.Getenv(TokenEnvVar),
			Owner: os.Getenv(OwnerEnvVar),
			Repo:  os.Getenv(RepoEnvVar),
		}
	})
	return globalConfig
}

// MissingFields returns the environment variable names of any unset
// required fields, in a stable order.
func (c *Config) MissingFields() []string {
	var missing []string
	if c.Token == "" {
		missing = append(missing, TokenEnvVar)
	}
	if c.Owner == "" {
		missing = append(missing, OwnerEnvVar)
	}
	if c.Repo == "" {
		missing = append(missing, RepoEnvVar)
	}
	return missing
}

// Complete reports whether all required fields are set.
func (c *Config) Complete() bool {
	return len(c.MissingFields()) == 0
}
