package config

import "os"

// Environment selects where configuration is read from.
type Environment string

const (
	Development Environment = "development"
	Test        Environment = "test"
	CI          Environment = "ci"
	Production  Environment = "production"
)

// GetEnvironment is CI when CI=true, otherwise APP_ENV (or the older ENV)
// with development as the fallback.
func GetEnvironment() Environment {
	if os.Getenv("CI") == "true" {
		return CI
	}
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = os.Getenv("ENV")
	}
	switch Environment(env) {
	case Production, Test:
		return Environment(env)
	}
	return Development
}
