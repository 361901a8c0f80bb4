// Package config loads quizdash settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds everything tunable about the client. The match-policy
// constants (question seconds, fuzzy threshold, retry budget) are settings
// rather than literals so product can adjust them without a client release.
type Config struct {
	APIBaseURL string `env:"QUIZDASH_API_URL" envDefault:"https://api.quizdash.app"`
	APIToken   string `env:"QUIZDASH_API_TOKEN"`

	// QuestionSeconds is the fixed per-question countdown in timed modes.
	QuestionSeconds int `env:"QUIZDASH_QUESTION_SECONDS" envDefault:"15"`

	// FeedbackDwell is how long the graded answer stays on screen before
	// the session advances on its own.
	FeedbackDwell time.Duration `env:"QUIZDASH_FEEDBACK_DWELL" envDefault:"2s"`

	// FuzzyThreshold is the similarity (0-100) at which a typed practice
	// answer counts as correct.
	FuzzyThreshold int `env:"QUIZDASH_FUZZY_THRESHOLD" envDefault:"75"`

	// SubmitRetries is the per-question budget of transient grading
	// failures absorbed silently.
	SubmitRetries int `env:"QUIZDASH_SUBMIT_RETRIES" envDefault:"1"`

	// PracticeCount is the default practice set size.
	PracticeCount int `env:"QUIZDASH_PRACTICE_COUNT" envDefault:"5"`

	DBPath   string     `env:"QUIZDASH_DB"`
	LogFile  string     `env:"QUIZDASH_LOG_FILE"`
	LogLevel slog.Level `env:"QUIZDASH_LOG_LEVEL" envDefault:"INFO"`
}

// Load parses the environment into a Config.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	return &cfg, nil
}
