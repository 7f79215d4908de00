// Package classifier sends statement text to a language model and returns its reply.
package classifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/iho/fintrack/internal/domain"
)

// Defaults applied when Config leaves a field unset.
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
	DefaultMaxTokens   = 4000
	DefaultTemperature = 0.3
	DefaultTimeout     = 2 * time.Minute
)

// Config holds the request parameters shared by every backend.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

func (c Config) withDefaults(model string) Config {
	if c.Model == "" {
		c.Model = model
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Temperature <= 0 {
		c.Temperature = DefaultTemperature
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// SystemPrompt is the fixed instruction sent with every statement.
var SystemPrompt = buildSystemPrompt(domain.Categories)

func buildSystemPrompt(categories []string) string {
	quoted := make([]string, len(categories))
	for i, c := range categories {
		quoted[i] = "'" + c + "'"
	}

	return fmt.Sprintf("You are a financial analyst tasked with extracting transaction data from bank statements. "+
		"Extract each transaction's date (in YYYY-MM-DD format), "+
		"description (analyze all of the text for each entry and include the vendor), "+
		"amount (expense should always have a - in front of the number), "+
		"category (based on the name and description and using one of these %s), "+
		"and whether it's 'Income' or 'Expense' saved as type. "+
		"Provide the output as a JSON array of transactions.",
		strings.Join(quoted, ", "))
}

// UserMessage wraps the extracted statement text.
func UserMessage(text string) string {
	return "Here's the bank statement content:\n\n" + text
}
