package llm

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"trade-match/internal/domain/worker"
)

// textGenerator is the slice of Model the classifier and quoter depend
// on, so tests can substitute canned responses.
type textGenerator interface {
	GenerateWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Classifier maps a job's title and description to one trade from the
// closed set.
type Classifier struct {
	model   textGenerator
	timeout time.Duration
	logger  *log.Logger
}

func NewClassifier(model textGenerator, timeout time.Duration, logger *log.Logger) *Classifier {
	return &Classifier{model: model, timeout: timeout, logger: logger}
}

const classifySystemPrompt = `You are a trade classifier for a property maintenance marketplace.
Given a job title and description, respond with exactly one word: the trade best suited to the job.
Valid answers: %s.
Respond with the single word only, no punctuation, no explanation.`

// Classify returns a trade from the known set. An LLM failure or an
// unknown token falls back to the default trade rather than aborting the
// matching run; both cases are logged.
func (c *Classifier) Classify(ctx context.Context, title, description string) (worker.Trade, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	trades := worker.Trades()
	names := make([]string, 0, len(trades))
	for _, t := range trades {
		names = append(names, string(t))
	}

	systemPrompt := fmt.Sprintf(classifySystemPrompt, strings.Join(names, ", "))
	userPrompt := fmt.Sprintf("Job title: %s\nJob description: %s", title, description)

	raw, err := c.model.GenerateWithSystem(ctx, systemPrompt, userPrompt)
	if err != nil {
		if c.logger != nil {
			c.logger.Printf("[Classifier] LLM call failed, using default trade | trade=%s err=%v", worker.DefaultTrade, err)
		}
		return worker.DefaultTrade, nil
	}

	trade, ok := worker.ParseTrade(raw)
	if !ok {
		if c.logger != nil {
			c.logger.Printf("[Classifier] unknown trade token, using default | token=%q trade=%s", strings.TrimSpace(raw), worker.DefaultTrade)
		}
		return worker.DefaultTrade, nil
	}
	return trade, nil
}
