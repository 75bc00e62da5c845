// Package classifier decides whether a query needs the document corpus ("job")
// or can be answered conversationally ("general").
package classifier

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
)

// Classifier labels queries with one chat call each
type Classifier struct {
	llm      interfaces.LLMService
	fallback string
	logger   arbor.ILogger
}

// NewClassifier creates a classifier. fallback is the intent ClassifyOrFallback
// returns on failure; anything other than a known intent becomes "general".
func NewClassifier(llm interfaces.LLMService, fallback string, logger arbor.ILogger) *Classifier {
	if !IsIntent(fallback) {
		fallback = models.IntentGeneral
	}
	return &Classifier{
		llm:      llm,
		fallback: fallback,
		logger:   logger,
	}
}

// IsIntent reports whether s is a known intent label
func IsIntent(s string) bool {
	return s == models.IntentJob || s == models.IntentGeneral
}

// Classify returns the intent for query. Transport failures and unrecognized
// replies both return a *ClassificationError.
func (c *Classifier) Classify(ctx context.Context, query string) (string, error) {
	startTime := time.Now()

	reply, err := c.llm.Chat(ctx, []interfaces.Message{
		{Role: interfaces.RoleSystem, Content: SystemPrompt},
		{Role: interfaces.RoleUser, Content: UserPrompt(query)},
	})
	if err != nil {
		return "", &ClassificationError{Query: query, Err: err}
	}

	intent := ParseReply(reply)
	if !IsIntent(intent) {
		return "", &ClassificationError{Query: query, Reply: reply}
	}

	c.logger.Debug().
		Str("intent", intent).
		Dur("duration", time.Since(startTime)).
		Msg("Query classified")

	return intent, nil
}

// ClassifyOrFallback returns the fallback intent alongside the error when
// classification fails, so callers can log the failure and carry on.
func (c *Classifier) ClassifyOrFallback(ctx context.Context, query string) (string, error) {
	intent, err := c.Classify(ctx, query)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("fallback_intent", c.fallback).
			Msg("Classification failed - using fallback intent")
		return c.fallback, err
	}
	return intent, nil
}

// ParseReply lowercases a model reply and strips whitespace, quotes and
// trailing punctuation, so "'Job'." and "job\n" both read as "job".
func ParseReply(reply string) string {
	return strings.ToLower(strings.TrimFunc(reply, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r)
	}))
}
