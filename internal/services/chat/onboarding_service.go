package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/onboard/internal/common"
	"github.com/ternarybob/onboard/internal/interfaces"
	"github.com/ternarybob/onboard/internal/models"
	"github.com/ternarybob/onboard/internal/services/classifier"
	"github.com/ternarybob/onboard/internal/services/corpus"
	"github.com/ternarybob/onboard/internal/services/retrieval"
)

// ErrEmptyQuery is returned for a blank query
var ErrEmptyQuery = errors.New("query is empty")

// Answer is the outcome of one handled query
type Answer struct {
	SessionID     string           `json:"session_id"`
	InteractionID string           `json:"interaction_id,omitempty"`
	Text          string           `json:"answer"`
	Intent        string           `json:"intent"`
	DocumentID    string           `json:"document_id,omitempty"`
	Signal        retrieval.Signal `json:"signal,omitempty"`
	Score         float64          `json:"score"`
	ErrorKind     string           `json:"error_kind,omitempty"`
	Duration      time.Duration    `json:"-"`
}

// OnboardingService runs the query pipeline: classify, retrieve, compose, log
type OnboardingService struct {
	classifier   *classifier.Classifier
	retriever    *retrieval.Retriever
	holder       *corpus.Holder
	composer     *Composer
	interactions interfaces.InteractionStorage
	cfg          common.ChatConfig
	logger       arbor.ILogger
}

// NewOnboardingService creates the service. interactions may be nil to skip
// the interaction log. classifier and composer are unused when
// cfg.ComposeAnswers is false.
func NewOnboardingService(
	cfg common.ChatConfig,
	intents *classifier.Classifier,
	retriever *retrieval.Retriever,
	holder *corpus.Holder,
	composer *Composer,
	interactions interfaces.InteractionStorage,
	logger arbor.ILogger,
) *OnboardingService {
	return &OnboardingService{
		classifier:   intents,
		retriever:    retriever,
		holder:       holder,
		composer:     composer,
		interactions: interactions,
		cfg:          cfg,
		logger:       logger,
	}
}

// NewSession creates a session sized to the configured history window
func (s *OnboardingService) NewSession() *Session {
	return NewSession("", s.cfg.HistoryTurns)
}

// HandleQuery answers query within session. A nil session gets a throwaway one.
// Classification and composition failures are reported through Answer.ErrorKind
// with user-facing text; the only errors returned are ErrEmptyQuery and context
// cancellation.
func (s *OnboardingService) HandleQuery(ctx context.Context, query string, session *Session) (*Answer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}
	if session == nil {
		session = s.NewSession()
	}
	session.Touch()

	startTime := time.Now()
	answer := &Answer{SessionID: session.ID}

	var err error
	if s.cfg.ComposeAnswers {
		err = s.answerComposed(ctx, query, session, answer)
	} else {
		err = s.answerRaw(ctx, query, answer)
	}
	if err != nil {
		return nil, err
	}

	answer.Duration = time.Since(startTime)
	s.record(query, session, answer)

	s.logger.Info().
		Str("session_id", session.ID).
		Str("intent", answer.Intent).
		Str("document_id", answer.DocumentID).
		Str("signal", string(answer.Signal)).
		Float64("score", answer.Score).
		Str("error_kind", answer.ErrorKind).
		Dur("duration", answer.Duration).
		Msg("Query handled")

	return answer, nil
}

// answerComposed classifies, retrieves for job queries and composes with the model
func (s *OnboardingService) answerComposed(ctx context.Context, query string, session *Session, answer *Answer) error {
	intent, err := s.classifier.ClassifyOrFallback(ctx, query)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		answer.ErrorKind = models.ErrorKindClassification
	}
	answer.Intent = intent

	var grounding *Grounding
	if intent == models.IntentJob {
		idx := s.holder.Load()
		result, err := s.retriever.Retrieve(ctx, query, idx)
		if err != nil {
			return fmt.Errorf("retrieval failed: %w", err)
		}
		s.applyResult(answer, result)

		if result.Matched() {
			grounding = &Grounding{
				DocumentID: result.DocumentID,
				Text:       idx.Passage(result.DocumentID, query, s.cfg.MaxGroundingChars),
				Topic:      s.topicFor(session, idx, result.DocumentID),
			}
		}
	}

	recent := session.Conversation().Recent()
	text, err := s.composer.Compose(ctx, query, grounding, recent, session.BusinessRole())
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		s.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Msg("Answer composition failed")

		var compErr *CompositionError
		if errors.As(err, &compErr) {
			answer.Text = compErr.UserMessage()
		} else {
			answer.Text = UnavailableText
		}
		answer.ErrorKind = models.ErrorKindComposition
		return nil
	}

	answer.Text = text
	session.Conversation().Append(
		interfaces.Message{Role: interfaces.RoleUser, Content: query},
		interfaces.Message{Role: interfaces.RoleAssistant, Content: text},
	)
	return nil
}

// answerRaw retrieves without any model call and returns the matched document's text
func (s *OnboardingService) answerRaw(ctx context.Context, query string, answer *Answer) error {
	answer.Intent = models.IntentJob

	idx := s.holder.Load()
	result, err := s.retriever.Retrieve(ctx, query, idx)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}
	s.applyResult(answer, result)

	if !result.Matched() {
		answer.Text = NoMatchText
		return nil
	}
	text, _ := idx.GetText(result.DocumentID)
	answer.Text = text
	return nil
}

func (s *OnboardingService) applyResult(answer *Answer, result retrieval.Result) {
	answer.DocumentID = result.DocumentID
	answer.Signal = result.Signal
	answer.Score = result.Score
}

// topicFor picks the session topic, then the document's module, then the default
func (s *OnboardingService) topicFor(session *Session, idx *corpus.Index, id string) string {
	if topic := session.Topic(); topic != "" {
		return topic
	}
	if entry, ok := idx.Entry(id); ok && entry.Metadata.Module != "" {
		return entry.Metadata.Module
	}
	return s.cfg.DefaultTopic
}

// record writes the interaction log entry. Failures are logged, never returned.
func (s *OnboardingService) record(query string, session *Session, answer *Answer) {
	if s.interactions == nil {
		return
	}

	interaction := &models.Interaction{
		ID:           common.NewInteractionID(),
		SessionID:    session.ID,
		BusinessRole: session.BusinessRole(),
		Query:        query,
		Intent:       answer.Intent,
		DocumentID:   answer.DocumentID,
		Signal:       string(answer.Signal),
		Score:        answer.Score,
		Answer:       answer.Text,
		ErrorKind:    answer.ErrorKind,
		DurationMs:   answer.Duration.Milliseconds(),
		CreatedAt:    time.Now(),
	}

	if err := s.interactions.SaveInteraction(interaction); err != nil {
		s.logger.Warn().
			Err(err).
			Str("session_id", session.ID).
			Msg("Failed to save interaction")
		return
	}
	answer.InteractionID = interaction.ID
}
