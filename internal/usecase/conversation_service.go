package usecase

import (
	"context"
	"fmt"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// ConversationServiceConfig holds configuration for the conversation service
type ConversationServiceConfig struct {
	// MaxConcurrency caps parallel message fetches; 0 means unbounded
	MaxConcurrency int
}

// ConversationService resolves a widget transcript to a stored conversation
// and hands it over to the support queue
type ConversationService struct {
	messaging      domain.MessagingClient
	queue          domain.QueueClient
	maxConcurrency int
	logger         zerolog.Logger
}

// NewConversationService creates a new conversation service with dependencies
func NewConversationService(
	messaging domain.MessagingClient,
	queue domain.QueueClient,
	config ConversationServiceConfig,
	logger zerolog.Logger,
) *ConversationService {
	return &ConversationService{
		messaging:      messaging,
		queue:          queue,
		maxConcurrency: config.MaxConcurrency,
		logger:         logger,
	}
}

// Resolve finds the stored conversation that best matches target.
// Flow: list recent conversations -> fetch messages (fan-out) -> match ->
// enqueue the selected conversation. Nothing is enqueued without a match.
func (s *ConversationService) Resolve(ctx context.Context, target []domain.Turn) (*domain.Resolution, error) {
	if len(target) == 0 {
		return nil, domain.ErrInvalidRequest
	}

	summaries, err := s.messaging.ListConversations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}

	identified := lo.Filter(summaries, func(summary domain.ConversationSummary, _ int) bool {
		return summary.ID != ""
	})
	if skipped := len(summaries) - len(identified); skipped > 0 {
		s.logger.Warn().Int("skipped", skipped).Msg("listed conversations without id")
	}

	candidates, err := s.fetchConversations(ctx, identified)
	if err != nil {
		return nil, fmt.Errorf("fetch conversation messages: %w", err)
	}

	results := lo.Map(candidates, func(candidate domain.Conversation, _ int) domain.MatchResult {
		return MatchConversation(target, candidate)
	})

	resolution := &domain.Resolution{
		BestMatch: SelectBestMatch(results),
		FullMatches: lo.Filter(results, func(r domain.MatchResult, _ int) bool {
			return r.IsFullMatch
		}),
	}

	if resolution.BestMatch.ConversationID == nil {
		s.logger.Info().
			Int("candidates", len(candidates)).
			Int("turns", len(target)).
			Msg("no conversation matched, nothing queued")
		return resolution, nil
	}

	conversationID := *resolution.BestMatch.ConversationID
	s.logger.Info().
		Str("conversation_id", conversationID).
		Int("total_matches", resolution.BestMatch.TotalMatches).
		Bool("full_match", resolution.BestMatch.IsFullMatch).
		Msg("conversation selected")

	postResult, err := s.queue.EnqueueConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("enqueue conversation %s: %w", conversationID, err)
	}
	resolution.PostResult = postResult

	return resolution, nil
}

// fetchConversations loads the turns of every summary concurrently. The
// returned slice keeps the listing order.
func (s *ConversationService) fetchConversations(
	ctx context.Context,
	summaries []domain.ConversationSummary,
) ([]domain.Conversation, error) {
	conversations := make([]domain.Conversation, len(summaries))

	group, groupCtx := errgroup.WithContext(ctx)
	if s.maxConcurrency > 0 {
		group.SetLimit(s.maxConcurrency)
	}

	for i, summary := range summaries {
		group.Go(func() error {
			turns, err := s.messaging.GetMessages(groupCtx, summary.ID)
			if err != nil {
				return err
			}
			conversations[i] = domain.Conversation{ID: summary.ID, Turns: turns}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return conversations, nil
}
