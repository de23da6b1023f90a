package usecase

import (
	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/samber/lo"
)

// MatchConversation compares a candidate conversation with the target
// transcript. Agent and human turns are aligned separately by position, not
// searched by content, so a reordered or partially missing transcript
// misaligns.
func MatchConversation(target []domain.Turn, candidate domain.Conversation) domain.MatchResult {
	total := countPositionalMatches(bySpeaker(target, domain.SpeakerAgent), bySpeaker(candidate.Turns, domain.SpeakerAgent)) +
		countPositionalMatches(bySpeaker(target, domain.SpeakerHuman), bySpeaker(candidate.Turns, domain.SpeakerHuman))

	var conversationID *string
	if candidate.ID != "" {
		conversationID = lo.ToPtr(candidate.ID)
	}

	return domain.MatchResult{
		ConversationID: conversationID,
		TotalMatches:   total,
		// Unattributed target turns still count towards the length.
		IsFullMatch: total == len(target),
	}
}

// SelectBestMatch picks the first full match in input order. Without one it
// picks the highest score, the earliest candidate winning ties. When nothing
// scores above zero the zero sentinel without a conversation id is returned.
func SelectBestMatch(results []domain.MatchResult) domain.MatchResult {
	if full, ok := lo.Find(results, func(r domain.MatchResult) bool { return r.IsFullMatch }); ok {
		return full
	}

	best := domain.MatchResult{}
	for _, result := range results {
		if result.TotalMatches > best.TotalMatches {
			best = result
		}
	}
	return best
}

func bySpeaker(turns []domain.Turn, speaker domain.Speaker) []domain.Turn {
	return lo.Filter(turns, func(turn domain.Turn, _ int) bool {
		return turn.Speaker == speaker
	})
}

func countPositionalMatches(target, candidate []domain.Turn) int {
	matches := 0
	for i, turn := range target {
		if i < len(candidate) && candidate[i].Text == turn.Text {
			matches++
		}
	}
	return matches
}
