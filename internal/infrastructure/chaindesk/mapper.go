package chaindesk

import (
	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/samber/lo"
)

// conversationDTO is an entry of the conversations listing
type conversationDTO struct {
	ID string `json:"id"`
}

// messageDTO is a stored message as returned by the messages endpoint
type messageDTO struct {
	From string `json:"from"`
	Text string `json:"text"`
}

// mapConversations converts the listing to domain summaries
func mapConversations(conversations []conversationDTO) []domain.ConversationSummary {
	return lo.Map(conversations, func(c conversationDTO, _ int) domain.ConversationSummary {
		return domain.ConversationSummary{ID: c.ID}
	})
}

// mapMessages converts stored messages to turns. Authors other than the
// agent or the human are left unattributed.
func mapMessages(messages []messageDTO) []domain.Turn {
	return lo.Map(messages, func(m messageDTO, _ int) domain.Turn {
		return domain.Turn{Speaker: toSpeaker(m.From), Text: m.Text}
	})
}

func toSpeaker(from string) domain.Speaker {
	switch domain.Speaker(from) {
	case domain.SpeakerAgent:
		return domain.SpeakerAgent
	case domain.SpeakerHuman:
		return domain.SpeakerHuman
	default:
		return ""
	}
}
