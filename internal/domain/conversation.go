package domain

import "encoding/json"

// Speaker identifies who authored a conversation turn
type Speaker string

const (
	SpeakerAgent Speaker = "agent"
	SpeakerHuman Speaker = "human"
)

// Turn is one message in a conversation. Speaker is empty for turns that
// could not be attributed to either side.
type Turn struct {
	Speaker Speaker
	Text    string
}

// ConversationSummary is an entry of the recent conversations listing
type ConversationSummary struct {
	ID string
}

// Conversation is a stored conversation with its ordered turns
type Conversation struct {
	ID    string
	Turns []Turn
}

// MatchResult is the outcome of comparing a stored conversation with a target
// transcript. ConversationID is nil for the zero-match sentinel.
type MatchResult struct {
	ConversationID *string `json:"conversationId"`
	TotalMatches   int     `json:"totalMatches"`
	IsFullMatch    bool    `json:"isFullMatch"`
}

// Resolution is the result of resolving a widget transcript to a conversation.
// PostResult is the queue endpoint response, null when nothing was forwarded.
type Resolution struct {
	BestMatch   MatchResult     `json:"bestMatch"`
	FullMatches []MatchResult   `json:"fullMatches"`
	PostResult  json.RawMessage `json:"postResult"`
}
