package domain

import (
	"context"
	"encoding/json"
)

// CatalogClient defines the interface for interacting with the Tupi product API
type CatalogClient interface {
	Authenticate(ctx context.Context, credentials Credentials) (Token, error)
	Search(ctx context.Context, token Token, query SearchQuery) (*RawSearchResponse, error)
	GetProduct(ctx context.Context, token Token, id string) (json.RawMessage, error)
}

// MessagingClient defines the interface for reading stored conversations
type MessagingClient interface {
	ListConversations(ctx context.Context) ([]ConversationSummary, error)
	GetMessages(ctx context.Context, conversationID string) ([]Turn, error)
}

// QueueClient hands a conversation over to the human support queue
type QueueClient interface {
	EnqueueConversation(ctx context.Context, conversationID string) (json.RawMessage, error)
}
