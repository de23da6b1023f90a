package usecase

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
)

// MockCatalogClient is a mock implementation of domain.CatalogClient
type MockCatalogClient struct {
	token       domain.Token
	authError   error
	authCalls   int
	credentials domain.Credentials

	searchResult *domain.RawSearchResponse
	searchError  error
	searchToken  domain.Token
	searchQuery  domain.SearchQuery
	searchCalled bool

	product       json.RawMessage
	productError  error
	productToken  domain.Token
	productID     string
	productCalled bool
}

func NewMockCatalogClient() *MockCatalogClient {
	return &MockCatalogClient{token: "test-token"}
}

func (m *MockCatalogClient) Authenticate(ctx context.Context, credentials domain.Credentials) (domain.Token, error) {
	m.authCalls++
	m.credentials = credentials
	if m.authError != nil {
		return "", m.authError
	}
	return m.token, nil
}

func (m *MockCatalogClient) Search(ctx context.Context, token domain.Token, query domain.SearchQuery) (*domain.RawSearchResponse, error) {
	m.searchCalled = true
	m.searchToken = token
	m.searchQuery = query
	if m.searchError != nil {
		return nil, m.searchError
	}
	return m.searchResult, nil
}

func (m *MockCatalogClient) GetProduct(ctx context.Context, token domain.Token, id string) (json.RawMessage, error) {
	m.productCalled = true
	m.productToken = token
	m.productID = id
	if m.productError != nil {
		return nil, m.productError
	}
	return m.product, nil
}

// MockMessagingClient is a mock implementation of domain.MessagingClient
type MockMessagingClient struct {
	mu            sync.Mutex
	summaries     []domain.ConversationSummary
	listError     error
	turns         map[string][]domain.Turn
	messageErrors map[string]error
	fetched       []string
}

func NewMockMessagingClient() *MockMessagingClient {
	return &MockMessagingClient{
		turns:         make(map[string][]domain.Turn),
		messageErrors: make(map[string]error),
	}
}

// addConversation registers a listed conversation with its turns
func (m *MockMessagingClient) addConversation(id string, turns ...domain.Turn) {
	m.summaries = append(m.summaries, domain.ConversationSummary{ID: id})
	m.turns[id] = turns
}

func (m *MockMessagingClient) ListConversations(ctx context.Context) ([]domain.ConversationSummary, error) {
	if m.listError != nil {
		return nil, m.listError
	}
	return m.summaries, nil
}

func (m *MockMessagingClient) GetMessages(ctx context.Context, conversationID string) ([]domain.Turn, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetched = append(m.fetched, conversationID)
	if err := m.messageErrors[conversationID]; err != nil {
		return nil, err
	}
	return m.turns[conversationID], nil
}

// MockQueueClient is a mock implementation of domain.QueueClient
type MockQueueClient struct {
	result   json.RawMessage
	err      error
	enqueued []string
}

func NewMockQueueClient() *MockQueueClient {
	return &MockQueueClient{result: json.RawMessage(`{"status":"ok"}`)}
}

func (m *MockQueueClient) EnqueueConversation(ctx context.Context, conversationID string) (json.RawMessage, error) {
	m.enqueued = append(m.enqueued, conversationID)
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func agent(text string) domain.Turn {
	return domain.Turn{Speaker: domain.SpeakerAgent, Text: text}
}

func human(text string) domain.Turn {
	return domain.Turn{Speaker: domain.SpeakerHuman, Text: text}
}
