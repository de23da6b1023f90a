package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/neuralgenius/tupi-proxy/internal/infrastructure/tupi"
	"github.com/rs/zerolog"
)

// CatalogService handles product search and lookup against the catalog API.
// A fresh token is obtained for every call.
type CatalogService struct {
	client      domain.CatalogClient
	credentials domain.Credentials
	logger      zerolog.Logger
}

// NewCatalogService creates a new catalog service with dependencies
func NewCatalogService(
	client domain.CatalogClient,
	credentials domain.Credentials,
	logger zerolog.Logger,
) *CatalogService {
	return &CatalogService{
		client:      client,
		credentials: credentials,
		logger:      logger,
	}
}

// FindProduct returns the shaped product record for id.
// Flow: authenticate -> get product -> shape
func (s *CatalogService) FindProduct(ctx context.Context, id string) (json.RawMessage, error) {
	if id == "" {
		return nil, domain.ErrInvalidRequest
	}

	var product json.RawMessage
	err := s.withToken(ctx, func(ctx context.Context, token domain.Token) error {
		raw, err := s.client.GetProduct(ctx, token, id)
		if err != nil {
			return fmt.Errorf("get product %s: %w", id, err)
		}

		product, err = tupi.ShapeProduct(raw)
		return err
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

// Search runs a catalog search and returns the shaped results.
// Flow: validate -> authenticate -> search -> shape
func (s *CatalogService) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResponse, error) {
	if query.Query == "" {
		return nil, domain.ErrInvalidRequest
	}

	var response domain.SearchResponse
	err := s.withToken(ctx, func(ctx context.Context, token domain.Token) error {
		raw, err := s.client.Search(ctx, token, query)
		if err != nil {
			return fmt.Errorf("search %q: %w", query.Query, err)
		}

		response = tupi.ShapeSearchResults(raw)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Str("query", query.Query).
		Int("results", len(response.Resultados)).
		Msg("search shaped")

	return &response, nil
}

// withToken authenticates with the configured credentials and runs fn with
// the issued token
func (s *CatalogService) withToken(ctx context.Context, fn func(context.Context, domain.Token) error) error {
	token, err := s.client.Authenticate(ctx, s.credentials)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}

	return fn(ctx, token)
}
