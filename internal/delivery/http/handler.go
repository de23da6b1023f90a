package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/neuralgenius/tupi-proxy/internal/domain"
	"github.com/neuralgenius/tupi-proxy/internal/usecase"
	"github.com/rs/zerolog"
)

// Client-facing messages. Error details only go to the server log.
const (
	queryRequiredMessage    = `El parámetro "query" es obligatorio.`
	authFailedMessage       = "No se pudo obtener el token de autenticación"
	searchFailedMessage     = "Error al realizar la autenticación o la búsqueda"
	messagesRequiredMessage = `El parámetro "messages" es obligatorio.`
	conversationFailedMsg   = "Error al obtener las conversaciones"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	catalog       *usecase.CatalogService
	conversations *usecase.ConversationService
	logger        zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(
	catalog *usecase.CatalogService,
	conversations *usecase.ConversationService,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		catalog:       catalog,
		conversations: conversations,
		logger:        logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "tupi-proxy",
		"version": "1.0.0",
	})
}

// Search handles product lookup (when id is given) and catalog search
func (h *Handler) Search(c *gin.Context) {
	if id := c.Query("id"); id != "" {
		product, err := h.catalog.FindProduct(c.Request.Context(), id)
		if err != nil {
			h.respondSearchError(c, err)
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", product)
		return
	}

	query := domain.SearchQuery{
		Query: c.Query("query"),
		Page:  c.Query("pagina"),
		Price: c.Query("precio"),
	}
	if query.Query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": queryRequiredMessage})
		return
	}

	result, err := h.catalog.Search(c.Request.Context(), query)
	if err != nil {
		h.respondSearchError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondSearchError maps catalog errors to HTTP statuses
func (h *Handler) respondSearchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"message": queryRequiredMessage})
	case errors.Is(err, domain.ErrAuthFailed):
		h.requestLogger(c).Warn().Err(err).Msg("catalog authentication failed")
		c.JSON(http.StatusUnauthorized, gin.H{"message": authFailedMessage})
	default:
		h.requestLogger(c).Error().Err(err).Msg("catalog request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"message": searchFailedMessage})
	}
}

type transcriptMessage struct {
	Agent string `json:"agent"`
	Human string `json:"human"`
}

type conversationRequest struct {
	Messages []transcriptMessage `json:"messages" binding:"required"`
}

// GetConversationID resolves a widget transcript to a stored conversation and
// queues it for a human agent
func (h *Handler) GetConversationID(c *gin.Context) {
	var req conversationRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Messages) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": messagesRequiredMessage})
		return
	}

	resolution, err := h.conversations.Resolve(c.Request.Context(), toTurns(req.Messages))
	if err != nil {
		h.requestLogger(c).Error().Err(err).Int("messages", len(req.Messages)).Msg("conversation resolution failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": conversationFailedMsg})
		return
	}

	c.JSON(http.StatusOK, resolution)
}

// toTurns attributes each transcript message to a speaker. A message carrying
// both keys counts as an agent turn; one carrying neither stays unattributed.
func toTurns(messages []transcriptMessage) []domain.Turn {
	turns := make([]domain.Turn, len(messages))
	for i, msg := range messages {
		switch {
		case msg.Agent != "":
			turns[i] = domain.Turn{Speaker: domain.SpeakerAgent, Text: msg.Agent}
		case msg.Human != "":
			turns[i] = domain.Turn{Speaker: domain.SpeakerHuman, Text: msg.Human}
		}
	}
	return turns
}

func (h *Handler) requestLogger(c *gin.Context) *zerolog.Logger {
	logger := h.logger.With().
		Str(requestIDKey, c.GetString(requestIDKey)).
		Str("path", c.Request.URL.Path).
		Logger()
	return &logger
}
