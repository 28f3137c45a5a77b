package server

import (
	"errors"
	"net/http"

	"github.com/Isaias789672/chef-ai-recipes/internal/ai"
	apierrors "github.com/Isaias789672/chef-ai-recipes/internal/errors"
	"github.com/gin-gonic/gin"
)

// ChatRequest is the body for the recipe chat endpoint
type ChatRequest struct {
	Message string `json:"message"`
}

// GenerateRequest is the body for the recipe generation endpoint
type GenerateRequest struct {
	Ingredients []string   `json:"ingredients"`
	Filters     ai.Filters `json:"filters"`
}

// AnalyzeRequest is the body for the fridge-photo analysis endpoint
type AnalyzeRequest struct {
	Image        string   `json:"image"`
	CurrentItems []string `json:"currentItems"`
}

// handleChatRecipe proxies a chat message to the Chef AI assistant
func (s *APIServer) handleChatRecipe(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}
	if req.Message == "" {
		respondError(c, apierrors.NewInvalidRequestError("Message is required"))
		return
	}

	result, err := s.aiClient.ChatRecipe(c.Request.Context(), req.Message)
	if err != nil {
		respondAIError(c, err, "Erro ao processar mensagem")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGenerateRecipe proxies a fridge-scan ingredient list to recipe
// generation
func (s *APIServer) handleGenerateRecipe(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}
	if len(req.Ingredients) == 0 {
		respondError(c, apierrors.NewInvalidRequestError("Ingredients are required"))
		return
	}

	result, err := s.aiClient.GenerateRecipe(c.Request.Context(), req.Ingredients, req.Filters)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidCompletion) {
			respondError(c, &apierrors.APIError{
				Code:       apierrors.ErrInternalServer,
				Message:    "Erro ao processar receita",
				HTTPStatus: http.StatusInternalServerError,
			})
			return
		}
		respondAIError(c, err, "Erro ao gerar receita")
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleAnalyzeFridge proxies a fridge photo and the current shopping
// list to the vision model
func (s *APIServer) handleAnalyzeFridge(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apierrors.NewValidationError(err.Error()))
		return
	}
	if req.Image == "" {
		respondError(c, apierrors.NewInvalidRequestError("Image is required"))
		return
	}

	result, err := s.aiClient.AnalyzeFridge(c.Request.Context(), req.Image, req.CurrentItems)
	if err != nil {
		if errors.Is(err, ai.ErrInvalidCompletion) {
			respondError(c, &apierrors.APIError{
				Code:       apierrors.ErrInternalServer,
				Message:    "Erro ao processar resposta",
				HTTPStatus: http.StatusInternalServerError,
			})
			return
		}
		respondAIError(c, err, "Erro ao analisar imagem")
		return
	}

	c.JSON(http.StatusOK, result)
}

// respondAIError maps AI gateway errors to API errors. The fallback
// message is operation-specific.
func respondAIError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ai.ErrRateLimited):
		respondError(c, apierrors.ErrRateLimitedError)
	case errors.Is(err, ai.ErrInsufficientCredits):
		respondError(c, apierrors.ErrInsufficientCreditsError)
	case errors.Is(err, ai.ErrNotConfigured):
		respondError(c, &apierrors.APIError{
			Code:       apierrors.ErrInternalServer,
			Message:    "AI service not configured",
			HTTPStatus: http.StatusInternalServerError,
		})
	case errors.Is(err, ai.ErrEmptyCompletion):
		respondError(c, &apierrors.APIError{
			Code:       apierrors.ErrInternalServer,
			Message:    "Nenhuma resposta da IA",
			HTTPStatus: http.StatusInternalServerError,
		})
	default:
		respondError(c, &apierrors.APIError{
			Code:       apierrors.ErrUpstreamUnavailable,
			Message:    fallback,
			HTTPStatus: http.StatusInternalServerError,
		})
	}
}
