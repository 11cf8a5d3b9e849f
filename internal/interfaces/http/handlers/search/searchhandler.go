package search

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/orris-inc/archy/internal/application/search/usecases"
	searchDomain "github.com/orris-inc/archy/internal/domain/search"
	"github.com/orris-inc/archy/internal/shared/errors"
	"github.com/orris-inc/archy/internal/shared/logger"
	"github.com/orris-inc/archy/internal/shared/utils"
)

type SearchTicketsExecutor interface {
	Execute(ctx context.Context, query usecases.SearchTicketsQuery) (*usecases.SearchTicketsResult, error)
}

type SearchResponse struct {
	Query      string                   `json:"query"`
	Source     string                   `json:"source,omitempty"`
	Candidates []searchDomain.Candidate `json:"candidates"`
}

type SearchHandler struct {
	searchUC SearchTicketsExecutor
	logger   logger.Interface
}

func NewSearchHandler(searchUC SearchTicketsExecutor, logger logger.Interface) *SearchHandler {
	return &SearchHandler{searchUC: searchUC, logger: logger}
}

// Search ranks archived tickets for a free-text query
// @Summary Search archived tickets
// @Description Semantic search with keyword fallback. No selection session is opened.
// @Tags Search
// @Produce json
// @Security Bearer
// @Param q query string true "Search text"
// @Param limit query int false "Maximum results (1-5)"
// @Success 200 {object} utils.APIResponse{data=SearchResponse}
// @Failure 400 {object} utils.APIResponse
// @Router /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			utils.ErrorResponseWithError(c, errors.NewValidationError("invalid limit", raw))
			return
		}
		limit = parsed
	}

	query := c.Query("q")
	result, err := h.searchUC.Execute(c.Request.Context(), usecases.SearchTicketsQuery{
		Query: query,
		Limit: limit,
	})
	if err != nil {
		h.logger.Warnw("ticket search failed", "query", query, "error", err)
		utils.ErrorResponseWithError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "", SearchResponse{
		Query:      query,
		Source:     string(result.Source),
		Candidates: result.Candidates,
	})
}
